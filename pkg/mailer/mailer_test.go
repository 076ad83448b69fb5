package mailer

import (
	"bytes"
	"errors"
	"net/smtp"
	"testing"

	"github.com/quocanhngo/spark/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_SendMatch(t *testing.T) {
	m := New(Config{Host: "mailpit", Port: "1025", From: "noreply@spark.local", FromName: "Spark"})

	var gotAddr string
	var gotTo []string
	var gotMsg string
	m.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		assert.Nil(t, a)
		return nil
	}

	require.NoError(t, m.SendMatch("ann@spark.test", "Ann", "Bob <script>"))

	assert.Equal(t, "mailpit:1025", gotAddr)
	assert.Equal(t, []string{"ann@spark.test"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Spark - It's a match!\r\n")
	assert.Contains(t, gotMsg, "From: Spark <noreply@spark.local>\r\n")
	assert.Contains(t, gotMsg, "Bob &lt;script&gt;")
}

func TestMailer_WrapsTransportError(t *testing.T) {
	m := New(Config{Host: "h", Port: "25", Username: "u", Password: "p"})
	boom := errors.New("connection refused")
	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := m.SendMatch("a@b.test", "A", "B")
	assert.ErrorIs(t, err, boom)
}

func TestMailer_LogsSentMail(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(&logger.Config{Level: "debug", Format: logger.FormatJSON, Component: "mailer", Output: &buf})
	t.Cleanup(func() { logger.Init(&logger.Config{Level: "info", Format: logger.FormatText}) })

	m := New(Config{Host: "h", Port: "25"})
	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return nil }
	require.NoError(t, m.SendMatch("a@b.test", "A", "B"))

	assert.Contains(t, buf.String(), `"msg":"email sent"`)
	assert.Contains(t, buf.String(), `"component":"mailer"`)
	assert.Contains(t, buf.String(), `"to":"a@b.test"`)
}
