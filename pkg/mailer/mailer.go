package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"sort"

	"github.com/quocanhngo/spark/internal/logger"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Mailer handles sending emails
type Mailer struct {
	config Config
	// sendMail is smtp.SendMail outside of tests
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New creates a new Mailer instance
func New(cfg Config) *Mailer {
	return &Mailer{config: cfg, sendMail: smtp.SendMail}
}

// SendMatch tells a user that someone liked them back
func (m *Mailer) SendMatch(toEmail, name, partnerName string) error {
	subject := "Spark - It's a match!"

	body, err := render(matchTemplate, map[string]interface{}{
		"Name":        name,
		"PartnerName": partnerName,
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return m.send(toEmail, subject, body)
}

// send delivers an email via SMTP
func (m *Mailer) send(to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", m.config.FromName, m.config.From),
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=\"utf-8\"",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msg bytes.Buffer
	for _, k := range keys {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, headers[k]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if m.config.Username != "" && m.config.Password != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	if err := m.sendMail(addr, auth, m.config.From, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Debug("email sent", "to", to, "subject", subject)
	return nil
}

func render(tmpl *template.Template, data map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var matchTemplate = template.Must(template.New("match").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#1a0f1f;font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;">
    <div style="max-width:500px;margin:40px auto;background:#2a1730;border-radius:16px;overflow:hidden;border:1px solid rgba(236,72,153,0.25);">
        <div style="background:linear-gradient(135deg,#ec4899 0%,#f97316 100%);padding:32px;text-align:center;">
            <h1 style="color:#fff;margin:0;font-size:28px;font-weight:700;">Spark</h1>
            <p style="color:rgba(255,255,255,0.85);margin:8px 0 0;font-size:14px;">New match</p>
        </div>

        <div style="padding:32px;">
            <p style="color:#f5e9f2;font-size:16px;line-height:1.6;margin:0 0 24px;">
                Hi <strong style="color:#f9a8d4;">{{.Name}}</strong>,
            </p>
            <p style="color:#cbb6c6;font-size:14px;line-height:1.6;margin:0 0 24px;">
                You and <strong style="color:#fdba74;">{{.PartnerName}}</strong> liked each other. Open Spark and say hello.
            </p>
        </div>

        <div style="padding:16px 32px;border-top:1px solid rgba(236,72,153,0.15);text-align:center;">
            <p style="color:#7c6477;font-size:12px;margin:0;">You receive this email because match notifications are on.</p>
        </div>
    </div>
</body>
</html>`))
