package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	userID  uuid.UUID
	partner string
	text    string
}

type fakePusher struct {
	mu       sync.Mutex
	matches  []sent
	messages []sent
}

func (f *fakePusher) SendMatchNotification(_ context.Context, userID uuid.UUID, partnerName string, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = append(f.matches, sent{userID: userID, partner: partnerName})
	return nil
}

func (f *fakePusher) SendMessageNotification(_ context.Context, receiverID uuid.UUID, senderName, text string, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sent{userID: receiverID, partner: senderName, text: text})
	return nil
}

func (f *fakePusher) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matches), len(f.messages)
}

type fakeMailer struct {
	mu sync.Mutex
	to []string
}

func (f *fakeMailer) SendMatch(toEmail, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, toEmail)
	return nil
}

type onlineSet map[uuid.UUID]bool

func (s onlineSet) IsOnline(_ context.Context, userID uuid.UUID) (bool, error) {
	return s[userID], nil
}

func runDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx, 2)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestDispatcher_MatchNotifiesBothSides(t *testing.T) {
	push := &fakePusher{}
	mail := &fakeMailer{}
	d := New(push, mail, nil, 8)
	runDispatcher(t, d)

	a := &model.User{ID: uuid.New(), Name: "Alice", Email: "alice@spark.test"}
	b := &model.User{ID: uuid.New(), Name: "Bob", Email: "bob@spark.test"}
	d.NotifyMatch(&model.Match{ID: uuid.New()}, a, b)

	require.Eventually(t, func() bool {
		n, _ := push.counts()
		return n == 2
	}, time.Second, 5*time.Millisecond)

	push.mu.Lock()
	assert.ElementsMatch(t, []sent{{userID: a.ID, partner: "Bob"}, {userID: b.ID, partner: "Alice"}}, push.matches)
	push.mu.Unlock()

	require.Eventually(t, func() bool {
		mail.mu.Lock()
		defer mail.mu.Unlock()
		return len(mail.to) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestDispatcher_MessageSkipsOnlineRecipients(t *testing.T) {
	push := &fakePusher{}
	online, offline := uuid.New(), uuid.New()
	d := New(push, nil, onlineSet{online: true}, 8)
	runDispatcher(t, d)

	msg := &model.Message{MatchID: uuid.New(), Text: strings.Repeat("x", 150)}
	d.NotifyMessage(msg, online, "Alice")
	d.NotifyMessage(msg, offline, "Alice")

	require.Eventually(t, func() bool {
		_, n := push.counts()
		return n == 1
	}, time.Second, 5*time.Millisecond)

	push.mu.Lock()
	defer push.mu.Unlock()
	assert.Equal(t, offline, push.messages[0].userID)
	assert.Equal(t, previewLength+1, len([]rune(push.messages[0].text)))
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	push := &fakePusher{}
	d := New(push, nil, nil, 1)

	// nothing consumes yet, so the second job is dropped
	msg := &model.Message{MatchID: uuid.New(), Text: "hi"}
	d.NotifyMessage(msg, uuid.New(), "Alice")
	d.NotifyMessage(msg, uuid.New(), "Alice")
	assert.Len(t, d.jobs, 1)

	runDispatcher(t, d)
	require.Eventually(t, func() bool {
		_, n := push.counts()
		return n == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDispatcher_NilBackends(t *testing.T) {
	d := New(nil, nil, nil, 0)
	assert.Equal(t, DefaultQueueSize, cap(d.jobs))

	a := &model.User{ID: uuid.New()}
	b := &model.User{ID: uuid.New()}
	d.handle(context.Background(), Job{kind: kindMatch, UserID: a.ID})
	d.handle(context.Background(), Job{kind: kindMessage, UserID: b.ID})
}
