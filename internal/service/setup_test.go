package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/clock"
	"github.com/quocanhngo/spark/internal/config"
	"github.com/quocanhngo/spark/internal/database"
	"github.com/quocanhngo/spark/internal/geo"
	"github.com/quocanhngo/spark/internal/messenger"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/ratelimit"
	"github.com/quocanhngo/spark/internal/repository"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var epoch = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

const (
	moscowLat = 55.75
	moscowLon = 37.61
)

type published struct {
	topic string
	event *model.WSEvent
}

type recordingTopic struct {
	mu     sync.Mutex
	events []published
}

func (r *recordingTopic) Publish(_ context.Context, topic string, event *model.WSEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{topic: topic, event: event})
	return nil
}

func (r *recordingTopic) ofType(eventType string) []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []published
	for _, p := range r.events {
		if p.event.Type == eventType {
			out = append(out, p)
		}
	}
	return out
}

type recordingNotifier struct {
	mu       sync.Mutex
	matches  []uuid.UUID
	messages []uuid.UUID
}

func (n *recordingNotifier) NotifyMatch(m *model.Match, _, _ *model.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matches = append(n.matches, m.ID)
}

func (n *recordingNotifier) NotifyMessage(msg *model.Message, _ uuid.UUID, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg.ID)
}

type testEnv struct {
	db       *gorm.DB
	clock    *clock.Fake
	topic    *recordingTopic
	notifier *recordingNotifier
	limiter  *ratelimit.Limiter

	users    *repository.UserRepository
	photos   *repository.PhotoRepository
	prefs    *repository.PreferenceRepository
	swipes   *repository.SwipeRepository
	matches  *repository.MatchRepository
	msgs     *repository.MessageRepository
	blocks   *repository.BlockRepository
	reports  *repository.ReportRepository
	accounts *repository.AccountRepository
}

// newTestEnv opens an isolated in-memory database. rules overrides the
// default rate-limit rules per kind.
func newTestEnv(t *testing.T, rules map[ratelimit.Kind]ratelimit.Rule) *testEnv {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection serializes writers; shared-cache sqlite rejects concurrent ones
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))

	clk := clock.NewFake(epoch)
	all := ratelimit.RulesFromConfig(config.Defaults().RateLimit)
	for kind, rule := range rules {
		all[kind] = rule
	}

	return &testEnv{
		db:       db,
		clock:    clk,
		topic:    &recordingTopic{},
		notifier: &recordingNotifier{},
		limiter:  ratelimit.New(ratelimit.NewMemoryStore(clk), clk, all),
		users:    repository.NewUserRepository(db),
		photos:   repository.NewPhotoRepository(db),
		prefs:    repository.NewPreferenceRepository(db),
		swipes:   repository.NewSwipeRepository(db),
		matches:  repository.NewMatchRepository(db),
		msgs:     repository.NewMessageRepository(db),
		blocks:   repository.NewBlockRepository(db),
		reports:  repository.NewReportRepository(db),
		accounts: repository.NewAccountRepository(db),
	}
}

func (e *testEnv) messenger() *messenger.Messenger {
	return messenger.New(e.topic)
}

func (e *testEnv) swipeService() *SwipeService {
	return NewSwipeService(e.users, e.swipes, e.matches, e.blocks, e.limiter, e.messenger(), e.notifier, e.clock)
}

func (e *testEnv) chatService() *ChatService {
	return NewChatService(e.matches, e.msgs, e.users, e.limiter, e.messenger(), e.notifier, e.clock)
}

func (e *testEnv) blockService() *BlockService {
	return NewBlockService(e.users, e.blocks, e.limiter)
}

func (e *testEnv) browseService() *BrowseService {
	return NewBrowseService(e.users, e.prefs, e.swipes, e.blocks, e.clock, 0)
}

func (e *testEnv) reportService() *ReportService {
	return NewReportService(e.reports, e.users, e.limiter, e.clock)
}

type userOption func(u *model.User)

func aged(years int) userOption {
	return func(u *model.User) {
		b := epoch.AddDate(-years, 0, -1)
		u.Birthdate = &b
	}
}

func gender(g model.Gender) userOption {
	return func(u *model.User) { u.Gender = g }
}

func interests(tags ...string) userOption {
	return func(u *model.User) { u.Interests = datatypes.JSONSlice[string](tags) }
}

// kmNorth places the user km kilometers due north of Moscow
func kmNorth(km float64) userOption {
	return func(u *model.User) {
		lat := moscowLat + km/(geo.EarthRadiusKm*math.Pi/180)
		lon := moscowLon
		u.Latitude, u.Longitude = &lat, &lon
	}
}

func noLocation() userOption {
	return func(u *model.User) { u.Latitude, u.Longitude = nil, nil }
}

func password(plain string) userOption {
	return func(u *model.User) {
		hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		u.Password = string(hash)
	}
}

func banned() userOption {
	return func(u *model.User) { u.IsBanned = true }
}

// newUser stores a browsable 25 year old woman in Moscow with one photo
func (e *testEnv) newUser(t *testing.T, name string, opts ...userOption) *model.User {
	t.Helper()
	ctx := context.Background()

	lat, lon := moscowLat, moscowLon
	b := epoch.AddDate(-25, 0, -1)
	u := &model.User{
		Name:      name,
		Email:     strings.ToLower(name) + "-" + uuid.NewString()[:8] + "@spark.test",
		Role:      model.RoleUser,
		Birthdate: &b,
		Gender:    model.GenderFemale,
		City:      "Moscow",
		Latitude:  &lat,
		Longitude: &lon,
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, e.users.Create(ctx, u))
	require.NoError(t, e.photos.Create(ctx, &model.Photo{UserID: u.ID, URL: "https://cdn.test/" + name + ".jpg"}))
	return u
}

func (e *testEnv) match(t *testing.T, a, b *model.User) *model.Match {
	t.Helper()
	m, _, err := e.matches.CreateOrGet(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	return m
}

func (e *testEnv) countMatches(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Match{}).Count(&n).Error)
	return n
}
