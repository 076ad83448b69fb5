package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, int64(100), cfg.RateLimit.Swipe.Max)
	assert.Equal(t, 24*time.Hour, cfg.RateLimit.Swipe.Window)
	assert.Equal(t, int64(30), cfg.RateLimit.Message.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Message.Window)
	assert.Equal(t, int64(5), cfg.RateLimit.Report.Max)
	assert.Equal(t, 5*time.Minute, cfg.Presence.TTL)
	assert.Equal(t, time.Minute, cfg.Presence.Sweep)
	assert.Equal(t, 30, cfg.Browse.Limit)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("RATE_LIMIT_SWIPE_MAX", "3")
	t.Setenv("RATE_LIMIT_SWIPE_WINDOW", "10s")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("REDIS_HOST", "cache")

	cfg := Load()

	assert.Equal(t, int64(3), cfg.RateLimit.Swipe.Max)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Swipe.Window)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.Origins)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
}

func TestDBConfig_DSN(t *testing.T) {
	pg := DBConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", pg.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", pg.URL())

	lite := DBConfig{Driver: "sqlite", Path: "/tmp/x.db"}
	assert.Equal(t, "/tmp/x.db", lite.DSN())
}
