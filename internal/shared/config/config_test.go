package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "betslip-service")

	cfg := Load()
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "8084", cfg.HTTPPort)
	assert.Equal(t, "9100", cfg.MetricsPort)
	assert.Equal(t, 10.0, cfg.DefaultStake)
	assert.Equal(t, 7*24*time.Hour, cfg.SlipTTL)
	assert.Equal(t, "redis", cfg.KVBackend)
	assert.True(t, cfg.OddsDriftCheck)
	assert.Equal(t, "slip_placed", cfg.TopicSlipPlaced)
	assert.Equal(t, "betslip_updates", cfg.RedisPubSubChannel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "placement-worker")
	t.Setenv("BETSLIP_DEFAULT_STAKE", "25.5")
	t.Setenv("BETSLIP_TTL", "1h")
	t.Setenv("KV_BACKEND", "postgres")
	t.Setenv("ODDS_DRIFT_CHECK", "false")
	t.Setenv("METRICS_PORT_PLACEMENT", "9999")

	cfg := Load()
	assert.Equal(t, 25.5, cfg.DefaultStake)
	assert.Equal(t, time.Hour, cfg.SlipTTL)
	assert.Equal(t, "postgres", cfg.KVBackend)
	assert.False(t, cfg.OddsDriftCheck)
	assert.Equal(t, "", cfg.HTTPPort)
	assert.Equal(t, "9999", cfg.MetricsPort)
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("BETSLIP_DEFAULT_STAKE", "-3")
	t.Setenv("BETSLIP_TTL", "forever")
	t.Setenv("ODDS_DRIFT_CHECK", "maybe")

	cfg := Load()
	assert.Equal(t, 10.0, cfg.DefaultStake)
	assert.Equal(t, 7*24*time.Hour, cfg.SlipTTL)
	assert.True(t, cfg.OddsDriftCheck)
}
