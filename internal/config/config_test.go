package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("POLICY_STRICT_REFERRAL_TRANSITIONS", "")
	t.Setenv("POSTGRES_CONNECT_ATTEMPTS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "UTC", cfg.App.Timezone)
	assert.Equal(t, time.UTC, cfg.App.Location)
	assert.False(t, cfg.Policy.StrictReferralTransitions)
	assert.Equal(t, "diaspora:events", cfg.Redis.EventStream)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 5, cfg.Postgres.ConnectAttempts)
}

func TestLoadTimezoneAndPolicies(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Africa/Addis_Ababa")
	t.Setenv("POLICY_STRICT_REFERRAL_TRANSITIONS", "true")
	t.Setenv("POLICY_FORWARD_ONLY_STAGES", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Africa/Addis_Ababa", cfg.App.Location.String())
	assert.True(t, cfg.Policy.StrictReferralTransitions)
	assert.True(t, cfg.Policy.ForwardOnlyStages)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	assert.Error(t, err)
}
