package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsig/sigsync/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Sync.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.Sync.BatchDelay)
	assert.Equal(t, 3, cfg.Sync.RetryAttempts)
	assert.Equal(t, "postgres", cfg.History.Backend)
	assert.Zero(t, cfg.History.Retention)
	assert.Equal(t, "default", cfg.Template.ID)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SYNC_DOMAIN", "example.com")
	t.Setenv("SYNC_BATCH_SIZE", "25")
	t.Setenv("SYNC_BATCH_DELAY", "500ms")
	t.Setenv("SYNC_RETRY_DELAY", "7")
	t.Setenv("FILTER_EXCLUDED_USERS", "a@example.com, b@example.com,")
	t.Setenv("FILTER_INCLUDE_SUSPENDED", "true")
	t.Setenv("HISTORY_RETENTION", "720h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "example.com", cfg.Sync.Domain)
	assert.Equal(t, 25, cfg.Sync.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.BatchDelay)
	// bare integers parse as seconds
	assert.Equal(t, 7*time.Second, cfg.Sync.RetryDelay)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Filter.ExcludedUsers)
	assert.True(t, cfg.Filter.IncludeSuspended)
	assert.Equal(t, 720*time.Hour, cfg.History.Retention)
}

func TestSyncConfigValidate(t *testing.T) {
	valid := SyncConfig{Domain: "example.com", BatchSize: 10}
	require.NoError(t, valid.Validate())

	missingDomain := SyncConfig{BatchSize: 10}
	assert.ErrorIs(t, missingDomain.Validate(), domain.ErrMissingDomain)

	badBatch := SyncConfig{Domain: "example.com"}
	assert.ErrorIs(t, badBatch.Validate(), domain.ErrInvalidBatchSize)
}

func TestFilterConfigRules(t *testing.T) {
	cfg := FilterConfig{
		IncludedUsers:    []string{"A@Example.com"},
		ExcludedOrgUnits: []string{"/Test"},
	}
	rules := cfg.Rules("Example.COM")

	assert.Equal(t, "example.com", rules.Domain)
	assert.True(t, rules.IncludesUser("a@example.com"))
	assert.True(t, rules.ExcludesOrgUnit("/Test/Interns"))
}
