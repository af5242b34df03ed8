package templatestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsig/sigsync/domain"
	"github.com/mailsig/sigsync/repository"
)

type fakeCache struct {
	entries map[string]string
	err     error
	sets    int
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if value, ok := c.entries[key]; ok {
		return value, nil
	}
	return "", repository.ErrCacheMiss
}

func (c *fakeCache) Set(ctx context.Context, key, value string) error {
	c.sets++
	if c.entries == nil {
		c.entries = make(map[string]string)
	}
	c.entries[key] = value
	return nil
}

func TestResolveBuiltin(t *testing.T) {
	store := New(Config{}, nil, nil)

	text, err := store.Resolve(context.Background(), "default")
	require.NoError(t, err)
	assert.Contains(t, text, "[FULL_NAME]")

	text, err = store.Resolve(context.Background(), "plain")
	require.NoError(t, err)
	assert.Contains(t, text, "[EMAIL]")
}

func TestResolveUserFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corporate.html"), []byte("<p>[FULL_NAME]</p>"), 0o644))

	store := New(Config{Dir: dir}, nil, nil)
	text, err := store.Resolve(context.Background(), "corporate")
	require.NoError(t, err)
	assert.Equal(t, "<p>[FULL_NAME]</p>", text)
}

func TestResolveCacheHitSkipsFetch(t *testing.T) {
	cache := &fakeCache{entries: map[string]string{"remote-tpl": "<p>cached</p>"}}
	// the remote URL points nowhere; a cache hit must short-circuit the fetch
	store := New(Config{RemoteURL: "http://127.0.0.1:1"}, cache, nil)

	text, err := store.Resolve(context.Background(), "remote-tpl")
	require.NoError(t, err)
	assert.Equal(t, "<p>cached</p>", text)
}

func TestResolveMissReturnsTemplateNotFound(t *testing.T) {
	store := New(Config{Dir: t.TempDir()}, nil, nil)

	_, err := store.Resolve(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTemplateNotFound))
}

func TestResolveDegradedCacheIsNotFatal(t *testing.T) {
	cache := &fakeCache{err: errors.New("redis gone")}
	store := New(Config{RemoteURL: "http://127.0.0.1:1", Timeout: 100 * time.Millisecond}, cache, nil)

	// a broken cache falls through to the fetch; with the remote also down
	// the resolution ends in a plain miss rather than a cache error
	_, err := store.Resolve(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}
