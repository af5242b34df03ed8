package repository

import (
	"context"
	"errors"
)

// ErrCacheMiss signals that a template cache has no entry for the key.
var ErrCacheMiss = errors.New("template cache miss")

// TemplateStore resolves a template identifier to its HTML text. Resolution
// fails with domain.ErrTemplateNotFound when neither a built-in, a cached,
// nor an externally stored template matches.
type TemplateStore interface {
	Resolve(ctx context.Context, templateID string) (string, error)
}

// TemplateCache stores fetched remote templates. A miss is reported as
// ErrCacheMiss; cache failures are never fatal to resolution.
type TemplateCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
