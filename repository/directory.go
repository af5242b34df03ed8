package repository

import (
	"context"

	"github.com/mailsig/sigsync/domain"
)

// DirectoryProvider lists the identities of a domain.
//
// FetchUsers returns an empty slice (not an error) when the domain has no
// matching users, and domain.ErrDirectoryUnavailable on a non-success
// response. The returned identities are immutable and scoped to one run.
type DirectoryProvider interface {
	FetchUsers(ctx context.Context, dom string) ([]domain.Identity, error)
}
