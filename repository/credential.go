package repository

import "context"

// CredentialProvider acquires a short-lived per-identity write credential.
//
// A credential is acquired only when a write is actually needed, used within
// that identity's processing, and never cached across identities or runs.
// Denial surfaces as domain.ErrAccessDenied.
type CredentialProvider interface {
	AcquireWriteCredential(ctx context.Context, email string) (string, error)
}
