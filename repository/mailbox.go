package repository

import "context"

// MailboxProvider reads and writes an identity's signature in its mailbox
// settings. Write errors are classified retryable (rate limiting, 5xx-class
// responses, network failures) or permanent (other 4xx-class responses) via
// the domain error codes.
type MailboxProvider interface {
	ReadSignature(ctx context.Context, email string) (string, error)
	WriteSignature(ctx context.Context, email, signature, credential string) error
}
