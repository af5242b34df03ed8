package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/mailsig/sigsync/domain"
	"github.com/mailsig/sigsync/repository"
)

type mailboxClient struct {
	client *fasthttp.Client
	cfg    Config
	logger *zap.Logger
}

// NewMailboxClient creates a mailbox-settings provider backed by the mail
// REST API. Reads use the service token; writes use the per-identity
// credential supplied by the pipeline.
func NewMailboxClient(cfg Config, logger *zap.Logger) repository.MailboxProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &mailboxClient{
		client: newClient("sigsync-mailbox"),
		cfg:    cfg,
		logger: logger,
	}
}

type signaturePayload struct {
	Signature string `json:"signature"`
}

func (c *mailboxClient) ReadSignature(ctx context.Context, email string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	status, body, err := do(c.client, fasthttp.MethodGet, c.signatureURL(email), c.cfg.Token, nil, c.cfg.timeout())
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeTransientWrite, "signature read failed", err)
	}
	// a mailbox with no signature configured reads as empty, not as an error
	if status == fasthttp.StatusNotFound {
		return "", nil
	}
	if !isSuccess(status) {
		return "", classifyStatus(status, "signature read")
	}

	var payload signaturePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", domain.WrapError(domain.ErrCodePermanentWrite, "signature response malformed", err)
	}
	return payload.Signature, nil
}

func (c *mailboxClient) WriteSignature(ctx context.Context, email, signature, credential string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(signaturePayload{Signature: signature})
	if err != nil {
		return domain.WrapError(domain.ErrCodePermanentWrite, "signature payload marshal failed", err)
	}

	status, _, err := do(c.client, fasthttp.MethodPut, c.signatureURL(email), credential, body, c.cfg.timeout())
	if err != nil {
		return domain.WrapError(domain.ErrCodeTransientWrite, "signature write failed", err)
	}
	if !isSuccess(status) {
		return classifyStatus(status, "signature write")
	}

	c.logger.Debug("signature written", zap.String("email", email))
	return nil
}

func (c *mailboxClient) signatureURL(email string) string {
	return fmt.Sprintf("%s/mail/v1/users/%s/settings/signature", c.cfg.BaseURL, url.PathEscape(email))
}

// classifyStatus maps a non-success response to the domain taxonomy:
// rate limiting and 5xx are retryable, credential rejections are access
// denials, and the remaining 4xx-class responses fail permanently.
func classifyStatus(status int, op string) error {
	msg := fmt.Sprintf("%s rejected with status %d", op, status)
	switch {
	case status == fasthttp.StatusTooManyRequests || status >= 500:
		return domain.WrapError(domain.ErrCodeTransientWrite, msg, nil)
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		return domain.WrapError(domain.ErrCodeAccessDenied, msg, domain.ErrAccessDenied)
	default:
		return domain.WrapError(domain.ErrCodePermanentWrite, msg, nil)
	}
}
