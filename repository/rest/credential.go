package rest

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/mailsig/sigsync/domain"
	"github.com/mailsig/sigsync/repository"
)

const jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// CredentialConfig describes the service account used to impersonate
// identities for mailbox writes.
type CredentialConfig struct {
	Issuer         string
	PrivateKeyPath string
	TokenURL       string
	Scope          string
	Timeout        time.Duration
}

type credentialClient struct {
	client   *fasthttp.Client
	cfg      CredentialConfig
	key      *rsa.PrivateKey
	logger   *zap.Logger
	tokenTTL time.Duration
}

// NewCredentialClient loads the service-account signing key and returns a
// credential provider. Each acquisition signs a fresh assertion with the
// identity as subject and exchanges it at the token endpoint; tokens are
// never cached across identities or runs.
func NewCredentialClient(cfg CredentialConfig, logger *zap.Logger) (repository.CredentialProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pem, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeConfiguration, "service account key unreadable", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeConfiguration, "service account key malformed", err)
	}

	return &credentialClient{
		client:   newClient("sigsync-credential"),
		cfg:      cfg,
		key:      key,
		logger:   logger,
		tokenTTL: time.Hour,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (c *credentialClient) AcquireWriteCredential(ctx context.Context, email string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	assertion, err := c.signAssertion(email)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeAccessDenied, "assertion signing failed", err)
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.cfg.TokenURL)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString(form.Encode())

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if err := c.client.DoTimeout(req, resp, timeout); err != nil {
		return "", domain.WrapError(domain.ErrCodeAccessDenied, "token exchange failed", err)
	}
	if !isSuccess(resp.StatusCode()) {
		return "", domain.WrapError(
			domain.ErrCodeAccessDenied,
			fmt.Sprintf("token endpoint rejected %s with status %d", email, resp.StatusCode()),
			domain.ErrAccessDenied,
		)
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return "", domain.WrapError(domain.ErrCodeAccessDenied, "token response malformed", err)
	}
	if token.AccessToken == "" {
		return "", domain.WrapError(domain.ErrCodeAccessDenied, "token response empty", domain.ErrAccessDenied)
	}

	c.logger.Debug("write credential acquired", zap.String("email", email))
	return token.AccessToken, nil
}

func (c *credentialClient) signAssertion(email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   c.cfg.Issuer,
		"sub":   email,
		"aud":   c.cfg.TokenURL,
		"scope": c.cfg.Scope,
		"iat":   now.Unix(),
		"exp":   now.Add(c.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.key)
}
