// Package templatestore resolves template identifiers through a chain of
// sources: built-in templates, the user template directory, and finally a
// remote fetch cached through an injected template cache.
package templatestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/mailsig/sigsync/domain"
	"github.com/mailsig/sigsync/repository"
)

// builtins ship with the binary so a bare installation can sync immediately.
var builtins = map[string]string{
	"default": `<table style="font-family: [PRIMARY_FONT]; color: [ACCENT_COLOR]">
  <tr>
    <td><img src="[LOGO_URL]" alt="[COMPANY]" width="72"></td>
    <td>
      <p><strong>[FULL_NAME]</strong><br>[JOB_TITLE]</p>
      <p>[COMPANY] &middot; <a href="[WEBSITE]">[WEBSITE]</a><br>
      <a href="mailto:[EMAIL]">[EMAIL]</a> &middot; [PHONE]</p>
    </td>
  </tr>
</table>`,
	"plain": `<p>[FULL_NAME] | [JOB_TITLE] | [COMPANY]<br>[EMAIL] | [PHONE]</p>`,
}

// Config controls the non-builtin resolution sources.
type Config struct {
	Dir       string
	RemoteURL string
	Timeout   time.Duration
}

type Store struct {
	cfg    Config
	cache  repository.TemplateCache
	client *fasthttp.Client
	logger *zap.Logger
}

// New builds the chained template store. cache may be nil, in which case
// remote templates are fetched on every resolution.
func New(cfg Config, cache repository.TemplateCache, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		cfg:    cfg,
		cache:  cache,
		client: &fasthttp.Client{Name: "sigsync-template"},
		logger: logger,
	}
}

// Resolve walks the source chain and returns the first match. A miss across
// the whole chain is domain.ErrTemplateNotFound.
func (s *Store) Resolve(ctx context.Context, templateID string) (string, error) {
	if text, ok := builtins[templateID]; ok {
		return text, nil
	}

	if text, err := s.resolveFile(templateID); err == nil {
		return text, nil
	}

	if s.cfg.RemoteURL != "" {
		if text, err := s.resolveRemote(ctx, templateID); err == nil {
			return text, nil
		} else {
			s.logger.Debug("remote template resolution failed",
				zap.String("template_id", templateID), zap.Error(err))
		}
	}

	return "", domain.WrapError(
		domain.ErrCodeTemplateNotFound,
		fmt.Sprintf("template %q matched no built-in, file or remote source", templateID),
		domain.ErrTemplateNotFound,
	)
}

func (s *Store) resolveFile(templateID string) (string, error) {
	if s.cfg.Dir == "" {
		return "", os.ErrNotExist
	}
	path := filepath.Join(s.cfg.Dir, templateID+".html")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Store) resolveRemote(ctx context.Context, templateID string) (string, error) {
	if s.cache != nil {
		if text, err := s.cache.Get(ctx, templateID); err == nil {
			return text, nil
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			// degraded cache: fall through to a direct fetch
			s.logger.Warn("template cache unavailable", zap.Error(err))
		}
	}

	text, err := s.fetch(templateID)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, templateID, text); err != nil {
			s.logger.Warn("template cache write failed", zap.Error(err))
		}
	}
	return text, nil
}

func (s *Store) fetch(templateID string) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(fmt.Sprintf("%s/%s.html", s.cfg.RemoteURL, templateID))

	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if err := s.client.DoTimeout(req, resp, timeout); err != nil {
		return "", err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("remote template responded with status %d", resp.StatusCode())
	}
	return string(resp.Body()), nil
}
