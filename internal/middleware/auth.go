package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// BearerAuth guards the admin API with a static bearer token. When no token
// is configured the API stays open, which is the expected setup for a
// localhost-only serve mode.
func BearerAuth(token string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if token == "" {
				next(ctx)
				return
			}

			presented := extractToken(ctx)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				logger.Warn("admin api token rejected", zap.String("path", string(ctx.Path())))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
