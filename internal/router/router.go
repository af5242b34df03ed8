package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/mailsig/sigsync/api/handler"
)

type Handlers struct {
	Health *apiHandler.HealthHandler
	Runs   *apiHandler.RunsHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Admin routes
	r.GET("/api/v1/runs", authMiddleware(handlers.Runs.List))
	r.GET("/api/v1/runs/{id}", authMiddleware(handlers.Runs.Get))
	r.POST("/api/v1/runs", authMiddleware(handlers.Runs.Trigger))

	return r
}
