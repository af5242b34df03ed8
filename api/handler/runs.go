package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/mailsig/sigsync/api/transport"
	"github.com/mailsig/sigsync/domain"
	"github.com/mailsig/sigsync/pkg/httpcontext"
	"github.com/mailsig/sigsync/repository"
	syncUC "github.com/mailsig/sigsync/usecase/sync"
)

type RunsHandler struct {
	baseHandler
	service *syncUC.Service
	history repository.RunHistoryRepository
	limit   int
}

func NewRunsHandler(service *syncUC.Service, history repository.RunHistoryRepository, limit int, adapter *httpcontext.Adapter, logger *zap.Logger) *RunsHandler {
	if limit <= 0 {
		limit = 20
	}
	return &RunsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		service:     service,
		history:     history,
		limit:       limit,
	}
}

// List returns the most recent run reports.
func (h *RunsHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	reports, err := h.history.List(stdCtx, h.limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, reports)
}

// Get returns one run report by ID.
func (h *RunsHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, _ := ctx.UserValue("id").(string)
	report, err := h.history.GetByID(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}

// Trigger starts a synchronization run and responds with its report. Run
// duration is bounded by the request context, so manual triggers of large
// domains should use the CLI instead.
func (h *RunsHandler) Trigger(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.RunTriggerRequest
	if len(ctx.PostBody()) > 0 {
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			h.respondError(ctx, domain.ErrInvalidPayload)
			return
		}
	}

	report, err := h.service.Execute(stdCtx, syncUC.RunOptions{
		DryRun:        req.DryRun,
		TemplateID:    req.TemplateID,
		IncludedUsers: req.IncludedUsers,
	})
	if err != nil && report == nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}
