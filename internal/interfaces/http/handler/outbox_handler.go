package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	eventapp "github.com/workforce/backend/internal/application/event"
	"github.com/workforce/backend/internal/domain/shared"
)

// OutboxUseCases is the dead letter administration surface
type OutboxUseCases interface {
	ListDead(ctx context.Context, tenantID uuid.UUID, req eventapp.ListDeadRequest) (*eventapp.ListDeadResponse, error)
	Requeue(ctx context.Context, tenantID, id uuid.UUID) (*eventapp.OutboxEntryResponse, error)
	RequeueAll(ctx context.Context, tenantID uuid.UUID) (*eventapp.RequeueAllResponse, error)
	Stats(ctx context.Context, tenantID uuid.UUID) (*eventapp.OutboxStatsResponse, error)
}

// OutboxHandler exposes lifecycle event delivery state to tenant admins
type OutboxHandler struct {
	BaseHandler
	outbox OutboxUseCases
}

// NewOutboxHandler creates a new OutboxHandler
func NewOutboxHandler(outbox OutboxUseCases) *OutboxHandler {
	return &OutboxHandler{outbox: outbox}
}

// Stats godoc
// @ID           getEventStats
// @Summary      Count lifecycle events per delivery status
// @Tags         form-events
// @Produce      json
// @Success      200 {object} APIResponse[eventapp.OutboxStatsResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/admin/events/stats [get]
func (h *OutboxHandler) Stats(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	stats, err := h.outbox.Stats(c.Request.Context(), id.TenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ListDead godoc
// @ID           listDeadEvents
// @Summary      List events that exhausted their retries
// @Tags         form-events
// @Produce      json
// @Param        page      query    int false "Page number" minimum(1) default(1)
// @Param        page_size query    int false "Page size" minimum(1) maximum(100) default(20)
// @Success      200       {object} APIResponse[[]eventapp.OutboxEntryResponse]
// @Failure      400       {object} ErrorResponse
// @Failure      401       {object} ErrorResponse
// @Failure      403       {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/admin/events/dead [get]
func (h *OutboxHandler) ListDead(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	req := eventapp.ListDeadRequest{Page: 1, PageSize: shared.DefaultPageSize}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.outbox.ListDead(c.Request.Context(), id.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.Size)
}

// Requeue godoc
// @ID           requeueDeadEvent
// @Summary      Put a dead event back in the delivery queue
// @Tags         form-events
// @Produce      json
// @Param        id  path     string true "Outbox entry ID" format(uuid)
// @Success      200 {object} APIResponse[eventapp.OutboxEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/admin/events/{id}/requeue [post]
func (h *OutboxHandler) Requeue(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	entryID, ok := h.pathID(c, "event")
	if !ok {
		return
	}

	entry, err := h.outbox.Requeue(c.Request.Context(), id.TenantID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RequeueAll godoc
// @ID           requeueAllDeadEvents
// @Summary      Put every dead event back in the delivery queue
// @Tags         form-events
// @Produce      json
// @Success      200 {object} APIResponse[eventapp.RequeueAllResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/admin/events/requeue [post]
func (h *OutboxHandler) RequeueAll(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	result, err := h.outbox.RequeueAll(c.Request.Context(), id.TenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
