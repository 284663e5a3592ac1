package form

import (
	"context"
	"fmt"

	"github.com/workforce/backend/internal/domain/form"
	"github.com/workforce/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StatusHistoryHandler appends a history entry for every submission status change
type StatusHistoryHandler struct {
	historyRepo form.StatusHistoryRepository
	logger      *zap.Logger
}

// NewStatusHistoryHandler creates a new StatusHistoryHandler
func NewStatusHistoryHandler(historyRepo form.StatusHistoryRepository, logger *zap.Logger) *StatusHistoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusHistoryHandler{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// Name identifies the handler in idempotency keys
func (h *StatusHistoryHandler) Name() string {
	return "form-status-history"
}

// EventTypes returns the submission transition events
func (h *StatusHistoryHandler) EventTypes() []string {
	return form.SubmissionTransitionEventTypes()
}

// Handle records the transition carried by the event
func (h *StatusHistoryHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	evt, ok := event.(form.SubmissionTransitionEvent)
	if !ok {
		h.logger.Warn("unexpected event for status history",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()))
		return nil
	}

	entry := form.NewStatusHistoryEntry(evt)
	if err := h.historyRepo.Append(ctx, &entry); err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}

	h.logger.Debug("status history appended",
		zap.String("submission_id", entry.SubmissionID.String()),
		zap.String("from", entry.FromStatus.String()),
		zap.String("to", entry.ToStatus.String()))
	return nil
}

var _ shared.EventHandler = (*StatusHistoryHandler)(nil)
