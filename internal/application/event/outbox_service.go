// Package event exposes event delivery administration: tenant admins can see
// how many lifecycle events are queued or dead and put dead ones back in the
// queue once the failing handler is fixed.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/workforce/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const requeueBatchSize = 100

// OutboxService handles dead letter inspection and requeueing
type OutboxService struct {
	repo   shared.DeadLetterRepository
	logger *zap.Logger
}

// NewOutboxService creates a new outbox service
func NewOutboxService(repo shared.DeadLetterRepository, logger *zap.Logger) *OutboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxService{
		repo:   repo,
		logger: logger,
	}
}

// OutboxEntryResponse is an outbox entry without its payload
type OutboxEntryResponse struct {
	ID            string     `json:"id"`
	EventID       string     `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   string     `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ListDeadRequest pages through dead entries
type ListDeadRequest struct {
	Page     int `form:"page" binding:"min=1"`
	PageSize int `form:"page_size" binding:"min=1,max=100"`
}

// ListDeadResponse is a page of dead entries
type ListDeadResponse struct {
	Items []OutboxEntryResponse `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Size  int                   `json:"size"`
}

// OutboxStatsResponse counts a tenant's outbox entries per status
type OutboxStatsResponse struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// RequeueAllResponse reports how many dead entries went back to the queue
type RequeueAllResponse struct {
	Requeued int64 `json:"requeued"`
}

// ListDead returns the tenant's dead entries, most recently failed first
func (s *OutboxService) ListDead(ctx context.Context, tenantID uuid.UUID, req ListDeadRequest) (*ListDeadResponse, error) {
	filter := shared.Filter{Page: req.Page, PageSize: req.PageSize}.Normalized()

	entries, total, err := s.repo.FindDeadForTenant(ctx, tenantID, filter.Page, filter.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list dead events: %w", err)
	}

	items := make([]OutboxEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = toEntryResponse(e)
	}
	return &ListDeadResponse{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Size:  filter.PageSize,
	}, nil
}

// Requeue puts one dead entry back in the delivery queue
func (s *OutboxService) Requeue(ctx context.Context, tenantID, id uuid.UUID) (*OutboxEntryResponse, error) {
	entry, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := entry.Requeue(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to requeue event: %w", err)
	}

	s.logger.Info("dead event requeued",
		zap.String("tenant_id", tenantID.String()),
		zap.String("outbox_id", id.String()),
		zap.String("event_type", entry.EventType),
	)
	resp := toEntryResponse(entry)
	return &resp, nil
}

// RequeueAll puts every dead entry of the tenant back in the queue. Requeued
// entries leave the dead set, so the first page is read until it is empty.
func (s *OutboxService) RequeueAll(ctx context.Context, tenantID uuid.UUID) (*RequeueAllResponse, error) {
	var count int64
	for {
		entries, _, err := s.repo.FindDeadForTenant(ctx, tenantID, 1, requeueBatchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list dead events: %w", err)
		}
		for _, entry := range entries {
			if err := entry.Requeue(); err != nil {
				return nil, err
			}
			if err := s.repo.Update(ctx, entry); err != nil {
				return nil, fmt.Errorf("failed to requeue event %s: %w", entry.ID, err)
			}
			count++
		}
		if len(entries) < requeueBatchSize {
			break
		}
	}

	s.logger.Info("dead events requeued",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("count", count),
	)
	return &RequeueAllResponse{Requeued: count}, nil
}

// Stats counts the tenant's entries per delivery status
func (s *OutboxService) Stats(ctx context.Context, tenantID uuid.UUID) (*OutboxStatsResponse, error) {
	counts, err := s.repo.CountByStatusForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	stats := &OutboxStatsResponse{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func toEntryResponse(e *shared.OutboxEntry) OutboxEntryResponse {
	return OutboxEntryResponse{
		ID:            e.ID.String(),
		EventID:       e.EventID.String(),
		EventType:     e.EventType,
		AggregateID:   e.AggregateID.String(),
		AggregateType: e.AggregateType,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
