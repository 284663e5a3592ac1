package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus represents the delivery state of an outbox entry
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

// Retry defaults for outbox delivery
const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
	MaxBackoff         = 5 * time.Minute
)

var errOutboxNotClaimable = errors.New("outbox entry is not pending or failed")

// OutboxEntry is a serialized domain event awaiting delivery to the event bus
type OutboxEntry struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOutboxEntry wraps an event and its serialized payload
func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		TenantID:      event.TenantID(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// RetryBackoff returns the wait before attempt n+1, doubling from DefaultBaseBackoff
func RetryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		return DefaultBaseBackoff
	}
	backoff := DefaultBaseBackoff << uint(attempt-1)
	if backoff <= 0 || backoff > MaxBackoff {
		return MaxBackoff
	}
	return backoff
}

// CanRetry reports whether a failed entry still has attempts left
func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

// MarkProcessing claims the entry for delivery
func (e *OutboxEntry) MarkProcessing() error {
	if e.Status != OutboxStatusPending && e.Status != OutboxStatusFailed {
		return errOutboxNotClaimable
	}
	e.Status = OutboxStatusProcessing
	e.UpdatedAt = time.Now()
	return nil
}

// MarkSent records successful delivery
func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.Status = OutboxStatusSent
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// MarkFailed records a delivery failure and schedules the next attempt.
// Once MaxRetries is reached the entry is dead and will not be picked up again.
func (e *OutboxEntry) MarkFailed(errMsg string) {
	now := time.Now()
	e.RetryCount++
	e.LastError = errMsg
	e.UpdatedAt = now

	if e.RetryCount >= e.MaxRetries {
		e.Status = OutboxStatusDead
		e.NextRetryAt = nil
		return
	}
	e.Status = OutboxStatusFailed
	next := now.Add(RetryBackoff(e.RetryCount))
	e.NextRetryAt = &next
}

// IsDead reports whether the entry exhausted its retries
func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

// Requeue returns a dead entry to the delivery queue with a fresh retry budget.
// The last error is kept for reference until the next attempt.
func (e *OutboxEntry) Requeue() error {
	if e.Status != OutboxStatusDead {
		return NewDomainError(CodeInvalidState, "Only dead events can be requeued")
	}
	e.Status = OutboxStatusPending
	e.RetryCount = 0
	e.NextRetryAt = nil
	e.UpdatedAt = time.Now()
	return nil
}

// OutboxRepository persists outbox entries
type OutboxRepository interface {
	// Save persists one or more outbox entries
	Save(ctx context.Context, entries ...*OutboxEntry) error
	// FindPending retrieves pending entries, oldest first
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	// FindRetryable retrieves failed entries whose retry time has passed
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	// MarkProcessing claims entries and returns the ones that were claimed
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)
	// Update writes back delivery state
	Update(ctx context.Context, entry *OutboxEntry) error
	// DeleteSentBefore removes delivered entries older than the cutoff
	DeleteSentBefore(ctx context.Context, before time.Time) (int64, error)
	// CountByStatus returns entry counts per status
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
}

// DeadLetterRepository is the tenant scoped view of the outbox used to
// inspect and requeue events that exhausted their retries
type DeadLetterRepository interface {
	// FindDeadForTenant pages through dead entries, newest first
	FindDeadForTenant(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]*OutboxEntry, int64, error)
	// FindByIDForTenant returns ErrNotFound when the entry is missing or belongs to another tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*OutboxEntry, error)
	// CountByStatusForTenant returns the tenant's entry counts per status
	CountByStatusForTenant(ctx context.Context, tenantID uuid.UUID) (map[OutboxStatus]int64, error)
	// Update writes back delivery state
	Update(ctx context.Context, entry *OutboxEntry) error
}
