package form

import (
	"context"

	"github.com/google/uuid"
	"github.com/workforce/backend/internal/domain/shared"
)

// FormTemplateRepository defines the interface for form template persistence
type FormTemplateRepository interface {
	TemplateStore

	// FindByIDForTenant loads a template with its groupings, fields and options
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*FormTemplate, error)

	// FindAllForTenant lists templates without their groupings.
	// Filters: "category", "status".
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]FormTemplate, error)

	// CountForTenant counts templates matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByName checks if another template of the tenant uses the name
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)

	// Delete removes the template and everything it owns
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// FormSubmissionRepository defines the interface for submission persistence.
// Approvals are stored and loaded with their submission.
type FormSubmissionRepository interface {
	// FindByIDForTenant loads a submission with approvals, most recent first
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*FormSubmission, error)

	// FindAllForTenant lists submissions without approvals.
	// Filters: "template_id", "user_id", "status".
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]FormSubmission, error)

	// CountForTenant counts submissions matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByTemplate counts submissions referencing a template
	CountByTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (int64, error)

	// Create inserts a new submission
	Create(ctx context.Context, submission *FormSubmission) error

	// SaveWithLock updates the submission and upserts its approvals in one
	// transaction, failing with CONCURRENCY_CONFLICT when the stored version moved
	SaveWithLock(ctx context.Context, submission *FormSubmission) error

	// Delete removes the submission and its approvals in one transaction
	Delete(ctx context.Context, submission *FormSubmission) error
}

// StatusHistoryRepository defines the interface for submission status history
type StatusHistoryRepository interface {
	// Append stores an entry; an entry for an already recorded event is ignored
	Append(ctx context.Context, entry *StatusHistoryEntry) error

	// FindBySubmission returns the entries of a submission, oldest first
	FindBySubmission(ctx context.Context, tenantID, submissionID uuid.UUID) ([]StatusHistoryEntry, error)
}
