package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/workforce/backend/internal/domain/form"
	"github.com/workforce/backend/internal/domain/shared"
	"github.com/workforce/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFormSubmissionRepository implements FormSubmissionRepository using GORM
type GormFormSubmissionRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormFormSubmissionRepository creates a new GormFormSubmissionRepository
func NewGormFormSubmissionRepository(db *gorm.DB) *GormFormSubmissionRepository {
	return &GormFormSubmissionRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormFormSubmissionRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByIDForTenant finds a submission with its approvals within a tenant
func (r *GormFormSubmissionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*form.FormSubmission, error) {
	var model models.FormSubmissionModel
	if err := r.db.WithContext(ctx).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("updated_at DESC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllForTenant lists submissions of a tenant without approvals
func (r *GormFormSubmissionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]form.FormSubmission, error) {
	var modelList []models.FormSubmissionModel
	query := r.db.WithContext(ctx).Model(&models.FormSubmissionModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)
	query = applyPagination(query, filter)

	if err := query.Order(submissionSort.clause(filter)).
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	submissions := make([]form.FormSubmission, 0, len(modelList))
	for i := range modelList {
		s, err := modelList[i].ToDomain()
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *s)
	}
	return submissions, nil
}

// CountForTenant counts submissions of a tenant matching the filter
func (r *GormFormSubmissionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.FormSubmissionModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByTemplate counts submissions referencing a template
func (r *GormFormSubmissionRepository) CountByTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FormSubmissionModel{}).
		Where("tenant_id = ? AND template_id = ?", tenantID, templateID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new submission together with its pending events
func (r *GormFormSubmissionRepository) Create(ctx context.Context, submission *form.FormSubmission) error {
	model, err := models.FormSubmissionModelFromDomain(submission)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}
		if err := r.saveApprovals(tx, submission); err != nil {
			return err
		}
		return r.saveEvents(ctx, tx, submission)
	})
}

// SaveWithLock saves the submission with optimistic locking and upserts its approvals
func (r *GormFormSubmissionRepository) SaveWithLock(ctx context.Context, submission *form.FormSubmission) error {
	model, err := models.FormSubmissionModelFromDomain(submission)
	if err != nil {
		return err
	}
	expected := submission.Version

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.FormSubmissionModel
		if err := tx.Select("id", "version").
			Where("tenant_id = ? AND id = ?", submission.TenantID, submission.ID).
			First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if current.Version != expected {
			return shared.ErrConcurrencyConflict
		}

		submission.Version = expected + 1
		result := tx.Model(&models.FormSubmissionModel{}).
			Where("id = ? AND version = ?", submission.ID, expected).
			Updates(map[string]any{
				"data":         model.Data,
				"status":       model.Status,
				"submitted_at": model.SubmittedAt,
				"version":      submission.Version,
				"updated_at":   submission.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if err := r.saveApprovals(tx, submission); err != nil {
			return err
		}
		return r.saveEvents(ctx, tx, submission)
	})
	if err != nil {
		submission.Version = expected
	}
	return err
}

// Delete removes a draft and its approvals. The row must still be the DRAFT
// at the version the caller loaded; otherwise nothing is removed and
// ErrConcurrencyConflict is returned.
func (r *GormFormSubmissionRepository) Delete(ctx context.Context, submission *form.FormSubmission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("tenant_id = ? AND id = ? AND version = ? AND status = ?",
			submission.TenantID, submission.ID, submission.Version, string(form.SubmissionStatusDraft)).
			Delete(&models.FormSubmissionModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.FormSubmissionModel{}).
				Where("tenant_id = ? AND id = ?", submission.TenantID, submission.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}

		if err := tx.Where("submission_id = ?", submission.ID).Delete(&models.FormApprovalModel{}).Error; err != nil {
			return err
		}
		return r.saveEvents(ctx, tx, submission)
	})
}

// saveApprovals upserts approvals by id. Approvals are never removed.
func (r *GormFormSubmissionRepository) saveApprovals(tx *gorm.DB, submission *form.FormSubmission) error {
	if len(submission.Approvals) == 0 {
		return nil
	}
	approvals := make([]*models.FormApprovalModel, len(submission.Approvals))
	for i := range submission.Approvals {
		approvals[i] = models.FormApprovalModelFromDomain(&submission.Approvals[i])
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"decision", "comment", "signature", "submitted_at", "updated_at"}),
	}).Create(&approvals).Error; err != nil {
		return fmt.Errorf("failed to save approvals: %w", err)
	}
	return nil
}

func (r *GormFormSubmissionRepository) saveEvents(ctx context.Context, tx *gorm.DB, submission *form.FormSubmission) error {
	events := submission.GetDomainEvents()
	if r.outboxSaver == nil || len(events) == 0 {
		return nil
	}
	if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
		return fmt.Errorf("failed to save events to outbox: %w", err)
	}
	return nil
}

func (r *GormFormSubmissionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "template_id":
			if id, ok := value.(uuid.UUID); ok {
				query = query.Where("template_id = ?", id)
			}
		case "user_id":
			query = query.Where("user_id = ?", fmt.Sprint(value))
		case "status":
			query = query.Where("status = ?", fmt.Sprint(value))
		}
	}
	return query
}

// Ensure GormFormSubmissionRepository implements FormSubmissionRepository
var _ form.FormSubmissionRepository = (*GormFormSubmissionRepository)(nil)
