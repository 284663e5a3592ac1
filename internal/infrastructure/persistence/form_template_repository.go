package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/workforce/backend/internal/domain/form"
	"github.com/workforce/backend/internal/domain/shared"
	"github.com/workforce/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFormTemplateRepository implements FormTemplateRepository using GORM
type GormFormTemplateRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormFormTemplateRepository creates a new GormFormTemplateRepository
func NewGormFormTemplateRepository(db *gorm.DB) *GormFormTemplateRepository {
	return &GormFormTemplateRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormFormTemplateRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

func bySortOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// FindByIDForTenant finds a template with its full definition within a tenant
func (r *GormFormTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*form.FormTemplate, error) {
	var model models.FormTemplateModel
	if err := r.db.WithContext(ctx).
		Preload("Groupings", bySortOrder).
		Preload("Groupings.Fields", bySortOrder).
		Preload("Groupings.Fields.Options", bySortOrder).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists templates of a tenant without their definitions
func (r *GormFormTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]form.FormTemplate, error) {
	var modelList []models.FormTemplateModel
	query := r.db.WithContext(ctx).Model(&models.FormTemplateModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)
	query = applyPagination(query, filter)

	if err := query.Order(templateSort.clause(filter)).
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	templates := make([]form.FormTemplate, len(modelList))
	for i := range modelList {
		templates[i] = *modelList[i].ToDomain()
	}
	return templates, nil
}

// CountForTenant counts templates of a tenant matching the filter
func (r *GormFormTemplateRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.FormTemplateModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks if a template name is taken within a tenant, ignoring case
func (r *GormFormTemplateRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.FormTemplateModel{}).
		Where("tenant_id = ? AND LOWER(name) = ?", tenantID, strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a template and replaces its definition in one transaction.
// Groupings, fields and options no longer present are removed.
// Updating a template whose stored version differs from template.Version
// returns ErrConcurrencyConflict; a successful update increments it.
func (r *GormFormTemplateRepository) Save(ctx context.Context, template *form.FormTemplate) error {
	expected := template.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveRow(tx, template, expected); err != nil {
			return err
		}

		children := models.FormTemplateChildrenFromDomain(template)

		// Children go leaf first so foreign keys never dangle.
		if err := pruneTemplateRows(tx, &models.FormFieldOptionModel{}, template.ID, children.OptionIDs()); err != nil {
			return fmt.Errorf("failed to prune field options: %w", err)
		}
		if err := pruneTemplateRows(tx, &models.FormFieldModel{}, template.ID, children.FieldIDs()); err != nil {
			return fmt.Errorf("failed to prune fields: %w", err)
		}
		if err := pruneTemplateRows(tx, &models.FormGroupingModel{}, template.ID, children.GroupingIDs()); err != nil {
			return fmt.Errorf("failed to prune groupings: %w", err)
		}

		if len(children.Groupings) > 0 {
			if err := tx.Omit(clause.Associations).Save(&children.Groupings).Error; err != nil {
				return fmt.Errorf("failed to save groupings: %w", err)
			}
		}
		if len(children.Fields) > 0 {
			if err := tx.Omit(clause.Associations).Save(&children.Fields).Error; err != nil {
				return fmt.Errorf("failed to save fields: %w", err)
			}
		}
		if len(children.Options) > 0 {
			if err := tx.Save(&children.Options).Error; err != nil {
				return fmt.Errorf("failed to save field options: %w", err)
			}
		}

		events := template.GetDomainEvents()
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		template.Version = expected
	}
	return err
}

// saveRow inserts the template row, or updates it when the stored version is expected
func (r *GormFormTemplateRepository) saveRow(tx *gorm.DB, template *form.FormTemplate, expected int) error {
	var current models.FormTemplateModel
	err := tx.Select("id", "version").
		Where("tenant_id = ? AND id = ?", template.TenantID, template.ID).
		First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Omit(clause.Associations).Create(models.FormTemplateModelFromDomain(template)).Error; err != nil {
			return fmt.Errorf("failed to create form template: %w", err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	if current.Version != expected {
		return shared.ErrConcurrencyConflict
	}

	template.Version = expected + 1
	model := models.FormTemplateModelFromDomain(template)
	result := tx.Model(&models.FormTemplateModel{}).
		Where("id = ? AND version = ?", template.ID, expected).
		Updates(map[string]any{
			"name":                  model.Name,
			"description":           model.Description,
			"category":              model.Category,
			"status":                model.Status,
			"is_signature_required": model.IsSignatureRequired,
			"is_approval_required":  model.IsApprovalRequired,
			"version":               template.Version,
			"updated_at":            template.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update form template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a template and its definition
func (r *GormFormTemplateRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{
			&models.FormFieldOptionModel{},
			&models.FormFieldModel{},
			&models.FormGroupingModel{},
		} {
			if err := tx.Where("template_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}

		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.FormTemplateModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// pruneTemplateRows deletes the template's rows of one child table whose ids are not kept
func pruneTemplateRows(tx *gorm.DB, model any, templateID uuid.UUID, keep []uuid.UUID) error {
	query := tx.Where("template_id = ?", templateID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	return query.Delete(model).Error
}

func (r *GormFormTemplateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", fmt.Sprint(value))
		case "status":
			query = query.Where("status = ?", fmt.Sprint(value))
		}
	}
	return query
}

// Ensure GormFormTemplateRepository implements FormTemplateRepository
var _ form.FormTemplateRepository = (*GormFormTemplateRepository)(nil)
