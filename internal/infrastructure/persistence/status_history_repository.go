package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/workforce/backend/internal/domain/form"
	"github.com/workforce/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStatusHistoryRepository implements StatusHistoryRepository using GORM
type GormStatusHistoryRepository struct {
	db *gorm.DB
}

// NewGormStatusHistoryRepository creates a new GormStatusHistoryRepository
func NewGormStatusHistoryRepository(db *gorm.DB) *GormStatusHistoryRepository {
	return &GormStatusHistoryRepository{db: db}
}

// Append inserts an entry; a second entry for the same event is dropped
func (r *GormStatusHistoryRepository) Append(ctx context.Context, entry *form.StatusHistoryEntry) error {
	model := models.FormStatusHistoryModelFromDomain(entry)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(model).Error
}

// FindBySubmission returns a submission's history, oldest first
func (r *GormStatusHistoryRepository) FindBySubmission(ctx context.Context, tenantID, submissionID uuid.UUID) ([]form.StatusHistoryEntry, error) {
	var modelList []models.FormStatusHistoryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND submission_id = ?", tenantID, submissionID).
		Order("occurred_at ASC, created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	entries := make([]form.StatusHistoryEntry, len(modelList))
	for i := range modelList {
		entries[i] = modelList[i].ToDomain()
	}
	return entries, nil
}

// Ensure GormStatusHistoryRepository implements StatusHistoryRepository
var _ form.StatusHistoryRepository = (*GormStatusHistoryRepository)(nil)
