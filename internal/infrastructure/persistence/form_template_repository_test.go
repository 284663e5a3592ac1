package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce/backend/internal/domain/form"
	"github.com/workforce/backend/internal/domain/shared"
	"github.com/workforce/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// saveInspectionTemplate stores a two-grouping template through an editor session
func saveInspectionTemplate(t *testing.T, repo form.TemplateStore, tenantID uuid.UUID, name string) *form.FormTemplate {
	t.Helper()
	s := form.NewEditorSession(tenantID, "author-1")
	s.SetDetails(form.TemplateDetails{
		Name:     name,
		Category: form.FormCategoryInspection,
		Status:   form.TemplateStatusActive,
	})

	vehicle := s.Template().Groupings[0]
	plate, err := s.AddField(vehicle.ID, form.FieldTypeText)
	require.NoError(t, err)
	plate.Label = "Plate"
	plate.Required = true

	condition, err := s.AddField(vehicle.ID, form.FieldTypeDropdown)
	require.NoError(t, err)
	condition.Label = "Condition"
	_, err = s.AddOption(condition.ID, "Good")
	require.NoError(t, err)
	_, err = s.AddOption(condition.ID, "Poor")
	require.NoError(t, err)

	signOff := s.AddGrouping("Sign-off")
	confirmed, err := s.AddField(signOff.ID, form.FieldTypeCheckbox)
	require.NoError(t, err)
	confirmed.Label = "Confirmed"

	_, err = s.Save(context.Background(), repo)
	require.NoError(t, err)
	s.Template().ClearDomainEvents()
	return s.Template()
}

func labels(fields []*form.FormField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Label
	}
	return out
}

func TestGormFormTemplateRepository_SaveAndFind(t *testing.T) {
	db := setupFormTestDB(t)
	repo := NewGormFormTemplateRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	saved := saveInspectionTemplate(t, repo, tenantID, "Vehicle Inspection")

	t.Run("loads full definition in order", func(t *testing.T) {
		loaded, err := repo.FindByIDForTenant(ctx, tenantID, saved.ID)
		require.NoError(t, err)

		assert.Equal(t, "Vehicle Inspection", loaded.Name)
		assert.Equal(t, form.FormCategoryInspection, loaded.Category)
		assert.Equal(t, form.TemplateStatusActive, loaded.Status)
		assert.Equal(t, "author-1", loaded.CreatedBy)
		require.Len(t, loaded.Groupings, 2)
		assert.Equal(t, 0, loaded.Groupings[0].Order)
		assert.Equal(t, 1, loaded.Groupings[1].Order)
		assert.Equal(t, []string{"Plate", "Condition"}, labels(loaded.Groupings[0].Fields))
		assert.Equal(t, []string{"Confirmed"}, labels(loaded.Groupings[1].Fields))

		condition := loaded.Groupings[0].Fields[1]
		assert.Equal(t, []string{"Good", "Poor"}, condition.OptionValues())
		assert.True(t, loaded.Groupings[0].Fields[0].Required)
		assert.Empty(t, loaded.GetDomainEvents())
	})

	t.Run("other tenant cannot see template", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), saved.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormFormTemplateRepository_SaveReplacesDefinition(t *testing.T) {
	db := setupFormTestDB(t)
	repo := NewGormFormTemplateRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	saved := saveInspectionTemplate(t, repo, tenantID, "Vehicle Inspection")
	loaded, err := repo.FindByIDForTenant(ctx, tenantID, saved.ID)
	require.NoError(t, err)

	session := form.LoadEditorSession(loaded)
	vehicle := loaded.Groupings[0]
	condition := vehicle.Fields[1]
	require.NoError(t, session.RemoveField(condition.ID))
	notes, err := session.AddField(vehicle.ID, form.FieldTypeTextarea)
	require.NoError(t, err)
	notes.Label = "Notes"
	require.NoError(t, session.Reorder(vehicle.ID, 1, 0))
	_, err = session.Save(ctx, repo)
	require.NoError(t, err)

	reloaded, err := repo.FindByIDForTenant(ctx, tenantID, saved.ID)
	require.NoError(t, err)
	fields := reloaded.Groupings[0].Fields
	assert.Equal(t, []string{"Notes", "Plate"}, labels(fields))
	for i, f := range fields {
		assert.Equal(t, i, f.Order)
	}

	var optionCount, fieldCount int64
	require.NoError(t, db.Model(&models.FormFieldOptionModel{}).Where("template_id = ?", saved.ID).Count(&optionCount).Error)
	require.NoError(t, db.Model(&models.FormFieldModel{}).Where("template_id = ?", saved.ID).Count(&fieldCount).Error)
	assert.Zero(t, optionCount, "options of the removed field are pruned")
	assert.Equal(t, int64(3), fieldCount)
}

func TestGormFormTemplateRepository_SaveWithStaleVersion(t *testing.T) {
	db := setupFormTestDB(t)
	repo := NewGormFormTemplateRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	saved := saveInspectionTemplate(t, repo, tenantID, "Vehicle Inspection")
	first, err := repo.FindByIDForTenant(ctx, tenantID, saved.ID)
	require.NoError(t, err)
	second, err := repo.FindByIDForTenant(ctx, tenantID, saved.ID)
	require.NoError(t, err)

	first.Description = "first editor"
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.Description = "second editor"
	second.Groupings = second.Groupings[:1]
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Equal(t, 1, second.Version)

	reloaded, err := repo.FindByIDForTenant(ctx, tenantID, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "first editor", reloaded.Description)
	assert.Equal(t, 2, reloaded.Version)
	assert.Len(t, reloaded.Groupings, 2, "definition of the stale save is rolled back")
}

func TestGormFormTemplateRepository_SaveWritesOutbox(t *testing.T) {
	db := setupFormTestDB(t)
	repo := NewGormFormTemplateRepository(db)
	outbox := &capturingOutbox{}
	repo.SetOutboxEventSaver(outbox)

	saveInspectionTemplate(t, repo, uuid.New(), "Vehicle Inspection")

	assert.True(t, outbox.sawTx)
	assert.Equal(t, []string{form.EventTypeFormTemplateCreated}, outbox.eventTypes())
}

func TestGormFormTemplateRepository_OutboxFailureRollsBack(t *testing.T) {
	db := setupFormTestDB(t)
	repo := NewGormFormTemplateRepository(db)
	repo.SetOutboxEventSaver(&capturingOutbox{err: errors.New("outbox down")})

	s := form.NewEditorSession(uuid.New(), "author-1")
	s.SetDetails(form.TemplateDetails{Name: "Rollback", Category: form.FormCategoryGeneral, Status: form.TemplateStatusDraft})
	_, err := s.Save(context.Background(), repo)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.FormTemplateModel{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.FormGroupingModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGormFormTemplateRepository_ListAndCount(t *testing.T) {
	db := setupFormTestDB(t)
	repo := NewGormFormTemplateRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	inspection := saveInspectionTemplate(t, repo, tenantID, "Vehicle Inspection")
	saveInspectionTemplate(t, repo, tenantID, "Forklift Inspection")
	saveInspectionTemplate(t, repo, uuid.New(), "Elsewhere")

	inspection.Status = form.TemplateStatusArchived
	require.NoError(t, repo.Save(ctx, inspection))

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter().With("status", form.TemplateStatusActive)
		items, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Forklift Inspection", items[0].Name)
		assert.Empty(t, items[0].Groupings, "list does not load definitions")

		count, err := repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("searches and sorts by name", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "inspection"
		filter.OrderBy = "name"
		filter.OrderDir = "asc"
		items, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Forklift Inspection", items[0].Name)
		assert.Equal(t, "Vehicle Inspection", items[1].Name)
	})

	t.Run("pages", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 1
		filter.Page = 2
		items, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("name existence ignores case and excluded id", func(t *testing.T) {
		exists, err := repo.ExistsByName(ctx, tenantID, "  vehicle INSPECTION ", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByName(ctx, tenantID, "Vehicle Inspection", &inspection.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsByName(ctx, uuid.New(), "Vehicle Inspection", nil)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormFormTemplateRepository_Delete(t *testing.T) {
	db := setupFormTestDB(t)
	repo := NewGormFormTemplateRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	saved := saveInspectionTemplate(t, repo, tenantID, "Vehicle Inspection")

	t.Run("wrong tenant leaves rows in place", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New(), saved.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		var count int64
		require.NoError(t, db.Model(&models.FormFieldModel{}).Where("template_id = ?", saved.ID).Count(&count).Error)
		assert.Equal(t, int64(3), count)
	})

	t.Run("removes template and children", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, tenantID, saved.ID))

		_, err := repo.FindByIDForTenant(ctx, tenantID, saved.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		for _, m := range []any{&models.FormGroupingModel{}, &models.FormFieldModel{}, &models.FormFieldOptionModel{}} {
			var count int64
			require.NoError(t, db.Model(m).Where("template_id = ?", saved.ID).Count(&count).Error)
			assert.Zero(t, count)
		}
	})
}

func newMockFormTemplateRepository(t *testing.T) (*GormFormTemplateRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormFormTemplateRepository(gormDB), mock, mockDB
}

func TestGormFormTemplateRepository_SQL(t *testing.T) {
	t.Run("find propagates database errors", func(t *testing.T) {
		repo, mock, mockDB := newMockFormTemplateRepository(t)
		defer mockDB.Close()

		tenantID, id := uuid.New(), uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "form_templates" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, id, 1).
			WillReturnError(sql.ErrConnDone)

		_, err := repo.FindByIDForTenant(context.Background(), tenantID, id)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exists by name uses lowered name", func(t *testing.T) {
		repo, mock, mockDB := newMockFormTemplateRepository(t)
		defer mockDB.Close()

		tenantID, exclude := uuid.New(), uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "form_templates" WHERE .*tenant_id = \$1 AND LOWER\(name\) = \$2.* AND id <> \$3`).
			WithArgs(tenantID, "daily check", exclude).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByName(context.Background(), tenantID, "Daily Check", &exclude)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
