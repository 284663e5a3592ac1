package form_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	domain "github.com/workforce/backend/internal/domain/form"
	"github.com/workforce/backend/internal/domain/shared"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Save(ctx context.Context, template *domain.FormTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*domain.FormTemplate, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FormTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]domain.FormTemplate, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FormTemplate), args.Error(1)
}

func (m *MockTemplateRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTemplateRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*domain.FormSubmission, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FormSubmission), args.Error(1)
}

func (m *MockSubmissionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]domain.FormSubmission, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FormSubmission), args.Error(1)
}

func (m *MockSubmissionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubmissionRepository) CountByTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, templateID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *domain.FormSubmission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) SaveWithLock(ctx context.Context, submission *domain.FormSubmission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) Delete(ctx context.Context, submission *domain.FormSubmission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) FindBySubmission(ctx context.Context, tenantID, submissionID uuid.UUID) ([]domain.StatusHistoryEntry, error) {
	args := m.Called(ctx, tenantID, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusHistoryEntry), args.Error(1)
}

type MockSignatureStore struct {
	mock.Mock
}

func (m *MockSignatureStore) Put(ctx context.Context, tenantID, submissionID uuid.UUID, signer, signature string) (string, error) {
	args := m.Called(ctx, tenantID, submissionID, signer, signature)
	return args.String(0), args.Error(1)
}

func (m *MockSignatureStore) Delete(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

func (m *MockSignatureStore) Resolve(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}
