package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	eventapp "github.com/workforce/backend/internal/application/event"
	formapp "github.com/workforce/backend/internal/application/form"
)

// MockTemplateUseCases implements TemplateUseCases for testing
type MockTemplateUseCases struct {
	mock.Mock
}

func (m *MockTemplateUseCases) CreateTemplate(ctx context.Context, tenantID uuid.UUID, userID string, req formapp.TemplateRequest) (*formapp.TemplateResponse, error) {
	args := m.Called(ctx, tenantID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*formapp.TemplateResponse), args.Error(1)
}

func (m *MockTemplateUseCases) UpdateTemplate(ctx context.Context, tenantID, templateID uuid.UUID, req formapp.TemplateRequest) (*formapp.TemplateResponse, error) {
	args := m.Called(ctx, tenantID, templateID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*formapp.TemplateResponse), args.Error(1)
}

func (m *MockTemplateUseCases) GetTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*formapp.TemplateResponse, error) {
	args := m.Called(ctx, tenantID, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*formapp.TemplateResponse), args.Error(1)
}

func (m *MockTemplateUseCases) ListTemplates(ctx context.Context, tenantID uuid.UUID, req formapp.ListTemplatesRequest) (*formapp.ListTemplatesResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*formapp.ListTemplatesResponse), args.Error(1)
}

func (m *MockTemplateUseCases) ArchiveTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*formapp.TemplateResponse, error) {
	args := m.Called(ctx, tenantID, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*formapp.TemplateResponse), args.Error(1)
}

func (m *MockTemplateUseCases) ActivateTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*formapp.TemplateResponse, error) {
	args := m.Called(ctx, tenantID, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*formapp.TemplateResponse), args.Error(1)
}

func (m *MockTemplateUseCases) DeleteTemplate(ctx context.Context, tenantID, templateID uuid.UUID) error {
	return m.Called(ctx, tenantID, templateID).Error(0)
}

func (m *MockTemplateUseCases) GetReferenceData() formapp.ReferenceDataResponse {
	return m.Called().Get(0).(formapp.ReferenceDataResponse)
}

// MockSubmissionUseCases implements SubmissionUseCases for testing
type MockSubmissionUseCases struct {
	mock.Mock
}

func (m *MockSubmissionUseCases) submission(args mock.Arguments) (*formapp.SubmissionResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*formapp.SubmissionResponse), args.Error(1)
}

func (m *MockSubmissionUseCases) CreateDraft(ctx context.Context, tenantID uuid.UUID, userID string, req formapp.CreateDraftRequest) (*formapp.SubmissionResponse, error) {
	return m.submission(m.Called(ctx, tenantID, userID, req))
}

func (m *MockSubmissionUseCases) SaveDraft(ctx context.Context, tenantID, submissionID uuid.UUID, userID string, req formapp.SubmissionDataRequest) (*formapp.SubmissionResponse, error) {
	return m.submission(m.Called(ctx, tenantID, submissionID, userID, req))
}

func (m *MockSubmissionUseCases) Submit(ctx context.Context, tenantID, submissionID uuid.UUID, userID string, req formapp.SubmissionDataRequest) (*formapp.SubmissionResponse, error) {
	return m.submission(m.Called(ctx, tenantID, submissionID, userID, req))
}

func (m *MockSubmissionUseCases) Approve(ctx context.Context, tenantID, submissionID uuid.UUID, approverID string, req formapp.ApproveRequest) (*formapp.SubmissionResponse, error) {
	return m.submission(m.Called(ctx, tenantID, submissionID, approverID, req))
}

func (m *MockSubmissionUseCases) AdminUpdate(ctx context.Context, tenantID, submissionID uuid.UUID, editorID string, req formapp.SubmissionDataRequest) (*formapp.SubmissionResponse, error) {
	return m.submission(m.Called(ctx, tenantID, submissionID, editorID, req))
}

func (m *MockSubmissionUseCases) DeleteDraft(ctx context.Context, tenantID, submissionID uuid.UUID, userID string) error {
	return m.Called(ctx, tenantID, submissionID, userID).Error(0)
}

func (m *MockSubmissionUseCases) GetSubmission(ctx context.Context, tenantID, submissionID uuid.UUID) (*formapp.SubmissionResponse, error) {
	return m.submission(m.Called(ctx, tenantID, submissionID))
}

func (m *MockSubmissionUseCases) ListSubmissions(ctx context.Context, tenantID uuid.UUID, req formapp.ListSubmissionsRequest) (*formapp.ListSubmissionsResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*formapp.ListSubmissionsResponse), args.Error(1)
}

func (m *MockSubmissionUseCases) GetStatusHistory(ctx context.Context, tenantID, submissionID uuid.UUID) ([]formapp.StatusHistoryResponse, error) {
	args := m.Called(ctx, tenantID, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]formapp.StatusHistoryResponse), args.Error(1)
}

// MockOutboxUseCases implements OutboxUseCases for testing
type MockOutboxUseCases struct {
	mock.Mock
}

func (m *MockOutboxUseCases) ListDead(ctx context.Context, tenantID uuid.UUID, req eventapp.ListDeadRequest) (*eventapp.ListDeadResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventapp.ListDeadResponse), args.Error(1)
}

func (m *MockOutboxUseCases) Requeue(ctx context.Context, tenantID, id uuid.UUID) (*eventapp.OutboxEntryResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventapp.OutboxEntryResponse), args.Error(1)
}

func (m *MockOutboxUseCases) RequeueAll(ctx context.Context, tenantID uuid.UUID) (*eventapp.RequeueAllResponse, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventapp.RequeueAllResponse), args.Error(1)
}

func (m *MockOutboxUseCases) Stats(ctx context.Context, tenantID uuid.UUID) (*eventapp.OutboxStatsResponse, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventapp.OutboxStatsResponse), args.Error(1)
}
