package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	formapp "github.com/workforce/backend/internal/application/form"
	"github.com/workforce/backend/internal/domain/shared"
	"github.com/workforce/backend/internal/interfaces/http/dto"
)

func newSubmissionRouter(svc *MockSubmissionUseCases) *gin.Engine {
	h := NewSubmissionHandler(svc)
	r := newTestEngine()
	r.POST("/forms/submissions", h.CreateDraft)
	r.GET("/forms/submissions", h.List)
	r.GET("/forms/submissions/:id", h.GetByID)
	r.PUT("/forms/submissions/:id/draft", h.SaveDraft)
	r.POST("/forms/submissions/:id/submit", h.Submit)
	r.POST("/forms/submissions/:id/approve", h.Approve)
	r.PUT("/forms/submissions/:id", h.AdminUpdate)
	r.DELETE("/forms/submissions/:id", h.Delete)
	r.GET("/forms/submissions/:id/history", h.History)
	return r
}

func TestSubmissionHandler_CreateDraft(t *testing.T) {
	svc := new(MockSubmissionUseCases)
	r := newSubmissionRouter(svc)
	templateID := uuid.NewString()
	svc.On("CreateDraft", mock.Anything, testTenant, "worker-1", formapp.CreateDraftRequest{TemplateID: templateID}).
		Return(&formapp.SubmissionResponse{ID: uuid.NewString(), Status: "DRAFT", TemplateID: templateID}, nil)

	w := doJSON(r, http.MethodPost, "/forms/submissions", formapp.CreateDraftRequest{TemplateID: templateID}, as("worker-1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "DRAFT", decodeResponse[formapp.SubmissionResponse](t, w).Data.Status)

	w = doJSON(r, http.MethodPost, "/forms/submissions", `{"template_id":"nope"}`, as("worker-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "CreateDraft", 1)
}

func TestSubmissionHandler_SaveDraft_KeepsNumbers(t *testing.T) {
	svc := new(MockSubmissionUseCases)
	r := newSubmissionRouter(svc)
	id := uuid.New()

	svc.On("SaveDraft", mock.Anything, testTenant, id, "worker-1", mock.MatchedBy(func(req formapp.SubmissionDataRequest) bool {
		n, ok := req.Data["qty"].(json.Number)
		return ok && n.String() == "12.50" && req.Data["name"] == "Bob"
	})).Return(&formapp.SubmissionResponse{ID: id.String(), Status: "DRAFT"}, nil)

	w := doJSON(r, http.MethodPut, "/forms/submissions/"+id.String()+"/draft", `{"data":{"qty":12.50,"name":"Bob"}}`, as("worker-1"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}

func TestSubmissionHandler_Submit_ValidationFailure(t *testing.T) {
	svc := new(MockSubmissionUseCases)
	r := newSubmissionRouter(svc)
	id := uuid.New()
	svc.On("Submit", mock.Anything, testTenant, id, "worker-1", mock.Anything).
		Return(nil, shared.NewValidationError("Submission is incomplete",
			shared.FieldError{Field: "a", Rule: "required", Message: "Inspector is required"},
			shared.FieldError{Field: "signature", Rule: "signature", Message: "A signature is required"}))

	w := doJSON(r, http.MethodPost, "/forms/submissions/"+id.String()+"/submit", `{"data":{"b":"x"}}`, as("worker-1"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeResponse[any](t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, dto.ValidationDetail{Field: "a", Rule: "required", Message: "Inspector is required"}, resp.Error.Details[0])
}

func TestSubmissionHandler_Submit_NotOwner(t *testing.T) {
	svc := new(MockSubmissionUseCases)
	r := newSubmissionRouter(svc)
	id := uuid.New()
	svc.On("Submit", mock.Anything, testTenant, id, "intruder", mock.Anything).Return(nil, shared.ErrForbidden)

	w := doJSON(r, http.MethodPost, "/forms/submissions/"+id.String()+"/submit", `{"data":{}}`, as("intruder"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmissionHandler_Approve(t *testing.T) {
	svc := new(MockSubmissionUseCases)
	r := newSubmissionRouter(svc)
	id := uuid.New()
	comment := "incomplete"
	svc.On("Approve", mock.Anything, testTenant, id, "admin1", formapp.ApproveRequest{Decision: "DENIED", Comment: &comment}).
		Return(&formapp.SubmissionResponse{
			ID:     id.String(),
			Status: "DENIED",
			Approvals: []formapp.ApprovalResponse{{
				SignedBy:    "admin1",
				Decision:    "DENIED",
				Comment:     &comment,
				SubmittedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
			}},
		}, nil)

	w := doJSON(r, http.MethodPost, "/forms/submissions/"+id.String()+"/approve",
		`{"decision":"DENIED","comment":"incomplete"}`, as("admin1", "forms:approve"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse[formapp.SubmissionResponse](t, w)
	assert.Equal(t, "DENIED", resp.Data.Status)
	require.Len(t, resp.Data.Approvals, 1)
	assert.Equal(t, "admin1", resp.Data.Approvals[0].SignedBy)
	assert.Equal(t, "incomplete", *resp.Data.Approvals[0].Comment)
}

func TestSubmissionHandler_Approve_Rejections(t *testing.T) {
	svc := new(MockSubmissionUseCases)
	r := newSubmissionRouter(svc)
	id := uuid.New()
	svc.On("Approve", mock.Anything, testTenant, id, "admin1", mock.Anything).
		Return(nil, shared.NewDomainError(shared.CodeInvalidState, "Only PENDING submissions can be decided"))

	w := doJSON(r, http.MethodPost, "/forms/submissions/"+id.String()+"/approve", `{"decision":"MAYBE"}`, as("admin1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/forms/submissions/"+id.String()+"/approve", `{"decision":"APPROVED"}`, as("admin1"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, decodeResponse[any](t, w).Error.Code)
}

func TestSubmissionHandler_AdminUpdate(t *testing.T) {
	svc := new(MockSubmissionUseCases)
	r := newSubmissionRouter(svc)
	id := uuid.New()
	svc.On("AdminUpdate", mock.Anything, testTenant, id, "boss", mock.Anything).
		Return(&formapp.SubmissionResponse{ID: id.String(), Status: "PENDING", Version: 4}, nil)

	w := doJSON(r, http.MethodPut, "/forms/submissions/"+id.String(), `{"data":{"a":"fixed"}}`, as("boss", "forms:admin"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PENDING", decodeResponse[formapp.SubmissionResponse](t, w).Data.Status)
}

func TestSubmissionHandler_Delete(t *testing.T) {
	svc := new(MockSubmissionUseCases)
	r := newSubmissionRouter(svc)
	draft, pending := uuid.New(), uuid.New()
	svc.On("DeleteDraft", mock.Anything, testTenant, draft, "worker-1").Return(nil)
	svc.On("DeleteDraft", mock.Anything, testTenant, pending, "worker-1").
		Return(shared.NewDomainError(shared.CodeInvalidState, "Only drafts can be deleted"))

	assert.Equal(t, http.StatusNoContent, doJSON(r, http.MethodDelete, "/forms/submissions/"+draft.String(), nil, as("worker-1")).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, doJSON(r, http.MethodDelete, "/forms/submissions/"+pending.String(), nil, as("worker-1")).Code)
}

func TestSubmissionHandler_List(t *testing.T) {
	svc := new(MockSubmissionUseCases)
	r := newSubmissionRouter(svc)
	templateID := uuid.NewString()
	expected := formapp.ListSubmissionsRequest{Page: 1, PageSize: 10, TemplateID: templateID, Status: "PENDING", OrderBy: "submitted_at", OrderDir: "desc"}
	svc.On("ListSubmissions", mock.Anything, testTenant, expected).Return(&formapp.ListSubmissionsResponse{
		Items: []formapp.SubmissionResponse{{Status: "PENDING"}, {Status: "PENDING"}},
		Total: 2, Page: 1, Size: 10,
	}, nil)

	w := doJSON(r, http.MethodGet, "/forms/submissions?page_size=10&template_id="+templateID+"&status=PENDING&order_by=submitted_at&order_dir=desc", nil, as("u"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse[[]formapp.SubmissionResponse](t, w)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Meta.Total)

	w = doJSON(r, http.MethodGet, "/forms/submissions?status=LOST", nil, as("u"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionHandler_GetAndHistory(t *testing.T) {
	svc := new(MockSubmissionUseCases)
	r := newSubmissionRouter(svc)
	id := uuid.New()
	svc.On("GetSubmission", mock.Anything, testTenant, id).Return(nil, shared.ErrNotFound)
	svc.On("GetStatusHistory", mock.Anything, testTenant, id).Return([]formapp.StatusHistoryResponse{
		{ToStatus: "DRAFT", ChangedBy: "worker-1"},
		{FromStatus: "DRAFT", ToStatus: "PENDING", ChangedBy: "worker-1"},
	}, nil)

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/forms/submissions/"+id.String(), nil, as("u")).Code)

	w := doJSON(r, http.MethodGet, "/forms/submissions/"+id.String()+"/history", nil, as("u"))
	require.Equal(t, http.StatusOK, w.Code)
	history := decodeResponse[[]formapp.StatusHistoryResponse](t, w).Data
	require.Len(t, history, 2)
	assert.Equal(t, "PENDING", history[1].ToStatus)
}
