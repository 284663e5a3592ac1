package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	formapp "github.com/workforce/backend/internal/application/form"
	"github.com/workforce/backend/internal/domain/shared"
)

// SubmissionUseCases is the submission side of the forms application layer
type SubmissionUseCases interface {
	CreateDraft(ctx context.Context, tenantID uuid.UUID, userID string, req formapp.CreateDraftRequest) (*formapp.SubmissionResponse, error)
	SaveDraft(ctx context.Context, tenantID, submissionID uuid.UUID, userID string, req formapp.SubmissionDataRequest) (*formapp.SubmissionResponse, error)
	Submit(ctx context.Context, tenantID, submissionID uuid.UUID, userID string, req formapp.SubmissionDataRequest) (*formapp.SubmissionResponse, error)
	Approve(ctx context.Context, tenantID, submissionID uuid.UUID, approverID string, req formapp.ApproveRequest) (*formapp.SubmissionResponse, error)
	AdminUpdate(ctx context.Context, tenantID, submissionID uuid.UUID, editorID string, req formapp.SubmissionDataRequest) (*formapp.SubmissionResponse, error)
	DeleteDraft(ctx context.Context, tenantID, submissionID uuid.UUID, userID string) error
	GetSubmission(ctx context.Context, tenantID, submissionID uuid.UUID) (*formapp.SubmissionResponse, error)
	ListSubmissions(ctx context.Context, tenantID uuid.UUID, req formapp.ListSubmissionsRequest) (*formapp.ListSubmissionsResponse, error)
	GetStatusHistory(ctx context.Context, tenantID, submissionID uuid.UUID) ([]formapp.StatusHistoryResponse, error)
}

// SubmissionHandler handles form submission endpoints
type SubmissionHandler struct {
	BaseHandler
	submissions SubmissionUseCases
}

// NewSubmissionHandler creates a new SubmissionHandler
func NewSubmissionHandler(submissions SubmissionUseCases) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// CreateDraft godoc
// @ID           createFormDraft
// @Summary      Start a draft submission
// @Description  Creates an empty DRAFT owned by the caller against an active template
// @Tags         form-submissions
// @Accept       json
// @Produce      json
// @Param        request body     formapp.CreateDraftRequest true "Template reference"
// @Success      201     {object} APIResponse[formapp.SubmissionResponse]
// @Failure      400     {object} ErrorResponse
// @Failure      404     {object} ErrorResponse
// @Failure      422     {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/submissions [post]
func (h *SubmissionHandler) CreateDraft(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	var req formapp.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	submission, err := h.submissions.CreateDraft(c.Request.Context(), id.TenantID, id.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, submission)
}

// SaveDraft godoc
// @ID           saveFormDraft
// @Summary      Save draft data
// @Description  Replaces the data of the caller's own DRAFT without validating it
// @Tags         form-submissions
// @Accept       json
// @Produce      json
// @Param        id      path     string                        true "Submission ID" format(uuid)
// @Param        request body     formapp.SubmissionDataRequest true "Field values keyed by field id"
// @Success      200     {object} APIResponse[formapp.SubmissionResponse]
// @Failure      403     {object} ErrorResponse
// @Failure      404     {object} ErrorResponse
// @Failure      409     {object} ErrorResponse
// @Failure      422     {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/submissions/{id}/draft [put]
func (h *SubmissionHandler) SaveDraft(c *gin.Context) {
	h.withData(c, h.submissions.SaveDraft)
}

// Submit godoc
// @ID           submitForm
// @Summary      Submit a draft
// @Description  Validates the data against the template; PENDING when approval is required, APPROVED otherwise
// @Tags         form-submissions
// @Accept       json
// @Produce      json
// @Param        id      path     string                        true "Submission ID" format(uuid)
// @Param        request body     formapp.SubmissionDataRequest true "Field values keyed by field id"
// @Success      200     {object} APIResponse[formapp.SubmissionResponse]
// @Failure      400     {object} ErrorResponse "Missing or invalid fields"
// @Failure      403     {object} ErrorResponse
// @Failure      422     {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/submissions/{id}/submit [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	h.withData(c, h.submissions.Submit)
}

// AdminUpdate godoc
// @ID           adminUpdateSubmission
// @Summary      Edit a submitted form
// @Description  Requires forms:admin. A decided submission returns to PENDING and needs a new decision
// @Tags         form-submissions
// @Accept       json
// @Produce      json
// @Param        id      path     string                        true "Submission ID" format(uuid)
// @Param        request body     formapp.SubmissionDataRequest true "Field values keyed by field id"
// @Success      200     {object} APIResponse[formapp.SubmissionResponse]
// @Failure      400     {object} ErrorResponse
// @Failure      403     {object} ErrorResponse
// @Failure      422     {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/submissions/{id} [put]
func (h *SubmissionHandler) AdminUpdate(c *gin.Context) {
	h.withData(c, h.submissions.AdminUpdate)
}

func (h *SubmissionHandler) withData(
	c *gin.Context,
	apply func(ctx context.Context, tenantID, submissionID uuid.UUID, userID string, req formapp.SubmissionDataRequest) (*formapp.SubmissionResponse, error),
) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	submissionID, ok := h.pathID(c, "submission")
	if !ok {
		return
	}

	var req formapp.SubmissionDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	submission, err := apply(c.Request.Context(), id.TenantID, submissionID, id.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, submission)
}

// Approve godoc
// @ID           decideSubmission
// @Summary      Approve or deny a submission
// @Description  Requires forms:approve. A repeat decision by the same approver replaces the earlier one
// @Tags         form-submissions
// @Accept       json
// @Produce      json
// @Param        id      path     string                 true "Submission ID" format(uuid)
// @Param        request body     formapp.ApproveRequest true "Decision"
// @Success      200     {object} APIResponse[formapp.SubmissionResponse]
// @Failure      400     {object} ErrorResponse
// @Failure      403     {object} ErrorResponse
// @Failure      404     {object} ErrorResponse
// @Failure      422     {object} ErrorResponse "Submission is not PENDING"
// @Security     BearerAuth
// @Router       /forms/submissions/{id}/approve [post]
func (h *SubmissionHandler) Approve(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	submissionID, ok := h.pathID(c, "submission")
	if !ok {
		return
	}

	var req formapp.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	submission, err := h.submissions.Approve(c.Request.Context(), id.TenantID, submissionID, id.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, submission)
}

// Delete godoc
// @ID           deleteFormDraft
// @Summary      Delete a draft
// @Description  Only the owner's DRAFT submissions can be deleted
// @Tags         form-submissions
// @Param        id  path string true "Submission ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/submissions/{id} [delete]
func (h *SubmissionHandler) Delete(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	submissionID, ok := h.pathID(c, "submission")
	if !ok {
		return
	}

	if err := h.submissions.DeleteDraft(c.Request.Context(), id.TenantID, submissionID, id.UserID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetByID godoc
// @ID           getFormSubmission
// @Summary      Get a submission
// @Tags         form-submissions
// @Produce      json
// @Param        id  path     string true "Submission ID" format(uuid)
// @Success      200 {object} APIResponse[formapp.SubmissionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/submissions/{id} [get]
func (h *SubmissionHandler) GetByID(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	submissionID, ok := h.pathID(c, "submission")
	if !ok {
		return
	}

	submission, err := h.submissions.GetSubmission(c.Request.Context(), id.TenantID, submissionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, submission)
}

// List godoc
// @ID           listFormSubmissions
// @Summary      List submissions
// @Tags         form-submissions
// @Produce      json
// @Param        page        query    int    false "Page number" default(1)
// @Param        page_size   query    int    false "Page size" default(20) maximum(100)
// @Param        order_by    query    string false "Sort field" Enums(created_at, updated_at, submitted_at, status)
// @Param        order_dir   query    string false "Sort direction" Enums(asc, desc)
// @Param        template_id query    string false "Template ID" format(uuid)
// @Param        user_id     query    string false "Owner"
// @Param        status      query    string false "Submission status" Enums(DRAFT, PENDING, APPROVED, DENIED)
// @Success      200         {object} APIResponse[[]formapp.SubmissionResponse]
// @Failure      400         {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	req := formapp.ListSubmissionsRequest{Page: 1, PageSize: shared.DefaultPageSize}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.submissions.ListSubmissions(c.Request.Context(), id.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.Size)
}

// History godoc
// @ID           getSubmissionHistory
// @Summary      Submission status history
// @Description  Status changes oldest first
// @Tags         form-submissions
// @Produce      json
// @Param        id  path     string true "Submission ID" format(uuid)
// @Success      200 {object} APIResponse[[]formapp.StatusHistoryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/submissions/{id}/history [get]
func (h *SubmissionHandler) History(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	submissionID, ok := h.pathID(c, "submission")
	if !ok {
		return
	}

	history, err := h.submissions.GetStatusHistory(c.Request.Context(), id.TenantID, submissionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}
