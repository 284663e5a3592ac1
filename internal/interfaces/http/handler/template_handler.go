package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	formapp "github.com/workforce/backend/internal/application/form"
	"github.com/workforce/backend/internal/domain/shared"
)

// TemplateUseCases is the template side of the forms application layer
type TemplateUseCases interface {
	CreateTemplate(ctx context.Context, tenantID uuid.UUID, userID string, req formapp.TemplateRequest) (*formapp.TemplateResponse, error)
	UpdateTemplate(ctx context.Context, tenantID, templateID uuid.UUID, req formapp.TemplateRequest) (*formapp.TemplateResponse, error)
	GetTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*formapp.TemplateResponse, error)
	ListTemplates(ctx context.Context, tenantID uuid.UUID, req formapp.ListTemplatesRequest) (*formapp.ListTemplatesResponse, error)
	ArchiveTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*formapp.TemplateResponse, error)
	ActivateTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*formapp.TemplateResponse, error)
	DeleteTemplate(ctx context.Context, tenantID, templateID uuid.UUID) error
	GetReferenceData() formapp.ReferenceDataResponse
}

// TemplateHandler handles form template endpoints
type TemplateHandler struct {
	BaseHandler
	templates TemplateUseCases
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templates TemplateUseCases) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// Create godoc
// @ID           createFormTemplate
// @Summary      Create a form template
// @Description  Builds a template with its groupings and fields in one editor session
// @Tags         form-templates
// @Accept       json
// @Produce      json
// @Param        request body     formapp.TemplateRequest true "Template definition"
// @Success      201     {object} APIResponse[formapp.TemplateResponse]
// @Failure      400     {object} ErrorResponse
// @Failure      401     {object} ErrorResponse
// @Failure      403     {object} ErrorResponse
// @Failure      409     {object} ErrorResponse
// @Failure      500     {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	var req formapp.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	template, err := h.templates.CreateTemplate(c.Request.Context(), id.TenantID, id.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, template)
}

// Update godoc
// @ID           updateFormTemplate
// @Summary      Replace a template definition
// @Description  Groupings and fields carrying a known id are kept and renumbered; the rest are added or removed
// @Tags         form-templates
// @Accept       json
// @Produce      json
// @Param        id      path     string                  true "Template ID" format(uuid)
// @Param        request body     formapp.TemplateRequest true "Template definition"
// @Success      200     {object} APIResponse[formapp.TemplateResponse]
// @Failure      400     {object} ErrorResponse
// @Failure      403     {object} ErrorResponse
// @Failure      404     {object} ErrorResponse
// @Failure      409     {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/templates/{id} [put]
func (h *TemplateHandler) Update(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	templateID, ok := h.pathID(c, "template")
	if !ok {
		return
	}

	var req formapp.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	template, err := h.templates.UpdateTemplate(c.Request.Context(), id.TenantID, templateID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// GetByID godoc
// @ID           getFormTemplate
// @Summary      Get a form template
// @Tags         form-templates
// @Produce      json
// @Param        id  path     string true "Template ID" format(uuid)
// @Success      200 {object} APIResponse[formapp.TemplateResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/templates/{id} [get]
func (h *TemplateHandler) GetByID(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	templateID, ok := h.pathID(c, "template")
	if !ok {
		return
	}

	template, err := h.templates.GetTemplate(c.Request.Context(), id.TenantID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// List godoc
// @ID           listFormTemplates
// @Summary      List form templates
// @Description  Paginated, without definitions; filter by category, status or a name search
// @Tags         form-templates
// @Produce      json
// @Param        page      query    int    false "Page number" default(1)
// @Param        page_size query    int    false "Page size" default(20) maximum(100)
// @Param        order_by  query    string false "Sort field" Enums(name, category, created_at, updated_at)
// @Param        order_dir query    string false "Sort direction" Enums(asc, desc)
// @Param        search    query    string false "Name search"
// @Param        category  query    string false "Category"
// @Param        status    query    string false "Template status" Enums(ACTIVE, ARCHIVED, DRAFT)
// @Success      200       {object} APIResponse[[]formapp.TemplateResponse]
// @Failure      400       {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	req := formapp.ListTemplatesRequest{Page: 1, PageSize: shared.DefaultPageSize}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.templates.ListTemplates(c.Request.Context(), id.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.Size)
}

// Archive godoc
// @ID           archiveFormTemplate
// @Summary      Archive a form template
// @Description  Archived templates accept no new drafts; existing submissions are untouched
// @Tags         form-templates
// @Produce      json
// @Param        id  path     string true "Template ID" format(uuid)
// @Success      200 {object} APIResponse[formapp.TemplateResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/templates/{id}/archive [post]
func (h *TemplateHandler) Archive(c *gin.Context) {
	h.changeStatus(c, h.templates.ArchiveTemplate)
}

// Activate godoc
// @ID           activateFormTemplate
// @Summary      Activate a form template
// @Tags         form-templates
// @Produce      json
// @Param        id  path     string true "Template ID" format(uuid)
// @Success      200 {object} APIResponse[formapp.TemplateResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/templates/{id}/activate [post]
func (h *TemplateHandler) Activate(c *gin.Context) {
	h.changeStatus(c, h.templates.ActivateTemplate)
}

func (h *TemplateHandler) changeStatus(
	c *gin.Context,
	change func(ctx context.Context, tenantID, templateID uuid.UUID) (*formapp.TemplateResponse, error),
) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	templateID, ok := h.pathID(c, "template")
	if !ok {
		return
	}

	template, err := change(c.Request.Context(), id.TenantID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// Delete godoc
// @ID           deleteFormTemplate
// @Summary      Delete a form template
// @Description  Refused while any submission references the template
// @Tags         form-templates
// @Param        id  path string true "Template ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /forms/templates/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	templateID, ok := h.pathID(c, "template")
	if !ok {
		return
	}

	if err := h.templates.DeleteTemplate(c.Request.Context(), id.TenantID, templateID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// FieldTypes godoc
// @ID           getFormReferenceData
// @Summary      Form editor reference data
// @Description  Field types, categories and statuses
// @Tags         form-templates
// @Produce      json
// @Success      200 {object} APIResponse[formapp.ReferenceDataResponse]
// @Security     BearerAuth
// @Router       /forms/field-types [get]
func (h *TemplateHandler) FieldTypes(c *gin.Context) {
	h.Success(c, h.templates.GetReferenceData())
}
