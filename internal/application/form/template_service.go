package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/workforce/backend/internal/domain/form"
	"github.com/workforce/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TemplateService handles form template operations
type TemplateService struct {
	templateRepo   form.FormTemplateRepository
	submissionRepo form.FormSubmissionRepository
	logger         *zap.Logger
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(
	templateRepo form.FormTemplateRepository,
	submissionRepo form.FormSubmissionRepository,
	logger *zap.Logger,
) *TemplateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{
		templateRepo:   templateRepo,
		submissionRepo: submissionRepo,
		logger:         logger,
	}
}

// CreateTemplate builds a new template in an editor session and saves it
func (s *TemplateService) CreateTemplate(ctx context.Context, tenantID uuid.UUID, userID string, req TemplateRequest) (*TemplateResponse, error) {
	exists, err := s.templateRepo.ExistsByName(ctx, tenantID, strings.TrimSpace(req.Name), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check template existence: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Template with this name already exists")
	}

	session := form.NewEditorSession(tenantID, userID)
	if err := applyDefinition(session, req); err != nil {
		return nil, err
	}

	if _, err := session.Save(ctx, s.templateRepo); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	template := session.Template()
	template.ClearDomainEvents()

	s.logger.Info("form template created",
		zap.String("id", template.ID.String()),
		zap.String("name", template.Name),
		zap.Int("fields", template.FieldCount()))

	return toTemplateResponse(template, true), nil
}

// UpdateTemplate replaces the definition of an existing template.
// Groupings and fields that keep their id are updated in place.
func (s *TemplateService) UpdateTemplate(ctx context.Context, tenantID, templateID uuid.UUID, req TemplateRequest) (*TemplateResponse, error) {
	template, err := s.findTemplate(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != template.Version {
		return nil, shared.NewDomainError(shared.CodeConcurrencyConflict,
			"Template was modified by another user, reload and retry")
	}

	name := strings.TrimSpace(req.Name)
	if name != template.Name {
		exists, err := s.templateRepo.ExistsByName(ctx, tenantID, name, &templateID)
		if err != nil {
			return nil, fmt.Errorf("failed to check template existence: %w", err)
		}
		if exists {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Template with this name already exists")
		}
	}

	session := form.LoadEditorSession(template)
	if err := applyDefinition(session, req); err != nil {
		return nil, err
	}

	if _, err := session.Save(ctx, s.templateRepo); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	template.ClearDomainEvents()

	s.logger.Info("form template updated",
		zap.String("id", template.ID.String()),
		zap.Int("version", template.Version))

	return toTemplateResponse(template, true), nil
}

// GetTemplate retrieves a template with its full definition
func (s *TemplateService) GetTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.findTemplate(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	return toTemplateResponse(template, true), nil
}

// ListTemplates retrieves a paginated list of templates
func (s *TemplateService) ListTemplates(ctx context.Context, tenantID uuid.UUID, req ListTemplatesRequest) (*ListTemplatesResponse, error) {
	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}.Normalized()
	if req.Category != "" {
		category := form.FormCategory(req.Category)
		if !category.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid category")
		}
		filter = filter.With("category", category.String())
	}
	if req.Status != "" {
		status := form.TemplateStatus(req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid template status")
		}
		filter = filter.With("status", status.String())
	}

	templates, err := s.templateRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	total, err := s.templateRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count templates: %w", err)
	}

	items := make([]TemplateResponse, len(templates))
	for i := range templates {
		items[i] = *toTemplateResponse(&templates[i], false)
	}

	return &ListTemplatesResponse{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Size:  filter.PageSize,
	}, nil
}

// ArchiveTemplate hides a template from new submissions
func (s *TemplateService) ArchiveTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	return s.changeStatus(ctx, tenantID, templateID, (*form.FormTemplate).Archive)
}

// ActivateTemplate publishes a template
func (s *TemplateService) ActivateTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	return s.changeStatus(ctx, tenantID, templateID, (*form.FormTemplate).Activate)
}

func (s *TemplateService) changeStatus(
	ctx context.Context,
	tenantID, templateID uuid.UUID,
	transition func(*form.FormTemplate) error,
) (*TemplateResponse, error) {
	template, err := s.findTemplate(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	if err := transition(template); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	template.ClearDomainEvents()

	s.logger.Info("form template status changed",
		zap.String("id", template.ID.String()),
		zap.String("status", template.Status.String()))

	return toTemplateResponse(template, true), nil
}

// DeleteTemplate removes a template that no submission references
func (s *TemplateService) DeleteTemplate(ctx context.Context, tenantID, templateID uuid.UUID) error {
	if _, err := s.findTemplate(ctx, tenantID, templateID); err != nil {
		return err
	}

	count, err := s.submissionRepo.CountByTemplate(ctx, tenantID, templateID)
	if err != nil {
		return fmt.Errorf("failed to count submissions: %w", err)
	}
	if count > 0 {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Template is referenced by %d submissions; archive it instead", count))
	}

	if err := s.templateRepo.Delete(ctx, tenantID, templateID); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	s.logger.Info("form template deleted", zap.String("id", templateID.String()))
	return nil
}

// GetReferenceData returns the field types, categories and statuses
func (s *TemplateService) GetReferenceData() ReferenceDataResponse {
	types := form.AllFieldTypes()
	fieldTypes := make([]FieldTypeResponse, len(types))
	for i, ft := range types {
		fieldTypes[i] = FieldTypeResponse{
			Code:        ft.String(),
			DisplayName: ft.DisplayName(),
			IsChoice:    ft.IsChoice(),
			IsTextLike:  ft.IsTextLike(),
		}
	}

	categories := make([]string, 0)
	for _, c := range form.AllFormCategories() {
		categories = append(categories, c.String())
	}
	templateStatuses := make([]string, 0)
	for _, st := range form.AllTemplateStatuses() {
		templateStatuses = append(templateStatuses, st.String())
	}
	submissionStatuses := make([]string, 0)
	for _, st := range form.AllSubmissionStatuses() {
		submissionStatuses = append(submissionStatuses, st.String())
	}

	return ReferenceDataResponse{
		FieldTypes:         fieldTypes,
		Categories:         categories,
		TemplateStatuses:   templateStatuses,
		SubmissionStatuses: submissionStatuses,
	}
}

func (s *TemplateService) findTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*form.FormTemplate, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Template not found")
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// applyDefinition rebuilds the session's definition from a request.
// Ids from the request are reused only when they name an existing grouping
// or field of the session's template.
func applyDefinition(session *form.EditorSession, req TemplateRequest) error {
	existing := session.Template()
	knownGroupings := make(map[uuid.UUID]*form.FormGrouping)
	knownFields := make(map[uuid.UUID]*form.FormField)
	if !session.IsNew() {
		for _, g := range existing.Groupings {
			knownGroupings[g.ID] = g
			for _, f := range g.Fields {
				knownFields[f.ID] = f
			}
		}
	}

	status := form.TemplateStatus(req.ActiveStatus)
	if status == "" {
		status = existing.Status
	}
	session.SetDetails(form.TemplateDetails{
		Name:                req.Name,
		Description:         req.Description,
		Category:            form.FormCategory(req.Category),
		Status:              status,
		IsSignatureRequired: req.IsSignatureRequired,
		IsApprovalRequired:  req.IsApprovalRequired,
	})

	session.ClearGroupings()
	for _, gr := range req.Groupings {
		title := gr.Title
		if strings.TrimSpace(title) == "" {
			title = form.DefaultGroupingTitle
		}
		g := session.AddGrouping(title)
		if prev := lookup(knownGroupings, gr.ID); prev != nil {
			g.ID = prev.ID
			g.CreatedAt = prev.CreatedAt
			delete(knownGroupings, prev.ID)
		}

		for _, fr := range gr.Fields {
			f, err := session.AddField(g.ID, form.FieldType(fr.Type))
			if err != nil {
				return err
			}
			if prev := lookup(knownFields, fr.ID); prev != nil {
				f.ID = prev.ID
				f.CreatedAt = prev.CreatedAt
				delete(knownFields, prev.ID)
			}
			if fr.Multiple != nil {
				f.Multiple = *fr.Multiple
			}
			if err := session.SetFieldAttributes(f.ID, form.FieldAttributes{
				Label:       fr.Label,
				Required:    fr.Required,
				Placeholder: fr.Placeholder,
				MinLength:   fr.MinLength,
				MaxLength:   fr.MaxLength,
				Multiple:    f.Multiple,
			}); err != nil {
				return err
			}
			for _, value := range fr.Options {
				if _, err := session.AddOption(f.ID, value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func lookup[T any](known map[uuid.UUID]*T, id *string) *T {
	if id == nil {
		return nil
	}
	parsed, err := uuid.Parse(*id)
	if err != nil {
		return nil
	}
	return known[parsed]
}

func toTemplateResponse(t *form.FormTemplate, withDefinition bool) *TemplateResponse {
	resp := &TemplateResponse{
		ID:                  t.ID.String(),
		TenantID:            t.TenantID.String(),
		Name:                t.Name,
		Description:         t.Description,
		Category:            t.Category.String(),
		ActiveStatus:        t.Status.String(),
		IsSignatureRequired: t.IsSignatureRequired,
		IsApprovalRequired:  t.IsApprovalRequired,
		CreatedBy:           t.CreatedBy,
		Version:             t.Version,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
	if !withDefinition {
		return resp
	}

	resp.Groupings = make([]GroupingResponse, len(t.Groupings))
	for gi, g := range t.Groupings {
		fields := make([]FieldResponse, len(g.Fields))
		for fi, f := range g.Fields {
			options := make([]OptionResponse, len(f.Options))
			for oi, o := range f.Options {
				options[oi] = OptionResponse{ID: o.ID.String(), Value: o.Value, Order: o.Order}
			}
			fields[fi] = FieldResponse{
				ID:          f.ID.String(),
				Label:       f.Label,
				Type:        f.Type.String(),
				Required:    f.Required,
				Order:       f.Order,
				Placeholder: f.Placeholder,
				MinLength:   f.MinLength,
				MaxLength:   f.MaxLength,
				Multiple:    f.Multiple,
				Options:     options,
			}
		}
		resp.Groupings[gi] = GroupingResponse{
			ID:     g.ID.String(),
			Title:  g.Title,
			Order:  g.Order,
			Fields: fields,
		}
	}
	return resp
}
