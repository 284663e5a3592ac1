package form

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/workforce/backend/internal/domain/shared"
)

// DefaultGroupingTitle is the title of the grouping a new session starts with
const DefaultGroupingTitle = "General"

// TemplateStore persists a whole template atomically
type TemplateStore interface {
	// Save creates the template or replaces its stored groupings, fields and options
	Save(ctx context.Context, template *FormTemplate) error
}

// TemplateDetails are the template-level attributes edited in a session
type TemplateDetails struct {
	Name                string
	Description         string
	Category            FormCategory
	Status              TemplateStatus
	IsSignatureRequired bool
	IsApprovalRequired  bool
}

// FieldAttributes are the editable attributes of a field
type FieldAttributes struct {
	Label       string
	Required    bool
	Placeholder string
	MinLength   *int
	MaxLength   *int
	Multiple    bool
}

// EditorSession holds an in-progress template definition for one client.
// Nothing is persisted until Save succeeds.
type EditorSession struct {
	template *FormTemplate
	isNew    bool
}

// NewEditorSession starts a session for a template that does not exist yet
func NewEditorSession(tenantID uuid.UUID, createdBy string) *EditorSession {
	s := &EditorSession{
		template: newFormTemplate(tenantID, createdBy),
		isNew:    true,
	}
	s.AddGrouping(DefaultGroupingTitle)
	return s
}

// LoadEditorSession starts a session over a stored template
func LoadEditorSession(template *FormTemplate) *EditorSession {
	return &EditorSession{template: template}
}

// Template returns the template being edited
func (s *EditorSession) Template() *FormTemplate {
	return s.template
}

// IsNew reports whether Save will create the template
func (s *EditorSession) IsNew() bool {
	return s.isNew
}

// SetDetails replaces the template-level attributes
func (s *EditorSession) SetDetails(d TemplateDetails) {
	s.template.Name = strings.TrimSpace(d.Name)
	s.template.Description = strings.TrimSpace(d.Description)
	s.template.Category = d.Category
	s.template.Status = d.Status
	s.template.IsSignatureRequired = d.IsSignatureRequired
	s.template.IsApprovalRequired = d.IsApprovalRequired
}

// AddGrouping appends a grouping at the end of the template
func (s *EditorSession) AddGrouping(title string) *FormGrouping {
	g := &FormGrouping{
		BaseEntity: shared.NewBaseEntity(),
		TemplateID: s.template.ID,
		Title:      strings.TrimSpace(title),
		Order:      len(s.template.Groupings),
		Fields:     make([]*FormField, 0),
	}
	s.template.Groupings = append(s.template.Groupings, g)
	return g
}

// ClearGroupings drops every grouping so the definition can be rebuilt
func (s *EditorSession) ClearGroupings() {
	s.template.Groupings = make([]*FormGrouping, 0)
}

// RemoveGrouping drops a grouping together with its fields
func (s *EditorSession) RemoveGrouping(groupingID uuid.UUID) error {
	for i, g := range s.template.Groupings {
		if g.ID == groupingID {
			s.template.Groupings = append(s.template.Groupings[:i], s.template.Groupings[i+1:]...)
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeNotFound, "Grouping not found")
}

// AddField appends a field of the given type to a grouping.
// Its order is the grouping's current field count.
func (s *EditorSession) AddField(groupingID uuid.UUID, fieldType FieldType) (*FormField, error) {
	if !fieldType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unknown field type: "+fieldType.String())
	}
	g := s.template.FindGrouping(groupingID)
	if g == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Grouping not found")
	}

	f := &FormField{
		BaseEntity: shared.NewBaseEntity(),
		GroupingID: g.ID,
		Label:      fieldType.DisplayName(),
		Type:       fieldType,
		Order:      len(g.Fields),
		Multiple:   fieldType == FieldTypeMultiselect,
	}
	g.Fields = append(g.Fields, f)
	return f, nil
}

// AppendField adds a field to the first grouping, creating it when missing
func (s *EditorSession) AppendField(fieldType FieldType) (*FormField, error) {
	if len(s.template.Groupings) == 0 {
		s.AddGrouping(DefaultGroupingTitle)
	}
	return s.AddField(s.template.Groupings[0].ID, fieldType)
}

// RemoveField deletes a field. Remaining orders are left as they are
// and renumbered on save.
func (s *EditorSession) RemoveField(fieldID uuid.UUID) error {
	for _, g := range s.template.Groupings {
		for i, f := range g.Fields {
			if f.ID == fieldID {
				g.Fields = append(g.Fields[:i], g.Fields[i+1:]...)
				return nil
			}
		}
	}
	return shared.NewDomainError(shared.CodeNotFound, "Field not found")
}

// Reorder moves the field at index from to index to within a grouping,
// then renumbers every field of that grouping 0..n-1.
func (s *EditorSession) Reorder(groupingID uuid.UUID, from, to int) error {
	g := s.template.FindGrouping(groupingID)
	if g == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Grouping not found")
	}
	n := len(g.Fields)
	if from < 0 || from >= n || to < 0 || to >= n {
		return shared.NewDomainError(shared.CodeInvalidInput, "Field index out of range")
	}

	moved := g.Fields[from]
	fields := append(g.Fields[:from:from], g.Fields[from+1:]...)
	fields = append(fields[:to], append([]*FormField{moved}, fields[to:]...)...)
	g.Fields = fields

	for i, f := range g.Fields {
		f.Order = i
	}
	return nil
}

// SetFieldAttributes replaces the editable attributes of a field
func (s *EditorSession) SetFieldAttributes(fieldID uuid.UUID, attrs FieldAttributes) error {
	f, _ := s.template.FindField(fieldID)
	if f == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Field not found")
	}
	f.Label = strings.TrimSpace(attrs.Label)
	f.Required = attrs.Required
	f.Placeholder = attrs.Placeholder
	f.MinLength = attrs.MinLength
	f.MaxLength = attrs.MaxLength
	f.Multiple = attrs.Multiple
	if !f.Type.IsTextLike() {
		f.MinLength = nil
		f.MaxLength = nil
	}
	return nil
}

// AddOption appends an option to a choice field
func (s *EditorSession) AddOption(fieldID uuid.UUID, value string) (FormFieldOption, error) {
	f, _ := s.template.FindField(fieldID)
	if f == nil {
		return FormFieldOption{}, shared.NewDomainError(shared.CodeNotFound, "Field not found")
	}
	if !f.Type.IsChoice() {
		return FormFieldOption{}, shared.NewDomainError(shared.CodeInvalidInput, "Only choice fields take options")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return FormFieldOption{}, shared.NewDomainError(shared.CodeInvalidInput, "Option value cannot be empty")
	}
	if f.HasOption(value) {
		return FormFieldOption{}, shared.NewDomainError(shared.CodeAlreadyExists, "Option already exists: "+value)
	}

	o := FormFieldOption{
		BaseEntity: shared.NewBaseEntity(),
		FieldID:    f.ID,
		Value:      value,
		Order:      len(f.Options),
	}
	f.Options = append(f.Options, o)
	return o, nil
}

// Validate returns every problem that would block Save
func (s *EditorSession) Validate() []shared.FieldError {
	return s.template.Validate()
}

// Save validates, normalizes orders and hands the template to the store.
// The store is not called when validation fails.
func (s *EditorSession) Save(ctx context.Context, store TemplateStore) (uuid.UUID, error) {
	if errs := s.Validate(); len(errs) > 0 {
		return uuid.Nil, shared.NewValidationError("Template is not valid", errs...)
	}

	s.template.NormalizeOrders()
	s.template.markSaved(s.isNew)

	if err := store.Save(ctx, s.template); err != nil {
		s.template.ClearDomainEvents()
		return uuid.Nil, err
	}
	s.isNew = false
	return s.template.ID, nil
}
