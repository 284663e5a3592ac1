package form

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/workforce/backend/internal/domain/shared"
)

// Field error rules reported by template and submission validation
const (
	RuleRequired    = "required"
	RuleInvalid     = "invalid"
	RuleOptions     = "options"
	RuleLengthRange = "length_range"
	RuleLength      = "length"
	RuleType        = "type"
	RuleFormat      = "format"
	RuleOption      = "option"
)

// SignatureKey is the submission data key that carries the submitter's signature
const SignatureKey = "signature"

// FormTemplate is the aggregate root describing a fillable form.
// It owns its groupings, which own their fields, which own their options.
type FormTemplate struct {
	shared.TenantAggregateRoot
	Name                string
	Description         string
	Category            FormCategory
	Status              TemplateStatus
	IsSignatureRequired bool
	IsApprovalRequired  bool
	Groupings           []*FormGrouping
}

// FormGrouping is a titled section of a template
type FormGrouping struct {
	shared.BaseEntity
	TemplateID uuid.UUID
	Title      string
	Order      int
	Fields     []*FormField
}

// FormField is a single input on a template
type FormField struct {
	shared.BaseEntity
	GroupingID  uuid.UUID
	Label       string
	Type        FieldType
	Required    bool
	Order       int
	Placeholder string
	MinLength   *int
	MaxLength   *int
	Multiple    bool
	Options     []FormFieldOption
}

// FormFieldOption is one selectable value of a choice field
type FormFieldOption struct {
	shared.BaseEntity
	FieldID uuid.UUID
	Value   string
	Order   int
}

// Key is the submission data key holding this field's value
func (f *FormField) Key() string {
	return f.ID.String()
}

// HasOption reports whether value is one of the declared options
func (f *FormField) HasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// OptionValues returns the option values in display order
func (f *FormField) OptionValues() []string {
	values := make([]string, len(f.Options))
	for i, o := range f.Options {
		values[i] = o.Value
	}
	return values
}

func newFormTemplate(tenantID uuid.UUID, createdBy string) *FormTemplate {
	return &FormTemplate{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Status:              TemplateStatusDraft,
		Groupings:           make([]*FormGrouping, 0),
	}
}

// FindGrouping returns the grouping with the given id
func (t *FormTemplate) FindGrouping(id uuid.UUID) *FormGrouping {
	for _, g := range t.Groupings {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// FindField returns the field with the given id and the grouping that holds it
func (t *FormTemplate) FindField(id uuid.UUID) (*FormField, *FormGrouping) {
	for _, g := range t.Groupings {
		for _, f := range g.Fields {
			if f.ID == id {
				return f, g
			}
		}
	}
	return nil, nil
}

// Fields returns every field across groupings, in grouping then field order
func (t *FormTemplate) Fields() []*FormField {
	fields := make([]*FormField, 0)
	for _, g := range t.Groupings {
		fields = append(fields, g.Fields...)
	}
	return fields
}

// FieldCount returns the number of fields across all groupings
func (t *FormTemplate) FieldCount() int {
	n := 0
	for _, g := range t.Groupings {
		n += len(g.Fields)
	}
	return n
}

// IsActive reports whether users may start new submissions
func (t *FormTemplate) IsActive() bool {
	return t.Status == TemplateStatusActive
}

// Archive hides the template from new submissions
func (t *FormTemplate) Archive() error {
	return t.changeStatus(TemplateStatusArchived)
}

// Activate publishes the template
func (t *FormTemplate) Activate() error {
	if errs := t.Validate(); len(errs) > 0 {
		return shared.NewValidationError("Template is not valid", errs...)
	}
	return t.changeStatus(TemplateStatusActive)
}

func (t *FormTemplate) changeStatus(target TemplateStatus) error {
	if !t.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Cannot change template status from "+t.Status.String()+" to "+target.String())
	}
	old := t.Status
	t.Status = target
	t.Touch()
	t.AddDomainEvent(NewFormTemplateStatusChangedEvent(t, old))
	return nil
}

// Validate checks the template definition and returns every problem found.
// Field errors on fields are keyed by field id.
func (t *FormTemplate) Validate() []shared.FieldError {
	errs := make([]shared.FieldError, 0)

	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, shared.FieldError{Field: "name", Rule: RuleRequired, Message: "Template name is required"})
	} else if len(t.Name) > 200 {
		errs = append(errs, shared.FieldError{Field: "name", Rule: RuleLength, Message: "Template name cannot exceed 200 characters"})
	}
	if t.Category == "" {
		errs = append(errs, shared.FieldError{Field: "category", Rule: RuleRequired, Message: "Category is required"})
	} else if !t.Category.IsValid() {
		errs = append(errs, shared.FieldError{Field: "category", Rule: RuleInvalid, Message: "Unknown category " + t.Category.String()})
	}
	if t.Status == "" {
		errs = append(errs, shared.FieldError{Field: "active_status", Rule: RuleRequired, Message: "Status is required"})
	} else if !t.Status.IsValid() {
		errs = append(errs, shared.FieldError{Field: "active_status", Rule: RuleInvalid, Message: "Unknown status " + t.Status.String()})
	}
	if len(t.Groupings) == 0 {
		errs = append(errs, shared.FieldError{Field: "groupings", Rule: RuleRequired, Message: "At least one grouping is required"})
	}

	for _, g := range t.Groupings {
		for _, f := range g.Fields {
			errs = append(errs, validateFieldDefinition(f)...)
		}
	}
	return errs
}

func validateFieldDefinition(f *FormField) []shared.FieldError {
	key := f.Key()
	errs := make([]shared.FieldError, 0)

	if !f.Type.IsValid() {
		return append(errs, shared.FieldError{Field: key, Rule: RuleType, Message: "Unknown field type " + f.Type.String()})
	}
	if strings.TrimSpace(f.Label) == "" {
		errs = append(errs, shared.FieldError{Field: key, Rule: RuleRequired, Message: "Field label is required"})
	}
	if f.Type.IsChoice() && len(f.Options) == 0 {
		errs = append(errs, shared.FieldError{Field: key, Rule: RuleOptions, Message: "Choice field has no options"})
	}
	if (f.MinLength != nil && *f.MinLength < 0) || (f.MaxLength != nil && *f.MaxLength < 0) {
		errs = append(errs, shared.FieldError{Field: key, Rule: RuleLengthRange, Message: "Length bounds cannot be negative"})
	}
	if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
		errs = append(errs, shared.FieldError{Field: key, Rule: RuleLengthRange, Message: "minLength cannot exceed maxLength"})
	}
	return errs
}

// NormalizeOrders renumbers groupings, fields and options to 0..n-1 following
// their current relative order, and points every child at its parent.
func (t *FormTemplate) NormalizeOrders() {
	sort.SliceStable(t.Groupings, func(i, j int) bool {
		return t.Groupings[i].Order < t.Groupings[j].Order
	})
	for gi, g := range t.Groupings {
		g.Order = gi
		g.TemplateID = t.ID
		sort.SliceStable(g.Fields, func(i, j int) bool {
			return g.Fields[i].Order < g.Fields[j].Order
		})
		for fi, f := range g.Fields {
			f.Order = fi
			f.GroupingID = g.ID
			if !f.Type.IsChoice() {
				f.Options = nil
				continue
			}
			sort.SliceStable(f.Options, func(i, j int) bool {
				return f.Options[i].Order < f.Options[j].Order
			})
			for oi := range f.Options {
				f.Options[oi].Order = oi
				f.Options[oi].FieldID = f.ID
			}
		}
	}
}

func (t *FormTemplate) markSaved(created bool) {
	if created {
		t.AddDomainEvent(NewFormTemplateCreatedEvent(t))
		return
	}
	t.UpdatedAt = time.Now()
	t.AddDomainEvent(NewFormTemplateUpdatedEvent(t))
}
