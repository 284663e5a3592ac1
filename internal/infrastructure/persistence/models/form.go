package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/workforce/backend/internal/domain/form"
	"gorm.io/datatypes"
)

// FormTemplateModel is the GORM model for form_templates table
type FormTemplateModel struct {
	TenantAggregateModel
	Name                string              `gorm:"type:varchar(200);not null"`
	Description         string              `gorm:"type:text"`
	Category            string              `gorm:"type:varchar(30);not null;index"`
	Status              string              `gorm:"type:varchar(20);not null;index"`
	IsSignatureRequired bool                `gorm:"column:is_signature_required;not null"`
	IsApprovalRequired  bool                `gorm:"column:is_approval_required;not null"`
	Groupings           []FormGroupingModel `gorm:"foreignKey:TemplateID;references:ID"`
}

// TableName returns the table name for FormTemplateModel
func (FormTemplateModel) TableName() string {
	return "form_templates"
}

// FormGroupingModel is the GORM model for form_groupings table
type FormGroupingModel struct {
	BaseModel
	TemplateID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Title      string           `gorm:"type:varchar(200);not null"`
	SortOrder  int              `gorm:"column:sort_order;not null"`
	Fields     []FormFieldModel `gorm:"foreignKey:GroupingID;references:ID"`
}

// TableName returns the table name for FormGroupingModel
func (FormGroupingModel) TableName() string {
	return "form_groupings"
}

// FormFieldModel is the GORM model for form_fields table.
// TemplateID is denormalized so a template's rows can be pruned in one statement.
type FormFieldModel struct {
	BaseModel
	TemplateID  uuid.UUID              `gorm:"type:uuid;not null;index"`
	GroupingID  uuid.UUID              `gorm:"type:uuid;not null;index"`
	Label       string                 `gorm:"type:varchar(200);not null"`
	FieldType   string                 `gorm:"column:field_type;type:varchar(20);not null"`
	Required    bool                   `gorm:"not null"`
	SortOrder   int                    `gorm:"column:sort_order;not null"`
	Placeholder string                 `gorm:"type:varchar(200)"`
	MinLength   *int                   `gorm:"column:min_length"`
	MaxLength   *int                   `gorm:"column:max_length"`
	Multiple    bool                   `gorm:"not null"`
	Options     []FormFieldOptionModel `gorm:"foreignKey:FieldID;references:ID"`
}

// TableName returns the table name for FormFieldModel
func (FormFieldModel) TableName() string {
	return "form_fields"
}

// FormFieldOptionModel is the GORM model for form_field_options table
type FormFieldOptionModel struct {
	BaseModel
	TemplateID uuid.UUID `gorm:"type:uuid;not null;index"`
	FieldID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Value      string    `gorm:"type:varchar(200);not null"`
	SortOrder  int       `gorm:"column:sort_order;not null"`
}

// TableName returns the table name for FormFieldOptionModel
func (FormFieldOptionModel) TableName() string {
	return "form_field_options"
}

// ToDomain converts FormTemplateModel to domain FormTemplate.
// Children are expected to be preloaded in sort order.
func (m *FormTemplateModel) ToDomain() *form.FormTemplate {
	t := &form.FormTemplate{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		Description:         m.Description,
		Category:            form.FormCategory(m.Category),
		Status:              form.TemplateStatus(m.Status),
		IsSignatureRequired: m.IsSignatureRequired,
		IsApprovalRequired:  m.IsApprovalRequired,
		Groupings:           make([]*form.FormGrouping, 0, len(m.Groupings)),
	}
	for i := range m.Groupings {
		t.Groupings = append(t.Groupings, m.Groupings[i].ToDomain())
	}
	return t
}

// ToDomain converts FormGroupingModel to domain FormGrouping
func (m *FormGroupingModel) ToDomain() *form.FormGrouping {
	g := &form.FormGrouping{
		BaseEntity: m.BaseModel.ToDomain(),
		TemplateID: m.TemplateID,
		Title:      m.Title,
		Order:      m.SortOrder,
		Fields:     make([]*form.FormField, 0, len(m.Fields)),
	}
	for i := range m.Fields {
		g.Fields = append(g.Fields, m.Fields[i].ToDomain())
	}
	return g
}

// ToDomain converts FormFieldModel to domain FormField
func (m *FormFieldModel) ToDomain() *form.FormField {
	f := &form.FormField{
		BaseEntity:  m.BaseModel.ToDomain(),
		GroupingID:  m.GroupingID,
		Label:       m.Label,
		Type:        form.FieldType(m.FieldType),
		Required:    m.Required,
		Order:       m.SortOrder,
		Placeholder: m.Placeholder,
		MinLength:   m.MinLength,
		MaxLength:   m.MaxLength,
		Multiple:    m.Multiple,
	}
	if len(m.Options) > 0 {
		f.Options = make([]form.FormFieldOption, len(m.Options))
		for i, o := range m.Options {
			f.Options[i] = form.FormFieldOption{
				BaseEntity: o.BaseModel.ToDomain(),
				FieldID:    o.FieldID,
				Value:      o.Value,
				Order:      o.SortOrder,
			}
		}
	}
	return f
}

// FormTemplateModelFromDomain creates the template row without its children
func FormTemplateModelFromDomain(t *form.FormTemplate) *FormTemplateModel {
	m := &FormTemplateModel{
		Name:                t.Name,
		Description:         t.Description,
		Category:            string(t.Category),
		Status:              string(t.Status),
		IsSignatureRequired: t.IsSignatureRequired,
		IsApprovalRequired:  t.IsApprovalRequired,
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	return m
}

// FormTemplateChildren holds the flattened child rows of a template
type FormTemplateChildren struct {
	Groupings []FormGroupingModel
	Fields    []FormFieldModel
	Options   []FormFieldOptionModel
}

// FormTemplateChildrenFromDomain flattens the groupings, fields and options of a template
func FormTemplateChildrenFromDomain(t *form.FormTemplate) FormTemplateChildren {
	var c FormTemplateChildren
	for _, g := range t.Groupings {
		gm := FormGroupingModel{
			TemplateID: t.ID,
			Title:      g.Title,
			SortOrder:  g.Order,
		}
		gm.FromDomainBaseEntity(g.BaseEntity)
		c.Groupings = append(c.Groupings, gm)

		for _, f := range g.Fields {
			fm := FormFieldModel{
				TemplateID:  t.ID,
				GroupingID:  g.ID,
				Label:       f.Label,
				FieldType:   string(f.Type),
				Required:    f.Required,
				SortOrder:   f.Order,
				Placeholder: f.Placeholder,
				MinLength:   f.MinLength,
				MaxLength:   f.MaxLength,
				Multiple:    f.Multiple,
			}
			fm.FromDomainBaseEntity(f.BaseEntity)
			c.Fields = append(c.Fields, fm)

			for _, o := range f.Options {
				om := FormFieldOptionModel{
					TemplateID: t.ID,
					FieldID:    f.ID,
					Value:      o.Value,
					SortOrder:  o.Order,
				}
				om.FromDomainBaseEntity(o.BaseEntity)
				c.Options = append(c.Options, om)
			}
		}
	}
	return c
}

// GroupingIDs returns the ids of the flattened groupings
func (c FormTemplateChildren) GroupingIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Groupings))
	for i := range c.Groupings {
		ids[i] = c.Groupings[i].ID
	}
	return ids
}

// FieldIDs returns the ids of the flattened fields
func (c FormTemplateChildren) FieldIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Fields))
	for i := range c.Fields {
		ids[i] = c.Fields[i].ID
	}
	return ids
}

// OptionIDs returns the ids of the flattened options
func (c FormTemplateChildren) OptionIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Options))
	for i := range c.Options {
		ids[i] = c.Options[i].ID
	}
	return ids
}

// FormSubmissionModel is the GORM model for form_submissions table
type FormSubmissionModel struct {
	TenantAggregateModel
	TemplateID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	UserID      string              `gorm:"type:varchar(100);not null;index"`
	Data        datatypes.JSON      `gorm:"type:jsonb;not null"`
	Status      string              `gorm:"type:varchar(20);not null;index"`
	SubmittedAt *time.Time          `gorm:"column:submitted_at"`
	Approvals   []FormApprovalModel `gorm:"foreignKey:SubmissionID;references:ID"`
}

// TableName returns the table name for FormSubmissionModel
func (FormSubmissionModel) TableName() string {
	return "form_submissions"
}

// FormApprovalModel is the GORM model for form_approvals table.
// (submission_id, signed_by) is unique.
type FormApprovalModel struct {
	BaseModel
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_form_approvals_submission_signer,priority:1"`
	SignedBy     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_form_approvals_submission_signer,priority:2"`
	Decision     string    `gorm:"type:varchar(20);not null"`
	Comment      *string   `gorm:"type:text"`
	Signature    *string   `gorm:"type:text"`
	SubmittedAt  time.Time `gorm:"column:submitted_at;not null"`
}

// TableName returns the table name for FormApprovalModel
func (FormApprovalModel) TableName() string {
	return "form_approvals"
}

// ToDomain converts FormSubmissionModel to domain FormSubmission
func (m *FormSubmissionModel) ToDomain() (*form.FormSubmission, error) {
	data, err := decodeSubmissionData(m.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data of submission %s: %w", m.ID, err)
	}
	s := &form.FormSubmission{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		TemplateID:          m.TemplateID,
		UserID:              m.UserID,
		Data:                data,
		Status:              form.SubmissionStatus(m.Status),
		SubmittedAt:         m.SubmittedAt,
		Approvals:           make([]form.FormApproval, len(m.Approvals)),
	}
	for i := range m.Approvals {
		s.Approvals[i] = m.Approvals[i].ToDomain()
	}
	return s, nil
}

// ToDomain converts FormApprovalModel to domain FormApproval
func (m *FormApprovalModel) ToDomain() form.FormApproval {
	return form.FormApproval{
		BaseEntity:   m.BaseModel.ToDomain(),
		SubmissionID: m.SubmissionID,
		SignedBy:     m.SignedBy,
		Decision:     form.Decision(m.Decision),
		Comment:      m.Comment,
		Signature:    m.Signature,
		SubmittedAt:  m.SubmittedAt,
	}
}

// FormSubmissionModelFromDomain creates the submission row without its approvals
func FormSubmissionModelFromDomain(s *form.FormSubmission) (*FormSubmissionModel, error) {
	data, err := json.Marshal(s.Data.Clone())
	if err != nil {
		return nil, fmt.Errorf("failed to encode data of submission %s: %w", s.ID, err)
	}
	m := &FormSubmissionModel{
		TemplateID:  s.TemplateID,
		UserID:      s.UserID,
		Data:        datatypes.JSON(data),
		Status:      string(s.Status),
		SubmittedAt: s.SubmittedAt,
	}
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	return m, nil
}

// FormApprovalModelFromDomain creates a FormApprovalModel from domain FormApproval
func FormApprovalModelFromDomain(a *form.FormApproval) *FormApprovalModel {
	m := &FormApprovalModel{
		SubmissionID: a.SubmissionID,
		SignedBy:     a.SignedBy,
		Decision:     string(a.Decision),
		Comment:      a.Comment,
		Signature:    a.Signature,
		SubmittedAt:  a.SubmittedAt,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// decodeSubmissionData keeps numbers as json.Number so large and decimal
// values survive a round trip unchanged.
func decodeSubmissionData(raw datatypes.JSON) (form.SubmissionData, error) {
	data := form.SubmissionData{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return data, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		data = form.SubmissionData{}
	}
	return data, nil
}

// FormStatusHistoryModel is the GORM model for form_submission_status_history table
type FormStatusHistoryModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;index"`
	EventID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	FromStatus   string    `gorm:"type:varchar(20);not null;default:''"`
	ToStatus     string    `gorm:"type:varchar(20);not null"`
	ChangedBy    string    `gorm:"type:varchar(100);not null;default:''"`
	Reason       string    `gorm:"type:text"`
	OccurredAt   time.Time `gorm:"not null;index"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for FormStatusHistoryModel
func (FormStatusHistoryModel) TableName() string {
	return "form_submission_status_history"
}

// ToDomain converts FormStatusHistoryModel to domain StatusHistoryEntry
func (m *FormStatusHistoryModel) ToDomain() form.StatusHistoryEntry {
	return form.StatusHistoryEntry{
		ID:           m.ID,
		TenantID:     m.TenantID,
		SubmissionID: m.SubmissionID,
		EventID:      m.EventID,
		FromStatus:   form.SubmissionStatus(m.FromStatus),
		ToStatus:     form.SubmissionStatus(m.ToStatus),
		ChangedBy:    m.ChangedBy,
		Reason:       m.Reason,
		OccurredAt:   m.OccurredAt,
	}
}

// FormStatusHistoryModelFromDomain creates a FormStatusHistoryModel from a domain entry
func FormStatusHistoryModelFromDomain(e *form.StatusHistoryEntry) *FormStatusHistoryModel {
	return &FormStatusHistoryModel{
		ID:           e.ID,
		TenantID:     e.TenantID,
		SubmissionID: e.SubmissionID,
		EventID:      e.EventID,
		FromStatus:   string(e.FromStatus),
		ToStatus:     string(e.ToStatus),
		ChangedBy:    e.ChangedBy,
		Reason:       e.Reason,
		OccurredAt:   e.OccurredAt,
		CreatedAt:    time.Now(),
	}
}
