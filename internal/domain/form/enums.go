package form

// FieldType is the closed set of input kinds a form field can take
type FieldType string

const (
	FieldTypeText        FieldType = "TEXT"
	FieldTypeTextarea    FieldType = "TEXTAREA"
	FieldTypeNumber      FieldType = "NUMBER"
	FieldTypeDate        FieldType = "DATE"
	FieldTypeTime        FieldType = "TIME"
	FieldTypeDateTime    FieldType = "DATETIME"
	FieldTypeCheckbox    FieldType = "CHECKBOX"
	FieldTypeDropdown    FieldType = "DROPDOWN"
	FieldTypeRadio       FieldType = "RADIO"
	FieldTypeMultiselect FieldType = "MULTISELECT"
)

// IsValid checks if the FieldType is a valid value
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeNumber,
		FieldTypeDate, FieldTypeTime, FieldTypeDateTime,
		FieldTypeCheckbox, FieldTypeDropdown, FieldTypeRadio, FieldTypeMultiselect:
		return true
	}
	return false
}

// String returns the string representation of FieldType
func (t FieldType) String() string {
	return string(t)
}

// IsChoice reports whether the field picks from declared options
func (t FieldType) IsChoice() bool {
	switch t {
	case FieldTypeDropdown, FieldTypeRadio, FieldTypeMultiselect:
		return true
	case FieldTypeText, FieldTypeTextarea, FieldTypeNumber,
		FieldTypeDate, FieldTypeTime, FieldTypeDateTime, FieldTypeCheckbox:
		return false
	}
	return false
}

// IsTextLike reports whether min/max length bounds apply to the field
func (t FieldType) IsTextLike() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea:
		return true
	case FieldTypeNumber, FieldTypeDate, FieldTypeTime, FieldTypeDateTime,
		FieldTypeCheckbox, FieldTypeDropdown, FieldTypeRadio, FieldTypeMultiselect:
		return false
	}
	return false
}

// DisplayName is the default label given to a freshly added field
func (t FieldType) DisplayName() string {
	switch t {
	case FieldTypeText:
		return "Text"
	case FieldTypeTextarea:
		return "Paragraph"
	case FieldTypeNumber:
		return "Number"
	case FieldTypeDate:
		return "Date"
	case FieldTypeTime:
		return "Time"
	case FieldTypeDateTime:
		return "Date & Time"
	case FieldTypeCheckbox:
		return "Checkbox"
	case FieldTypeDropdown:
		return "Dropdown"
	case FieldTypeRadio:
		return "Single Choice"
	case FieldTypeMultiselect:
		return "Multiple Choice"
	default:
		return string(t)
	}
}

// AllFieldTypes returns all valid FieldType values
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText, FieldTypeTextarea, FieldTypeNumber,
		FieldTypeDate, FieldTypeTime, FieldTypeDateTime,
		FieldTypeCheckbox, FieldTypeDropdown, FieldTypeRadio, FieldTypeMultiselect,
	}
}

// FormCategory groups templates for browsing
type FormCategory string

const (
	FormCategoryGeneral     FormCategory = "GENERAL"
	FormCategorySafety      FormCategory = "SAFETY"
	FormCategoryInspection  FormCategory = "INSPECTION"
	FormCategoryMaintenance FormCategory = "MAINTENANCE"
	FormCategoryIncident    FormCategory = "INCIDENT"
	FormCategoryHR          FormCategory = "HR"
	FormCategoryOther       FormCategory = "OTHER"
)

// IsValid checks if the FormCategory is a valid value
func (c FormCategory) IsValid() bool {
	switch c {
	case FormCategoryGeneral, FormCategorySafety, FormCategoryInspection,
		FormCategoryMaintenance, FormCategoryIncident, FormCategoryHR, FormCategoryOther:
		return true
	}
	return false
}

// String returns the string representation of FormCategory
func (c FormCategory) String() string {
	return string(c)
}

// AllFormCategories returns all valid FormCategory values
func AllFormCategories() []FormCategory {
	return []FormCategory{
		FormCategoryGeneral, FormCategorySafety, FormCategoryInspection,
		FormCategoryMaintenance, FormCategoryIncident, FormCategoryHR, FormCategoryOther,
	}
}

// TemplateStatus is the publication state of a template
type TemplateStatus string

const (
	TemplateStatusDraft    TemplateStatus = "DRAFT"
	TemplateStatusActive   TemplateStatus = "ACTIVE"
	TemplateStatusArchived TemplateStatus = "ARCHIVED"
)

// IsValid checks if the TemplateStatus is a valid value
func (s TemplateStatus) IsValid() bool {
	switch s {
	case TemplateStatusDraft, TemplateStatusActive, TemplateStatusArchived:
		return true
	}
	return false
}

// String returns the string representation of TemplateStatus
func (s TemplateStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s TemplateStatus) CanTransitionTo(target TemplateStatus) bool {
	switch s {
	case TemplateStatusDraft:
		return target == TemplateStatusActive || target == TemplateStatusArchived
	case TemplateStatusActive:
		return target == TemplateStatusArchived
	case TemplateStatusArchived:
		return target == TemplateStatusActive
	}
	return false
}

// AllTemplateStatuses returns all valid TemplateStatus values
func AllTemplateStatuses() []TemplateStatus {
	return []TemplateStatus{TemplateStatusDraft, TemplateStatusActive, TemplateStatusArchived}
}

// SubmissionStatus is the lifecycle state of a submission
type SubmissionStatus string

const (
	SubmissionStatusDraft    SubmissionStatus = "DRAFT"
	SubmissionStatusPending  SubmissionStatus = "PENDING"
	SubmissionStatusApproved SubmissionStatus = "APPROVED"
	SubmissionStatusDenied   SubmissionStatus = "DENIED"
)

// IsValid checks if the SubmissionStatus is a valid value
func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionStatusDraft, SubmissionStatusPending,
		SubmissionStatusApproved, SubmissionStatusDenied:
		return true
	}
	return false
}

// String returns the string representation of SubmissionStatus
func (s SubmissionStatus) String() string {
	return string(s)
}

// IsDecided reports whether an approver has closed the submission
func (s SubmissionStatus) IsDecided() bool {
	switch s {
	case SubmissionStatusApproved, SubmissionStatusDenied:
		return true
	case SubmissionStatusDraft, SubmissionStatusPending:
		return false
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status.
// Decided submissions only go back to PENDING through an admin edit.
func (s SubmissionStatus) CanTransitionTo(target SubmissionStatus) bool {
	switch s {
	case SubmissionStatusDraft:
		return target == SubmissionStatusPending
	case SubmissionStatusPending:
		return target == SubmissionStatusApproved || target == SubmissionStatusDenied
	case SubmissionStatusApproved, SubmissionStatusDenied:
		return target == SubmissionStatusPending
	}
	return false
}

// AllSubmissionStatuses returns all valid SubmissionStatus values
func AllSubmissionStatuses() []SubmissionStatus {
	return []SubmissionStatus{
		SubmissionStatusDraft, SubmissionStatusPending,
		SubmissionStatusApproved, SubmissionStatusDenied,
	}
}

// Decision is an approver's verdict on a pending submission
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionDenied   Decision = "DENIED"
)

// IsValid checks if the Decision is a valid value
func (d Decision) IsValid() bool {
	switch d {
	case DecisionApproved, DecisionDenied:
		return true
	}
	return false
}

// String returns the string representation of Decision
func (d Decision) String() string {
	return string(d)
}

// Status maps the decision onto the submission status it produces
func (d Decision) Status() SubmissionStatus {
	switch d {
	case DecisionApproved:
		return SubmissionStatusApproved
	case DecisionDenied:
		return SubmissionStatusDenied
	}
	return ""
}
