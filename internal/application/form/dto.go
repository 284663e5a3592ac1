package form

import (
	"time"
)

// =============================================================================
// Template DTOs
// =============================================================================

// TemplateRequest carries a full template definition.
// Creates and updates both replace the whole definition.
type TemplateRequest struct {
	Name                string            `json:"name" binding:"required,min=1,max=200"`
	Description         string            `json:"description" binding:"max=2000"`
	Category            string            `json:"category" binding:"required"`
	ActiveStatus        string            `json:"active_status" binding:"omitempty,oneof=ACTIVE ARCHIVED DRAFT"`
	IsSignatureRequired bool              `json:"is_signature_required"`
	IsApprovalRequired  bool              `json:"is_approval_required"`
	Groupings           []GroupingRequest `json:"groupings" binding:"required,min=1,dive"`

	// Version is the template version the edit is based on; updates fail when it is stale
	Version *int `json:"version,omitempty" binding:"omitempty,min=1"`
}

// GroupingRequest is one grouping in a template definition.
// ID is kept when it names a grouping of the template being updated.
type GroupingRequest struct {
	ID     *string        `json:"id" binding:"omitempty,uuid"`
	Title  string         `json:"title" binding:"max=200"`
	Fields []FieldRequest `json:"fields" binding:"dive"`
}

// FieldRequest is one field in a grouping
type FieldRequest struct {
	ID          *string  `json:"id" binding:"omitempty,uuid"`
	Label       string   `json:"label" binding:"required,max=200"`
	Type        string   `json:"type" binding:"required"`
	Required    bool     `json:"required"`
	Placeholder string   `json:"placeholder" binding:"max=200"`
	MinLength   *int     `json:"min_length" binding:"omitempty,min=0"`
	MaxLength   *int     `json:"max_length" binding:"omitempty,min=0"`
	Multiple    *bool    `json:"multiple"`
	Options     []string `json:"options" binding:"dive,max=200"`
}

// ListTemplatesRequest represents a request to list templates
type ListTemplatesRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
	Category string `form:"category"`
	Status   string `form:"status"`
}

// TemplateResponse represents a form template with its definition
type TemplateResponse struct {
	ID                  string             `json:"id"`
	TenantID            string             `json:"tenant_id"`
	Name                string             `json:"name"`
	Description         string             `json:"description"`
	Category            string             `json:"category"`
	ActiveStatus        string             `json:"active_status"`
	IsSignatureRequired bool               `json:"is_signature_required"`
	IsApprovalRequired  bool               `json:"is_approval_required"`
	CreatedBy           string             `json:"created_by,omitempty"`
	Version             int                `json:"version"`
	Groupings           []GroupingResponse `json:"groupings,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// GroupingResponse represents a grouping of a template
type GroupingResponse struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Order  int             `json:"order"`
	Fields []FieldResponse `json:"fields"`
}

// FieldResponse represents a field of a grouping
type FieldResponse struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Type        string           `json:"type"`
	Required    bool             `json:"required"`
	Order       int              `json:"order"`
	Placeholder string           `json:"placeholder,omitempty"`
	MinLength   *int             `json:"min_length,omitempty"`
	MaxLength   *int             `json:"max_length,omitempty"`
	Multiple    bool             `json:"multiple"`
	Options     []OptionResponse `json:"options,omitempty"`
}

// OptionResponse represents an option of a choice field
type OptionResponse struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Order int    `json:"order"`
}

// ListTemplatesResponse represents a paginated list of templates
type ListTemplatesResponse struct {
	Items []TemplateResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
}

// =============================================================================
// Submission DTOs
// =============================================================================

// CreateDraftRequest starts a submission against a template
type CreateDraftRequest struct {
	TemplateID string `json:"template_id" binding:"required,uuid"`
}

// SubmissionDataRequest carries the field values of a submission
type SubmissionDataRequest struct {
	Data map[string]any `json:"data"`
}

// ApproveRequest records an approver's decision
type ApproveRequest struct {
	Decision  string  `json:"decision" binding:"required,oneof=APPROVED DENIED"`
	Comment   *string `json:"comment" binding:"omitempty,max=2000"`
	Signature *string `json:"signature"`
}

// ListSubmissionsRequest represents a request to list submissions
type ListSubmissionsRequest struct {
	Page       int    `form:"page" binding:"min=1"`
	PageSize   int    `form:"page_size" binding:"min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	TemplateID string `form:"template_id" binding:"omitempty,uuid"`
	UserID     string `form:"user_id"`
	Status     string `form:"status" binding:"omitempty,oneof=DRAFT PENDING APPROVED DENIED"`
}

// SubmissionResponse represents a submission with its approvals
type SubmissionResponse struct {
	ID          string             `json:"id"`
	TenantID    string             `json:"tenant_id"`
	TemplateID  string             `json:"template_id"`
	UserID      string             `json:"user_id"`
	Data        map[string]any     `json:"data"`
	Status      string             `json:"status"`
	SubmittedAt *time.Time         `json:"submitted_at,omitempty"`
	Version     int                `json:"version"`
	Approvals   []ApprovalResponse `json:"approvals"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ApprovalResponse represents one approver's decision
type ApprovalResponse struct {
	ID          string    `json:"id"`
	SignedBy    string    `json:"signed_by"`
	Decision    string    `json:"decision"`
	Comment     *string   `json:"comment,omitempty"`
	Signature   *string   `json:"signature,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListSubmissionsResponse represents a paginated list of submissions
type ListSubmissionsResponse struct {
	Items []SubmissionResponse `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
}

// StatusHistoryResponse is one status change of a submission
type StatusHistoryResponse struct {
	ID         string    `json:"id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  string    `json:"changed_by"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// =============================================================================
// Reference Data DTOs
// =============================================================================

// FieldTypeResponse describes a field type
type FieldTypeResponse struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	IsChoice    bool   `json:"is_choice"`
	IsTextLike  bool   `json:"is_text_like"`
}

// ReferenceDataResponse lists the enums a form editor needs
type ReferenceDataResponse struct {
	FieldTypes         []FieldTypeResponse `json:"field_types"`
	Categories         []string            `json:"categories"`
	TemplateStatuses   []string            `json:"template_statuses"`
	SubmissionStatuses []string            `json:"submission_statuses"`
}
