package form

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/workforce/backend/internal/domain/shared"
)

// SubmissionData maps field keys to the values entered for them
type SubmissionData map[string]any

// Clone returns a shallow copy; nil becomes an empty map
func (d SubmissionData) Clone() SubmissionData {
	out := make(SubmissionData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// HasSignature reports whether the signature entry is truthy
func (d SubmissionData) HasSignature() bool {
	return isTruthy(d[SignatureKey])
}

// FormSubmission is a user's filled-in copy of a template
type FormSubmission struct {
	shared.TenantAggregateRoot
	TemplateID  uuid.UUID
	UserID      string
	Data        SubmissionData
	Status      SubmissionStatus
	SubmittedAt *time.Time
	Approvals   []FormApproval
}

// FormApproval is one approver's decision on a submission.
// There is at most one per approver; a new decision overwrites it.
type FormApproval struct {
	shared.BaseEntity
	SubmissionID uuid.UUID
	SignedBy     string
	Decision     Decision
	Comment      *string
	Signature    *string
	SubmittedAt  time.Time
}

// NewDraftSubmission starts an empty draft for the given user
func NewDraftSubmission(template *FormTemplate, userID string) (*FormSubmission, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "User ID is required")
	}
	if template == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Template not found")
	}
	if !template.IsActive() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			"Template is not accepting submissions, status: "+template.Status.String())
	}

	s := &FormSubmission{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(template.TenantID, userID),
		TemplateID:          template.ID,
		UserID:              userID,
		Data:                SubmissionData{},
		Status:              SubmissionStatusDraft,
		Approvals:           make([]FormApproval, 0),
	}
	s.AddDomainEvent(NewSubmissionDraftCreatedEvent(s))
	return s, nil
}

// IsDraft reports whether the owner may still edit the data
func (s *FormSubmission) IsDraft() bool {
	return s.Status == SubmissionStatusDraft
}

// SaveDraft overwrites the data of a draft as given
func (s *FormSubmission) SaveDraft(data SubmissionData) error {
	if !s.IsDraft() {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Only draft submissions can be saved, current status: "+s.Status.String())
	}
	s.Data = data.Clone()
	s.Touch()
	return nil
}

// Submit validates data against the template and moves the draft to PENDING.
// On failure the submission is left untouched.
func (s *FormSubmission) Submit(template *FormTemplate, data SubmissionData) error {
	if !s.IsDraft() {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Only draft submissions can be submitted, current status: "+s.Status.String())
	}
	if template == nil || template.ID != s.TemplateID {
		return shared.NewDomainError(shared.CodeInvalidInput, "Template does not match submission")
	}
	if errs := template.ValidateData(data); len(errs) > 0 {
		return shared.NewValidationError("Submission is incomplete or invalid", errs...)
	}

	now := s.Touch()
	s.Data = data.Clone()
	s.Status = SubmissionStatusPending
	s.SubmittedAt = &now
	s.AddDomainEvent(NewSubmissionSubmittedEvent(s))
	return nil
}

// Decide records an approver's decision on a pending submission.
// A previous decision by the same approver is overwritten in place.
func (s *FormSubmission) Decide(approverID string, decision Decision, comment, signature *string) error {
	approverID = strings.TrimSpace(approverID)
	if approverID == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Approver ID is required")
	}
	if !decision.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Decision must be APPROVED or DENIED")
	}
	target := decision.Status()
	if s.Status != SubmissionStatusPending || !s.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Only pending submissions can be decided, current status: "+s.Status.String())
	}

	now := s.Touch()
	if a := s.ApprovalBy(approverID); a != nil {
		a.Decision = decision
		a.Comment = comment
		a.Signature = signature
		a.SubmittedAt = now
		a.UpdatedAt = now
	} else {
		a := FormApproval{
			BaseEntity:   shared.NewBaseEntity(),
			SubmissionID: s.ID,
			SignedBy:     approverID,
			Decision:     decision,
			Comment:      comment,
			Signature:    signature,
			SubmittedAt:  now,
		}
		a.CreatedAt = now
		a.UpdatedAt = now
		s.Approvals = append(s.Approvals, a)
	}

	old := s.Status
	s.Status = target
	s.AddDomainEvent(NewSubmissionDecidedEvent(s, old, approverID, comment))
	return nil
}

// AdminUpdate rewrites the data of a submission in any state.
// A decided submission goes back to PENDING; its approvals are kept.
func (s *FormSubmission) AdminUpdate(data SubmissionData, editorID string) error {
	editorID = strings.TrimSpace(editorID)
	if editorID == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Editor ID is required")
	}

	s.Data = data.Clone()
	s.Touch()

	if !s.Status.IsDecided() {
		return nil
	}
	old := s.Status
	if !old.CanTransitionTo(SubmissionStatusPending) {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot reopen submission in status "+old.String())
	}
	s.Status = SubmissionStatusPending
	s.AddDomainEvent(NewSubmissionReopenedEvent(s, old, editorID))
	return nil
}

// MarkDeleted checks the submission is a draft and records its removal
func (s *FormSubmission) MarkDeleted(actorID string) error {
	if !s.IsDraft() {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Only draft submissions can be deleted, current status: "+s.Status.String())
	}
	s.AddDomainEvent(NewSubmissionDraftDeletedEvent(s, actorID))
	return nil
}

// ApprovalBy returns the approver's record, or nil
func (s *FormSubmission) ApprovalBy(approverID string) *FormApproval {
	for i := range s.Approvals {
		if s.Approvals[i].SignedBy == approverID {
			return &s.Approvals[i]
		}
	}
	return nil
}

// SortApprovals orders approvals most recently updated first
func (s *FormSubmission) SortApprovals() {
	sort.SliceStable(s.Approvals, func(i, j int) bool {
		return s.Approvals[i].UpdatedAt.After(s.Approvals[j].UpdatedAt)
	})
}

// LatestApproval returns the most recently updated approval, or nil
func (s *FormSubmission) LatestApproval() *FormApproval {
	var latest *FormApproval
	for i := range s.Approvals {
		if latest == nil || s.Approvals[i].UpdatedAt.After(latest.UpdatedAt) {
			latest = &s.Approvals[i]
		}
	}
	return latest
}
