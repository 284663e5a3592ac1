package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/workforce/backend/internal/domain/form"
	"github.com/workforce/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultMaxSignatureBytes bounds the size of an approval signature payload
const DefaultMaxSignatureBytes = 512 * 1024

// SubmissionServiceOption configures a SubmissionService
type SubmissionServiceOption func(*SubmissionService)

// WithSignatureStore offloads approval signatures to the given store
func WithSignatureStore(store SignatureStore) SubmissionServiceOption {
	return func(s *SubmissionService) {
		if store != nil {
			s.signatures = store
		}
	}
}

// WithMaxSignatureBytes overrides DefaultMaxSignatureBytes
func WithMaxSignatureBytes(n int) SubmissionServiceOption {
	return func(s *SubmissionService) {
		if n > 0 {
			s.maxSignatureBytes = n
		}
	}
}

// SubmissionService drives submissions through DRAFT, PENDING and the approval decision
type SubmissionService struct {
	templateRepo      form.FormTemplateRepository
	submissionRepo    form.FormSubmissionRepository
	historyRepo       form.StatusHistoryRepository
	signatures        SignatureStore
	maxSignatureBytes int
	logger            *zap.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	templateRepo form.FormTemplateRepository,
	submissionRepo form.FormSubmissionRepository,
	historyRepo form.StatusHistoryRepository,
	logger *zap.Logger,
	opts ...SubmissionServiceOption,
) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SubmissionService{
		templateRepo:      templateRepo,
		submissionRepo:    submissionRepo,
		historyRepo:       historyRepo,
		signatures:        inlineSignatures{},
		maxSignatureBytes: DefaultMaxSignatureBytes,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDraft starts an empty draft of a template for the user
func (s *SubmissionService) CreateDraft(ctx context.Context, tenantID uuid.UUID, userID string, req CreateDraftRequest) (*SubmissionResponse, error) {
	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid template ID")
	}
	template, err := s.findTemplate(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	submission, err := form.NewDraftSubmission(template, userID)
	if err != nil {
		return nil, err
	}

	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	submission.ClearDomainEvents()

	s.logger.Info("submission draft created",
		zap.String("id", submission.ID.String()),
		zap.String("template_id", templateID.String()),
		zap.String("user_id", userID))

	return s.toSubmissionResponse(ctx, submission), nil
}

// SaveDraft overwrites the data of the user's draft
func (s *SubmissionService) SaveDraft(ctx context.Context, tenantID, submissionID uuid.UUID, userID string, req SubmissionDataRequest) (*SubmissionResponse, error) {
	submission, err := s.findOwnedSubmission(ctx, tenantID, submissionID, userID)
	if err != nil {
		return nil, err
	}

	if err := submission.SaveDraft(req.Data); err != nil {
		return nil, err
	}

	if err := s.save(ctx, submission); err != nil {
		return nil, err
	}

	s.logger.Info("submission draft saved",
		zap.String("id", submission.ID.String()),
		zap.Int("values", len(submission.Data)))

	return s.toSubmissionResponse(ctx, submission), nil
}

// Submit validates the data against the template and sends the draft for review
func (s *SubmissionService) Submit(ctx context.Context, tenantID, submissionID uuid.UUID, userID string, req SubmissionDataRequest) (*SubmissionResponse, error) {
	submission, err := s.findOwnedSubmission(ctx, tenantID, submissionID, userID)
	if err != nil {
		return nil, err
	}
	template, err := s.findTemplate(ctx, tenantID, submission.TemplateID)
	if err != nil {
		return nil, err
	}

	if err := submission.Submit(template, req.Data); err != nil {
		return nil, err
	}

	if err := s.save(ctx, submission); err != nil {
		return nil, err
	}

	s.logger.Info("submission submitted",
		zap.String("id", submission.ID.String()),
		zap.String("template_id", submission.TemplateID.String()))

	return s.toSubmissionResponse(ctx, submission), nil
}

// Approve records the approver's decision on a pending submission.
// The approval and the status change are saved together.
func (s *SubmissionService) Approve(ctx context.Context, tenantID, submissionID uuid.UUID, approverID string, req ApproveRequest) (*SubmissionResponse, error) {
	decision := form.Decision(req.Decision)
	if !decision.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Decision must be APPROVED or DENIED")
	}
	if req.Signature != nil && len(*req.Signature) > s.maxSignatureBytes {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Signature cannot exceed %d bytes", s.maxSignatureBytes))
	}

	submission, err := s.findSubmission(ctx, tenantID, submissionID)
	if err != nil {
		return nil, err
	}

	var previous string
	if a := submission.ApprovalBy(approverID); a != nil && a.Signature != nil {
		previous = *a.Signature
	}

	if err := submission.Decide(approverID, decision, req.Comment, nil); err != nil {
		return nil, err
	}

	var stored string
	if req.Signature != nil && *req.Signature != "" {
		ref, err := s.signatures.Put(ctx, tenantID, submission.ID, approverID, *req.Signature)
		if err != nil {
			return nil, fmt.Errorf("failed to store signature: %w", err)
		}
		stored = ref
		submission.ApprovalBy(approverID).Signature = &ref
	}

	if err := s.save(ctx, submission); err != nil {
		s.discardSignature(ctx, stored)
		return nil, err
	}
	if previous != stored {
		s.discardSignature(ctx, previous)
	}

	s.logger.Info("submission decided",
		zap.String("id", submission.ID.String()),
		zap.String("approver", approverID),
		zap.String("decision", decision.String()))

	return s.toSubmissionResponse(ctx, submission), nil
}

// discardSignature deletes a stored signature that no approval references.
// Failures only leave an orphaned object behind, so they are logged.
func (s *SubmissionService) discardSignature(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.signatures.Delete(ctx, ref); err != nil {
		s.logger.Warn("failed to delete signature", zap.Error(err))
	}
}

// AdminUpdate rewrites the data of any submission.
// Decided submissions go back to PENDING.
func (s *SubmissionService) AdminUpdate(ctx context.Context, tenantID, submissionID uuid.UUID, editorID string, req SubmissionDataRequest) (*SubmissionResponse, error) {
	submission, err := s.findSubmission(ctx, tenantID, submissionID)
	if err != nil {
		return nil, err
	}
	previous := submission.Status

	if err := submission.AdminUpdate(req.Data, editorID); err != nil {
		return nil, err
	}

	if err := s.save(ctx, submission); err != nil {
		return nil, err
	}

	s.logger.Info("submission updated by admin",
		zap.String("id", submission.ID.String()),
		zap.String("editor", editorID),
		zap.String("previous_status", previous.String()),
		zap.String("status", submission.Status.String()))

	return s.toSubmissionResponse(ctx, submission), nil
}

// DeleteDraft removes the user's draft
func (s *SubmissionService) DeleteDraft(ctx context.Context, tenantID, submissionID uuid.UUID, userID string) error {
	submission, err := s.findOwnedSubmission(ctx, tenantID, submissionID, userID)
	if err != nil {
		return err
	}

	if err := submission.MarkDeleted(userID); err != nil {
		return err
	}

	if err := s.submissionRepo.Delete(ctx, submission); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	submission.ClearDomainEvents()

	s.logger.Info("submission draft deleted", zap.String("id", submissionID.String()))
	return nil
}

// GetSubmission retrieves a submission with its approvals, most recent first
func (s *SubmissionService) GetSubmission(ctx context.Context, tenantID, submissionID uuid.UUID) (*SubmissionResponse, error) {
	submission, err := s.findSubmission(ctx, tenantID, submissionID)
	if err != nil {
		return nil, err
	}
	return s.toSubmissionResponse(ctx, submission), nil
}

// ListSubmissions retrieves a paginated list of submissions
func (s *SubmissionService) ListSubmissions(ctx context.Context, tenantID uuid.UUID, req ListSubmissionsRequest) (*ListSubmissionsResponse, error) {
	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}.Normalized()
	if req.TemplateID != "" {
		templateID, err := uuid.Parse(req.TemplateID)
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid template ID")
		}
		filter = filter.With("template_id", templateID)
	}
	if req.UserID != "" {
		filter = filter.With("user_id", req.UserID)
	}
	if req.Status != "" {
		status := form.SubmissionStatus(req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid submission status")
		}
		filter = filter.With("status", status.String())
	}

	submissions, err := s.submissionRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	total, err := s.submissionRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	items := make([]SubmissionResponse, len(submissions))
	for i := range submissions {
		items[i] = *s.toSubmissionResponse(ctx, &submissions[i])
	}

	return &ListSubmissionsResponse{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Size:  filter.PageSize,
	}, nil
}

// GetStatusHistory returns the status changes of a submission, oldest first
func (s *SubmissionService) GetStatusHistory(ctx context.Context, tenantID, submissionID uuid.UUID) ([]StatusHistoryResponse, error) {
	entries, err := s.historyRepo.FindBySubmission(ctx, tenantID, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	if len(entries) == 0 {
		if _, err := s.findSubmission(ctx, tenantID, submissionID); err != nil {
			return nil, err
		}
	}

	result := make([]StatusHistoryResponse, len(entries))
	for i, e := range entries {
		result[i] = StatusHistoryResponse{
			ID:         e.ID.String(),
			FromStatus: e.FromStatus.String(),
			ToStatus:   e.ToStatus.String(),
			ChangedBy:  e.ChangedBy,
			Reason:     e.Reason,
			OccurredAt: e.OccurredAt,
		}
	}
	return result, nil
}

// =============================================================================
// Helper Functions
// =============================================================================

func (s *SubmissionService) save(ctx context.Context, submission *form.FormSubmission) error {
	if err := s.submissionRepo.SaveWithLock(ctx, submission); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) || errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError(shared.CodeConcurrencyConflict,
				"Submission was modified by another request; reload and retry")
		}
		return fmt.Errorf("failed to save submission: %w", err)
	}
	submission.ClearDomainEvents()
	return nil
}

func (s *SubmissionService) findTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*form.FormTemplate, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Template not found")
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

func (s *SubmissionService) findSubmission(ctx context.Context, tenantID, submissionID uuid.UUID) (*form.FormSubmission, error) {
	submission, err := s.submissionRepo.FindByIDForTenant(ctx, tenantID, submissionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Submission not found")
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}

func (s *SubmissionService) findOwnedSubmission(ctx context.Context, tenantID, submissionID uuid.UUID, userID string) (*form.FormSubmission, error) {
	submission, err := s.findSubmission(ctx, tenantID, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.UserID != userID {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Submission belongs to another user")
	}
	return submission, nil
}

func (s *SubmissionService) toSubmissionResponse(ctx context.Context, sub *form.FormSubmission) *SubmissionResponse {
	sub.SortApprovals()
	approvals := make([]ApprovalResponse, len(sub.Approvals))
	for i, a := range sub.Approvals {
		approvals[i] = ApprovalResponse{
			ID:          a.ID.String(),
			SignedBy:    a.SignedBy,
			Decision:    a.Decision.String(),
			Comment:     a.Comment,
			Signature:   s.resolveSignature(ctx, a.Signature),
			SubmittedAt: a.SubmittedAt,
			UpdatedAt:   a.UpdatedAt,
		}
	}

	data := map[string]any(sub.Data)
	if data == nil {
		data = map[string]any{}
	}

	return &SubmissionResponse{
		ID:          sub.ID.String(),
		TenantID:    sub.TenantID.String(),
		TemplateID:  sub.TemplateID.String(),
		UserID:      sub.UserID,
		Data:        data,
		Status:      sub.Status.String(),
		SubmittedAt: sub.SubmittedAt,
		Version:     sub.Version,
		Approvals:   approvals,
		CreatedAt:   sub.CreatedAt,
		UpdatedAt:   sub.UpdatedAt,
	}
}

func (s *SubmissionService) resolveSignature(ctx context.Context, ref *string) *string {
	if ref == nil {
		return nil
	}
	resolved, err := s.signatures.Resolve(ctx, *ref)
	if err != nil {
		s.logger.Warn("failed to resolve signature", zap.Error(err))
		return ref
	}
	return &resolved
}
