package form_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	domain "github.com/workforce/backend/internal/domain/form"
	"github.com/workforce/backend/internal/domain/shared"
)

type discardStore struct{}

func (discardStore) Save(context.Context, *domain.FormTemplate) error { return nil }

type fieldSpec struct {
	label    string
	typ      domain.FieldType
	required bool
	options  []string
}

// newTemplate builds an active template with one grouping holding the given fields
func newTemplate(t *testing.T, tenantID uuid.UUID, signature bool, fields ...fieldSpec) *domain.FormTemplate {
	t.Helper()
	session := domain.NewEditorSession(tenantID, "author-1")
	session.SetDetails(domain.TemplateDetails{
		Name:                "Vehicle Inspection",
		Category:            domain.FormCategoryInspection,
		Status:              domain.TemplateStatusActive,
		IsSignatureRequired: signature,
	})
	for _, spec := range fields {
		f, err := session.AppendField(spec.typ)
		require.NoError(t, err)
		require.NoError(t, session.SetFieldAttributes(f.ID, domain.FieldAttributes{
			Label:    spec.label,
			Required: spec.required,
			Multiple: f.Multiple,
		}))
		for _, o := range spec.options {
			_, err := session.AddOption(f.ID, o)
			require.NoError(t, err)
		}
	}
	_, err := session.Save(context.Background(), discardStore{})
	require.NoError(t, err)
	session.Template().ClearDomainEvents()
	return session.Template()
}

func fieldKey(t *testing.T, tmpl *domain.FormTemplate, label string) string {
	t.Helper()
	for _, f := range tmpl.Fields() {
		if f.Label == label {
			return f.Key()
		}
	}
	t.Fatalf("no field labelled %q", label)
	return ""
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected domain error, got %v", err)
	require.Equal(t, code, domainErr.Code)
}

func strPtr(s string) *string { return &s }
