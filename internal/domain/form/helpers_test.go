package form

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// recordingStore captures what the session hands to the store
type recordingStore struct {
	calls int
	saved *FormTemplate
	err   error
}

func (s *recordingStore) Save(_ context.Context, t *FormTemplate) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.saved = t
	return nil
}

func validDetails() TemplateDetails {
	return TemplateDetails{
		Name:     "Daily Safety Check",
		Category: FormCategorySafety,
		Status:   TemplateStatusActive,
	}
}

// buildTemplate returns a saved template with the given fields in one grouping
func buildTemplate(t *testing.T, signature bool, fields ...func(s *EditorSession, g uuid.UUID)) *FormTemplate {
	t.Helper()
	s := NewEditorSession(uuid.New(), "author-1")
	d := validDetails()
	d.IsSignatureRequired = signature
	s.SetDetails(d)
	g := s.Template().Groupings[0].ID
	for _, add := range fields {
		add(s, g)
	}
	_, err := s.Save(context.Background(), &recordingStore{})
	require.NoError(t, err)
	s.Template().ClearDomainEvents()
	return s.Template()
}

func textField(label string, required bool) func(s *EditorSession, g uuid.UUID) {
	return typedField(label, FieldTypeText, required)
}

func typedField(label string, ft FieldType, required bool, options ...string) func(s *EditorSession, g uuid.UUID) {
	return func(s *EditorSession, g uuid.UUID) {
		f, err := s.AddField(g, ft)
		if err != nil {
			panic(err)
		}
		f.Label = label
		f.Required = required
		for _, o := range options {
			if _, err := s.AddOption(f.ID, o); err != nil {
				panic(err)
			}
		}
	}
}

func fieldByLabel(t *testing.T, tmpl *FormTemplate, label string) *FormField {
	t.Helper()
	for _, f := range tmpl.Fields() {
		if f.Label == label {
			return f
		}
	}
	t.Fatalf("no field labelled %q", label)
	return nil
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
