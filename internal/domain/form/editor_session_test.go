package form

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce/backend/internal/domain/shared"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestNewEditorSession_StartsWithDefaultGrouping(t *testing.T) {
	s := NewEditorSession(uuid.New(), "author-1")

	require.Len(t, s.Template().Groupings, 1)
	assert.Equal(t, DefaultGroupingTitle, s.Template().Groupings[0].Title)
	assert.Equal(t, TemplateStatusDraft, s.Template().Status)
	assert.True(t, s.IsNew())
}

func TestEditorSession_AddField(t *testing.T) {
	s := NewEditorSession(uuid.New(), "author-1")
	g := s.Template().Groupings[0].ID

	t.Run("order follows field count", func(t *testing.T) {
		a, err := s.AddField(g, FieldTypeText)
		require.NoError(t, err)
		b, err := s.AppendField(FieldTypeNumber)
		require.NoError(t, err)

		assert.Equal(t, 0, a.Order)
		assert.Equal(t, 1, b.Order)
		assert.Equal(t, "Text", a.Label)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := s.AddField(g, FieldType("SLIDER"))
		requireCode(t, err, shared.CodeInvalidInput)
	})

	t.Run("unknown grouping", func(t *testing.T) {
		_, err := s.AddField(uuid.New(), FieldTypeText)
		requireCode(t, err, shared.CodeNotFound)
	})
}

func TestEditorSession_RemoveField_KeepsOrders(t *testing.T) {
	s := NewEditorSession(uuid.New(), "author-1")
	a, _ := s.AppendField(FieldTypeText)
	b, _ := s.AppendField(FieldTypeText)
	c, _ := s.AppendField(FieldTypeText)

	require.NoError(t, s.RemoveField(b.ID))

	fields := s.Template().Groupings[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, a.ID, fields[0].ID)
	assert.Equal(t, 0, fields[0].Order)
	assert.Equal(t, c.ID, fields[1].ID)
	assert.Equal(t, 2, fields[1].Order)

	requireCode(t, s.RemoveField(uuid.New()), shared.CodeNotFound)
}

func TestEditorSession_Reorder(t *testing.T) {
	s := NewEditorSession(uuid.New(), "author-1")
	g := s.Template().Groupings[0].ID
	a, _ := s.AppendField(FieldTypeText)
	b, _ := s.AppendField(FieldTypeText)
	c, _ := s.AppendField(FieldTypeText)

	require.NoError(t, s.Reorder(g, 0, 2))

	fields := s.Template().Groupings[0].Fields
	assert.Equal(t, []uuid.UUID{b.ID, c.ID, a.ID}, []uuid.UUID{fields[0].ID, fields[1].ID, fields[2].ID})
	for i, f := range fields {
		assert.Equal(t, i, f.Order)
	}

	require.NoError(t, s.Reorder(g, 2, 0))
	assert.Equal(t, a.ID, s.Template().Groupings[0].Fields[0].ID)

	requireCode(t, s.Reorder(g, 0, 3), shared.CodeInvalidInput)
	requireCode(t, s.Reorder(g, -1, 0), shared.CodeInvalidInput)
	requireCode(t, s.Reorder(uuid.New(), 0, 1), shared.CodeNotFound)
}

func TestEditorSession_AddOption(t *testing.T) {
	s := NewEditorSession(uuid.New(), "author-1")
	choice, _ := s.AppendField(FieldTypeDropdown)
	text, _ := s.AppendField(FieldTypeText)

	o, err := s.AddOption(choice.ID, " Yes ")
	require.NoError(t, err)
	assert.Equal(t, "Yes", o.Value)
	assert.Equal(t, 0, o.Order)

	_, err = s.AddOption(choice.ID, "Yes")
	requireCode(t, err, shared.CodeAlreadyExists)

	_, err = s.AddOption(text.ID, "Yes")
	requireCode(t, err, shared.CodeInvalidInput)

	_, err = s.AddOption(choice.ID, "  ")
	requireCode(t, err, shared.CodeInvalidInput)
}

func TestEditorSession_Validate(t *testing.T) {
	s := NewEditorSession(uuid.New(), "author-1")
	s.SetDetails(TemplateDetails{})
	choice, _ := s.AppendField(FieldTypeRadio)
	text, _ := s.AppendField(FieldTypeText)
	require.NoError(t, s.SetFieldAttributes(text.ID, FieldAttributes{
		Label:     "Name",
		MinLength: intPtr(10),
		MaxLength: intPtr(5),
	}))

	errs := s.Validate()
	byField := map[string][]string{}
	for _, e := range errs {
		byField[e.Field] = append(byField[e.Field], e.Rule)
	}

	assert.Contains(t, byField["name"], RuleRequired)
	assert.Contains(t, byField["category"], RuleRequired)
	assert.Contains(t, byField["active_status"], RuleRequired)
	assert.Contains(t, byField[choice.Key()], RuleOptions)
	assert.Contains(t, byField[text.Key()], RuleLengthRange)
}

func TestEditorSession_SetFieldAttributes_DropsLengthOnNonText(t *testing.T) {
	s := NewEditorSession(uuid.New(), "author-1")
	n, _ := s.AppendField(FieldTypeNumber)

	require.NoError(t, s.SetFieldAttributes(n.ID, FieldAttributes{Label: "Qty", MinLength: intPtr(1)}))
	assert.Nil(t, n.MinLength)
	requireCode(t, s.SetFieldAttributes(uuid.New(), FieldAttributes{}), shared.CodeNotFound)
}

func TestEditorSession_Save_FailsFastOnInvalid(t *testing.T) {
	s := NewEditorSession(uuid.New(), "author-1")
	store := &recordingStore{}

	_, err := s.Save(context.Background(), store)

	requireCode(t, err, shared.CodeValidation)
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.FieldNames(), "name")
	assert.Equal(t, 0, store.calls)
	assert.True(t, s.IsNew())
}

func TestEditorSession_Save_NormalizesOrders(t *testing.T) {
	s := NewEditorSession(uuid.New(), "author-1")
	s.SetDetails(validDetails())
	second := s.AddGrouping("Second")

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		f, err := s.AppendField(FieldTypeText)
		require.NoError(t, err)
		ids = append(ids, f.ID)
	}
	require.NoError(t, s.RemoveField(ids[1]))
	require.NoError(t, s.RemoveField(ids[3]))
	_, err := s.AppendField(FieldTypeCheckbox)
	require.NoError(t, err)
	require.NoError(t, s.Reorder(s.Template().Groupings[0].ID, 3, 0))

	_, err = s.AddField(second.ID, FieldTypeDate)
	require.NoError(t, err)
	require.NoError(t, s.RemoveGrouping(s.Template().Groupings[0].ID))
	require.NoError(t, s.RemoveGrouping(second.ID))
	s.AddGrouping("Third")
	_, err = s.AppendField(FieldTypeTime)
	require.NoError(t, err)

	store := &recordingStore{}
	id, err := s.Save(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, s.Template().ID, id)
	assert.Equal(t, 1, store.calls)
	assert.False(t, s.IsNew())

	for gi, g := range store.saved.Groupings {
		assert.Equal(t, gi, g.Order)
		assert.Equal(t, id, g.TemplateID)
		for fi, f := range g.Fields {
			assert.Equal(t, fi, f.Order)
			assert.Equal(t, g.ID, f.GroupingID)
		}
	}

	events := store.saved.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeFormTemplateCreated, events[0].EventType())
}

func TestEditorSession_Save_NormalizesGapsAfterRemoval(t *testing.T) {
	s := NewEditorSession(uuid.New(), "author-1")
	s.SetDetails(validDetails())
	a, _ := s.AppendField(FieldTypeText)
	b, _ := s.AppendField(FieldTypeText)
	c, _ := s.AppendField(FieldTypeText)
	require.NoError(t, s.RemoveField(a.ID))
	d, _ := s.AppendField(FieldTypeText)

	_, err := s.Save(context.Background(), &recordingStore{})
	require.NoError(t, err)

	fields := s.Template().Groupings[0].Fields
	require.Len(t, fields, 3)
	assert.Equal(t, []uuid.UUID{b.ID, c.ID, d.ID}, []uuid.UUID{fields[0].ID, fields[1].ID, fields[2].ID})
	assert.Equal(t, []int{0, 1, 2}, []int{fields[0].Order, fields[1].Order, fields[2].Order})
}

func TestEditorSession_Save_LoadedTemplateRaisesUpdated(t *testing.T) {
	tmpl := buildTemplate(t, false, textField("Name", true))
	s := LoadEditorSession(tmpl)
	_, err := s.AppendField(FieldTypeTextarea)
	require.NoError(t, err)

	store := &recordingStore{}
	_, err = s.Save(context.Background(), store)
	require.NoError(t, err)

	events := store.saved.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeFormTemplateUpdated, events[0].EventType())
}

func TestEditorSession_Save_StoreErrorClearsEvents(t *testing.T) {
	s := NewEditorSession(uuid.New(), "author-1")
	s.SetDetails(validDetails())
	store := &recordingStore{err: errors.New("db down")}

	_, err := s.Save(context.Background(), store)

	assert.EqualError(t, err, "db down")
	assert.Empty(t, s.Template().GetDomainEvents())
	assert.True(t, s.IsNew())
}
