package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("failed to load: %w", NewDomainError(CodeNotFound, "Template not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidState))
}

func TestValidationError_UnwrapsToDomainError(t *testing.T) {
	verr := NewValidationError("Submission is incomplete",
		FieldError{Field: "a", Rule: "required", Message: "is required"},
		FieldError{Field: "b", Rule: "type", Message: "must be a number"},
		FieldError{Field: "a", Rule: "type", Message: "must be text"},
	)
	wrapped := fmt.Errorf("failed to submit: %w", verr)

	var domainErr *DomainError
	require.True(t, errors.As(wrapped, &domainErr))
	assert.Equal(t, CodeValidation, domainErr.Code)

	var ve *ValidationError
	require.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, []string{"a", "b"}, ve.FieldNames())
	assert.Equal(t, []string{"a"}, ve.FieldsWithRule("required"))
	assert.Equal(t, "a: is required; b: must be a number; a: must be text", ve.Detail())
}

func TestFilter_Normalized(t *testing.T) {
	f := Filter{Page: 0, PageSize: 1000}.Normalized()
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.NotNil(t, f.Filters)

	g := f.With("status", "ACTIVE")
	assert.Equal(t, "ACTIVE", g.Filters["status"])
	assert.NotContains(t, f.Filters, "status")
}

func TestNewPaginated_TotalPages(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 41, 1, 20)
	assert.Equal(t, 3, p.TotalPages)

	empty := NewPaginated([]int{}, 0, 1, 20)
	assert.Equal(t, 0, empty.TotalPages)
}
