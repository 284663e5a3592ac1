package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/workforce/backend/internal/interfaces/http/dto"
)

// SetupValidator makes binding errors report JSON field names and makes
// numbers decode as json.Number so field values keep their precision.
func SetupValidator() {
	binding.EnableDecoderUseNumber = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		name, _, _ = strings.Cut(fld.Tag.Get("form"), ",")
	}
	return name
}

// ValidationDetails converts binding errors into response details. Errors
// that are not validator errors, such as malformed JSON, yield nil.
func ValidationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Rule:    e.Tag(),
			Message: validationMessage(e),
		})
	}
	return details
}

// AbortWithBindingError writes a 400 for a failed ShouldBind call
func AbortWithBindingError(c *gin.Context, err error) {
	details := ValidationDetails(err)
	if details == nil {
		abortWithError(c, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
		return
	}
	c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeValidation),
		dto.NewValidationErrorResponse("Request validation failed", GetRequestID(c), details))
}

func validationMessage(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "uuid", "uuid4":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "min":
		if isString {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if isString {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "dive":
		return "Contains an invalid element"
	default:
		return "Invalid value"
	}
}
