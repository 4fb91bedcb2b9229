package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/timerange"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// DefaultMaxBodySize bounds JSON request bodies
const DefaultMaxBodySize = 1 << 20

// Validator decodes and validates request payloads using struct tags
type Validator struct {
	validate    *validator.Validate
	maxBodySize int64
}

// NewValidator creates a validator with the dashboard's custom tags
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("iso8601", isISO8601)
	_ = v.RegisterValidation("subsidiary", isSubsidiary)
	_ = v.RegisterValidation("period", isPeriod)

	// Use JSON or query tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{validate: v, maxBodySize: DefaultMaxBodySize}
}

// DecodeJSON reads a bounded JSON body into dst and validates it
func (v *Validator) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperrors.NewValidationError("request body is required")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, v.maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("request body is required")
		}
		return apperrors.NewValidationError(fmt.Sprintf("invalid JSON body: %v", err))
	}

	return v.ValidateStruct(dst)
}

// ValidateStruct validates a struct and returns a validation error listing every field
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	messages := make([]string, 0, len(fieldErrs))
	fields := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := formatValidationError(fe)
		messages = append(messages, msg)
		fields[fe.Field()] = msg
	}

	return apperrors.NewValidationError(strings.Join(messages, "; ")).WithContext("fields", fields)
}

// ContentTypeValidator ensures requests with a body have an accepted content type
func ContentTypeValidator(contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > DefaultMaxBodySize {
				writeProblem(w, r, http.StatusRequestEntityTooLarge, TypeTooLarge,
					"Payload Too Large", "Request body exceeds maximum allowed size")
				return
			}

			contentType := r.Header.Get("Content-Type")
			if r.ContentLength == 0 && contentType == "" {
				next.ServeHTTP(w, r)
				return
			}
			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeProblem(w, r, http.StatusUnsupportedMediaType, TypeMediaType,
				"Unsupported Media Type", fmt.Sprintf("content type %q is not accepted", contentType))
		})
	}
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "iso8601":
		return fmt.Sprintf("%s must be a valid date", field)
	case "subsidiary":
		return fmt.Sprintf("%s must be kintsugi or takosuya", field)
	case "period":
		return fmt.Sprintf("%s must be day, week, month or custom", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isISO8601 accepts YYYY-MM-DD with an optional time part
func isISO8601(fl validator.FieldLevel) bool {
	date := fl.Field().String()
	if len(date) < 10 {
		return false
	}
	parts := strings.Split(date[:10], "-")
	if len(parts) != 3 {
		return false
	}
	return len(parts[0]) == 4 && len(parts[1]) == 2 && len(parts[2]) == 2
}

func isSubsidiary(fl validator.FieldLevel) bool {
	_, ok := domain.ParseSubsidiary(fl.Field().String())
	return ok
}

func isPeriod(fl validator.FieldLevel) bool {
	_, ok := timerange.ParsePeriod(fl.Field().String())
	return ok
}
