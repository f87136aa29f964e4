package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind classifies an ErrorResponse independently of its HTTP status.
type Kind string

const (
	KindValidation Kind = "validation"
	KindStore      Kind = "store"
	KindAuth       Kind = "auth"
	KindNotFound   Kind = "not_found"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int

	// Kind tells which failure class produced the response.
	Kind() Kind
}

type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
	Type    Kind   `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

func (a *APIError) Kind() Kind {
	return a.Type
}

type StructuredError struct {
	Errors map[string][]string `json:"errors"`
	Status int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Kind() Kind {
	return KindValidation
}

var (
	MalformedJSONError   = NewValidation("Malformed JSON body")
	TextRequiredError    = NewValidation("text is required")
	ChangesRequiredError = NewValidation("changes array is required")

	InternalServerError = &APIError{Status: http.StatusInternalServerError, Message: "Internal server error", Type: KindStore}
	UnauthorizedError   = &APIError{Status: http.StatusUnauthorized, Message: "Unauthorized", Type: KindAuth}
	NotFoundError       = &APIError{Status: http.StatusNotFound, Message: "Resource not found", Type: KindNotFound}
)

func FromValidationError(err error) *StructuredError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := fieldPath(fe.Namespace())

		switch fe.Tag() {
		case "required", "notblank":
			problems[field] = append(problems[field], "This field is required")
		case "min":
			problems[field] = append(problems[field], "Value is too short, min: "+fe.Param())
		case "max":
			problems[field] = append(problems[field], "Value is too long, max: "+fe.Param())

		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}

	return &StructuredError{
		Errors: problems,
		Status: http.StatusBadRequest,
	}
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg, Type: kindOf(status)}
}

func NewValidation(msg string, args ...any) *APIError {
	return NewSimple(http.StatusBadRequest, msg, args...)
}

func NewInvalidParamTypeError(name, dataType string) *APIError {
	return NewValidation("Parameter '%s' has invalid type, expected: %s", name, dataType)
}

func kindOf(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindStore
	default:
		return KindValidation
	}
}

// fieldPath turns "PushRequest.Changes[1].ID" into "changes[1].id".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	return strings.ToLower(namespace)
}
