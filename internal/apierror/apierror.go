// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Kind is a stable machine-readable identifier (ACCOUNT_LOCKED,
// CONCURRENCY_CONFLICT, …) clients branch on; Detail is for humans.
type APIError struct {
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewKind builds an error envelope with a machine-readable kind.
func NewKind(kind, msg string) *APIError {
	return &APIError{Kind: kind, Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Kind   string            `json:"kind"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Kind: "VALIDATION", Detail: "Validation error", Fields: fields}
}
