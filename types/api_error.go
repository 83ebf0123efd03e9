package types

type ApiErrorType string

const (
	ApiErrorTypeInvalidToken ApiErrorType = "invalid_token"
	ApiErrorTypeForbidden    ApiErrorType = "forbidden"
	ApiErrorTypeValidation   ApiErrorType = "validation"
	ApiErrorTypeNotFound     ApiErrorType = "not_found"
	ApiErrorTypeConflict     ApiErrorType = "conflict"
	ApiErrorTypeRateLimited  ApiErrorType = "rate_limited"
	ApiErrorTypeBlocked      ApiErrorType = "blocked"
	ApiErrorTypeThreat       ApiErrorType = "threat_detected"
	ApiErrorTypeUnavailable  ApiErrorType = "unavailable"

	ApiErrorTypeOther ApiErrorType = "other"
)

type ApiError struct {
	Type   ApiErrorType `json:"type"`
	Status int          `json:"status"`
	Msg    string       `json:"msg"`

	// only used for validation errors
	Fields map[string]string `json:"fields,omitempty"`

	// only used for rate limited errors
	RetryAfterSeconds int `json:"retryAfterSeconds,omitempty"`
}

func (e *ApiError) Error() string {
	return e.Msg
}
