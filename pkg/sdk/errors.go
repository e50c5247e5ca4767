package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Sentinel errors mapped from the stable error codes of the response
// envelope. Use errors.Is() to check.
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrValidation           = errors.New("validation failed")
	ErrDataUnavailable      = errors.New("data unavailable")
	ErrModelUnavailable     = errors.New("model unavailable")
	ErrComputation          = errors.New("computation failed")
	ErrRateLimited          = errors.New("rate limited")
	ErrInsightQuotaExceeded = errors.New("insight quota exceeded")
	ErrInsightProviderError = errors.New("insight provider error")
)

var sentinelByCode = map[string]error{
	"unauthorized":           ErrUnauthorized,
	"bad_request":            ErrValidation,
	"validation_failed":      ErrValidation,
	"not_found":              ErrNotFound,
	"already_exists":         ErrAlreadyExists,
	"data_unavailable":       ErrDataUnavailable,
	"model_unavailable":      ErrModelUnavailable,
	"computation_failed":     ErrComputation,
	"rate_limited":           ErrRateLimited,
	"insight_quota_exceeded": ErrInsightQuotaExceeded,
	"insight_provider_error": ErrInsightProviderError,
}

// APIError is a non-2xx server response decoded from the error envelope.
type APIError struct {
	Status  int    // HTTP status code
	Code    string // stable machine-readable code, empty when the body was not an envelope
	Message string
	Field   string // offending field on validation failures
}

func (e *APIError) Error() string {
	switch {
	case e.Code == "":
		return fmt.Sprintf("propdex: http %d: %s", e.Status, e.Message)
	case e.Field != "":
		return fmt.Sprintf("propdex: %s: %s (field %q)", e.Code, e.Message, e.Field)
	default:
		return fmt.Sprintf("propdex: %s: %s", e.Code, e.Message)
	}
}

// Is maps the error code onto the package sentinels so that callers can
// use errors.Is without inspecting codes themselves.
func (e *APIError) Is(target error) bool {
	sentinel, ok := sentinelByCode[e.Code]
	return ok && sentinel == target
}

const maxErrorBody = 64 << 10

func parseAPIError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: "read error body: " + err.Error()}
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Field   string `json:"field"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	return &APIError{
		Status:  resp.StatusCode,
		Code:    envelope.Error.Code,
		Message: envelope.Error.Message,
		Field:   envelope.Error.Field,
	}
}
