package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Domain error codes returned by the tDoc service in the "code" field of an
// error body.
const (
	CodeMissingMetadata   = 68
	CodeDocumentMissing   = 231
	CodeTokenExpired      = 337
	CodeBasicAuthDisabled = 338
)

var (
	// ErrUnexpectedResponse is returned when a response body does not have
	// the shape an operation expects.
	ErrUnexpectedResponse = errors.New("unexpected response")

	// ErrTokenModeDisabled is returned by Session.Refresh when the server
	// has no login endpoint.
	ErrTokenModeDisabled = errors.New("token authentication not available")
)

// Error is the single error shape surfaced for transport and domain
// failures.
type Error struct {
	Operation string // endpoint path, e.g. "docs/123/meta"
	Status    int    // HTTP status, 0 when no response was received
	Code      int    // tDoc error code, 0 when absent
	Message   string
	Details   []any // additional structured details, never nil
	Err       error // underlying transport error, if any
}

func (e *Error) Error() string {
	if e.Status == 0 && e.Code == 0 {
		return fmt.Sprintf("tdoc %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("tdoc %s: %s (status %d, code %d)", e.Operation, e.Message, e.Status, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCode reports whether err carries the given tDoc error code.
func IsCode(err error, code int) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsNotFound reports whether err is a 404 response, or a domain error
// carrying code 404 in an otherwise successful response.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Status == http.StatusNotFound || e.Code == http.StatusNotFound)
}

// needsReauth reports whether err asks for a fresh token before retrying.
func needsReauth(err error) (int, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	switch e.Code {
	case CodeTokenExpired, CodeBasicAuthDisabled:
		return e.Code, true
	}
	return 0, false
}

// normalize builds the Error for a failed call. cause is set for transport
// failures; otherwise body is the decoded response body, if any.
func normalize(op string, status int, body any, cause error) *Error {
	if cause != nil {
		return &Error{
			Operation: op,
			Message:   cause.Error(),
			Details:   []any{},
			Err:       cause,
		}
	}

	e := &Error{
		Operation: op,
		Status:    status,
		Details:   []any{},
	}
	if obj, ok := errorObject(body); ok {
		e.Code = toInt(obj["code"])
		e.Message = fmt.Sprint(obj["message"])
		if extra, ok := obj["extra"].([]any); ok {
			e.Details = extra
		}
		return e
	}
	e.Message = fmt.Sprintf("HTTP %d", status)
	return e
}

// errorObject returns body as an object when it carries a "message" field.
func errorObject(body any) (map[string]any, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, false
	}
	if _, ok := obj["message"]; !ok {
		return nil, false
	}
	return obj, true
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

// Unexpected wraps ErrUnexpectedResponse with the offending body.
func Unexpected(op string, body any) error {
	raw, _ := json.Marshal(body)
	return fmt.Errorf("%s: %w: %s", op, ErrUnexpectedResponse, raw)
}
