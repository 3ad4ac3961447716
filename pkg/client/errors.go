package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 * 1024

// Error is the single error shape returned by the client. Status is zero
// when no HTTP response was involved, for example on a transport failure or
// a failure partway through an event stream.
type Error struct {
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 that survived the refresh.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// errorBody is the error document the workspace API returns. Detail is a
// validation list from request validation, or a plain string.
type errorBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Msg string `json:"msg"`
}

// normalizeResponse builds an Error from a non-2xx response. The message is
// the body's "message" field, else the first validation detail, else a plain
// string detail, else "HTTP <status>".
func normalizeResponse(resp *http.Response) *Error {
	apiErr := &Error{
		Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
		Status:  resp.StatusCode,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}

	if msg := strings.TrimSpace(body.Message); msg != "" {
		apiErr.Message = msg
		return apiErr
	}

	if msg := detailMessage(body.Detail); msg != "" {
		apiErr.Message = msg
	}

	return apiErr
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var list []validationDetail
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) > 0 {
			return strings.TrimSpace(list[0].Msg)
		}
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	return ""
}

func transportError(err error) *Error {
	return &Error{Message: "request failed", Err: err}
}
