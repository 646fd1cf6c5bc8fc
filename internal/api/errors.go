package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ErrUnauthorized is returned when the backend rejects the bearer token.
// By the time a caller sees it, the stored token has been cleared.
var ErrUnauthorized = errors.New("unauthorized")

// ServerError is a non-2xx response other than an intercepted 401.
type ServerError struct {
	Status  int
	Message string // "message" field of the JSON body, if any
	Body    string
}

// maxBodyMessage caps how much of a plain-text error body is shown.
const maxBodyMessage = 200

// Error prefers the JSON message, then a plain-text body, then the status text.
func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if text := bodyText(e.Body); text != "" {
		return text
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status code %d", e.Status)
}

// bodyText returns body as a short human-readable line, or "" when it is
// empty, not UTF-8 or a JSON document.
func bodyText(body string) string {
	body = strings.TrimSpace(body)
	if body == "" || !utf8.ValidString(body) || json.Valid([]byte(body)) {
		return ""
	}
	if r := []rune(body); len(r) > maxBodyMessage {
		body = string(r[:maxBodyMessage]) + "…"
	}
	return body
}

// TransportError indicates the request never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError indicates the backend returned a payload that does not
// match the expected shape.
type ValidationError struct {
	Endpoint string
	Content  json.RawMessage
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s response: %v", e.Endpoint, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// newServerError builds a ServerError from a response body, preferring a
// JSON "message" field.
func newServerError(status int, body []byte) *ServerError {
	e := &ServerError{Status: status, Body: string(body)}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Message
	}
	return e
}

// StatusText returns a short label for an HTTP status, or "-" when no
// response was received.
func StatusText(status int) string {
	if status == 0 {
		return "-"
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}
