package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Detail  string            `json:"detail"`
	Fields  map[string]string `json:"fields"`
}

func (e *Error) decode() (errorBody, bool) {
	var b errorBody
	if err := json.Unmarshal([]byte(e.Body), &b); err != nil {
		return b, false
	}
	return b, true
}

// Message is the best human-readable text the server gave.
func (e *Error) Message() string {
	if b, ok := e.decode(); ok {
		switch {
		case b.Message != "":
			return b.Message
		case b.Detail != "":
			return b.Detail
		case b.Error != "":
			return b.Error
		}
		return ""
	}
	return strings.TrimSpace(e.Body)
}

// Fields returns per-field validation errors, if the server sent any.
func (e *Error) Fields() map[string]string {
	if b, ok := e.decode(); ok {
		return b.Fields
	}
	return nil
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsUnauthorized reports a 401 from the backend.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// Message turns any client error into text fit for a flash message.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
		return http.StatusText(apiErr.Status)
	}
	return "The studio service is unavailable. Please try again."
}
