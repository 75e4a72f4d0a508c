package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GenericServerError is shown when the server gave no usable message.
const GenericServerError = "Server error"

// APIError is a non-2xx response. Message holds the server's "message"
// field when it sent one.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Unauthorized reports whether the server rejected the bearer token.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// UserMessage converts err into the text shown to the operator: the
// server's message verbatim when present, GenericServerError otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericServerError
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

func decodeAPIError(method, path string, resp *http.Response) error {
	apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = strings.TrimSpace(body.Message)
	}
	return apiErr
}
