package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the API.
type Error struct {
	Status int
	Path   string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Detail)
}

// IsUnauthorized reports whether err is a 401 or 403 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// Message returns the detail a user should see for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}

const maxErrorBody = 64 << 10

// parseError reads FastAPI-style error bodies: {"detail": "..."},
// {"detail": [{"msg": "..."}]}, {"detail": {...}} or {"message": "..."}.
func parseError(resp *http.Response, path string) error {
	apiErr := &Error{Status: resp.StatusCode, Path: path}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		apiErr.Detail = statusText(resp)
		return apiErr
	}

	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Detail = statusText(resp)
		return apiErr
	}

	if detail := detailText(payload.Detail); detail != "" {
		apiErr.Detail = detail
		return apiErr
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		apiErr.Detail = msg
		return apiErr
	}
	apiErr.Detail = statusText(resp)
	return apiErr
}

func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			msg := strings.TrimSpace(item.Msg)
			if msg == "" {
				msg = "Validation error"
			}
			parts = append(parts, msg)
		}
		return strings.Join(parts, ", ")
	}

	return strings.TrimSpace(string(raw))
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
