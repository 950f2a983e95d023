package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// APIError is a non-2xx response from the directory service.
type APIError struct {
	Operation  string
	StatusCode int
	Status     string
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	prefix := fmt.Sprintf("directory %s failed", e.Operation)
	details := ""
	if e.URL != "" {
		details = "url=" + e.URL
	}
	switch {
	case e.Message != "" && details != "":
		return fmt.Sprintf("%s: %s: %s (%s)", prefix, e.Status, e.Message, details)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", prefix, e.Status, e.Message)
	case details != "":
		return fmt.Sprintf("%s: %s (%s)", prefix, e.Status, details)
	default:
		return fmt.Sprintf("%s: %s", prefix, e.Status)
	}
}

func newAPIError(op, reqURL string, resp *http.Response, body []byte) *APIError {
	status := strings.TrimSpace(resp.Status)
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return &APIError{
		Operation:  op,
		StatusCode: resp.StatusCode,
		Status:     status,
		Message:    extractAPIErrorMessage(body),
		URL:        safeURL(reqURL),
	}
}

// ServiceMessage returns the message the directory attached to a failed response, if any.
func ServiceMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

func extractAPIErrorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
	}
	return ""
}

func safeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
