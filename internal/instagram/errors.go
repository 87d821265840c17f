package instagram

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrLoginRequired  = errors.New("instagram: login required")
	ErrPrivateProfile = errors.New("instagram: private profile not followed")
	ErrRateLimited    = errors.New("instagram: rate limited")
	ErrNotFound       = errors.New("instagram: not found")
)

// APIError is a non-success response that matches no sentinel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("instagram api: HTTP %d", e.Status)
	}
	return fmt.Sprintf("instagram api: HTTP %d: %s", e.Status, e.Message)
}

// checkResponse maps an API response onto the sentinel errors. It returns
// nil for a successful JSON payload.
func checkResponse(resp *http.Response, body []byte) error {
	status := resp.StatusCode
	if status >= 300 && status < 400 {
		if strings.Contains(resp.Header.Get("Location"), "/accounts/login") {
			return ErrLoginRequired
		}
		return &APIError{Status: status, Message: "unexpected redirect to " + resp.Header.Get("Location")}
	}

	parsed := gjson.ParseBytes(body)
	message := parsed.Get("message").String()
	switch {
	case status == http.StatusUnauthorized,
		message == "login_required",
		parsed.Get("require_login").Bool():
		return ErrLoginRequired
	case status == http.StatusTooManyRequests,
		strings.Contains(message, "Please wait a few minutes"):
		return ErrRateLimited
	case strings.Contains(message, "Not authorized to view user"):
		return ErrPrivateProfile
	case status == http.StatusNotFound:
		return ErrNotFound
	}

	if status != http.StatusOK || parsed.Get("status").String() == "fail" {
		if message == "" && !gjson.ValidBytes(body) {
			message = truncate(string(body), 200)
		}
		return &APIError{Status: status, Message: message}
	}
	if !gjson.ValidBytes(body) {
		return &APIError{Status: status, Message: "response is not JSON"}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
