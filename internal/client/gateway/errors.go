package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired")
)

// APIError is a non-2xx answer of the admin API, or a 2xx answer whose body
// says success=false.
type APIError struct {
	Status  int
	Message string
	// Expired is set for 401 answers that blame the token.
	Expired bool
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api error: %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrSessionExpired:
		return e.Expired
	case ErrUnavailable:
		return e.Status >= http.StatusInternalServerError
	}
	return false
}

// Message extracts the text worth showing to the operator.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// tokenRejected reports whether a 401 message is about the bearer token
// itself (expired, invalid or missing) rather than bad credentials.
func tokenRejected(status int, message string) bool {
	if status != http.StatusUnauthorized {
		return false
	}
	m := strings.ToLower(message)
	return strings.Contains(m, "expired") ||
		strings.Contains(m, "invalid") ||
		strings.Contains(m, "no token")
}
