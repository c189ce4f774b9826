// Package apierr carries the platform's structured error payload. The same
// shape arrives as a REST error body, as the data of a websocket "error"
// envelope, and JSON-stringified inside connect_error messages.
package apierr

import (
	"encoding/json"
	"fmt"
	"strings"
)

type APIError struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	ErrorName string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path,omitempty"`
	Context   string `json:"context,omitempty"`
}

func (e *APIError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s (%d %s) at %s", e.Message, e.Status, e.ErrorName, e.Path)
	}
	return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.ErrorName)
}

// Parse decodes a structured error body. The payload is kept verbatim when
// it parses; a body that is not the expected shape yields ok=false and the
// caller falls back to a generic message.
func Parse(body []byte) (*APIError, bool) {
	var e APIError
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, false
	}
	if e.Status == 0 && e.Message == "" {
		return nil, false
	}
	return &e, true
}

// ParseString decodes a JSON-stringified payload, as delivered by
// connect_error events.
func ParseString(s string) (*APIError, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	return Parse([]byte(s))
}
