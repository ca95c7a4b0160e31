package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is returned before any request is made when a call is
// missing an id, a name, or an updatable field.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	FallbackRequestFailed = "Request failed."
	FallbackLoadProducts  = "Unable to load products."
)

// GatewayError is a non-2xx response from the catalog API
type GatewayError struct {
	Status  int
	Message string
	Data    any
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("catalog api responded %d: %s", e.Status, e.Message)
}

func invalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// Message returns the text to show a user for err. Upstream messages are
// surfaced verbatim, invalid arguments keep their reason and anything else
// becomes fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	if errors.Is(err, ErrInvalidArgument) {
		msg := strings.TrimPrefix(err.Error(), ErrInvalidArgument.Error()+": ")
		if msg != "" {
			return msg
		}
	}
	return fallback
}

// extractMessage looks for message, error or detail in a decoded body
func extractMessage(data any, fallback string) string {
	switch v := data.(type) {
	case map[string]any:
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	case string:
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return fallback
}
