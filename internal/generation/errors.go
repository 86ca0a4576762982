package generation

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
)

// Kind 是生成失败的分类。
type Kind string

const (
	KindConfiguration  Kind = "configuration"
	KindAuthentication Kind = "authentication"
	KindCapacity       Kind = "capacity"
	KindModel          Kind = "model"
	KindTimeout        Kind = "timeout"
	KindUpstream       Kind = "upstream"
)

// Error is returned by Service.Generate. Details keeps the raw upstream text.
type Error struct {
	Kind    Kind
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return string(e.Kind) + ": " + e.Details
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the failure kind of err, or "" when err is not a generation error.
func KindOf(err error) Kind {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ""
}

// Classify maps an upstream failure onto a Kind.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	if apiErr, ok := apierror.FromError(err); ok {
		if kind := kindFromStatus(apiErr.HTTPCode(), apiErr.Reason()); kind != "" {
			return kind
		}
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if kind := kindFromStatus(gErr.Code, ""); kind != "" {
			return kind
		}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "API key"), strings.Contains(lower, "api_key_invalid"):
		return KindAuthentication
	case strings.Contains(lower, "quota"), strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return KindCapacity
	case strings.Contains(lower, "deadline exceeded"):
		return KindTimeout
	case strings.Contains(lower, "model"):
		return KindModel
	default:
		return KindUpstream
	}
}

func kindFromStatus(code int, reason string) Kind {
	switch {
	case reason == "API_KEY_INVALID":
		return KindAuthentication
	case reason == "RATE_LIMIT_EXCEEDED", strings.Contains(reason, "QUOTA"):
		return KindCapacity
	}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthentication
	case http.StatusTooManyRequests:
		return KindCapacity
	case http.StatusGatewayTimeout:
		return KindTimeout
	}
	return ""
}
