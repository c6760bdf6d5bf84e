package service

import (
	"errors"
	"strings"
)

// FailureKind is the closed classification of provider failures. The
// provider's error surface is free text, so classification matches
// case-insensitive substrings at this boundary and nowhere else.
type FailureKind int

const (
	FailureQuota FailureKind = iota
	FailureOverloaded
	FailureInvalidKey
	FailureNetwork
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailureQuota:
		return "quota_exceeded"
	case FailureOverloaded:
		return "overloaded"
	case FailureInvalidKey:
		return "invalid_key"
	case FailureNetwork:
		return "network_error"
	default:
		return "other_error"
	}
}

// ErrQuotaRetry is the sentinel a provider may return to force the quota
// retry path without a matching message.
var ErrQuotaRetry = errors.New("QUOTA_EXCEEDED_RETRY")

// ClassifyFailure maps a provider error into a FailureKind.
func ClassifyFailure(err error) FailureKind {
	if errors.Is(err, ErrQuotaRetry) {
		return FailureQuota
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "429"):
		return FailureQuota
	case strings.Contains(msg, "overloaded") || strings.Contains(msg, "503"):
		return FailureOverloaded
	case strings.Contains(msg, "api_key_invalid") || strings.Contains(msg, "api key not valid") || strings.Contains(msg, "invalid api key"):
		return FailureInvalidKey
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection") || strings.Contains(msg, "timeout"):
		return FailureNetwork
	default:
		return FailureOther
	}
}
