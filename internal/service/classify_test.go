package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"quota keyword", errors.New("API quota exceeded. Please try again later."), FailureQuota},
		{"429 status", errors.New("gemini api error 429: resource exhausted"), FailureQuota},
		{"quota sentinel", ErrQuotaRetry, FailureQuota},
		{"wrapped sentinel", fmt.Errorf("attempt failed: %w", ErrQuotaRetry), FailureQuota},
		{"overloaded keyword", errors.New("The model is overloaded"), FailureOverloaded},
		{"503 status", errors.New("gemini api error 503: unavailable"), FailureOverloaded},
		{"invalid key", errors.New("API_KEY_INVALID provided"), FailureInvalidKey},
		{"key not valid", errors.New("API key not valid. Please pass a valid API key."), FailureInvalidKey},
		{"network", errors.New("network error calling gemini api: dial tcp: i/o problem"), FailureNetwork},
		{"connection", errors.New("connection refused"), FailureNetwork},
		{"timeout", errors.New("request timeout exceeded"), FailureNetwork},
		{"generic", errors.New("no response generated from gemini api"), FailureOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyFailure(tc.err); got != tc.want {
				t.Errorf("ClassifyFailure(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestFailureKindString(t *testing.T) {
	if FailureQuota.String() != "quota_exceeded" {
		t.Errorf("FailureQuota.String() = %q", FailureQuota.String())
	}
	if FailureOther.String() != "other_error" {
		t.Errorf("FailureOther.String() = %q", FailureOther.String())
	}
}
