package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) HealthCheck(ctx context.Context) error { return p.err }

func TestStatusCheckerHealthy(t *testing.T) {
	checker := NewStatusChecker(&scriptedProvider{text: "pong"}, &fakePinger{}, zap.NewNop())

	status := checker.Check(context.Background())
	if !status.IsAvailable {
		t.Error("expected available status")
	}
	if status.IsOverloaded || status.IsQuotaExceeded {
		t.Error("healthy probe must not flag overload or quota")
	}
	if status.ErrorMessage != "" {
		t.Errorf("unexpected error message %q", status.ErrorMessage)
	}
}

func TestStatusCheckerQuotaFailure(t *testing.T) {
	provider := &alwaysFailProvider{err: errors.New("gemini api error 429: quota exceeded")}
	checker := NewStatusChecker(provider, nil, zap.NewNop())

	status := checker.Check(context.Background())
	if status.IsAvailable {
		t.Error("expected unavailable status")
	}
	if !status.IsQuotaExceeded {
		t.Error("quota failure must set IsQuotaExceeded")
	}
	if status.IsOverloaded {
		t.Error("quota failure must not set IsOverloaded")
	}
}

func TestStatusCheckerOverloadedFailure(t *testing.T) {
	provider := &alwaysFailProvider{err: errors.New("gemini api error 503: model is overloaded")}
	checker := NewStatusChecker(provider, nil, zap.NewNop())

	status := checker.Check(context.Background())
	if status.IsAvailable {
		t.Error("expected unavailable status")
	}
	if !status.IsOverloaded {
		t.Error("overload failure must set IsOverloaded")
	}
}

func TestStatusCheckerPingerFailure(t *testing.T) {
	pinger := &fakePinger{err: errors.New("redis down")}
	checker := NewStatusChecker(&scriptedProvider{text: "pong"}, pinger, zap.NewNop())

	status := checker.Check(context.Background())
	if status.IsAvailable {
		t.Error("a failing backend ping must mark the status unavailable")
	}
	if status.ErrorMessage != "redis down" {
		t.Errorf("error message = %q", status.ErrorMessage)
	}
}

func TestStatusCachesLastCheck(t *testing.T) {
	provider := &alwaysFailProvider{err: errors.New("gemini api error 429: quota")}
	checker := NewStatusChecker(provider, nil, zap.NewNop())

	if !checker.Status().IsAvailable {
		t.Error("status must start optimistic")
	}

	checked := checker.Check(context.Background())
	cached := checker.Status()
	if cached != checked {
		t.Errorf("Status() = %+v, want the last Check result %+v", cached, checked)
	}
	if provider.calls != 1 {
		t.Errorf("Status() must not probe; provider calls = %d", provider.calls)
	}
}
