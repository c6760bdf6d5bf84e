package service

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"chat-service/internal/config"
)

func newFallbackService(now time.Time) *GenerationService {
	svc := NewGenerationService(nil, nil, &config.Config{}, zap.NewNop())
	svc.clock = &fakeClock{now: now}
	return svc
}

func TestFallbackKeywordBranches(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)
	svc := newFallbackService(now)

	cases := []struct {
		name   string
		prompt string
		want   string
	}{
		{"greeting", "Hello, anyone out there?", "Hello! I'm here to help you. How can I assist you today?"},
		{"help", "can you help me out", "I'm here to help! What would you like to know about?"},
		{"weather", "what's the weather like", "I can't check real-time weather, but you can use weather apps or websites for current conditions."},
		{"time", "what time is it", "The current time is 2:30:45 PM."},
		{"date", "today's date please", "Today is 6/15/2024."},
		{"math", "calculate 2 plus 2", "I can help with basic math! Try asking me to calculate something specific."},
		{"programming", "got a question about programming", "I can help with programming questions! What language or framework are you working with?"},
		{"explain", "please explain gravity", "I'd be happy to explain that! Could you provide more specific details about what you'd like me to explain?"},
		{"default", "tell me a story", fallbackDefault},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.Fallback(tc.prompt); got != tc.want {
				t.Errorf("Fallback(%q) = %q, want %q", tc.prompt, got, tc.want)
			}
		})
	}
}

func TestFallbackRuleOrderFirstMatchWins(t *testing.T) {
	svc := newFallbackService(time.Now())

	// Contains both a greeting keyword and a code keyword; the greeting rule
	// comes first in the table.
	got := svc.Fallback("hello, can you review my code")
	if got != "Hello! I'm here to help you. How can I assist you today?" {
		t.Errorf("rule order violated: got %q", got)
	}
}

func TestFallbackCaseInsensitive(t *testing.T) {
	svc := newFallbackService(time.Now())

	if got := svc.Fallback("WEATHER REPORT"); got != "I can't check real-time weather, but you can use weather apps or websites for current conditions." {
		t.Errorf("matching must be case-insensitive, got %q", got)
	}
}

func TestFallbackDeterministicAtFixedInstant(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 5, 0, 0, time.UTC)
	svc := newFallbackService(now)

	first := svc.Fallback("what time is it")
	second := svc.Fallback("what time is it")
	if first != second {
		t.Errorf("fallback not deterministic at a fixed instant: %q vs %q", first, second)
	}
	if first != "The current time is 9:05:00 AM." {
		t.Errorf("time branch = %q", first)
	}
}
