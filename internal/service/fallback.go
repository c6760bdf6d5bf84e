package service

import (
	"fmt"
	"strings"
	"time"
)

// fallbackRule pairs trigger keywords with a canned response. Rules are
// evaluated in order and the first keyword hit wins, so the table order is
// part of the contract.
type fallbackRule struct {
	keywords []string
	respond  func(now time.Time) string
}

func canned(text string) func(time.Time) string {
	return func(time.Time) string { return text }
}

var fallbackRules = []fallbackRule{
	{
		keywords: []string{"hello", "hi"},
		respond:  canned("Hello! I'm here to help you. How can I assist you today?"),
	},
	{
		keywords: []string{"help"},
		respond:  canned("I'm here to help! What would you like to know about?"),
	},
	{
		keywords: []string{"weather"},
		respond:  canned("I can't check real-time weather, but you can use weather apps or websites for current conditions."),
	},
	{
		keywords: []string{"time"},
		respond: func(now time.Time) string {
			return fmt.Sprintf("The current time is %s.", now.Format("3:04:05 PM"))
		},
	},
	{
		keywords: []string{"date"},
		respond: func(now time.Time) string {
			return fmt.Sprintf("Today is %s.", now.Format("1/2/2006"))
		},
	},
	{
		keywords: []string{"math", "calculate"},
		respond:  canned("I can help with basic math! Try asking me to calculate something specific."),
	},
	{
		keywords: []string{"code", "programming"},
		respond:  canned("I can help with programming questions! What language or framework are you working with?"),
	},
	{
		keywords: []string{"explain", "what is"},
		respond:  canned("I'd be happy to explain that! Could you provide more specific details about what you'd like me to explain?"),
	},
}

const fallbackDefault = "That's an interesting question! I'd be happy to help you with that. Could you provide more details so I can give you a better answer?"

// Fallback returns the canned local response for a prompt. It is pure given
// the prompt and the injected clock; only the time/date branches read the
// clock at all.
func (s *GenerationService) Fallback(prompt string) string {
	lower := strings.ToLower(prompt)
	now := s.clock.Now()

	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.respond(now)
			}
		}
	}
	return fallbackDefault
}
