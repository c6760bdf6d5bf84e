package models

import "time"

// Event types published to Kafka for side-channel observability.
const (
	EventOTPIssued          = "otp.issued"
	EventOTPVerified        = "otp.verified"
	EventGenerationFallback = "generation.fallback"
)

// AuthEvent records an OTP lifecycle transition.
type AuthEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	PhoneKey  string    `json:"phone_key"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// GenerationEvent records a generation request that exhausted its retry
// budget and degraded to the local fallback.
type GenerationEvent struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	FailureKind string    `json:"failure_kind"`
	Attempts    int       `json:"attempts"`
	Timestamp   time.Time `json:"timestamp"`
}
