package models

import "time"

// OTPRecord is a pending one-time passcode awaiting verification.
// Records live until verified, expired at verification time, or replaced
// by a newer issue for the same key.
type OTPRecord struct {
	Code        string    `json:"code"`
	IssuedAt    time.Time `json:"issued_at"`
	Phone       string    `json:"phone"`
	CountryCode string    `json:"country_code"`
}

// OTPSnapshotEntry is a debug view of one stored record.
type OTPSnapshotEntry struct {
	Key         string `json:"key"`
	Code        string `json:"code"`
	IssuedAt    string `json:"issued_at"`
	AgeSeconds  int64  `json:"age_seconds"`
	Phone       string `json:"phone"`
	CountryCode string `json:"country_code"`
}
