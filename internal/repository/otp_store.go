package repository

import (
	"context"

	"chat-service/internal/models"
)

// OTPStore holds pending one-time passcodes keyed by country code + phone.
// Put is an unconditional upsert: a new code for the same key always replaces
// the old one. Expiry is the verifier's responsibility, not the store's.
type OTPStore interface {
	Put(ctx context.Context, rec models.OTPRecord) error
	Get(ctx context.Context, phone, countryCode string) (models.OTPRecord, bool, error)
	Delete(ctx context.Context, phone, countryCode string) (bool, error)
	Snapshot(ctx context.Context) ([]models.OTPRecord, error)
}

// Key builds the store key by concatenating country code and phone with no
// delimiter, matching the reference behavior. This means ("+1", "23456789")
// and ("+12", "3456789") share a key; callers treating the pair as identity
// must not rely on the key being injective.
func Key(phone, countryCode string) string {
	return countryCode + phone
}
