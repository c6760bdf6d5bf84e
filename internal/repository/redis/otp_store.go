package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chat-service/internal/client"
	"chat-service/internal/models"
	"chat-service/internal/repository"
	"chat-service/internal/util"
)

const otpPrefix = "otp:"

// OTPStore is the Redis-backed production variant. Records are written with
// a TTL slightly past the verification window; the verifier still applies
// the 10-minute expiry itself, the Redis TTL only bounds leakage.
type OTPStore struct {
	client *client.RedisClient
	ttl    time.Duration
}

func NewOTPStore(c *client.RedisClient, recordTTL time.Duration) *OTPStore {
	return &OTPStore{
		client: c,
		// Keep records one minute past the verify window so an expired
		// record is still observable and deleted by the verifier.
		ttl: recordTTL + time.Minute,
	}
}

func (s *OTPStore) Put(ctx context.Context, rec models.OTPRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	key := otpPrefix + repository.Key(rec.Phone, rec.CountryCode)
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal OTP record: %w", err)
	}

	if err := s.client.Set(ctx, key, payload, s.ttl); err != nil {
		util.Error("Failed to set OTP in cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to set OTP in cache: %w", err)
	}
	util.Debug("OTP cached", zap.String("key", key), zap.Duration("ttl", s.ttl))
	return nil
}

func (s *OTPStore) Get(ctx context.Context, phone, countryCode string) (models.OTPRecord, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	key := otpPrefix + repository.Key(phone, countryCode)

	raw, err := s.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return models.OTPRecord{}, false, nil
		}
		util.Error("Failed to get OTP from cache", zap.String("key", key), zap.Error(err))
		return models.OTPRecord{}, false, fmt.Errorf("failed to get OTP from cache: %w", err)
	}

	var rec models.OTPRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return models.OTPRecord{}, false, fmt.Errorf("corrupt OTP record for %s: %w", key, err)
	}
	return rec, true, nil
}

func (s *OTPStore) Delete(ctx context.Context, phone, countryCode string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	key := otpPrefix + repository.Key(phone, countryCode)

	deleted, err := s.client.Del(ctx, key)
	if err != nil {
		util.Error("Failed to delete OTP from cache", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("failed to delete OTP from cache: %w", err)
	}
	return deleted > 0, nil
}

func (s *OTPStore) Snapshot(ctx context.Context) ([]models.OTPRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var out []models.OTPRecord
	cursor := uint64(0)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, otpPrefix+"*", 100)
		if err != nil {
			return nil, fmt.Errorf("failed to scan OTP keys: %w", err)
		}
		for _, key := range keys {
			raw, err := s.client.Get(ctx, key)
			if err != nil {
				if errors.Is(err, client.ErrKeyNotFound) {
					continue // expired between scan and get
				}
				return nil, fmt.Errorf("failed to read OTP key %s: %w", key, err)
			}
			var rec models.OTPRecord
			if err := json.Unmarshal([]byte(raw), &rec); err != nil {
				util.Warn("Skipping corrupt OTP record", zap.String("key", key), zap.Error(err))
				continue
			}
			out = append(out, rec)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}
