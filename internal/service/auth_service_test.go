package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chat-service/internal/bucketing"
	"chat-service/internal/config"
	"chat-service/internal/models"
	"chat-service/internal/repository"
	"chat-service/internal/repository/memory"
)

func newTestAuthService() (*AuthService, *memory.OTPStore, *fakeClock) {
	store := memory.NewOTPStore(bucketing.NewManager(4))
	cfg := &config.Config{
		OTP: config.OTPConfig{
			TTL:           10 * time.Minute,
			CodeLength:    6,
			DeliveryDelay: 0,
			VerifyDelay:   0,
		},
	}
	svc := NewAuthService(store, nil, cfg, zap.NewNop())

	clock := &fakeClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	svc.clock = clock
	svc.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return svc, store, clock
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc, store, _ := newTestAuthService()
	ctx := context.Background()

	code, err := svc.IssueOTP(ctx, "5551234", "+1")
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, r := range code {
		require.True(t, r >= '0' && r <= '9', "code must be numeric, got %q", code)
	}

	status, err := svc.VerifyOTP(ctx, "5551234", "+1", code)
	require.NoError(t, err)
	assert.Equal(t, VerifyOK, status)

	// Successful verification consumes the record.
	_, ok, err := store.Get(ctx, "5551234", "+1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyMismatchKeepsRecord(t *testing.T) {
	svc, store, clock := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, models.OTPRecord{
		Code: "000000", IssuedAt: clock.Now(), Phone: "5551234", CountryCode: "+1",
	}))

	status, err := svc.VerifyOTP(ctx, "5551234", "+1", "111111")
	require.NoError(t, err)
	assert.Equal(t, VerifyMismatch, status)

	// A failed match must not consume the record.
	_, ok, err := store.Get(ctx, "5551234", "+1")
	require.NoError(t, err)
	assert.True(t, ok)

	status, err = svc.VerifyOTP(ctx, "5551234", "+1", "000000")
	require.NoError(t, err)
	assert.Equal(t, VerifyOK, status)
}

func TestVerifyExpiredRemovesRecord(t *testing.T) {
	svc, store, clock := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, models.OTPRecord{
		Code: "042917", IssuedAt: clock.Now(), Phone: "5551234", CountryCode: "+1",
	}))

	clock.Advance(10*time.Minute + time.Second)

	status, err := svc.VerifyOTP(ctx, "5551234", "+1", "042917")
	require.NoError(t, err)
	assert.Equal(t, VerifyExpired, status)

	// Expiry deletes as a side effect of the failed verification.
	_, ok, err := store.Get(ctx, "5551234", "+1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyJustInsideWindow(t *testing.T) {
	svc, store, clock := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, models.OTPRecord{
		Code: "042917", IssuedAt: clock.Now(), Phone: "5551234", CountryCode: "+1",
	}))

	clock.Advance(10 * time.Minute)

	status, err := svc.VerifyOTP(ctx, "5551234", "+1", "042917")
	require.NoError(t, err)
	assert.Equal(t, VerifyOK, status)
}

func TestVerifyNotFound(t *testing.T) {
	svc, _, _ := newTestAuthService()

	status, err := svc.VerifyOTP(context.Background(), "5550000", "+1", "123456")
	require.NoError(t, err)
	assert.Equal(t, VerifyNotFound, status)
}

func TestReissueInvalidatesPriorCode(t *testing.T) {
	svc, store, clock := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, models.OTPRecord{
		Code: "111111", IssuedAt: clock.Now(), Phone: "5551234", CountryCode: "+1",
	}))
	require.NoError(t, store.Put(ctx, models.OTPRecord{
		Code: "222222", IssuedAt: clock.Now(), Phone: "5551234", CountryCode: "+1",
	}))

	status, err := svc.VerifyOTP(ctx, "5551234", "+1", "111111")
	require.NoError(t, err)
	assert.Equal(t, VerifyMismatch, status, "replaced code must no longer verify")

	status, err = svc.VerifyOTP(ctx, "5551234", "+1", "222222")
	require.NoError(t, err)
	assert.Equal(t, VerifyOK, status)
}

func TestKeyCollisionPreserved(t *testing.T) {
	svc, store, clock := newTestAuthService()
	ctx := context.Background()

	// ("+12", "3456789") and ("+1", "23456789") concatenate to the same key,
	// so the second issue replaces the first. Reference behavior, kept as-is.
	assert.Equal(t, repository.Key("3456789", "+12"), repository.Key("23456789", "+1"))

	require.NoError(t, store.Put(ctx, models.OTPRecord{
		Code: "111111", IssuedAt: clock.Now(), Phone: "3456789", CountryCode: "+12",
	}))
	require.NoError(t, store.Put(ctx, models.OTPRecord{
		Code: "222222", IssuedAt: clock.Now(), Phone: "23456789", CountryCode: "+1",
	}))

	status, err := svc.VerifyOTP(ctx, "3456789", "+12", "222222")
	require.NoError(t, err)
	assert.Equal(t, VerifyOK, status, "colliding keys share one record")
}

func TestIssueRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.IssueOTP(ctx, "555-1234", "+1")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = svc.IssueOTP(ctx, "", "+1")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = svc.IssueOTP(ctx, "5551234", "US")
	assert.ErrorIs(t, err, ErrInvalidCountryCode)
}

func TestDebugSnapshotReportsAge(t *testing.T) {
	svc, store, clock := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, models.OTPRecord{
		Code: "654321", IssuedAt: clock.Now(), Phone: "5551234", CountryCode: "+44",
	}))
	clock.Advance(90 * time.Second)

	entries, err := svc.DebugSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "+445551234", entries[0].Key)
	assert.Equal(t, "654321", entries[0].Code)
	assert.Equal(t, int64(90), entries[0].AgeSeconds)
}

func TestVerifyStatusString(t *testing.T) {
	assert.Equal(t, "ok", VerifyOK.String())
	assert.Equal(t, "not_found", VerifyNotFound.String())
	assert.Equal(t, "expired", VerifyExpired.String())
	assert.Equal(t, "mismatch", VerifyMismatch.String())
}
