package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-service/internal/client"
	"chat-service/internal/config"
	"chat-service/internal/models"
	"chat-service/internal/repository"
	"chat-service/internal/util"
)

var (
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrInvalidCountryCode = errors.New("invalid country code")
)

// VerifyStatus is the structured outcome of an OTP verification attempt.
type VerifyStatus int

const (
	VerifyOK VerifyStatus = iota
	VerifyNotFound
	VerifyExpired
	VerifyMismatch
)

func (s VerifyStatus) String() string {
	switch s {
	case VerifyOK:
		return "ok"
	case VerifyNotFound:
		return "not_found"
	case VerifyExpired:
		return "expired"
	default:
		return "mismatch"
	}
}

// AuthService runs the simulated phone verification flow: issue a code,
// pretend to deliver it over SMS, verify it against the store with a
// 10-minute expiry window enforced here rather than in the store.
type AuthService struct {
	store    repository.OTPStore
	producer *client.KafkaProducer
	topic    string
	logger   *zap.Logger

	clock util.Clock
	sleep func(ctx context.Context, d time.Duration) error

	ttl           time.Duration
	codeLength    int
	deliveryDelay time.Duration
	verifyDelay   time.Duration
}

func NewAuthService(store repository.OTPStore, producer *client.KafkaProducer, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:         store,
		producer:      producer,
		topic:         cfg.Kafka.AuthTopic,
		logger:        logger,
		clock:         util.SystemClock{},
		sleep:         sleepWithContext,
		ttl:           cfg.OTP.TTL,
		codeLength:    cfg.OTP.CodeLength,
		deliveryDelay: cfg.OTP.DeliveryDelay,
		verifyDelay:   cfg.OTP.VerifyDelay,
	}
}

// IssueOTP generates a fresh code for the phone and stores it, replacing
// any pending code for the same key. Delivery is simulated with a fixed
// delay and the code is returned to the caller for display. Demo behavior:
// a real deployment must hand the code to an SMS gateway instead.
func (s *AuthService) IssueOTP(ctx context.Context, phone, countryCode string) (string, error) {
	phone = strings.TrimSpace(phone)
	countryCode = strings.TrimSpace(countryCode)

	if !util.ValidPhone(phone) {
		return "", ErrInvalidPhone
	}
	if !util.ValidCountryCode(countryCode) {
		return "", ErrInvalidCountryCode
	}

	code, err := s.generateCode()
	if err != nil {
		return "", err
	}

	rec := models.OTPRecord{
		Code:        code,
		IssuedAt:    s.clock.Now(),
		Phone:       phone,
		CountryCode: countryCode,
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return "", fmt.Errorf("failed to store OTP: %w", err)
	}

	key := repository.Key(phone, countryCode)

	// Simulated SMS gateway latency.
	if err := s.sleep(ctx, s.deliveryDelay); err != nil {
		return "", err
	}

	s.logger.Info("Simulated SMS sent",
		util.String("phone_key", key),
		util.Duration("valid_for", s.ttl),
	)
	s.publishEvent(ctx, models.EventOTPIssued, key, "issued")

	return code, nil
}

// VerifyOTP checks the submitted code against the pending record. Expired
// records are deleted as a side effect; a mismatched code leaves the record
// in place; a successful verification consumes it.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, countryCode, submitted string) (VerifyStatus, error) {
	phone = strings.TrimSpace(phone)
	countryCode = strings.TrimSpace(countryCode)
	key := repository.Key(phone, countryCode)

	rec, ok, err := s.store.Get(ctx, phone, countryCode)
	if err != nil {
		return VerifyNotFound, err
	}
	if !ok {
		s.logger.Info("No pending OTP for key", util.String("phone_key", key))
		s.publishEvent(ctx, models.EventOTPVerified, key, VerifyNotFound.String())
		return VerifyNotFound, nil
	}

	if s.clock.Now().Sub(rec.IssuedAt) > s.ttl {
		if _, derr := s.store.Delete(ctx, phone, countryCode); derr != nil {
			s.logger.Error("Failed to delete expired OTP", util.String("phone_key", key), util.ErrorField(derr))
		}
		s.logger.Info("OTP expired", util.String("phone_key", key))
		s.publishEvent(ctx, models.EventOTPVerified, key, VerifyExpired.String())
		return VerifyExpired, nil
	}

	// Simulated verification latency.
	if err := s.sleep(ctx, s.verifyDelay); err != nil {
		return VerifyNotFound, err
	}

	if rec.Code != submitted {
		s.logger.Info("Invalid OTP attempt", util.String("phone_key", key))
		s.publishEvent(ctx, models.EventOTPVerified, key, VerifyMismatch.String())
		return VerifyMismatch, nil
	}

	if _, err := s.store.Delete(ctx, phone, countryCode); err != nil {
		return VerifyOK, fmt.Errorf("failed to consume OTP: %w", err)
	}

	s.logger.Info("OTP verified successfully", util.String("phone_key", key))
	s.publishEvent(ctx, models.EventOTPVerified, key, VerifyOK.String())
	return VerifyOK, nil
}

// DebugSnapshot lists all pending records with their age. Exposed on a
// dev-only endpoint.
func (s *AuthService) DebugSnapshot(ctx context.Context) ([]models.OTPSnapshotEntry, error) {
	recs, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entries := make([]models.OTPSnapshotEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, models.OTPSnapshotEntry{
			Key:         repository.Key(rec.Phone, rec.CountryCode),
			Code:        rec.Code,
			IssuedAt:    rec.IssuedAt.Format(time.RFC3339),
			AgeSeconds:  int64(now.Sub(rec.IssuedAt).Seconds()),
			Phone:       rec.Phone,
			CountryCode: rec.CountryCode,
		})
	}
	return entries, nil
}

func (s *AuthService) generateCode() (string, error) {
	bound := big.NewInt(1)
	for i := 0; i < s.codeLength; i++ {
		bound.Mul(bound, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP code: %w", err)
	}
	return fmt.Sprintf("%0*d", s.codeLength, n), nil
}

func (s *AuthService) publishEvent(ctx context.Context, eventType, key, status string) {
	if s.producer == nil {
		return
	}

	event := models.AuthEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		PhoneKey:  key,
		Status:    status,
		Timestamp: s.clock.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.producer.ProduceMessage(ctx, s.topic, []byte(key), payload); err != nil {
		s.logger.Warn("Failed to publish auth event", util.ErrorField(err))
	}
}
