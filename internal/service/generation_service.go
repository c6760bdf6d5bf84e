package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-service/internal/client"
	"chat-service/internal/config"
	"chat-service/internal/models"
	"chat-service/internal/util"
)

// Provider is the abstract generation collaborator: one completion call
// returning text or a classifiable error.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	defaultThinkingDelay = 800 * time.Millisecond
	maxThinkingDelay     = 3 * time.Second
	defaultMaxRetries    = 5

	// Quota failures get a larger retry budget than everything else.
	maxQuotaRetries  = 10
	quotaBackoffStep = 2 * time.Second
	maxQuotaBackoff  = 30 * time.Second

	overloadBackoffBase = 1 * time.Second
	maxOverloadBackoff  = 5 * time.Second

	chunkSize = 50
)

var (
	complexityKeywords = regexp.MustCompile(`(?i)(explain|analyze|compare|describe|how|why)`)
	codeKeywords       = regexp.MustCompile(`(?i)(code|program|function|class|algorithm)`)
)

// GenerateOptions tunes a single generation request. Zero values mean the
// configured defaults.
type GenerateOptions struct {
	EnableProgressiveResponse bool
	CustomThinkingDelay       time.Duration
	MaxRetries                int

	// OnChunk, when set with EnableProgressiveResponse, receives the result
	// in fixed-size chunks. The returned text is always the full, unchunked
	// response regardless.
	OnChunk func(chunk string)
}

// GenerationService orchestrates generation requests: thinking delay,
// retry with failure-specific backoff, and deterministic local fallback.
// Provider failures never reach the caller; only context cancellation does.
type GenerationService struct {
	provider Provider
	producer *client.KafkaProducer
	topic    string
	logger   *zap.Logger

	clock util.Clock
	sleep func(ctx context.Context, d time.Duration) error

	thinkingDelay time.Duration
	maxRetries    int
}

func NewGenerationService(provider Provider, producer *client.KafkaProducer, cfg *config.Config, logger *zap.Logger) *GenerationService {
	thinkingDelay := cfg.Generation.ThinkingDelay
	if thinkingDelay <= 0 {
		thinkingDelay = defaultThinkingDelay
	}
	maxRetries := cfg.Generation.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &GenerationService{
		provider:      provider,
		producer:      producer,
		topic:         cfg.Kafka.GenerationTopic,
		logger:        logger,
		clock:         util.SystemClock{},
		sleep:         sleepWithContext,
		thinkingDelay: thinkingDelay,
		maxRetries:    maxRetries,
	}
}

// Generate produces a response for the prompt. It always resolves to text:
// either a real provider answer or the local fallback. The returned error is
// non-nil only when ctx is cancelled mid-flight.
func (s *GenerationService) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	thinking := opts.CustomThinkingDelay
	if thinking <= 0 {
		thinking = s.thinkingDelay
	}

	s.logger.Debug("Simulating thinking delay",
		util.Duration("delay", thinking),
	)
	if err := s.sleep(ctx, thinking); err != nil {
		return "", err
	}

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = s.maxRetries
	}

	text, err := s.generateWithRetry(ctx, prompt, maxRetries)
	if err != nil {
		return "", err
	}

	if opts.EnableProgressiveResponse && len(text) > chunkSize {
		return s.progressiveResponse(text, opts.OnChunk), nil
	}
	return text, nil
}

// generateWithRetry runs the attempt loop. Quota failures retry with linear
// backoff up to the hard quota ceiling; overload failures retry with
// exponential backoff within maxRetries; everything else retries immediately
// within maxRetries. A spent budget degrades to the fallback, never an error.
func (s *GenerationService) generateWithRetry(ctx context.Context, prompt string, maxRetries int) (string, error) {
	attempt := 1
	lastKind := FailureOther

	for attempt <= maxQuotaRetries {
		text, cerr := s.provider.Complete(ctx, prompt)
		if cerr == nil {
			return text, nil
		}

		lastKind = ClassifyFailure(cerr)
		s.logger.Warn("Generation attempt failed",
			util.Int("attempt", attempt),
			util.String("kind", lastKind.String()),
			util.ErrorField(cerr),
		)

		if lastKind == FailureQuota {
			wait := QuotaBackoff(attempt)
			s.logger.Info("Quota exceeded, backing off",
				util.Duration("wait", wait),
				util.Int("attempt", attempt),
				util.Int("max_attempts", maxQuotaRetries),
			)
			if err := s.sleep(ctx, wait); err != nil {
				return "", err
			}
			attempt++
			continue
		}

		if lastKind == FailureOverloaded && attempt <= maxRetries {
			wait := OverloadBackoff(attempt)
			s.logger.Info("Provider overloaded, backing off",
				util.Duration("wait", wait),
				util.Int("attempt", attempt),
			)
			if err := s.sleep(ctx, wait); err != nil {
				return "", err
			}
			attempt++
			continue
		}

		if attempt <= maxRetries {
			attempt++
			continue
		}

		break
	}

	s.logger.Warn("All retry attempts failed, using fallback response",
		util.Int("attempts", attempt),
		util.String("last_kind", lastKind.String()),
	)
	s.publishFallback(ctx, lastKind, attempt)
	return s.Fallback(prompt), nil
}

func (s *GenerationService) progressiveResponse(full string, onChunk func(string)) string {
	chunks := 0
	for i := 0; i < len(full); i += chunkSize {
		end := i + chunkSize
		if end > len(full) {
			end = len(full)
		}
		if onChunk != nil {
			onChunk(full[i:end])
		}
		chunks++
	}

	s.logger.Debug("Progressive response chunked",
		util.Int("chunks", chunks),
		util.Int("chunk_size", chunkSize),
	)
	return full
}

func (s *GenerationService) publishFallback(ctx context.Context, kind FailureKind, attempts int) {
	if s.producer == nil {
		return
	}

	event := models.GenerationEvent{
		EventID:     uuid.NewString(),
		Type:        models.EventGenerationFallback,
		FailureKind: kind.String(),
		Attempts:    attempts,
		Timestamp:   s.clock.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.producer.ProduceMessage(ctx, s.topic, []byte(event.Type), payload); err != nil {
		s.logger.Warn("Failed to publish generation event", util.ErrorField(err))
	}
}

// QuotaBackoff returns the wait before quota retry n: 2s, 4s, ... capped
// at 30s.
func QuotaBackoff(attempt int) time.Duration {
	wait := time.Duration(attempt) * quotaBackoffStep
	if wait > maxQuotaBackoff {
		wait = maxQuotaBackoff
	}
	return wait
}

// OverloadBackoff returns the wait before overload retry n: 1s, 2s, 4s,
// capped at 5s.
func OverloadBackoff(attempt int) time.Duration {
	wait := overloadBackoffBase << (attempt - 1)
	if wait <= 0 || wait > maxOverloadBackoff {
		wait = maxOverloadBackoff
	}
	return wait
}

// ThinkingDelay estimates a UX pause from prompt complexity: base 800ms,
// +300ms past 20 words, +400ms for analytical keywords, +500ms for code
// keywords, capped at 3s. Policy, not physics.
func ThinkingDelay(prompt string) time.Duration {
	delay := defaultThinkingDelay

	if len(strings.Fields(prompt)) > 20 {
		delay += 300 * time.Millisecond
	}
	if complexityKeywords.MatchString(prompt) {
		delay += 400 * time.Millisecond
	}
	if codeKeywords.MatchString(prompt) {
		delay += 500 * time.Millisecond
	}

	if delay > maxThinkingDelay {
		delay = maxThinkingDelay
	}
	return delay
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
