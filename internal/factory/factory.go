package factory

import (
	"fmt"
	"sync"

	"chat-service/internal/bucketing"
	"chat-service/internal/client"
	"chat-service/internal/config"
	"chat-service/internal/repository"
	"chat-service/internal/repository/memory"
	redisrepo "chat-service/internal/repository/redis"
	"chat-service/internal/service"
	"chat-service/internal/tls"
	"chat-service/internal/util"
)

// Factory manages the lifecycle of all application dependencies
type Factory struct {
	config     *config.Config
	tlsManager *tls.Manager

	// Clients
	redisClient   *client.RedisClient
	kafkaProducer *client.KafkaProducer
	geminiClient  *client.GeminiClient

	// Stores and services
	otpStore          repository.OTPStore
	authService       *service.AuthService
	generationService *service.GenerationService
	statusChecker     *service.StatusChecker

	closeOnce sync.Once
}

// NewFactory creates and initializes all application dependencies
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	f := &Factory{config: cfg}

	if cfg.Server.EnableTLS {
		f.tlsManager = tls.NewManager(&tls.Config{
			EnableTLS:   cfg.Server.EnableTLS,
			AutoCert:    cfg.Server.AutoCert,
			Domain:      cfg.Server.Domain,
			CertFile:    cfg.Server.CertFile,
			KeyFile:     cfg.Server.KeyFile,
			AutoCertDir: cfg.Server.AutoCertDir,
			Email:       cfg.Server.Email,
			Environment: cfg.Environment,
		})
	}

	if err := f.initializeClients(); err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}
	f.initializeServices()

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.String("otp_backend", cfg.OTP.Backend),
		util.Bool("tls_enabled", cfg.Server.EnableTLS),
		util.Bool("kafka_enabled", cfg.Kafka.Enabled),
		util.Bool("gemini_configured", f.geminiClient.IsConfigured()),
	)

	return f, nil
}

func (f *Factory) initializeClients() error {
	f.geminiClient = client.NewGeminiClient(f.config, util.Get())

	// Redis backs the OTP store only in the "redis" backend; the default
	// in-memory store needs no external client.
	if f.config.OTP.Backend == "redis" {
		redisClient, err := client.NewRedisClient(f.config, util.Get())
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		f.redisClient = redisClient
	}

	// Kafka is optional observability; a dead broker must not block startup.
	if f.config.Kafka.Enabled {
		producer, err := client.NewKafkaProducer(f.config, util.Get())
		if err != nil {
			util.Warn("Kafka producer initialization failed - proceeding without Kafka", util.ErrorField(err))
		} else {
			f.kafkaProducer = producer
		}
	}

	return nil
}

func (f *Factory) initializeServices() {
	if f.redisClient != nil {
		f.otpStore = redisrepo.NewOTPStore(f.redisClient, f.config.OTP.TTL)
	} else {
		f.otpStore = memory.NewOTPStore(bucketing.NewManager(f.config.OTP.Shards))
	}

	f.authService = service.NewAuthService(f.otpStore, f.kafkaProducer, f.config, util.Get())
	f.generationService = service.NewGenerationService(f.geminiClient, f.kafkaProducer, f.config, util.Get())

	var pinger service.Pinger
	if f.redisClient != nil {
		pinger = f.redisClient
	}
	f.statusChecker = service.NewStatusChecker(f.geminiClient, pinger, util.Get())
}

// DebugOTPEnabled gates the debug endpoint off in production regardless of
// configuration.
func (f *Factory) DebugOTPEnabled() bool {
	return f.config.OTP.DebugEndpoint && !f.config.IsProduction()
}

func (f *Factory) Config() *config.Config {
	return f.config
}

func (f *Factory) TLSManager() *tls.Manager {
	return f.tlsManager
}

func (f *Factory) AuthService() *service.AuthService {
	return f.authService
}

func (f *Factory) GenerationService() *service.GenerationService {
	return f.generationService
}

func (f *Factory) StatusChecker() *service.StatusChecker {
	return f.statusChecker
}

// Close releases all external clients once.
func (f *Factory) Close() {
	f.closeOnce.Do(func() {
		if f.kafkaProducer != nil {
			_ = f.kafkaProducer.Close()
		}
		if f.redisClient != nil {
			_ = f.redisClient.Close()
		}
		util.Sync()
	})
}
