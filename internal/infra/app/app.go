package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/arklim/auth-service/internal/core/port"
	"github.com/arklim/auth-service/internal/infra/config"
	"github.com/arklim/auth-service/internal/infra/database"
	"github.com/arklim/auth-service/internal/infra/email"
	kafkainfra "github.com/arklim/auth-service/internal/infra/kafka"
	"github.com/arklim/auth-service/internal/infra/logger"
	redisinfra "github.com/arklim/auth-service/internal/infra/redis"
	"github.com/arklim/auth-service/internal/infra/security"
	postgresrepo "github.com/arklim/auth-service/internal/repository/postgres"
	redisrepo "github.com/arklim/auth-service/internal/repository/redis"
	"github.com/arklim/auth-service/internal/transport/http/middleware"
	"github.com/arklim/auth-service/internal/transport/http/routes"
	"github.com/arklim/auth-service/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	issuer, err := security.NewTokenIssuer(security.TokenIssuerConfig{
		Issuer:          cfg.JWT.Issuer,
		AccessSecret:    []byte(cfg.JWT.AccessTokenSecret),
		RefreshSecret:   []byte(cfg.JWT.RefreshTokenSecret),
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
	})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})

	passwordValidator := security.PasswordValidatorForPolicy(
		cfg.Password.MinLength,
		cfg.Password.MinClasses,
		cfg.Password.MinStrength,
	)

	repos := postgresrepo.NewRepositories(pool)

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka disabled, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	var notifier port.Notifier
	if cfg.SMTP.Host != "" {
		notifier = email.NewSMTPNotifier(cfg.SMTP, cfg.App.FrontendURL, log)
	} else {
		log.Info("smtp host not configured, logging email links instead")
		notifier = email.NewLogNotifier(cfg.App.FrontendURL, log)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: cfg.Redis.RateLimitPrefix,
		TTL:       rateLimitWindow * 2,
	})

	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
		Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	registrationService := usecase.NewRegistrationService(repos.Users, hasher, notifier, eventPublisher, passwordValidator)
	authService := usecase.NewAuthService(repos.Users, repos.Tokens, hasher, issuer)
	passwordResetService := usecase.NewPasswordResetService(cfg, repos.Users, rateLimitStore, notifier, eventPublisher, hasher, passwordValidator)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:          authService,
			Registration:  registrationService,
			PasswordReset: passwordResetService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Warn("close kafka producer", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
