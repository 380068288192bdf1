package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/authsafe/authsafe/pkg/audit"
	"github.com/authsafe/authsafe/pkg/authcode"
	"github.com/authsafe/authsafe/pkg/client"
	"github.com/authsafe/authsafe/pkg/config"
	"github.com/authsafe/authsafe/pkg/dlock"
	"github.com/authsafe/authsafe/pkg/jwks"
	"github.com/authsafe/authsafe/pkg/keys"
	"github.com/authsafe/authsafe/pkg/login"
	"github.com/authsafe/authsafe/pkg/oauth2"
	oauth2api "github.com/authsafe/authsafe/pkg/oauth2/api"
	"github.com/authsafe/authsafe/pkg/org"
	"github.com/authsafe/authsafe/pkg/token"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on environment")
	}

	var cfg config.Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Database.ToDatabaseURL())
	if err != nil {
		slog.Error("Failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	codeExpiry := parseDuration(cfg.OAuth2.CodeExpiry, 10*time.Minute)
	tokenExpiry := parseDuration(cfg.OAuth2.TokenExpiry, time.Hour)
	lockTTL := parseDuration(cfg.OAuth2.LockTTL, 30*time.Second)

	registry, err := keys.NewPostgresKeyRegistry(pool)
	if err != nil {
		slog.Error("Failed to create key registry", "err", err)
		os.Exit(1)
	}

	clientRepo, err := client.NewPostgresClientRepository(pool)
	if err != nil {
		slog.Error("Failed to create client repository", "err", err)
		os.Exit(1)
	}

	userRepo, err := login.NewPostgresUserRepository(pool)
	if err != nil {
		slog.Error("Failed to create user repository", "err", err)
		os.Exit(1)
	}

	if cfg.OAuth2.BootstrapOrg != "" {
		if err := bootstrapSigningKey(ctx, registry, cfg.OAuth2.BootstrapOrg); err != nil {
			slog.Error("Failed to bootstrap signing key", "organization_id", cfg.OAuth2.BootstrapOrg, "err", err)
			os.Exit(1)
		}
	}

	orgRepo, err := org.NewPostgresOrganizationRepository(pool)
	if err != nil {
		slog.Error("Failed to create organization repository", "err", err)
		os.Exit(1)
	}

	auditor, err := audit.NewPostgresLogger(pool)
	if err != nil {
		slog.Error("Failed to create audit logger", "err", err)
		os.Exit(1)
	}

	locks := dlock.NewRedsyncMutex(redisClient, dlock.WithTries(cfg.OAuth2.LockTries))
	codes := authcode.NewRedisStore(redisClient)
	clients := client.NewClientService(clientRepo)
	credentials := login.NewCredentialValidator(userRepo)
	issuer := token.NewIssuer(registry, cfg.OAuth2.Issuer, token.WithTokenExpiration(tokenExpiry))
	publisher := jwks.NewPublisher(registry)

	service := oauth2.NewAuthorizationService(
		codes, clients, credentials, userRepo, orgRepo, registry, issuer, locks, auditor,
		oauth2.WithCodeExpiration(codeExpiry),
		oauth2.WithLockTTL(lockTTL),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Mount("/oauth2", oauth2api.NewHandle(service, publisher).Routes())

	slog.Info("Starting authsafe server", "addr", cfg.Server.Addr(), "issuer", cfg.OAuth2.Issuer)
	if err := http.ListenAndServe(cfg.Server.Addr(), r); err != nil {
		slog.Error("Server exited", "err", err)
		os.Exit(1)
	}
}

// bootstrapSigningKey provisions a signing key for the organization when it
// has none yet
func bootstrapSigningKey(ctx context.Context, registry keys.KeyRegistry, organizationID string) error {
	_, err := registry.GetByOrganization(ctx, organizationID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, keys.ErrSecretNotFound) {
		return err
	}

	secret, err := keys.GenerateSecret(organizationID)
	if err != nil {
		return err
	}
	if err := registry.AddSecret(ctx, secret); err != nil {
		return err
	}

	slog.Info("Provisioned signing key", "organization_id", organizationID, "kid", secret.ID)
	return nil
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration, using default", "value", value, "default", fallback)
		return fallback
	}
	return duration
}
