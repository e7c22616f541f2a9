package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"foodshare/internal/adapter/repo"
	"foodshare/internal/adapter/revocation"
	"foodshare/internal/domain"
	"foodshare/internal/http/handlers"
	httpapi "foodshare/internal/http/httpapi"
	"foodshare/internal/infra"
	"foodshare/internal/infra/geoip"
	"foodshare/internal/metrics"
	"foodshare/internal/migrations"
	"foodshare/internal/service"
)

type storage struct {
	docs  domain.DocumentStore
	users domain.UserRepository
	ping  func(ctx context.Context) error
	close func()
}

func openStorage(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == infra.StorageMemory {
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
		return &storage{
			docs:  repo.NewMemoryStore(),
			users: repo.NewUserRepositoryMemory(),
			close: func() {},
		}, nil
	}

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	sqlDB := infra.OpenSQLDB(pool)
	if err := migrations.Apply(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		pool.Close()
		return nil, err
	}
	runner := infra.NewSQLRunner(pool, logger)
	return &storage{
		docs:  repo.NewDocumentStore(runner),
		users: repo.NewUserRepository(runner),
		ping:  pool.Ping,
		close: func() {
			_ = sqlDB.Close()
			pool.Close()
		},
	}, nil
}

func revocationStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (domain.RevocationStore, func(), error) {
	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if rdb == nil {
		logger.Warn().Msg("REDIS_ADDR not set, token revocations are kept in process")
		return revocation.NewMemoryStore(), func() {}, nil
	}
	return revocation.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}
	defer store.close()

	revoked, closeRevoked, err := revocationStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer closeRevoked()

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}
	defer func() { _ = resolver.Close() }()

	m := metrics.New()
	opts := service.Options{Recorder: m}

	app := &handlers.App{
		Donations:  service.NewDonationService(repo.NewDonationRepository(store.docs), logger, opts),
		Donors:     service.NewDonorService(repo.NewDonorRepository(store.docs), logger, opts),
		Recipients: service.NewRecipientService(repo.NewRecipientRepository(store.docs), logger, opts),
		Auth:       service.NewAuthService(store.users, revoked, cfg.JWTSecret, cfg.JWTTTL, logger, opts),
		Metrics:    m,
		Logger:     logger,
		Ping:       store.ping,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		RateLimitBurst:  cfg.RateLimitBurst,
		CountryLookup:   resolver.Lookup(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("storage", cfg.StorageDriver).Msg("API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
