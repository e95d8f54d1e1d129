package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/adapters/event"
	httpAdapter "github.com/khoahotran/portfolio-onboarding/adapters/http"
	"github.com/khoahotran/portfolio-onboarding/adapters/media_storage"
	"github.com/khoahotran/portfolio-onboarding/adapters/persistence"
	"github.com/khoahotran/portfolio-onboarding/internal/application/service"
	authUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/auth"
	onboardingUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/onboarding"
	portfolioUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/portfolio"
	usernameUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/username"
	"github.com/khoahotran/portfolio-onboarding/internal/config"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/auth"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
	"github.com/khoahotran/portfolio-onboarding/pkg/tracing"
)

type stores struct {
	portfolios portfolio.Repository
	sources    portfolio.SourceRepository
	claims     service.ClaimStore
	drafts     onboarding.DraftRepository
	closers    []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, tracing.ServiceAPI)
		if err != nil {
			appLogger.Fatal("Cannot init tracer provider", err)
		}
		defer tracing.Shutdown(tp, cfg.App.ShutdownTimeout, appLogger)
	}

	st, err := openStores(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot open storage", err, zap.String("driver", cfg.Storage.Driver))
	}
	defer st.close()

	var publisher interface {
		service.EventPublisher
		Close() error
	}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka producer", err)
		}
	} else {
		appLogger.Warn("No Kafka brokers configured, portfolio events are only logged")
		publisher = event.NewLogPublisher(appLogger)
	}
	defer publisher.Close()

	var uploader service.Uploader
	if cfg.Cloudinary.CloudName != "" {
		uploader, err = media_storage.NewCloudinaryAdapter(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Cloudinary uploader", err)
		}
	} else {
		appLogger.Warn("Cloudinary is not configured, photo uploads are disabled")
	}

	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	baseURL := cfg.App.PublicBaseURL

	// Use cases
	taken := usernameUC.NewTakenSet(cfg.Username.Reserved, st.portfolios, st.claims)
	checkUsernameUC := usernameUC.NewCheckUsernameUseCase(taken, appLogger)
	generateUC := portfolioUC.NewGeneratePortfolioUseCase(st.portfolios, st.claims, taken, publisher, baseURL, cfg.Username.ClaimTTL, appLogger)
	getUC := portfolioUC.NewGetPortfolioUseCase(st.portfolios, appLogger)
	updateUC := portfolioUC.NewUpdatePortfolioUseCase(st.portfolios, publisher, appLogger)
	deleteUC := portfolioUC.NewDeletePortfolioUseCase(st.portfolios, publisher, appLogger)
	listUC := portfolioUC.NewListPortfoliosUseCase(st.portfolios, appLogger)
	lookupUC := portfolioUC.NewLookupSourceUseCase(st.sources, appLogger)
	feedUC := portfolioUC.NewFeedUseCase(st.portfolios, baseURL, appLogger)
	draftUC := onboardingUC.NewDraftUseCase(st.drafts, st.sources, uploader, cfg.Drafts.TTL, appLogger)
	loginUC := authUC.NewLoginUseCase(authUC.Owner{
		Email:        cfg.Auth.OwnerEmail,
		PasswordHash: cfg.Auth.OwnerPasswordHash,
	}, jwtSvc, appLogger)

	router := httpAdapter.NewRouter(httpAdapter.Handlers{
		Username:   httpAdapter.NewUsernameHandler(checkUsernameUC, appLogger),
		Portfolio:  httpAdapter.NewPortfolioHandler(generateUC, getUC, updateUC, deleteUC, lookupUC),
		Onboarding: httpAdapter.NewOnboardingHandler(draftUC),
		RSS:        httpAdapter.NewRSSHandler(feedUC, appLogger),
		Auth:       httpAdapter.NewAuthHandler(loginUC, listUC, deleteUC, appLogger),
	}, httpAdapter.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		RateLimiter:    httpAdapter.NewRateLimiter(cfg.RateLimit.Rate, cfg.RateLimit.Burst),
		JWT:            jwtSvc,
	}, appLogger)

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	appLogger.Info("Server exited")
}

func openStores(cfg config.Config, log logger.Logger) (*stores, error) {
	st := &stores{}

	switch cfg.Storage.Driver {
	case "postgres":
		if cfg.DB.AutoMigrate {
			if err := persistence.Migrate(cfg.DB.MigrationsPath, cfg.DB.DSN, log); err != nil {
				return nil, err
			}
		}
		pool, err := persistence.NewPostgresPool(cfg, log)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, pool.Close)
		st.portfolios = persistence.NewPostgresPortfolioRepo(pool, log)
		st.sources = persistence.NewPostgresSourceRepo(pool, log)
		if err := persistence.SeedSourceRepo(context.Background(), st.sources); err != nil {
			st.close()
			return nil, err
		}
	case "memory", "":
		sources, err := persistence.NewMemorySourceRepo()
		if err != nil {
			return nil, err
		}
		st.portfolios = persistence.NewMemoryPortfolioRepo()
		st.sources = sources
	default:
		return nil, errors.New("unknown storage driver " + cfg.Storage.Driver)
	}

	if cfg.Redis.Enabled {
		rdb, err := persistence.NewRedisClient(cfg, log)
		if err != nil {
			st.close()
			return nil, err
		}
		st.closers = append(st.closers, func() { rdb.Close() })
		st.claims = persistence.NewRedisClaimStore(rdb)
		st.drafts = persistence.NewRedisDraftRepo(rdb)
	} else {
		st.claims = persistence.NewMemoryClaimStore()
		st.drafts = persistence.NewMemoryDraftRepo()
	}
	return st, nil
}
