package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/business_site/internal/config"
	"github.com/Skotchmaster/business_site/internal/db"
	"github.com/Skotchmaster/business_site/internal/es"
	"github.com/Skotchmaster/business_site/internal/hash"
	"github.com/Skotchmaster/business_site/internal/httpserver"
	"github.com/Skotchmaster/business_site/internal/logging"
	authmw "github.com/Skotchmaster/business_site/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/business_site/internal/middleware/logging"
	"github.com/Skotchmaster/business_site/internal/middleware/metrics"
	"github.com/Skotchmaster/business_site/internal/mykafka"
	"github.com/Skotchmaster/business_site/internal/repo"
	"github.com/Skotchmaster/business_site/internal/search"
	"github.com/Skotchmaster/business_site/internal/service"
	"github.com/Skotchmaster/business_site/internal/tokens"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	baseCtx := logging.IntoContext(context.Background(), logger)

	ctx, cancel := context.WithTimeout(baseCtx, 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(ctx, gdb)
	}
	cancel()
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	var producer mykafka.Publisher = mykafka.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		producer = p
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var index service.SearchIndex
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index = search.NewIndex(esClient, cfg.ESIndex)
	} else {
		logger.Warn("search_index_disabled", "reason", "ES_URL is empty")
	}

	r := &repo.GormRepo{DB: gdb}
	hasher := hash.NewHasher(cfg.Secrets.Pepper)
	codec := tokens.NewCodec(tokens.Secrets{
		Access:  cfg.Secrets.AccessSecret,
		Refresh: cfg.Secrets.RefreshSecret,
	})
	issuer := tokens.NewIssuer(codec)

	authSvc := &service.AuthService{Accounts: r, Hasher: hasher, Issuer: issuer, Verifier: codec, Producer: producer}
	userSvc := &service.UserService{Repo: r, Hasher: hasher, Producer: producer}
	catalogSvc := &service.CatalogService{Repo: r, Index: index, Producer: producer}

	if err := userSvc.SeedAdmin(baseCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(corsConfig(cfg.CORSOrigin)))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware())

	httpserver.Register(e, &httpserver.Deps{
		ServerName: cfg.ServerName,
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx, gdb)
		},
		Auth:           authmw.New(codec),
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		UsersHandler:   &httpserver.UsersHTTP{Svc: userSvc},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting_down")
	shutdown(srv, gdb, producer, logger)
	logger.Info("shutdown_complete")
}

func corsConfig(origin string) echomw.CORSConfig {
	cfg := echomw.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}
	if origin != "" {
		cfg.AllowOrigins = config.CSV(origin)
	}
	return cfg
}

func shutdown(srv *http.Server, gdb *gorm.DB, producer mykafka.Publisher, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db_close_failed", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka_close_failed", "error", err)
	}
}
