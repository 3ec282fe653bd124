package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpctx "github.com/dtroode/brainlag-server/internal/api/http/context"
	"github.com/dtroode/brainlag-server/internal/api/http/handler"
	"github.com/dtroode/brainlag-server/internal/api/http/router"
	httpServer "github.com/dtroode/brainlag-server/internal/api/http/server"
	"github.com/dtroode/brainlag-server/internal/config"
	"github.com/dtroode/brainlag-server/internal/estimator"
	"github.com/dtroode/brainlag-server/internal/logger"
	"github.com/dtroode/brainlag-server/internal/model"
	"github.com/dtroode/brainlag-server/internal/notify"
	"github.com/dtroode/brainlag-server/internal/password"
	"github.com/dtroode/brainlag-server/internal/repository/memory"
	"github.com/dtroode/brainlag-server/internal/repository/mongo"
	"github.com/dtroode/brainlag-server/internal/repository/postgres"
	"github.com/dtroode/brainlag-server/internal/server"
	"github.com/dtroode/brainlag-server/internal/service"
	"github.com/dtroode/brainlag-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

// stores bundles the selected storage backend.
type stores struct {
	users   model.UserStore
	records model.SessionRecordStore
	pinger  handler.Pinger
	close   func(ctx context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", "driver", cfg.StorageDriver, "error", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()
	logger.Info("storage ready", "driver", cfg.StorageDriver)

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.Expires)

	authService := service.NewAuth(
		st.users,
		password.NewBcrypt(cfg.Auth.BcryptCost),
		tokenManager,
		notify.NewLogNotifier(logger),
		logger,
		service.AuthConfig{
			ResetTokenTTL:    cfg.Auth.ResetTokenTTL,
			ExposeResetToken: cfg.Auth.ExposeResetToken,
		},
	)
	tokenService := service.NewTokenService(tokenManager, logger)
	recordService := service.NewSessionRecord(
		st.records,
		estimator.NewClient(cfg.Estimator.URL, cfg.Estimator.Timeout, logger),
		logger,
		service.SessionRecordConfig{
			DefaultPageSize: cfg.Records.DefaultPageSize,
			MaxPageSize:     cfg.Records.MaxPageSize,
		},
	)

	r := router.New(
		authService,
		recordService,
		tokenService,
		httpctx.NewManager(),
		st.pinger,
		router.Options{
			CORSAllowedOrigins:      cfg.HTTP.CORSAllowedOrigins,
			RateLimitEnabled:        cfg.RateLimit.Enabled,
			RateLimitRPS:            cfg.RateLimit.RPS,
			RateLimitBurst:          cfg.RateLimit.Burst,
			RateLimitTrustedProxies: cfg.RateLimit.TrustedProxies,
			RecordsRequireAuth:      cfg.Records.RequireAuth,
		},
		logger,
	)
	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port), cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:   postgres.NewUserRepository(db),
			records: postgres.NewSessionRecordRepository(db),
			pinger:  db,
			close:   func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMongo:
		conn, err := mongo.NewConnection(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:   mongo.NewUserRepository(conn.Database()),
			records: mongo.NewSessionRecordRepository(conn.Database()),
			pinger:  conn,
			close:   conn.Close,
		}, nil

	case config.DriverMemory:
		return &stores{
			users:   memory.NewUserStore(),
			records: memory.NewSessionRecordStore(),
			pinger:  handler.PingerFunc(func(context.Context) error { return nil }),
			close:   func(context.Context) error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
