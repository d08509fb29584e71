// Package server initializes and runs the CostMate API server: database
// connection and migrations, repositories and services, the event publisher,
// and the HTTP endpoint, with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ebalakin/costmate/internal/logging"
	"github.com/ebalakin/costmate/internal/server/config"
	"github.com/ebalakin/costmate/internal/server/events"
	"github.com/ebalakin/costmate/internal/server/httpapi"
	"github.com/ebalakin/costmate/internal/server/repositories/repomanager"
	"github.com/ebalakin/costmate/internal/server/services"
)

// App bundles the wired components of a running server.
type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

// NewApp connects to the database, runs migrations, and wires services and
// handlers together.
func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger()
	ctx := context.Background()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NatsURL != "" {
		np, err := events.NewNatsPublisher(cfg.NatsURL, logger)
		if err != nil {
			// The server is useful without events; log and continue.
			logger.Warn(ctx, "nats connect failed, events disabled", "err", err)
		} else {
			publisher = np
		}
	}

	blobs := services.NewS3BlobStore(cfg)
	userService := services.NewUserService(db, rm, publisher)
	recordService := services.NewRecordService(db, rm, publisher)
	friendService := services.NewFriendService(db, rm, publisher)
	attachmentService := services.NewAttachmentService(db, rm, blobs, logger)

	handlers := httpapi.Handlers{
		Basic:       httpapi.NewBasicAuthenticator(userService),
		Bearer:      httpapi.NewBearerAuthenticator(userService),
		Users:       httpapi.NewUserHandler(userService, attachmentService, logger),
		Friends:     httpapi.NewFriendHandler(friendService, logger),
		Records:     httpapi.NewRecordHandler(recordService, logger),
		Attachments: httpapi.NewAttachmentHandler(attachmentService, logger),
	}
	server := httpapi.NewServer(cfg.EndpointAddr, handlers, logger)

	return &App{config: cfg, logger: logger, db: db, server: server}, nil
}

// Run serves until an OS signal or ctx cancellation arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.initSignalHandler(cancel)

	app.logger.Info(ctx, "starting app")
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "server error", "err", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "err", err)
	}
}

func (app *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}
