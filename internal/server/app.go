// Package server assembles the review API: it opens the database, applies
// migrations, builds the services and runs the HTTP server until a
// termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/reviewhub/internal/logging"
	"github.com/dmitrijs2005/reviewhub/internal/server/auth"
	"github.com/dmitrijs2005/reviewhub/internal/server/config"
	"github.com/dmitrijs2005/reviewhub/internal/server/credentials"
	"github.com/dmitrijs2005/reviewhub/internal/server/httpapi"
	"github.com/dmitrijs2005/reviewhub/internal/server/metrics"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/reviewhub/internal/server/services"
	"github.com/dmitrijs2005/reviewhub/internal/server/storage"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newRepositoryManager = func() repomanager.RepositoryManager {
		return repomanager.NewPostgresRepositoryManager()
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel))

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	images, err := storage.NewImageStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey))
	creds := credentials.NewStore(credentials.Params{
		Time:      c.Argon2Time,
		MemoryKiB: c.Argon2MemoryKiB,
		Threads:   c.Argon2Threads,
	})

	srv := httpapi.NewHTTPServer(c, logger, httpapi.Deps{
		Users:    services.NewUserService(db, rm, creds, tokens, c.TokenValidityDuration),
		Reviews:  services.NewReviewService(db, rm, images),
		Comments: services.NewCommentService(db, rm),
		Tokens:   tokens,
		Metrics:  metrics.New("reviewhub"),
		Ping:     db.PingContext,
	})

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until the server stops, then releases the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	cancelFunc()

	return errors.Join(err, app.db.Close())
}
