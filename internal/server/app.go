// Package server assembles and runs the identity server: configuration,
// database connection, schema migrations, the core services, and the
// HTTP API, with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patchmemory/kindmesh/internal/logging"
	"github.com/patchmemory/kindmesh/internal/server/config"
	"github.com/patchmemory/kindmesh/internal/server/httpapi"
	"github.com/patchmemory/kindmesh/internal/server/repositories/repomanager"
	"github.com/patchmemory/kindmesh/internal/server/services"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	directory     *services.DirectoryService
	consensus     *services.ConsensusService
	authenticator *services.AuthenticatorService
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		directory:     services.NewDirectoryService(db, rm, cfg),
		consensus:     services.NewConsensusService(db, rm, cfg),
		authenticator: services.NewAuthenticatorService(db, rm, cfg),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(
		app.config.EndpointAddrHTTP,
		app.logger,
		app.directory,
		app.consensus,
		app.authenticator,
		app.db,
		app.config.SecretKey,
		app.config.SessionTokenValidityDuration,
	)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err.Error())
	}
}
