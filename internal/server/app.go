// Package server wires the trading journal together: it opens the document
// store, warms the user cache, selects the session strategy and runs the
// HTTP API until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/tradejournal/internal/logging"
	"github.com/dmitrijs2005/tradejournal/internal/server/api"
	"github.com/dmitrijs2005/tradejournal/internal/server/cache"
	"github.com/dmitrijs2005/tradejournal/internal/server/config"
	"github.com/dmitrijs2005/tradejournal/internal/server/models"
	"github.com/dmitrijs2005/tradejournal/internal/server/objectstore"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tradejournal/internal/server/services"
	"github.com/dmitrijs2005/tradejournal/internal/server/sessions"
	"github.com/gin-gonic/gin"
)

var (
	openRepositories = func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
		return repomanager.Open(ctx, dsn)
	}
	newPresigner = func(ctx context.Context, opts objectstore.Options) (objectstore.Presigner, error) {
		return objectstore.NewS3Presigner(ctx, opts)
	}
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	server      *api.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend, c.LogFormat, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	rm, err := openRepositories(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us := services.NewUserService(rm, cache.New[string, *models.User](), c.BcryptCost)
	n, err := us.WarmCache(ctx)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("user cache init error: %w", err)
	}
	logger.Info(ctx, "User cache warmed", "users", n)

	var presigner objectstore.Presigner
	if c.S3Bucket != "" {
		presigner, err = newPresigner(ctx, objectstore.Options{
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			PresignTTL:   c.S3PresignTTL,
		})
		if err != nil {
			_ = rm.Close()
			return nil, fmt.Errorf("object storage init error: %w", err)
		}
	} else {
		logger.Warn(ctx, "no screenshot bucket configured, screenshot uploads are disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	srv := api.NewServer(api.Options{
		Address:         c.EndpointAddrHTTP,
		SessionTTL:      c.SessionTTL,
		CookieSecure:    c.CookieSecure,
		ExposeToken:     c.ExposeToken,
		ShutdownTimeout: c.ShutdownTimeout,
	}, api.Services{
		Users:        us,
		Assets:       services.NewAssetService(rm),
		Plans:        services.NewPlanService(rm),
		Transactions: services.NewTransactionService(rm, presigner),
		Sessions:     sessions.New(c.SessionSecret, c.SessionTTL, logger),
		Health:       rm,
	}, logger)

	return &App{config: c, logger: logger, repomanager: rm, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the store.
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

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "error closing store", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
