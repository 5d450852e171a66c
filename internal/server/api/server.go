// Package api exposes the trading journal over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/logging"
	"github.com/dmitrijs2005/tradejournal/internal/server/services"
	"github.com/dmitrijs2005/tradejournal/internal/server/sessions"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options holds the transport settings of the server.
type Options struct {
	Address         string
	SessionTTL      time.Duration
	CookieSecure    bool
	ExposeToken     bool
	ShutdownTimeout time.Duration
}

// Services bundles the collaborators the handlers call into.
type Services struct {
	Users        *services.UserService
	Assets       *services.AssetService
	Plans        *services.PlanService
	Transactions *services.TransactionService
	Sessions     sessions.Manager
	Health       Pinger
}

type Server struct {
	opts   Options
	svc    Services
	logger logging.Logger
	engine *gin.Engine
}

func NewServer(opts Options, svc Services, l logging.Logger) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = common.DefaultSessionTTL
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		opts:   opts,
		svc:    svc,
		logger: l.With("module", "http_server"),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.recovery(), s.requestLogger())

	r.GET("/healthz", s.health)

	r.POST("/login", s.login)
	r.POST("/logout", s.logout)
	r.GET("/me", s.me)
	r.POST("/register", s.register)
	r.POST("/forgot-password", s.forgotPassword)

	auth := r.Group("/", s.requireUser())

	auth.GET("/assets", s.listAssets)
	auth.POST("/assets", s.createAsset)
	auth.DELETE("/assets/:id", s.deleteAsset)

	auth.GET("/plans", s.listPlans)
	auth.POST("/plans", s.createPlan)
	auth.DELETE("/plans/:id", s.deletePlan)
	auth.GET("/plans/:id/steps", s.listSteps)
	auth.POST("/plans/:id/steps", s.createStep)
	auth.POST("/plans/:id/steps/reorder", s.reorderSteps)
	auth.PATCH("/steps/:id", s.updateStep)
	auth.DELETE("/steps/:id", s.deleteStep)

	auth.GET("/transactions", s.listTransactions)
	auth.POST("/transactions", s.createTransaction)
	auth.GET("/transactions/history", s.transactionHistory)
	auth.PATCH("/transactions/:id", s.updateTransaction)
	auth.DELETE("/transactions/:id", s.deleteTransaction)
	auth.POST("/transactions/:id/screenshot", s.screenshotUpload)
	auth.GET("/transactions/:id/screenshot", s.screenshotURL)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for
// at most ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	return nil
}
