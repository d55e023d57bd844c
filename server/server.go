// Package server is the HTTP API: the edge functions of the dashboard, the
// calculators and the per user journal.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/agent"
	"github.com/etnz/tradedesk/auth"
	"github.com/etnz/tradedesk/date"
	"github.com/etnz/tradedesk/logger"
	"github.com/etnz/tradedesk/market"
	"github.com/etnz/tradedesk/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Repository is the persistence the API needs, implemented by store.Store.
type Repository interface {
	Ping(ctx context.Context) error

	CreateTrade(ctx context.Context, userID string, t *tradedesk.Trade) error
	Trade(ctx context.Context, userID, id string) (tradedesk.Trade, error)
	Trades(ctx context.Context, userID string) ([]tradedesk.Trade, error)
	UpdateTrade(ctx context.Context, userID string, t *tradedesk.Trade) error
	CloseTrade(ctx context.Context, userID, id string, price tradedesk.Money, at time.Time) (tradedesk.Trade, error)
	DeleteTrade(ctx context.Context, userID, id string) error

	CreateEntry(ctx context.Context, userID string, e *tradedesk.JournalEntry) error
	Entries(ctx context.Context, userID string, r date.Range) ([]tradedesk.JournalEntry, error)
	UpdateEntry(ctx context.Context, userID string, e *tradedesk.JournalEntry) error
	DeleteEntry(ctx context.Context, userID, id string) error

	CreateRule(ctx context.Context, userID string, r *tradedesk.TradingRule) error
	Rules(ctx context.Context, userID string) ([]tradedesk.TradingRule, error)
	UpdateRule(ctx context.Context, userID string, r *tradedesk.TradingRule) error
	DeleteRule(ctx context.Context, userID, id string) error

	RiskSettings(ctx context.Context, userID string) (tradedesk.RiskSettings, error)
	SaveRiskSettings(ctx context.Context, userID string, rs tradedesk.RiskSettings) error

	SaveBacktest(ctx context.Context, r *store.BacktestRecord) error
	Backtests(ctx context.Context, userID string, limit int) ([]store.BacktestRecord, error)
}

var _ Repository = (*store.Store)(nil)

// Deps are the services behind the API. Quotes, History and Planner are
// optional, their endpoints answer 503 when missing.
type Deps struct {
	Auth    *auth.Service
	Store   Repository
	Quotes  market.Provider
	History market.HistoryProvider
	Planner agent.Planner
	// WebhookPassphraseHash is the bcrypt hash webhook alerts are checked
	// against, empty to accept any alert.
	WebhookPassphraseHash string
	Log                   *zap.Logger
}

// Server serves the API.
type Server struct {
	Deps
	engine *gin.Engine
}

// New builds the router.
func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	registerValidators()

	s := &Server{Deps: d, engine: gin.New()}
	r := s.engine
	r.Use(logger.RequestID(), logger.GinMiddleware(d.Log), logger.Recovery(d.Log))

	r.GET("/health", s.health)

	fn := r.Group("/functions")
	fn.POST("/tradingview-webhook", s.webhook)
	fn.POST("/trade-plan", s.requireUser, s.tradePlan)
	fn.GET("/quote", s.requireUser, s.quote)

	api := r.Group("/api", s.requireUser)

	calc := api.Group("/calc")
	calc.POST("/paycheck", s.paycheck)
	calc.POST("/whatif", s.whatIf)
	calc.POST("/rmd", s.rmd)
	calc.POST("/fire", s.fire)
	calc.POST("/mortgage", s.mortgage)
	calc.POST("/rental", s.rental)
	calc.POST("/covered-call", s.coveredCall)
	calc.POST("/option-price", s.optionPrice)
	calc.POST("/returns", s.returns)
	calc.POST("/backtest", s.backtest)
	calc.POST("/walk-forward", s.walkForward)

	api.GET("/trades", s.listTrades)
	api.POST("/trades", s.createTrade)
	api.GET("/trades/stats", s.tradeStats)
	api.GET("/trades/:id", s.getTrade)
	api.PUT("/trades/:id", s.updateTrade)
	api.POST("/trades/:id/close", s.closeTrade)
	api.DELETE("/trades/:id", s.deleteTrade)

	api.GET("/journal", s.listEntries)
	api.POST("/journal", s.createEntry)
	api.PUT("/journal/:id", s.updateEntry)
	api.DELETE("/journal/:id", s.deleteEntry)

	api.GET("/rules", s.listRules)
	api.POST("/rules", s.createRule)
	api.PUT("/rules/:id", s.updateRule)
	api.DELETE("/rules/:id", s.deleteRule)

	api.GET("/risk-settings", s.getRiskSettings)
	api.PUT("/risk-settings", s.putRiskSettings)
	api.POST("/risk/position-size", s.positionSize)
	api.POST("/risk/check", s.checkRisk)

	api.GET("/backtests", s.listBacktests)
	return s
}

// Handler returns the http.Handler of the API.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.Log.Info("server listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Log.Info("server shutting down")
	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	if s.Store != nil {
		if err := s.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail answers {"error": msg} with the status of err.
func fail(c *gin.Context, err error) {
	failWith(c, statusOf(err), err)
}

func failWith(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && !errors.Is(err, errUnavailable) {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

var errUnavailable = errors.New("service not configured")

func statusOf(err error) int {
	switch {
	case tradedesk.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken), errors.Is(err, auth.ErrInvalidPassphrase):
		return http.StatusUnauthorized
	case errors.Is(err, errUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
