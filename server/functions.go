package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/agent"
	"github.com/etnz/tradedesk/auth"
	"github.com/etnz/tradedesk/logger"
	"github.com/etnz/tradedesk/market"
	"github.com/etnz/tradedesk/retry"
	"github.com/etnz/tradedesk/store"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// webhookRequest is a TradingView alert.
type webhookRequest struct {
	Symbol         string   `json:"symbol" binding:"required"`
	Action         string   `json:"action" binding:"required"`
	Price          *float64 `json:"price,omitempty"`
	Strategy       string   `json:"strategy,omitempty"`
	UserID         string   `json:"user_id,omitempty"`
	Quantity       *float64 `json:"quantity,omitempty"`
	Timeframe      string   `json:"timeframe,omitempty"`
	EntryCondition string   `json:"entry_condition,omitempty"`
	ExitCondition  string   `json:"exit_condition,omitempty"`
	Passphrase     string   `json:"passphrase,omitempty"`
}

type webhookSignal struct {
	Symbol     string    `json:"symbol"`
	Action     string    `json:"action"`
	Price      *float64  `json:"price,omitempty"`
	Strategy   string    `json:"strategy,omitempty"`
	Timeframe  string    `json:"timeframe,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	Saved      bool      `json:"saved"`
}

// webhookSymbol drops the exchange prefix TradingView puts in front of the
// ticker, as in NASDAQ:AAPL.
func webhookSymbol(s string) string {
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

func (s *Server) webhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			err = errors.New("missing required fields: symbol, action")
		} else {
			err = fmt.Errorf("invalid JSON body: %w", err)
		}
		failWith(c, http.StatusBadRequest, err)
		return
	}
	if err := auth.CheckPassphrase(s.WebhookPassphraseHash, req.Passphrase); err != nil {
		failWith(c, http.StatusUnauthorized, err)
		return
	}
	sig := webhookSignal{
		Symbol:     webhookSymbol(req.Symbol),
		Action:     strings.ToLower(req.Action),
		Price:      req.Price,
		Strategy:   req.Strategy,
		Timeframe:  req.Timeframe,
		ReceivedAt: time.Now().UTC(),
	}
	log := logger.FromGin(c)
	log.Info("tradingview signal", zap.String("symbol", sig.Symbol), zap.String("action", sig.Action), zap.String("strategy", sig.Strategy))

	if req.UserID != "" && req.Strategy != "" {
		if s.Store == nil {
			failWith(c, http.StatusServiceUnavailable, errUnavailable)
			return
		}
		rec := &store.BacktestRecord{
			UserID:         req.UserID,
			Strategy:       req.Strategy,
			Symbol:         sig.Symbol,
			Action:         sig.Action,
			Price:          optionalDecimal(req.Price),
			Quantity:       optionalDecimal(req.Quantity),
			Timeframe:      req.Timeframe,
			EntryCondition: req.EntryCondition,
			ExitCondition:  req.ExitCondition,
			Source:         "tradingview",
		}
		if err := s.Store.SaveBacktest(c.Request.Context(), rec); err != nil {
			log.Error("could not save signal", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to store signal"})
			return
		}
		sig.Saved = true
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("%s signal received for %s", sig.Action, sig.Symbol),
		"signal":  sig,
	})
}

func optionalDecimal(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*f))
}

type tradePlanRequest struct {
	Ticker        string  `json:"ticker" binding:"required,ticker"`
	PortfolioSize float64 `json:"portfolioSize" binding:"required,gte=100,lte=1000000000"`
	RiskPercent   float64 `json:"riskPercent" binding:"required,gt=0,lte=10"`
	Strategy      string  `json:"strategy"`
	Timeframe     string  `json:"timeframe"`
}

func (s *Server) tradePlan(c *gin.Context) {
	var req tradePlanRequest
	if !bind(c, &req) {
		return
	}
	if s.Planner == nil {
		failWith(c, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	ticker, _ := tradedesk.NormalizeTicker(req.Ticker)
	plan, err := s.Planner.Plan(c.Request.Context(), agent.TradePlanRequest{
		Ticker:        ticker,
		PortfolioSize: req.PortfolioSize,
		RiskPercent:   req.RiskPercent,
		Strategy:      req.Strategy,
		Timeframe:     req.Timeframe,
	})
	if err != nil {
		status := agent.StatusCode(err)
		_ = c.Error(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "failed to generate trade plan"
		}
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) quote(c *gin.Context) {
	symbol, err := tradedesk.NormalizeTicker(c.Query("symbol"))
	if err != nil {
		fail(c, err)
		return
	}
	if s.Quotes == nil {
		failWith(c, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	q, err := s.Quotes.Quote(c.Request.Context(), symbol)
	var se *retry.StatusError
	switch {
	case errors.Is(err, market.ErrUnknownSymbol):
		failWith(c, http.StatusNotFound, err)
	case errors.As(err, &se):
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "quote provider unavailable"})
	case err != nil:
		fail(c, err)
	default:
		c.JSON(http.StatusOK, q)
	}
}
