package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/date"
	"github.com/etnz/tradedesk/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// calc binds the body into In, runs f and answers its result.
func calc[In, Out any](f func(In) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in In
		if !bind(c, &in) {
			return
		}
		out, err := f(in)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func (s *Server) paycheck(c *gin.Context) { calc(tradedesk.CalculatePaycheck)(c) }
func (s *Server) rmd(c *gin.Context)      { calc(tradedesk.ProjectRMD)(c) }
func (s *Server) fire(c *gin.Context)     { calc(tradedesk.ProjectFire)(c) }
func (s *Server) rental(c *gin.Context)   { calc(tradedesk.AnalyzeRental)(c) }
func (s *Server) coveredCall(c *gin.Context) {
	calc(tradedesk.AnalyzeCoveredCall)(c)
}
func (s *Server) optionPrice(c *gin.Context) { calc(tradedesk.PriceOption)(c) }

type whatIfRequest struct {
	Paycheck          tradedesk.PaycheckInput `json:"paycheck"`
	Variable          string                  `json:"variable" binding:"required"`
	AdjustmentPercent float64                 `json:"adjustment_percent"`
	// BaselinePercent, when set, makes AdjustmentPercent the target of a
	// contribution change from this baseline.
	BaselinePercent *float64                `json:"baseline_percent,omitempty"`
	EmployerMatch   tradedesk.EmployerMatch `json:"employer_match"`
}

type whatIfResponse struct {
	Paycheck tradedesk.PaycheckResult `json:"paycheck"`
	WhatIf   tradedesk.WhatIf         `json:"whatif"`
}

func (s *Server) whatIf(c *gin.Context) {
	calc(func(req whatIfRequest) (whatIfResponse, error) {
		v, err := tradedesk.LookupVariable(req.Variable)
		if err != nil {
			return whatIfResponse{}, err
		}
		res, err := tradedesk.CalculatePaycheck(req.Paycheck)
		if err != nil {
			return whatIfResponse{}, err
		}
		var w tradedesk.WhatIf
		if req.BaselinePercent != nil {
			w, err = tradedesk.ProjectContribution(res, req.Paycheck.GrossPay, req.Paycheck.Frequency, v, req.EmployerMatch, *req.BaselinePercent, req.AdjustmentPercent)
		} else {
			w, err = tradedesk.ProjectWhatIf(res, req.Paycheck.GrossPay, req.Paycheck.Frequency, req.AdjustmentPercent, v, req.EmployerMatch)
		}
		return whatIfResponse{Paycheck: res, WhatIf: w}, err
	})(c)
}

type mortgageRequest struct {
	Principal  float64 `json:"principal" binding:"required,gt=0"`
	AnnualRate float64 `json:"annual_rate" binding:"gte=0"`
	Years      int     `json:"years" binding:"required,gt=0"`
	// Schedule includes the monthly rows in the answer.
	Schedule bool `json:"schedule"`
}

func (s *Server) mortgage(c *gin.Context) {
	calc(func(req mortgageRequest) (tradedesk.Amortization, error) {
		a, err := tradedesk.Amortize(req.Principal, req.AnnualRate, req.Years)
		if !req.Schedule {
			a.Schedule = nil
		}
		return a, err
	})(c)
}

type returnsRequest struct {
	Returns        []float64 `json:"returns"`
	Prices         []float64 `json:"prices"`
	PeriodsPerYear int       `json:"periods_per_year"`
	RiskFree       float64   `json:"risk_free"`
}

func (s *Server) returns(c *gin.Context) {
	calc(func(req returnsRequest) (tradedesk.ReturnStats, error) {
		r := req.Returns
		if len(r) == 0 {
			r = tradedesk.SimpleReturns(req.Prices)
		}
		if len(r) == 0 {
			return tradedesk.ReturnStats{}, tradedesk.ValidationError{Field: "returns", Message: "returns or at least two prices are required"}
		}
		return tradedesk.AnalyzeReturns(r, req.PeriodsPerYear, req.RiskFree), nil
	})(c)
}

// Series selects where closes come from: the request itself or the daily
// history of Symbol between From and To.
type Series struct {
	Symbol string `json:"symbol,omitempty" binding:"omitempty,ticker"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

func (s *Server) closes(ctx context.Context, in Series) ([]float64, error) {
	if s.History == nil {
		return nil, errUnavailable
	}
	from, err := date.Parse(in.From)
	if err != nil {
		return nil, tradedesk.ValidationError{Field: "from", Message: err.Error()}
	}
	to := date.Today()
	if in.To != "" {
		if to, err = date.Parse(in.To); err != nil {
			return nil, tradedesk.ValidationError{Field: "to", Message: err.Error()}
		}
	}
	r := date.NewRange(from, to)
	h, err := s.History.Closes(ctx, in.Symbol, r)
	if err != nil {
		return nil, err
	}
	return h.Values(r), nil
}

type backtestRequest struct {
	tradedesk.BacktestInput
	Series
	// Save records the result in the user's backtests.
	Save bool `json:"save"`
}

func (s *Server) backtest(c *gin.Context) {
	var req backtestRequest
	if !bind(c, &req) {
		return
	}
	in := req.BacktestInput
	if len(in.Closes) == 0 && req.Symbol != "" {
		var err error
		if in.Closes, err = s.closes(c.Request.Context(), req.Series); err != nil {
			fail(c, err)
			return
		}
	}
	res, err := tradedesk.Backtest(in)
	if err != nil {
		fail(c, err)
		return
	}
	if req.Save && s.Store != nil {
		total, trades := res.TotalReturn, res.Trades
		rec := &store.BacktestRecord{
			UserID:      userID(c),
			Strategy:    fmt.Sprintf("sma-cross %d/%d", in.Fast, in.Slow),
			Symbol:      req.Symbol,
			TotalReturn: &total,
			Trades:      &trades,
			Source:      "backtest",
		}
		if err := s.Store.SaveBacktest(c.Request.Context(), rec); err != nil {
			s.Log.Warn("could not save backtest", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, res)
}

type walkForwardRequest struct {
	tradedesk.WalkForwardInput
	Series
}

func (s *Server) walkForward(c *gin.Context) {
	var req walkForwardRequest
	if !bind(c, &req) {
		return
	}
	in := req.WalkForwardInput
	if len(in.Closes) == 0 && req.Symbol != "" {
		var err error
		if in.Closes, err = s.closes(c.Request.Context(), req.Series); err != nil {
			fail(c, err)
			return
		}
	}
	res, err := tradedesk.WalkForward(in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
