package server

import (
	"math"
	"net/http"
	"time"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/date"
	"github.com/gin-gonic/gin"
)

// queryRange reads the optional from and to query parameters.
func queryRange(c *gin.Context) (date.Range, error) {
	var r date.Range
	for _, p := range []struct {
		name string
		d    *date.Date
	}{{"from", &r.From}, {"to", &r.To}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		d, err := date.Parse(v)
		if err != nil {
			return r, tradedesk.ValidationError{Field: p.name, Message: err.Error()}
		}
		*p.d = d
	}
	if !r.From.IsZero() && !r.To.IsZero() {
		r = date.NewRange(r.From, r.To)
	}
	return r, nil
}

func (s *Server) userTrades(c *gin.Context) ([]tradedesk.Trade, bool) {
	r, err := queryRange(c)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	trades, err := s.Store.Trades(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	if r != (date.Range{}) {
		trades = tradedesk.TradesIn(trades, r)
	}
	return trades, true
}

func (s *Server) listTrades(c *gin.Context) {
	if trades, ok := s.userTrades(c); ok {
		c.JSON(http.StatusOK, gin.H{"trades": trades})
	}
}

func (s *Server) tradeStats(c *gin.Context) {
	if trades, ok := s.userTrades(c); ok {
		c.JSON(http.StatusOK, tradedesk.SummarizeTrades(trades))
	}
}

type tradeRequest struct {
	Symbol     string     `json:"symbol" binding:"required,ticker"`
	Side       string     `json:"side" binding:"required"`
	Quantity   float64    `json:"quantity" binding:"required,gt=0"`
	EntryPrice float64    `json:"entry_price" binding:"required,gt=0"`
	ExitPrice  *float64   `json:"exit_price,omitempty" binding:"omitempty,gt=0"`
	StopLoss   *float64   `json:"stop_loss,omitempty" binding:"omitempty,gt=0"`
	Fees       float64    `json:"fees" binding:"gte=0"`
	OpenedAt   time.Time  `json:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	Strategy   string     `json:"strategy"`
	Notes      string     `json:"notes"`
}

func (r tradeRequest) trade(id string) (tradedesk.Trade, error) {
	side, err := tradedesk.ParseSide(r.Side)
	if err != nil {
		return tradedesk.Trade{}, err
	}
	t := tradedesk.Trade{
		ID: id, Symbol: r.Symbol, Side: side,
		Quantity:   tradedesk.Q(r.Quantity),
		EntryPrice: tradedesk.USD(r.EntryPrice),
		ExitPrice:  usdPtr(r.ExitPrice),
		StopLoss:   usdPtr(r.StopLoss),
		Fees:       tradedesk.USD(r.Fees),
		OpenedAt:   r.OpenedAt, ClosedAt: r.ClosedAt, Strategy: r.Strategy, Notes: r.Notes,
	}
	if t.ExitPrice != nil && t.ClosedAt == nil {
		now := time.Now().UTC()
		t.ClosedAt = &now
	}
	return t, nil
}

func usdPtr(v *float64) *tradedesk.Money {
	if v == nil {
		return nil
	}
	m := tradedesk.USD(*v)
	return &m
}

func (s *Server) createTrade(c *gin.Context) {
	var req tradeRequest
	if !bind(c, &req) {
		return
	}
	t, err := req.trade("")
	if err == nil {
		err = s.Store.CreateTrade(c.Request.Context(), userID(c), &t)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) getTrade(c *gin.Context) {
	t, err := s.Store.Trade(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) updateTrade(c *gin.Context) {
	var req tradeRequest
	if !bind(c, &req) {
		return
	}
	t, err := req.trade(c.Param("id"))
	if err == nil {
		err = s.Store.UpdateTrade(c.Request.Context(), userID(c), &t)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type closeRequest struct {
	ExitPrice float64   `json:"exit_price" binding:"required,gt=0"`
	ClosedAt  time.Time `json:"closed_at"`
}

func (s *Server) closeTrade(c *gin.Context) {
	var req closeRequest
	if !bind(c, &req) {
		return
	}
	if req.ClosedAt.IsZero() {
		req.ClosedAt = time.Now().UTC()
	}
	t, err := s.Store.CloseTrade(c.Request.Context(), userID(c), c.Param("id"), tradedesk.USD(req.ExitPrice), req.ClosedAt)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) deleteTrade(c *gin.Context) {
	if err := s.Store.DeleteTrade(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listEntries(c *gin.Context) {
	r, err := queryRange(c)
	if err != nil {
		fail(c, err)
		return
	}
	entries, err := s.Store.Entries(c.Request.Context(), userID(c), r)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) createEntry(c *gin.Context) {
	var e tradedesk.JournalEntry
	if !bind(c, &e) {
		return
	}
	if err := s.Store.CreateEntry(c.Request.Context(), userID(c), &e); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *Server) updateEntry(c *gin.Context) {
	var e tradedesk.JournalEntry
	if !bind(c, &e) {
		return
	}
	e.ID = c.Param("id")
	if err := s.Store.UpdateEntry(c.Request.Context(), userID(c), &e); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) deleteEntry(c *gin.Context) {
	if err := s.Store.DeleteEntry(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listRules(c *gin.Context) {
	rules, err := s.Store.Rules(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (s *Server) createRule(c *gin.Context) {
	var r tradedesk.TradingRule
	if !bind(c, &r) {
		return
	}
	if err := s.Store.CreateRule(c.Request.Context(), userID(c), &r); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) updateRule(c *gin.Context) {
	var r tradedesk.TradingRule
	if !bind(c, &r) {
		return
	}
	r.ID = c.Param("id")
	if err := s.Store.UpdateRule(c.Request.Context(), userID(c), &r); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) deleteRule(c *gin.Context) {
	if err := s.Store.DeleteRule(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getRiskSettings(c *gin.Context) {
	rs, err := s.Store.RiskSettings(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

func (s *Server) putRiskSettings(c *gin.Context) {
	var rs tradedesk.RiskSettings
	if !bind(c, &rs) {
		return
	}
	if err := s.Store.SaveRiskSettings(c.Request.Context(), userID(c), rs); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

type sizeRequest struct {
	Entry float64 `json:"entry" binding:"required,gt=0"`
	Stop  float64 `json:"stop" binding:"required,gt=0"`
}

func (s *Server) positionSize(c *gin.Context) {
	var req sizeRequest
	if !bind(c, &req) {
		return
	}
	rs, err := s.Store.RiskSettings(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	p, err := tradedesk.SizePosition(rs, req.Entry, req.Stop)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type checkRequest struct {
	sizeRequest
	// Shares defaults to the size allowed by the risk settings.
	Shares int `json:"shares" binding:"gte=0"`
}

type checkResponse struct {
	Exposure   tradedesk.Exposure    `json:"exposure"`
	Violations []tradedesk.Violation `json:"violations"`
	Allowed    bool                  `json:"allowed"`
}

// checkRisk checks a new trade against the risk limits, counting the open
// trades and the losses realized today.
func (s *Server) checkRisk(c *gin.Context) {
	var req checkRequest
	if !bind(c, &req) {
		return
	}
	ctx, uid := c.Request.Context(), userID(c)
	rs, err := s.Store.RiskSettings(ctx, uid)
	if err != nil {
		fail(c, err)
		return
	}
	trades, err := s.Store.Trades(ctx, uid)
	if err != nil {
		fail(c, err)
		return
	}
	shares := req.Shares
	if shares == 0 {
		p, err := tradedesk.SizePosition(rs, req.Entry, req.Stop)
		if err != nil {
			fail(c, err)
			return
		}
		shares = p.Shares
	}
	e := tradedesk.Exposure{
		NewPosition: float64(shares) * req.Entry,
		NewRisk:     float64(shares) * math.Abs(req.Entry-req.Stop),
	}
	today := date.Today()
	for _, t := range trades {
		switch {
		case !t.IsClosed():
			e.OpenPositions++
		case date.Of(*t.ClosedAt) == today:
			e.RealizedToday += t.PnL().Float64()
		}
	}
	v := tradedesk.CheckTrade(rs, e)
	c.JSON(http.StatusOK, checkResponse{Exposure: e, Violations: v, Allowed: len(v) == 0})
}

func (s *Server) listBacktests(c *gin.Context) {
	recs, err := s.Store.Backtests(c.Request.Context(), userID(c), 100)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backtests": recs})
}
