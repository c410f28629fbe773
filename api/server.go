// Package api exposes one running session over HTTP. Presentation only:
// every mutation goes through the session's command surface and every
// read is a snapshot, so handlers never touch engine state directly.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hali-na/tradingpk/engine"
	"github.com/hali-na/tradingpk/session"
)

type Server struct {
	sess *session.Session

	streamInterval time.Duration
}

func NewServer(sess *session.Session) *Server {
	return &Server{sess: sess, streamInterval: 500 * time.Millisecond}
}

// Router builds the route table. Split from Run so tests can drive it
// with httptest.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/account", s.getAccount)
	r.GET("/equity", s.getEquity)
	r.GET("/positions", s.getPositions)
	r.GET("/orders", s.getOrders)
	r.GET("/pnl", s.getPnL)
	r.GET("/metrics", s.getMetrics)
	r.GET("/insights", s.getInsights)
	r.GET("/drawdown", s.getDrawdown)
	r.GET("/clock", s.getClock)

	r.POST("/orders", s.placeOrder)
	r.POST("/orders/:id/cancel", s.cancelOrder)
	r.POST("/positions/:id/close", s.closePosition)
	r.POST("/positions/close-all", s.closeAll)

	r.POST("/clock/play", s.clockPlay)
	r.POST("/clock/pause", s.clockPause)
	r.POST("/clock/speed", s.clockSpeed)
	r.POST("/clock/jump", s.clockJump)

	r.GET("/stream", s.stream)

	return r
}

func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) getAccount(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Account())
}

func (s *Server) getEquity(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"equity": s.sess.Equity(),
		"price":  s.sess.CurrentPrice(),
	})
}

func (s *Server) getPositions(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Account().Positions)
}

func (s *Server) getOrders(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Account().Orders)
}

func (s *Server) getPnL(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.PnL())
}

func (s *Server) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Metrics())
}

func (s *Server) getInsights(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"insights": s.sess.Insights()})
}

func (s *Server) getDrawdown(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Drawdown())
}

func (s *Server) getClock(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.ClockState())
}

type placeOrderRequest struct {
	Kind     string  `json:"kind" binding:"required"`
	Side     string  `json:"side" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Price    float64 `json:"price"`
}

func (s *Server) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	side := engine.Side(req.Side)
	if side != engine.Buy && side != engine.Sell {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be Buy or Sell"})
		return
	}

	var res engine.Result
	switch engine.OrderKind(req.Kind) {
	case engine.Market:
		res = s.sess.PlaceMarketOrder(side, req.Quantity)
	case engine.Limit:
		if req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit orders need a price"})
			return
		}
		res = s.sess.PlaceLimitOrder(side, req.Quantity, req.Price)
	case engine.Stop:
		if req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stop orders need a trigger price"})
			return
		}
		res = s.sess.PlaceStopOrder(side, req.Quantity, req.Price)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be Market, Limit or Stop"})
		return
	}

	writeResult(c, res)
}

func (s *Server) cancelOrder(c *gin.Context) {
	if !s.sess.CancelOrder(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found or not pending"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": c.Param("id")})
}

func (s *Server) closePosition(c *gin.Context) {
	writeResult(c, s.sess.ClosePosition(c.Param("id")))
}

func (s *Server) closeAll(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.CloseAllPositions())
}

func (s *Server) clockPlay(c *gin.Context) {
	s.sess.Play()
	c.JSON(http.StatusOK, s.sess.ClockState())
}

func (s *Server) clockPause(c *gin.Context) {
	s.sess.Pause()
	c.JSON(http.StatusOK, s.sess.ClockState())
}

type speedRequest struct {
	Speed float64 `json:"speed" binding:"required,gt=0"`
}

func (s *Server) clockSpeed(c *gin.Context) {
	var req speedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.sess.SetSpeed(req.Speed)
	c.JSON(http.StatusOK, s.sess.ClockState())
}

type jumpRequest struct {
	To time.Time `json:"to" binding:"required"`
}

func (s *Server) clockJump(c *gin.Context) {
	var req jumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.sess.JumpTo(req.To)
	c.JSON(http.StatusOK, s.sess.ClockState())
}

// writeResult maps a Result onto the wire: rejections are still data, not
// transport errors, but get a 422 so clients can tell them apart.
func writeResult(c *gin.Context, res engine.Result) {
	if !res.OK {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}
	c.JSON(http.StatusOK, res)
}
