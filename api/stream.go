package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/hali-na/tradingpk/compare"
	"github.com/hali-na/tradingpk/simclock"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server is bound to one local session; cross-origin pages are
	// fine.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Frame is one state push to a websocket client.
type Frame struct {
	Clock    simclock.State  `json:"clock"`
	Price    float64         `json:"price"`
	Equity   float64         `json:"equity"`
	Balance  float64         `json:"balance"`
	Metrics  compare.Metrics `json:"metrics"`
	Finished bool            `json:"finished"`
}

func (s *Server) frame() Frame {
	acct := s.sess.Account()
	return Frame{
		Clock:    s.sess.ClockState(),
		Price:    s.sess.CurrentPrice(),
		Equity:   s.sess.Equity(),
		Balance:  acct.Balance,
		Metrics:  s.sess.Metrics(),
		Finished: s.sess.Finished(),
	}
}

// stream pushes a Frame at a fixed interval until the client goes away.
func (s *Server) stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return // Upgrade already wrote the error response
	}
	defer conn.Close()

	// Drain control frames so pings and the close handshake work.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	if err := conn.WriteJSON(s.frame()); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.frame()); err != nil {
				return
			}
		}
	}
}
