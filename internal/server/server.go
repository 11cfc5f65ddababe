// Package server exposes the desk over a small REST API plus a websocket
// stream of live bar and portfolio updates.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tradesim-go/internal/engine"
	"tradesim-go/internal/order"
	"tradesim-go/internal/portfolio"
)

// Server fans desk events out to websocket clients and answers REST reads
// and order submissions.
type Server struct {
	log    zerolog.Logger
	desk   *engine.Desk
	router *gin.Engine
	addr   string

	upgrader websocket.Upgrader

	// Touched only by the hub goroutine.
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
}

// New wires routes over the desk. Release mode unless running in dev.
func New(log zerolog.Logger, desk *engine.Desk, addr, env string) *Server {
	if env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		log:    log,
		desk:   desk,
		router: gin.New(),
		addr:   addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/api/health", s.getHealth)
	s.router.GET("/api/assets", s.getAssets)
	s.router.GET("/api/series", s.getSeries)
	s.router.GET("/api/portfolio", s.getPortfolio)
	s.router.GET("/api/fills", s.getFills)
	s.router.POST("/api/orders", s.postOrder)
	s.router.POST("/api/select", s.postSelect)
	s.router.GET("/ws", s.handleWebSocket)
}

// Start runs the hub and serves until the listener fails or ctx stops the hub.
func (s *Server) Start(ctx context.Context) error {
	go s.runHub(ctx)
	s.log.Info().Str("addr", s.addr).Msg("dashboard api up")
	return s.router.Run(s.addr)
}

// runHub owns the client set: registrations, departures, and event fan-out.
// Slow clients are evicted rather than blocking the loop.
func (s *Server) runHub(ctx context.Context) {
	events := s.desk.Events()
	for {
		select {
		case <-ctx.Done():
			for c := range s.clients {
				delete(s.clients, c)
				close(c.send)
			}
			return
		case c := <-s.register:
			s.clients[c] = struct{}{}
			// Seed the new client with the current portfolio state.
			v := s.desk.Valuation()
			select {
			case c.send <- engine.Event{Type: "portfolio", Portfolio: &v}:
			default:
			}
		case c := <-s.unregister:
			if _, ok := s.clients[c]; ok {
				delete(s.clients, c)
				close(c.send)
			}
		case evt := <-events:
			for c := range s.clients {
				select {
				case c.send <- evt:
				default:
					delete(s.clients, c)
					close(c.send)
				}
			}
		}
	}
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getAssets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"assets":   s.desk.Assets(),
		"selected": s.desk.Selected().Symbol,
	})
}

func (s *Server) getSeries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"symbol": s.desk.Selected().Symbol,
		"bars":   s.desk.Bars(),
	})
}

func (s *Server) getPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, s.desk.Valuation())
}

func (s *Server) getFills(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fills": s.desk.Blotter().Snapshot()})
}

type orderRequest struct {
	Symbol   string  `json:"symbol" binding:"required"`
	Side     string  `json:"side" binding:"required"`
	Quantity float64 `json:"quantity"`
}

func (s *Server) postOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	fill, err := s.desk.PlaceOrder(req.Symbol, order.Side(req.Side), req.Quantity)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownSymbol) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown_symbol", "message": err.Error()})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": portfolio.Reason(err), "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fill": fill})
}

type selectRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

func (s *Server) postSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	if err := s.desk.SelectAsset(req.Symbol); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown_symbol", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol": req.Symbol,
		"bars":   s.desk.Bars(),
	})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	cl := &client{hub: s, conn: conn, send: make(chan engine.Event, 64)}
	s.register <- cl
	go cl.writePump()
	go cl.readPump()
}
