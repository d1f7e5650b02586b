// Package admin exposes operational HTTP endpoints next to the wire
// protocol listener: health, readiness, metrics, and a read-only account
// listing. None of the ledger's mutating operations are reachable here.
package admin

import (
	"net/http"
	"sort"
	"time"

	"github.com/dkaiser/bankd/internal/bank"
	"github.com/dkaiser/bankd/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Server struct {
	addr    string
	ledger  *bank.Ledger
	started time.Time

	router *gin.Engine
}

func New(addr string, ledger *bank.Ledger, corsOrigins []string) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		addr:    addr,
		ledger:  ledger,
		started: time.Now(),
		router:  r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": "bankd",
			"version": "0.0.1",
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.started).String(),
			"service": "bankd",
			"version": "0.0.1",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/accounts", func(c *gin.Context) {
		numbers := s.ledger.ActiveNumbers()
		sort.Strings(numbers)
		c.JSON(http.StatusOK, gin.H{
			"accounts": numbers,
			"count":    len(numbers),
		})
	})
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	return s.router.Run(s.addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
