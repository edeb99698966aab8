// Package proxy wires the proxy tier's HTTP surface: the metrics status
// endpoint and the authenticated WOL trigger.
package proxy

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rewol/rewol/internal/auth"
	"github.com/rewol/rewol/internal/hosts"
	"github.com/rewol/rewol/internal/metrics"
	"github.com/rewol/rewol/internal/models"
	"github.com/rewol/rewol/internal/wol"
	"github.com/rs/zerolog"
)

// Server handles the proxy's HTTP requests.
type Server struct {
	cfg        *models.ProxyConfig
	table      *hosts.Table
	dispatcher *wol.Dispatcher
	logger     zerolog.Logger
}

// NewServer creates the proxy HTTP server.
func NewServer(cfg *models.ProxyConfig, table *hosts.Table, dispatcher *wol.Dispatcher, logger zerolog.Logger) *Server {
	return &Server{cfg: cfg, table: table, dispatcher: dispatcher, logger: logger}
}

// Router builds the gin engine with all proxy routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/status", gin.WrapH(metrics.Handler(s.table)))
	r.POST("/wol", s.handleWOL)

	return r
}

// handleWOL validates the password before checking host existence, so an
// unauthenticated caller cannot probe which host names are configured.
func (s *Server) handleWOL(c *gin.Context) {
	hostName := c.PostForm("host")
	password := c.PostForm("password")

	if hostName == "" || password == "" {
		c.String(http.StatusBadRequest, "Missing host or password parameter")
		return
	}

	if !auth.Verify(password, s.cfg.Password.Hash, s.cfg.Password.Salt) {
		s.logger.Warn().Str("host", hostName).Msg("invalid password")
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}

	host, ok := s.table.Lookup(hostName)
	if !ok {
		c.String(http.StatusNotFound, "Host not found")
		return
	}

	if err := s.dispatcher.Send(host); err != nil {
		c.String(http.StatusInternalServerError, "Error sending WOL signal")
		return
	}

	c.String(http.StatusCreated, "WOL signal sent successfully")
}
