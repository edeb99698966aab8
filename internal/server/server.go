// Package server implements the aggregating tier: backend polling, the
// merged snapshot, command routing, and the web surface on top of them.
package server

import (
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

//go:embed status.html
var statusHTML string

// minStaleAfter is the floor for the staleness threshold, so short poll
// intervals do not flag a snapshot over a single hiccup.
const minStaleAfter = 30 * time.Second

// Server handles the aggregating tier's HTTP requests.
type Server struct {
	agg        *Aggregator
	router     *Router
	logger     zerolog.Logger
	tmpl       *template.Template
	staleAfter time.Duration
}

// NewServer creates the web server over an aggregator and command router.
// A snapshot counts as stale once three poll intervals have passed
// without a refresh.
func NewServer(agg *Aggregator, router *Router, logger zerolog.Logger) *Server {
	staleAfter := 3 * agg.interval
	if staleAfter < minStaleAfter {
		staleAfter = minStaleAfter
	}

	return &Server{
		agg:        agg,
		router:     router,
		logger:     logger,
		tmpl:       template.Must(template.New("status").Parse(statusHTML)),
		staleAfter: staleAfter,
	}
}

// Router builds the gin engine with all server routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.handleIndex)
	r.GET("/api/status", s.handleAPIStatus)
	r.POST("/wol", s.handleWOL)

	return r
}

type hostView struct {
	Name     string `json:"name"`
	Up       bool   `json:"up"`
	WOLCount uint64 `json:"wol_count"`
	Backend  string `json:"backend"`
}

type backendView struct {
	Backend string `json:"backend"`
	Address string `json:"address"`
}

// view flattens a snapshot for rendering. Dispatch passwords never appear
// in any response.
func view(snap *Snapshot) ([]hostView, []backendView) {
	hosts := make([]hostView, 0, len(snap.Hosts))
	for _, e := range snap.Hosts {
		hosts = append(hosts, hostView{
			Name:     e.Name,
			Up:       e.Up,
			WOLCount: e.WOLCount,
			Backend:  e.Backend.DisplayName,
		})
	}

	unreachable := make([]backendView, 0, len(snap.Unreachable))
	for _, b := range snap.Unreachable {
		unreachable = append(unreachable, backendView{Backend: b.DisplayName, Address: b.Address})
	}
	return hosts, unreachable
}

func (s *Server) handleIndex(c *gin.Context) {
	snap := s.agg.Snapshot()
	hosts, unreachable := view(snap)

	c.Header("Content-Type", "text/html; charset=utf-8")
	err := s.tmpl.Execute(c.Writer, gin.H{
		"Hosts":       hosts,
		"Unreachable": unreachable,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("rendering status page")
	}
}

func (s *Server) handleAPIStatus(c *gin.Context) {
	snap := s.agg.Snapshot()
	hosts, unreachable := view(snap)

	var lastUpdated any
	stale := true
	if !snap.UpdatedAt.IsZero() {
		lastUpdated = snap.UpdatedAt.Format(time.RFC3339)
		stale = time.Since(snap.UpdatedAt) > s.staleAfter
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"hosts":        hosts,
		"unreachable":  unreachable,
		"last_updated": lastUpdated,
		"stale":        stale,
	})
}

func (s *Server) handleWOL(c *gin.Context) {
	hostName := c.PostForm("host")
	password := c.PostForm("password")

	if hostName == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing host or password parameter"})
		return
	}

	err := s.router.Dispatch(c.Request.Context(), hostName, password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "WOL command sent successfully"})
	case errors.Is(err, ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid password"})
	case errors.Is(err, ErrUpstreamMisconfigured):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Backend authentication failed"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Host not found"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Backend unavailable"})
	}
}
