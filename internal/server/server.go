// Package server exposes the presenter over HTTP: a single-page dashboard, a
// JSON API for term cards and the Prometheus endpoint.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"policydash/internal/catalog"
	"policydash/internal/presenter"
)

var log = logrus.WithField("component", "server")

type Server struct {
	presenter *presenter.Presenter
}

func New(p *presenter.Presenter) *Server {
	return &Server{presenter: p}
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/overview", s.handleOverview)

	cards := api.Group("/cards")
	cards.GET("", s.handleCardsList)
	cards.GET("/:id", s.handleCardGet)
	cards.POST("/:id/:event", s.handleCardEvent)

	// UI
	r.GET("/", s.handleUI)

	return r
}

type cardSummary struct {
	ID    string              `json:"id"`
	Label string              `json:"label"`
	State presenter.CardState `json:"state"`
}

func (s *Server) handleCardsList(c *gin.Context) {
	terms := s.presenter.Terms()
	out := make([]cardSummary, 0, len(terms))
	for _, term := range terms {
		state, err := s.presenter.Cards().State(term.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		out = append(out, cardSummary{ID: term.ID, Label: term.Label, State: state})
	}
	c.JSON(http.StatusOK, gin.H{"cards": out})
}

func (s *Server) handleCardGet(c *gin.Context) {
	view, err := s.presenter.BuildTermView(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// handleCardEvent applies reveal or minimize. Any other event leaves the card
// as it is and still answers 200 with the current state.
func (s *Server) handleCardEvent(c *gin.Context) {
	id := c.Param("id")
	event := presenter.CardEvent(c.Param("event"))
	state, err := s.presenter.Apply(id, event)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "event": event, "state": state})
}

func (s *Server) handleOverview(c *gin.Context) {
	overview, err := s.presenter.BuildOverview()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) handleUI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(uiHTML))
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, presenter.ErrUnknownCard), errors.Is(err, catalog.ErrUnknownTerm):
		status = http.StatusNotFound
	default:
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("request")
	}
}
