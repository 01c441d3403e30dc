package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/farhapartex/food-search-proxy/internal/config"
	"github.com/farhapartex/food-search-proxy/internal/handlers"
	"github.com/farhapartex/food-search-proxy/internal/models"
)

const (
	welcomeMessage  = "Welcome to FatSecret API with FastAPI"
	shutdownTimeout = 10 * time.Second
)

// Server exposes the search relay over HTTP
type Server struct {
	engine        *gin.Engine
	searchHandler *handlers.SearchHandler
	config        *config.Config
}

// NewServer builds the gin engine with middleware and routes
func NewServer(cfg *config.Config, searchHandler *handlers.SearchHandler) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger())
	engine.Use(MetricsRecorder())

	s := &Server{
		engine:        engine,
		searchHandler: searchHandler,
		config:        cfg,
	}

	engine.GET("/", s.root)
	engine.POST("/search-foods", s.searchFoods)
	engine.GET("/healthz", s.healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Handler returns the underlying http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.config.HTTPAddr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": welcomeMessage})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) searchFoods(c *gin.Context) {
	var req models.FoodSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, handlers.KindInvalidRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.Server.ServerTimeout)
	defer cancel()

	response, err := s.searchHandler.Search(ctx, &req)
	if err != nil {
		_ = c.Error(err)
		kind := handlers.Classify(err)
		respondError(c, statusForKind(kind), kind, handlers.PublicMessage(kind, err))
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", response.Body)
}

func statusForKind(kind handlers.ErrorKind) int {
	switch kind {
	case handlers.KindInvalidRequest:
		return http.StatusUnprocessableEntity
	case handlers.KindUpstreamAuth, handlers.KindMalformedResponse, handlers.KindUpstreamUnreachable:
		return http.StatusBadGateway
	case handlers.KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, status int, kind handlers.ErrorKind, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"type":    kind,
			"message": message,
		},
	})
}
