package httpserver

import (
	"context"
	"net/http"
	"strings"

	"epi_notifier/internal/app"
	"epi_notifier/internal/infra/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server is the operator-facing HTTP surface: liveness, metrics and the
// manual re-run entry point. The manual trigger runs the same pipeline as the
// cron schedule, with the real clock; there is no special-casing.
type Server struct {
	httpServer *http.Server
	logger     *logrus.Logger
}

func New(cfg *config.AppConfig, notifier app.ExpirationNotifier, logger *logrus.Logger) *Server {
	if cfg.Environment == "production" || cfg.Environment == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/status", func(c *gin.Context) {
		c.String(http.StatusOK, "Server is up and reachable")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	protected := router.Group("/")
	if cfg.OperatorToken != "" {
		protected.Use(requireBearerToken(cfg.OperatorToken))
	} else {
		logger.Warn("OPERATOR_TOKEN not set; manual trigger endpoint is unprotected")
	}

	protected.GET("/expirations/check", func(c *gin.Context) {
		logger.Info("Manual expiration check requested")
		if err := notifier.RunOnce(c.Request.Context(), app.TriggerManual); err != nil {
			// The caller gets a generic failure signal; details stay in the logs.
			c.String(http.StatusInternalServerError, "Manual expiration check failed")
			return
		}
		c.String(http.StatusOK, "Manual expiration check completed")
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: router,
		},
		logger: logger,
	}
}

func requireBearerToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if got != token {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
