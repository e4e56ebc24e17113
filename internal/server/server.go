// Package server exposes the HTTP API over echo.
package server

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/kapu/moodtunes-go/internal/constants"
)

type Server struct {
	echo   *echo.Echo
	logger *zap.Logger
}

func New(handler *Handler, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = constants.HTTPConfig.ReadTimeout
	e.Server.WriteTimeout = constants.HTTPConfig.WriteTimeout

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				logger.Error("Request failed", append(fields, zap.Error(v.Error))...)
			} else {
				logger.Info("Request completed", fields...)
			}
			return nil
		},
	}))

	e.POST("/api/mood/analyze", handler.HandleAnalyze)
	e.POST("/api/recommendations", handler.HandleRecommendations)
	e.POST("/api/entries", handler.HandleSaveEntry)
	e.GET("/api/entries", handler.HandleListEntries)
	e.GET("/api/entries/:id", handler.HandleGetEntry)
	e.DELETE("/api/entries", handler.HandleDeleteEntry)
	e.GET("/api/preferences/:userID", handler.HandleGetPreferences)
	e.PUT("/api/preferences/:userID", handler.HandlePutPreferences)
	e.GET("/healthz", handler.HandleHealth)

	return &Server{echo: e, logger: logger}
}

// Start blocks until the listener stops.
func (s *Server) Start(addr string) error {
	s.logger.Info("HTTP server starting", zap.String("addr", addr))
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.HTTPConfig.ShutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo { return s.echo }
