package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type options struct {
	gracefulPeriod time.Duration
	metrics        *Metrics
}

// Option configures the server.
type Option func(*options)

// WithGracefulPeriod bounds shutdown; 10 seconds by default.
func WithGracefulPeriod(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.gracefulPeriod = d
		}
	}
}

// WithMetrics shares an existing collector set.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Server exposes the classifier over HTTP.
type Server struct {
	echo           *echo.Echo
	logger         *slog.Logger
	gracefulPeriod time.Duration
}

// NewServer registers routes and middleware around the classifier.
func NewServer(svc Classifier, logger *slog.Logger, opts ...Option) *Server {
	o := options{gracefulPeriod: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = NewMetrics()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Debug("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.POST("/classify", classifyHandler(svc, o.metrics))
	e.GET("/health", healthHandler(svc))
	e.GET("/metrics", echo.WrapHandler(o.metrics.Handler()))

	return &Server{echo: e, logger: logger, gracefulPeriod: o.gracefulPeriod}
}

// ServeHTTP makes the server usable as a plain http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()
	s.logger.Info("classifier listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.gracefulPeriod)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		_ = s.echo.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("classifier stopped")
	return nil
}

// errorHandler renders every failure as {"detail": "..."}.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		detail := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			detail = fmt.Sprint(he.Message)
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request error", "status", status, "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, ErrorResponse{Detail: detail})
		}
		if err != nil {
			logger.Error("write error response", "error", err)
		}
	}
}
