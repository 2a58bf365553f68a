// Package devserver is a mock finance backend serving generated fixtures
// over the same REST contract the dashboard consumes.
package devserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	flog "github.com/theirongolddev/finburn/internal/log"
)

// Options tunes the mock backend.
type Options struct {
	Log *flog.Logger
	// RatePerSec limits requests per client IP; 0 disables limiting.
	RatePerSec float64
	Burst      int
	// FailPath forces HTTP 500 for every request whose path has this prefix.
	FailPath string
	// Delay is added before every API response.
	Delay time.Duration
}

type requestValidator struct {
	v *validator.Validate
}

func (rv requestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

// New builds the echo server for f.
func New(f Fixtures, opts Options) *echo.Echo {
	lg := opts.Log
	if lg == nil {
		lg = flog.Discard()
	}
	lg = lg.WithComponent("devserver")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = requestValidator{v: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(lg.Logger))
	if opts.RatePerSec > 0 {
		e.Use(rateLimiter(opts.RatePerSec, opts.Burst))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h := &handler{f: f}
	api := e.Group("/api", delay(opts.Delay), failPath(opts.FailPath), h.requireAccount)
	api.GET("/user/:account", h.User)
	api.GET("/analytics/:account", h.Overview)
	api.GET("/bills/:account", h.Bills)
	api.GET("/categories/:account", h.Categories)
	api.GET("/categories/:account/totals", h.CategoryTotals)
	api.GET("/predictions/:account", h.Predictions)
	api.GET("/patterns/:account", h.Patterns)
	api.GET("/insights/:account", h.Insights)
	api.GET("/analysis/bills-income/:account", h.BillsIncome)
	api.GET("/income/:account", h.Income)
	api.GET("/income/:account/monthly", h.MonthlyIncome)
	api.GET("/transactions/:account", h.Transactions)

	return e
}

// NewHTTPServer wraps handler with conservative timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request completed", attrs...)
			return nil
		},
	})
}

func rateLimiter(perSec float64, burst int) echo.MiddlewareFunc {
	if burst < 1 {
		burst = int(perSec) + 1
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSec),
		Burst:     burst,
		ExpiresIn: time.Minute,
	})
	return middleware.RateLimiter(store)
}

func failPath(prefix string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if prefix != "" && strings.HasPrefix(c.Request().URL.Path, prefix) {
				return serverError(c, "forced failure")
			}
			return next(c)
		}
	}
}

func delay(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if d <= 0 {
				return next(c)
			}
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-t.C:
				return next(c)
			case <-c.Request().Context().Done():
				return c.Request().Context().Err()
			}
		}
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func serverError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": message})
}
