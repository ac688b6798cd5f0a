package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/go-donation-client/app/controller"
	"github.com/vibast-solutions/go-donation-client/config"
)

var bridgeOpen bool

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run the local checkout bridge on its own",
	Long:  "Serve the checkout bridge health and metrics endpoints until interrupted. With --open, the health page is opened in the browser to check the launcher.",
	Run:   runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
	bridgeCmd.Flags().BoolVar(&bridgeOpen, "open", false, "Open the bridge health page in the default browser")
}

func runBridge(_ *cobra.Command, _ []string) {
	app, cleanup := mustCreateApplication()
	defer cleanup()

	shutdown := mustStartBridge(app.cfg.Bridge, controller.NewCheckoutController(app.sessions), app.registry)
	defer shutdown()

	if bridgeOpen {
		healthURL := strings.TrimRight(app.cfg.Bridge.PublicBaseURL, "/") + "/health"
		if err := app.launcher.Open(healthURL); err != nil {
			logrus.WithError(err).Error("Failed to open browser")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")
}

// mustStartBridge binds the bridge listener before returning so that a page
// opened right after is served.
func mustStartBridge(cfg config.BridgeConfig, checkoutController *controller.CheckoutController, registry *prometheus.Registry) func() {
	e := setupHTTPServer(checkoutController, registry)

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logrus.WithError(err).WithField("addr", addr).Fatal("Failed to listen on bridge port")
	}
	e.Listener = lis

	go func() {
		logrus.WithField("addr", lis.Addr().String()).Info("Starting checkout bridge")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Checkout bridge error")
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("Checkout bridge shutdown error")
		}
	}
}

func setupHTTPServer(checkoutController *controller.CheckoutController, registry *prometheus.Registry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"request_id": v.RequestID,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Debug("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(ensureRequestID())

	e.GET("/health", checkoutController.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	checkout := e.Group("/checkout")
	checkout.GET("/:session", checkoutController.Page)
	checkout.POST("/:session/result", checkoutController.Result)

	return e
}

// ensureRequestID keeps a caller supplied X-Request-ID and assigns one otherwise;
// the checkout page never sends its own.
func ensureRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			requestID := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
			if requestID == "" {
				requestID = uuid.NewString()
				ctx.Request().Header.Set(echo.HeaderXRequestID, requestID)
			}
			ctx.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(ctx)
		}
	}
}
