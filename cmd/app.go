package cmd

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/go-donation-client/app/client"
	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/eventbus"
	"github.com/vibast-solutions/go-donation-client/app/factory"
	"github.com/vibast-solutions/go-donation-client/app/metrics"
	"github.com/vibast-solutions/go-donation-client/app/provider"
	"github.com/vibast-solutions/go-donation-client/app/repository"
	"github.com/vibast-solutions/go-donation-client/config"
)

type application struct {
	cfg      *config.Config
	api      *client.Client
	journal  *repository.JournalRepository
	sessions *provider.Sessions
	launcher *provider.BrowserLauncher
	registry *prometheus.Registry
	recorder *metrics.Recorder
}

func mustCreateApplication() (*application, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := factory.ConfigureLogging(cfg.Log.Level); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	api := client.New(client.Config{
		BaseURL:         cfg.API.BaseURL,
		APIToken:        cfg.App.APIToken,
		CreateOrderPath: cfg.API.CreateOrderPath,
		ConfirmPath:     cfg.API.ConfirmPath,
		StatusPath:      cfg.API.StatusPath,
		HTTPTimeout:     cfg.API.HTTPTimeout,
	}, eventbus.Default())
	unsubscribe := eventbus.Default().Subscribe(toastLogger(eventbus.NewToaster(api.WorkflowPaths()...)))

	registry := prometheus.NewRegistry()
	app := &application{
		cfg:      cfg,
		api:      api,
		sessions: provider.NewSessions(),
		launcher: provider.NewBrowserLauncher(),
		registry: registry,
		recorder: metrics.NewRecorder(registry),
	}

	var db *sql.DB
	if strings.TrimSpace(cfg.MySQL.DSN) != "" {
		db = mustOpenDatabase(cfg.MySQL)
		app.journal = repository.NewJournalRepository(db)
	}

	cleanup := func() {
		unsubscribe()
		if db == nil {
			return
		}
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}
	return app, cleanup
}

func mustOpenDatabase(cfg config.MySQLConfig) *sql.DB {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}
	return db
}

func (a *application) checkout() *provider.RazorpayCheckout {
	return provider.NewRazorpayCheckout(provider.RazorpayConfig{
		MerchantName:  a.cfg.Razorpay.MerchantName,
		ThemeColor:    a.cfg.Razorpay.ThemeColor,
		RetryEnabled:  a.cfg.Razorpay.RetryEnabled,
		RetryMaxCount: a.cfg.Razorpay.RetryMaxCount,
		BridgeBaseURL: a.cfg.Bridge.PublicBaseURL,
	}, a.sessions, a.launcher)
}

func thresholdFor(cfg *config.Config, entryPoint entity.EntryPoint) (float64, error) {
	switch entryPoint {
	case entity.EntryPointPublicCheckout:
		return cfg.Donations.PublicCheckoutThreshold, nil
	case entity.EntryPointDonationHub:
		return cfg.Donations.DonationHubThreshold, nil
	case entity.EntryPointCreateDonation:
		return cfg.Donations.CreateDonationThreshold, nil
	default:
		return 0, fmt.Errorf("unknown entry point %q", entryPoint)
	}
}

func toastLogger(toaster *eventbus.Toaster) eventbus.Handler {
	return func(evt eventbus.HTTPError) {
		message, ok := toaster.Message(evt)
		if !ok {
			return
		}
		logrus.WithFields(logrus.Fields{
			"status": evt.Status,
			"method": evt.Method,
			"path":   evt.Path,
		}).Warn(message)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
