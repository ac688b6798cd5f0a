package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	API       APIConfig
	Razorpay  RazorpayConfig
	Donations DonationsConfig
	Bridge    BridgeConfig
	MySQL     MySQLConfig
	Log       LogConfig
	Reconcile ReconcileConfig
}

type AppConfig struct {
	ServiceName string
	APIToken    string
}

type APIConfig struct {
	BaseURL         string
	CreateOrderPath string
	ConfirmPath     string
	StatusPath      string
	HTTPTimeout     time.Duration
}

type RazorpayConfig struct {
	PublicKey     string
	MerchantName  string
	ThemeColor    string
	RetryEnabled  bool
	RetryMaxCount int
}

// DonationsConfig carries the enhanced-disclosure threshold of each entry
// point. The public checkout and the create-donation screen historically used
// different values, so both stay configurable.
type DonationsConfig struct {
	Currency                string
	PublicCheckoutThreshold float64
	DonationHubThreshold    float64
	CreateDonationThreshold float64
}

type BridgeConfig struct {
	Host          string
	Port          string
	PublicBaseURL string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type ReconcileConfig struct {
	BatchSize  int32
	StaleAfter time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	baseURL := strings.TrimRight(os.Getenv("DONATIONS_API_BASE_URL"), "/")
	if baseURL == "" {
		return nil, errors.New("DONATIONS_API_BASE_URL environment variable is required")
	}

	bridgeHost := getEnv("CHECKOUT_BRIDGE_HOST", "127.0.0.1")
	bridgePort := getEnv("CHECKOUT_BRIDGE_PORT", "8765")

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "donations-client"),
			APIToken:    getEnv("DONATIONS_API_TOKEN", ""),
		},
		API: APIConfig{
			BaseURL:         baseURL,
			CreateOrderPath: getEnv("DONATIONS_CREATE_ORDER_PATH", "/donations/orders"),
			ConfirmPath:     getEnv("DONATIONS_CONFIRM_PATH", "/donations/confirm"),
			StatusPath:      getEnv("DONATIONS_STATUS_PATH", "/donations/orders/%s/status"),
			HTTPTimeout:     getSecondsEnv("DONATIONS_API_HTTP_TIMEOUT_SECONDS", 15*time.Second),
		},
		Razorpay: RazorpayConfig{
			PublicKey:     getEnv("RAZORPAY_PUBLIC_KEY", ""),
			MerchantName:  getEnv("RAZORPAY_MERCHANT_NAME", "HRCI Donation"),
			ThemeColor:    getEnv("RAZORPAY_THEME_COLOR", "#FE0002"),
			RetryEnabled:  getBoolEnv("RAZORPAY_RETRY_ENABLED", true),
			RetryMaxCount: getIntEnv("RAZORPAY_RETRY_MAX_COUNT", 1),
		},
		Donations: DonationsConfig{
			Currency:                strings.ToUpper(getEnv("DONATIONS_CURRENCY", "INR")),
			PublicCheckoutThreshold: getFloatEnv("DONATIONS_THRESHOLD_PUBLIC_CHECKOUT", 10000),
			DonationHubThreshold:    getFloatEnv("DONATIONS_THRESHOLD_DONATION_HUB", 10000),
			CreateDonationThreshold: getFloatEnv("DONATIONS_THRESHOLD_CREATE_DONATION", 1000),
		},
		Bridge: BridgeConfig{
			Host:          bridgeHost,
			Port:          bridgePort,
			PublicBaseURL: getEnv("CHECKOUT_BRIDGE_PUBLIC_URL", "http://"+bridgeHost+":"+bridgePort),
		},
		MySQL: MySQLConfig{
			DSN:             getEnv("MYSQL_DSN", ""),
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 4),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Reconcile: ReconcileConfig{
			BatchSize:  int32(getIntEnv("DONATIONS_RECONCILE_BATCH_SIZE", 50)),
			StaleAfter: getMinutesEnv("DONATIONS_RECONCILE_STALE_AFTER_MINUTES", 15*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
