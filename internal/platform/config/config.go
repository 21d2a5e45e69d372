package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Bill message delivery targets.
const (
	MessengerInbox = "inbox"
	MessengerLog   = "log"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	DBMaxConns     int32
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	LogLevel       string
	MigrationsPath string

	JWTSecret string
	JWTIssuer string

	CORSAllowedOrigins []string
	RateLimit          string // ulule/limiter formatted rate, e.g. "30-M"

	// DispatchTimeout bounds each delivery attempt of a bill notice.
	DispatchTimeout      time.Duration
	DispatchMessenger    string // "inbox" stores messages, "log" only logs them
	StatisticsWindowDays int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "costshare-ledger")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("RATE_LIMIT", "30-M")
	viper.SetDefault("DISPATCH_TIMEOUT", "5s")
	viper.SetDefault("DISPATCH_MESSENGER", MessengerInbox)
	viper.SetDefault("STATISTICS_WINDOW_DAYS", 30)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "costshare-ledger"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	dispatchTimeoutStr := viper.GetString("DISPATCH_TIMEOUT")
	dispatchTimeout, err := time.ParseDuration(dispatchTimeoutStr)
	if err != nil || dispatchTimeout <= 0 {
		dispatchTimeout = 5 * time.Second
		log.Printf("Warning: Invalid value for DISPATCH_TIMEOUT ('%s'). Defaulting to %s.\n", dispatchTimeoutStr, dispatchTimeout)
	}
	cfg.DispatchTimeout = dispatchTimeout

	cfg.DispatchMessenger = strings.ToLower(strings.TrimSpace(viper.GetString("DISPATCH_MESSENGER")))
	if cfg.DispatchMessenger != MessengerInbox && cfg.DispatchMessenger != MessengerLog {
		log.Printf("Warning: Unknown DISPATCH_MESSENGER ('%s'). Defaulting to %s.\n", cfg.DispatchMessenger, MessengerInbox)
		cfg.DispatchMessenger = MessengerInbox
	}

	maxConns := viper.GetInt32("DB_MAX_CONNS")
	if maxConns <= 0 {
		maxConns = 10
	}
	cfg.DBMaxConns = maxConns

	windowDays := viper.GetInt("STATISTICS_WINDOW_DAYS")
	if windowDays <= 0 {
		windowDays = 30
	}
	cfg.StatisticsWindowDays = windowDays

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.LogLevel = viper.GetString("LOG_LEVEL")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
