package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MalavS298/basiscpk/pkg/logger"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	HTTPPort       string
	Env            string
	StoreDriver    string
	AllowedOrigins []string
	DB             DBConfig
	Supabase       SupabaseConfig
	Zoom           ZoomConfig
	Relays         RelayConfig
	Requirements   RequirementsConfig
	Metrics        MetricsConfig
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

type SupabaseConfig struct {
	URL            string
	PublishableKey string
	ServiceRoleKey string
	JWTSecret      string
	AuthTimeout    time.Duration
	SkipAuth       bool
	MockUserID     string
	MockUserEmail  string
	MockUserName   string
}

type ZoomConfig struct {
	AccountID       string
	ClientID        string
	ClientSecret    string
	OAuthURL        string
	APIURL          string
	Timeout         time.Duration
	DefaultDuration int
}

type RelayConfig struct {
	RatePerSecond float64
	Burst         int
}

// RequirementsConfig holds the yearly service thresholds members are measured against.
type RequirementsConfig struct {
	ServiceHours float64
	SyncHours    float64
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "chapter_portal"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			MigrationsDir:   getEnv("DB_MIGRATIONS_DIR", ""),
		},
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			PublishableKey: getEnv("SUPABASE_ANON_KEY", getEnv("SUPABASE_PUBLISHABLE_KEY", getEnv("VITE_SUPABASE_PUBLISHABLE_KEY", ""))),
			ServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			JWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
			AuthTimeout:    getEnvDuration("SUPABASE_AUTH_TIMEOUT", 5*time.Second),
			SkipAuth:       getEnvBool("AUTH_SKIP", false),
			MockUserID:     getEnv("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001"),
			MockUserEmail:  getEnv("AUTH_MOCK_USER_EMAIL", ""),
			MockUserName:   getEnv("AUTH_MOCK_USER_NAME", ""),
		},
		Zoom: ZoomConfig{
			AccountID:       getEnv("ZOOM_ACCOUNT_ID", ""),
			ClientID:        getEnv("ZOOM_CLIENT_ID", ""),
			ClientSecret:    getEnv("ZOOM_CLIENT_SECRET", ""),
			OAuthURL:        getEnv("ZOOM_OAUTH_URL", "https://zoom.us"),
			APIURL:          getEnv("ZOOM_API_URL", "https://api.zoom.us"),
			Timeout:         getEnvDuration("ZOOM_TIMEOUT", 15*time.Second),
			DefaultDuration: getEnvInt("ZOOM_DEFAULT_DURATION_MINUTES", 60),
		},
		Relays: RelayConfig{
			RatePerSecond: getEnvFloat("RELAY_RATE_PER_SECOND", 1),
			Burst:         getEnvInt("RELAY_RATE_BURST", 5),
		},
		Requirements: RequirementsConfig{
			ServiceHours: getEnvFloat("REQUIRED_SERVICE_HOURS", 25),
			SyncHours:    getEnvFloat("REQUIRED_SYNC_HOURS", 18.75),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

// MigrationURL renders the connection as a postgres:// URL for golang-migrate.
func (c DBConfig) MigrationURL() string {
	if strings.HasPrefix(c.DSN, "postgres://") || strings.HasPrefix(c.DSN, "postgresql://") {
		return c.DSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		urlEscape(c.User), urlEscape(c.Password), c.Host, c.Port, c.Name, c.SSLMode)
}

func (c ZoomConfig) HasCredentials() bool {
	return c.AccountID != "" && c.ClientID != "" && c.ClientSecret != ""
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}
