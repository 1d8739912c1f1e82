package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NATS       NATSConfig
	Sentry     SentryConfig
	Geocoder   GeocoderConfig
	Matching   MatchingConfig
	Resilience ResilienceConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds event bus configuration
type NATSConfig struct {
	URL        string
	StreamName string
	Enabled    bool
}

// SentryConfig holds error tracking configuration. An empty DSN disables it.
type SentryConfig struct {
	DSN         string
	Environment string
}

// GeocoderConfig holds the address-resolution collaborator settings.
// The core never geocodes; only the transport layer resolves addresses
// before a matching run starts.
type GeocoderConfig struct {
	BaseURL        string
	TimeoutSeconds int
	CacheTTLHours  int
	UserAgent      string
}

// MatchingConfig holds the default knobs of the matching engine. Stored
// profiles and per-request overrides are layered on top of these.
type MatchingConfig struct {
	MaxDetourMiles          float64
	EnforceGenderPreference bool
	GroupByAgeRange         int
	TrafficBufferMultiplier float64
	LoadTimeMinutes         float64
	ResultTTLHours          int

	WeightRouteEfficiency  float64
	WeightDetour           float64
	WeightGenderMatch      float64
	WeightAgeMatch         float64
	WeightDriverPreference float64
	WeightEarlyDeparture   float64
}

// ResilienceConfig groups runtime resilience controls
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig captures default and per-service breaker tuning
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	SuccessThreshold int
	TimeoutSeconds   int
	IntervalSeconds  int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "eventcarpool"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:        getEnv("NATS_URL", "nats://localhost:4222"),
			StreamName: getEnv("NATS_STREAM", "CARPOOL"),
			Enabled:    getEnvAsBool("NATS_ENABLED", false),
		},
		Sentry: SentryConfig{
			DSN:         getEnv("SENTRY_DSN", ""),
			Environment: getEnv("SENTRY_ENVIRONMENT", getEnv("ENVIRONMENT", "development")),
		},
		Geocoder: GeocoderConfig{
			BaseURL:        getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			TimeoutSeconds: getEnvAsInt("GEOCODER_TIMEOUT_SECONDS", 5),
			CacheTTLHours:  getEnvAsInt("GEOCODER_CACHE_TTL_HOURS", 24),
			UserAgent:      getEnv("GEOCODER_USER_AGENT", "event-carpool/"+serviceName),
		},
		Matching: MatchingConfig{
			MaxDetourMiles:          getEnvAsFloat("MATCH_MAX_DETOUR_MILES", 5.0),
			EnforceGenderPreference: getEnvAsBool("MATCH_ENFORCE_GENDER_PREFERENCE", false),
			GroupByAgeRange:         getEnvAsInt("MATCH_GROUP_BY_AGE_RANGE", 10),
			TrafficBufferMultiplier: getEnvAsFloat("MATCH_TRAFFIC_BUFFER", 1.3),
			LoadTimeMinutes:         getEnvAsFloat("MATCH_LOAD_TIME_MINUTES", 3),
			ResultTTLHours:          getEnvAsInt("MATCH_RESULT_TTL_HOURS", 168),
			WeightRouteEfficiency:   getEnvAsFloat("MATCH_WEIGHT_ROUTE_EFFICIENCY", 0.30),
			WeightDetour:            getEnvAsFloat("MATCH_WEIGHT_DETOUR", 0.25),
			WeightGenderMatch:       getEnvAsFloat("MATCH_WEIGHT_GENDER", 0.20),
			WeightAgeMatch:          getEnvAsFloat("MATCH_WEIGHT_AGE", 0.15),
			WeightDriverPreference:  getEnvAsFloat("MATCH_WEIGHT_DRIVER_PREFERENCE", 0.10),
			WeightEarlyDeparture:    getEnvAsFloat("MATCH_WEIGHT_EARLY_DEPARTURE", 0.00),
		},
		Resilience: ResilienceConfig{
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          getEnvAsBool("CB_ENABLED", true),
				FailureThreshold: getEnvAsInt("CB_FAILURE_THRESHOLD", 5),
				SuccessThreshold: getEnvAsInt("CB_SUCCESS_THRESHOLD", 1),
				TimeoutSeconds:   getEnvAsInt("CB_TIMEOUT_SECONDS", 30),
				IntervalSeconds:  getEnvAsInt("CB_INTERVAL_SECONDS", 60),
			},
		},
	}

	if cfg.Matching.MaxDetourMiles <= 0 {
		return nil, fmt.Errorf("MATCH_MAX_DETOUR_MILES must be positive, got %v", cfg.Matching.MaxDetourMiles)
	}
	if cfg.Matching.GroupByAgeRange <= 0 {
		return nil, fmt.Errorf("MATCH_GROUP_BY_AGE_RANGE must be positive, got %d", cfg.Matching.GroupByAgeRange)
	}
	if cfg.Matching.TrafficBufferMultiplier <= 0 {
		return nil, fmt.Errorf("MATCH_TRAFFIC_BUFFER must be positive, got %v", cfg.Matching.TrafficBufferMultiplier)
	}

	if cfg.Resilience.CircuitBreaker.TimeoutSeconds <= 0 {
		cfg.Resilience.CircuitBreaker.TimeoutSeconds = 30
	}
	if cfg.Resilience.CircuitBreaker.IntervalSeconds <= 0 {
		cfg.Resilience.CircuitBreaker.IntervalSeconds = 60
	}
	if cfg.Resilience.CircuitBreaker.FailureThreshold <= 0 {
		cfg.Resilience.CircuitBreaker.FailureThreshold = 5
	}
	if cfg.Resilience.CircuitBreaker.SuccessThreshold <= 0 {
		cfg.Resilience.CircuitBreaker.SuccessThreshold = 1
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Timeout returns the geocoder HTTP timeout as a duration.
func (c *GeocoderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long geocoding results stay cached.
func (c *GeocoderConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// ResultTTL returns how long stored match results are retained.
func (c *MatchingConfig) ResultTTL() time.Duration {
	return time.Duration(c.ResultTTLHours) * time.Hour
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
