package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Analytics AnalyticsConfig
	Security  SecurityConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AnalyticsConfig carries the scalar knobs of the analysis engines. The
// iteration and tolerance limits of the numerical fits are configuration by
// design: reports must be re-reproducible and tunable without a rebuild.
type AnalyticsConfig struct {
	// Lifetime-value model fitting.
	PenalizerCoef float64
	FitMaxIter    int
	FitTol        float64

	// Prediction horizon for expected future purchases, in days.
	HorizonDays float64

	// Segmentation.
	NClusters       int
	ClusterMaxIter  int
	ClusterTol      float64
	ClusterSeed     int64
	LookbackMonths  int
	NBestCustomers  int

	// Churn series: number of consecutive month-end boundaries.
	ChurnBoundaries int
}

type SecurityConfig struct {
	RateLimitPerSecond int
	RateLimitBurst     int
}

func Load() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			Environment:  getEnv("APP_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "analytics_user"),
			Password:        getEnv("DB_PASSWORD", "analytics_password"),
			Name:            getEnv("DB_NAME", "analytics_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getIntEnv("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Analytics: AnalyticsConfig{
			PenalizerCoef:   getFloatEnv("MODEL_PENALIZER_COEF", 0.0),
			FitMaxIter:      getIntEnv("MODEL_FIT_MAX_ITER", 10000),
			FitTol:          getFloatEnv("MODEL_FIT_TOL", 1e-6),
			HorizonDays:     getFloatEnv("MODEL_HORIZON_DAYS", 365),
			NClusters:       getIntEnv("SEGMENTATION_CLUSTERS", 5),
			ClusterMaxIter:  getIntEnv("SEGMENTATION_MAX_ITER", 1000),
			ClusterTol:      getFloatEnv("SEGMENTATION_TOL", 1e-6),
			ClusterSeed:     int64(getIntEnv("SEGMENTATION_SEED", 7)),
			LookbackMonths:  getIntEnv("SEGMENTATION_LOOKBACK_MONTHS", 12),
			NBestCustomers:  getIntEnv("SEGMENTATION_BEST_CUSTOMERS", 10),
			ChurnBoundaries: getIntEnv("CHURN_BOUNDARIES", 13),
		},
		Security: SecurityConfig{
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 5),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 10),
		},
	}

	config.Server.CORSAllowOrigins = loadCORSAllowOrigins()

	return config
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func loadCORSAllowOrigins() []string {
	corsOrigins := os.Getenv("CORS_ALLOW_ORIGINS")
	if corsOrigins == "" {
		return []string{"*"}
	}

	origins := strings.Split(corsOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}
