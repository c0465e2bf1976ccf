package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Mode        string
	Environment string
	Port        string

	LogLevel  string
	LogFormat string

	OtelEnabled       bool
	OTLPEndpoint      string
	OTLPProtocol      string
	OtelSamplingRatio float64

	CORSAllowedOrigins []string

	// SnowflakeNode is the id generator node; SnowflakeNodeAuto picks one
	// at random per process.
	SnowflakeNode int

	DBType            string
	DatabaseURL       string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBConnectTimeout  time.Duration
	DBMetricsEnabled  bool
}

const (
	ModeStandalone = "standalone"
	ModeServerless = "serverless"
)

const SnowflakeNodeAuto = -1

const (
	DBTypeMongo    = "mongo"
	DBTypePostgres = "postgres"
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"
)

// DefaultCORSAllowedOrigins are the browser origins of the paddy purchase frontend.
var DefaultCORSAllowedOrigins = []string{
	"https://paddy-purchase.vercel.app",
	"http://localhost:5174",
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_SERVICE", "labform")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("PORT", "3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	v.SetDefault("OTEL_SAMPLING_RATIO", 0.1)
	v.SetDefault("SNOWFLAKE_NODE", SnowflakeNodeAuto)
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "labform")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_IDLE_CONN", 5)
	v.SetDefault("DATABASE_MAX_OPEN_CONN", 20)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DATABASE_CONN_MAX_IDLE_TIME", 60)
	v.SetDefault("DATABASE_CONNECT_TIMEOUT", 10*time.Second)
	v.SetDefault("DATABASE_METRICS_ENABLED", true)

	environment := firstNonEmpty(v.GetString("ENVIRONMENT"), v.GetString("NODE_ENV"), "development")
	databaseURL := firstNonEmpty(v.GetString("DATABASE_URL"), v.GetString("MONGO_URI"))

	origins := parseList(v.GetString("CORS_ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		origins = append([]string(nil), DefaultCORSAllowedOrigins...)
	}

	cfg := Config{
		AppName:            v.GetString("APP_SERVICE"),
		AppVersion:         v.GetString("APP_VERSION"),
		Mode:               normalizeMode(v.GetString("APP_MODE"), environment),
		Environment:        environment,
		Port:               strings.TrimSpace(v.GetString("PORT")),
		LogLevel:           strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		LogFormat:          strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
		OtelEnabled:        v.GetBool("OTEL_ENABLED"),
		OTLPEndpoint:       strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTLPProtocol:       strings.ToLower(firstNonEmpty(v.GetString("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL"), v.GetString("OTEL_EXPORTER_OTLP_PROTOCOL"))),
		OtelSamplingRatio:  v.GetFloat64("OTEL_SAMPLING_RATIO"),
		CORSAllowedOrigins: origins,
		SnowflakeNode:      v.GetInt("SNOWFLAKE_NODE"),
		DBType:             normalizeDBType(v.GetString("DATABASE_TYPE"), databaseURL),
		DatabaseURL:        databaseURL,
		DBHost:             v.GetString("DATABASE_HOST"),
		DBPort:             v.GetString("DATABASE_PORT"),
		DBName:             v.GetString("DATABASE_NAME"),
		DBUser:             v.GetString("DATABASE_USER"),
		DBPassword:         v.GetString("DATABASE_PASSWORD"),
		DBSSLMode:          v.GetString("DATABASE_SSLMODE"),
		DBMaxIdleConn:      v.GetInt("DATABASE_MAX_IDLE_CONN"),
		DBMaxOpenConn:      v.GetInt("DATABASE_MAX_OPEN_CONN"),
		DBConnMaxLifetime:  v.GetInt("DATABASE_CONN_MAX_LIFETIME"),
		DBConnMaxIdleTime:  v.GetInt("DATABASE_CONN_MAX_IDLE_TIME"),
		DBConnectTimeout:   v.GetDuration("DATABASE_CONNECT_TIMEOUT"),
		DBMetricsEnabled:   v.GetBool("DATABASE_METRICS_ENABLED"),
	}

	return cfg
}

// IsServerless reports whether listening is delegated to an external host.
func (c Config) IsServerless() bool {
	return c.Mode == ModeServerless
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// normalizeMode falls back to the environment when APP_MODE is unset:
// production deployments are invoked by the hosting platform.
func normalizeMode(raw, environment string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case ModeServerless, "lambda", "vercel":
		return ModeServerless
	case ModeStandalone, "server", "local":
		return ModeStandalone
	}
	if strings.EqualFold(strings.TrimSpace(environment), "production") {
		return ModeServerless
	}
	return ModeStandalone
}

func normalizeDBType(raw, databaseURL string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case DBTypeMongo, "mongodb":
		return DBTypeMongo
	case DBTypePostgres, "postgresql", "pg":
		return DBTypePostgres
	case DBTypeMySQL:
		return DBTypeMySQL
	case DBTypeSQLite, "sqlite3":
		return DBTypeSQLite
	case "":
	default:
		log.Printf("unknown DATABASE_TYPE %q, inferring from connection string", raw)
	}
	return inferDBType(databaseURL)
}

func inferDBType(databaseURL string) string {
	url := strings.ToLower(strings.TrimSpace(databaseURL))
	switch {
	case url == "":
		return DBTypeSQLite
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		return DBTypeMongo
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DBTypePostgres
	case strings.HasPrefix(url, "mysql://"):
		return DBTypeMySQL
	case strings.HasPrefix(url, "host="):
		return DBTypePostgres
	default:
		return DBTypeSQLite
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
