package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_MODE", "ENVIRONMENT", "NODE_ENV", "PORT",
		"DATABASE_URL", "MONGO_URI", "DATABASE_TYPE", "CORS_ALLOWED_ORIGINS", "SNOWFLAKE_NODE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ModeStandalone, cfg.Mode)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, DBTypeSQLite, cfg.DBType)
	assert.Equal(t, DefaultCORSAllowedOrigins, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.DBMetricsEnabled)
	assert.Equal(t, SnowflakeNodeAuto, cfg.SnowflakeNode)
	assert.False(t, cfg.IsServerless())
}

func TestLoadSnowflakeNodeFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNOWFLAKE_NODE", "42")

	cfg := Load()

	assert.Equal(t, 42, cfg.SnowflakeNode)
}

func TestLoadProductionDefaultsToServerless(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "production")

	cfg := Load()

	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.IsServerless())
}

func TestLoadExplicitModeWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("APP_MODE", "standalone")

	cfg := Load()

	assert.Equal(t, ModeStandalone, cfg.Mode)
}

func TestLoadMongoURIInfersDocumentStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017/labform")

	cfg := Load()

	assert.Equal(t, "mongodb://localhost:27017/labform", cfg.DatabaseURL)
	assert.Equal(t, DBTypeMongo, cfg.DBType)
}

func TestLoadDatabaseURLTakesPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017/labform")
	t.Setenv("DATABASE_URL", "postgres://postgres@localhost:5432/labform")

	cfg := Load()

	assert.Equal(t, DBTypePostgres, cfg.DBType)
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com , ,http://localhost:3000")

	cfg := Load()

	assert.Equal(t, []string{"https://a.example.com", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestInferDBType(t *testing.T) {
	cases := map[string]string{
		"":                                     DBTypeSQLite,
		"mongodb+srv://cluster0.example.net":   DBTypeMongo,
		"postgresql://u:p@db:5432/labform":     DBTypePostgres,
		"host=db user=u dbname=labform":        DBTypePostgres,
		"mysql://u:p@tcp(db:3306)/labform":     DBTypeMySQL,
		"file:labform.db?_pragma=busy_timeout": DBTypeSQLite,
	}
	for url, want := range cases {
		assert.Equal(t, want, inferDBType(url), url)
	}
}
