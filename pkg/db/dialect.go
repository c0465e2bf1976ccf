package db

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/smallbiznis/labform/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultSQLiteDSN = "labform.db"

// Dialect picks the gorm dialector for the relational backends. None of
// them touch the network until the first query.
func Dialect(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case config.DBTypeMySQL:
		dsn, err := mysqlDSN(cfg)
		if err != nil {
			return nil, err
		}
		return mysql.New(mysql.Config{
			DSN:                       dsn,
			SkipInitializeWithVersion: true,
		}), nil
	case config.DBTypePostgres:
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
				cfg.DBHost,
				cfg.DBUser,
				cfg.DBPassword,
				cfg.DBName,
				cfg.DBPort,
				cfg.DBSSLMode,
			)
		}
		return postgres.Open(dsn), nil
	case config.DBTypeSQLite:
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported %s type", cfg.DBType)
	}
}

// mysqlDSN accepts a mysql:// URL, a driver DSN or the discrete DATABASE_*
// settings. Times are always parsed and read back in UTC.
func mysqlDSN(cfg config.Config) (string, error) {
	raw := strings.TrimSpace(cfg.DatabaseURL)

	var dsnCfg *gomysql.Config
	switch {
	case raw == "":
		dsnCfg = gomysql.NewConfig()
		dsnCfg.User = cfg.DBUser
		dsnCfg.Passwd = cfg.DBPassword
		dsnCfg.Net = "tcp"
		dsnCfg.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
		dsnCfg.DBName = cfg.DBName
	case strings.HasPrefix(strings.ToLower(raw), "mysql://"):
		parsed, err := parseMySQLURL(raw)
		if err != nil {
			return "", err
		}
		dsnCfg = parsed
	default:
		parsed, err := gomysql.ParseDSN(raw)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		dsnCfg = parsed
	}

	dsnCfg.ParseTime = true
	dsnCfg.Loc = time.UTC
	if dsnCfg.Params == nil {
		dsnCfg.Params = map[string]string{}
	}
	if _, ok := dsnCfg.Params["charset"]; !ok {
		dsnCfg.Params["charset"] = "utf8mb4"
	}
	if cfg.DBConnectTimeout > 0 && dsnCfg.Timeout == 0 {
		dsnCfg.Timeout = cfg.DBConnectTimeout
	}
	return dsnCfg.FormatDSN(), nil
}

func parseMySQLURL(raw string) (*gomysql.Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse mysql url: %w", err)
	}

	// Driver parameters such as tls and timeout ride on the query string.
	base := gomysql.NewConfig()
	if u.RawQuery != "" {
		if base, err = gomysql.ParseDSN("/?" + u.RawQuery); err != nil {
			return nil, fmt.Errorf("parse mysql url params: %w", err)
		}
	}

	base.Net = "tcp"
	base.Addr = u.Host
	if u.Port() == "" {
		base.Addr = net.JoinHostPort(u.Hostname(), "3306")
	}
	if u.User != nil {
		base.User = u.User.Username()
		base.Passwd, _ = u.User.Password()
	}
	base.DBName = strings.TrimPrefix(u.Path, "/")
	return base, nil
}
