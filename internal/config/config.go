package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Port         string
	LogLevel     string
	DBDriver     string
	DBConn       string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewConfig loads configuration from environment variables.
// A .env file in the working directory is read first when present;
// variables already set in the environment win.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DBDriver:   getEnv("DB_DRIVER", DriverMySQL),
		DBConn:     getEnv("DB_CONN", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "users"),
	}

	switch cfg.DBDriver {
	case DriverMySQL:
		cfg.DBPort = getEnv("DB_PORT", "3306")
	case DriverPostgres:
		cfg.DBPort = getEnv("DB_PORT", "5432")
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if _, err := strconv.ParseUint(cfg.Port, 10, 16); err != nil {
		return nil, fmt.Errorf("PORT must be numeric: %w", err)
	}

	var err error
	if cfg.ReadTimeout, err = getDuration("READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = getDuration("WRITE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if cfg.DBConn == "" && cfg.DBHost == "" {
		return nil, fmt.Errorf("DB_HOST or DB_CONN is required")
	}

	return cfg, nil
}

// DSN returns the connection string for the configured driver.
// DB_CONN, when set, is used verbatim.
func (c *Config) DSN() string {
	if c.DBConn != "" {
		return c.DBConn
	}
	if c.DBDriver == DriverPostgres {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.DBUser, c.DBPassword),
			Host:     net.JoinHostPort(c.DBHost, c.DBPort),
			Path:     "/" + c.DBName,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	}
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = c.DBHost + ":" + c.DBPort
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.DBName = c.DBName
	return mc.FormatDSN()
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
