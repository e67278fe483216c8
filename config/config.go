package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// DefaultStartURL is the worldwide PADI dive-shop locator search.
const DefaultStartURL = "https://locator.padi.com/search?lang=en&location=Worldwide"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	StartURL           string
	MaxPages           int
	MaxListingsPerPage int
	PageReadyTimeoutS  int
	PagePollIntervalMs int
	PageSettleMs       int
	Headless           bool
	ChromeBin          string
	SelectorsFile      string

	CSVOutputPath  string
	XLSXOutputPath string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	MaxRetries       int

	LogLevel string
	LogFile  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		StartURL:           getEnv("START_URL", DefaultStartURL),
		MaxPages:           getEnvInt("MAX_PAGES", 131),
		MaxListingsPerPage: getEnvInt("MAX_LISTINGS_PER_PAGE", 0),
		PageReadyTimeoutS:  getEnvInt("PAGE_READY_TIMEOUT_S", 30),
		PagePollIntervalMs: getEnvInt("PAGE_POLL_INTERVAL_MS", 500),
		PageSettleMs:       getEnvInt("PAGE_SETTLE_MS", 5000),
		Headless:           getEnvBool("HEADLESS", true),
		ChromeBin:          getEnv("CHROME_BIN", ""),
		SelectorsFile:      getEnv("SELECTORS_FILE", ""),

		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", "padi.csv"),
		XLSXOutputPath: getEnv("XLSX_OUTPUT_PATH", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "padi_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

// Validate rejects settings the pagination loop cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.StartURL) == "" {
		return fmt.Errorf("START_URL is required")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("MAX_PAGES must be > 0")
	}
	if c.MaxListingsPerPage < 0 {
		return fmt.Errorf("MAX_LISTINGS_PER_PAGE must be >= 0")
	}
	if c.PageReadyTimeoutS <= 0 {
		return fmt.Errorf("PAGE_READY_TIMEOUT_S must be > 0")
	}
	if c.PagePollIntervalMs <= 0 {
		return fmt.Errorf("PAGE_POLL_INTERVAL_MS must be > 0")
	}
	if c.PageSettleMs < 0 {
		return fmt.Errorf("PAGE_SETTLE_MS must be >= 0")
	}
	if strings.TrimSpace(c.CSVOutputPath) == "" {
		return fmt.Errorf("CSV_OUTPUT_PATH is required")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be >= 1")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func (c *Config) PageReadyTimeout() time.Duration {
	return time.Duration(c.PageReadyTimeoutS) * time.Second
}

func (c *Config) PagePollInterval() time.Duration {
	return time.Duration(c.PagePollIntervalMs) * time.Millisecond
}

func (c *Config) PageSettleDelay() time.Duration {
	return time.Duration(c.PageSettleMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
