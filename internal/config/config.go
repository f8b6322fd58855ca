package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	HTTPAddr      string
	LogFile       string
	LogLevel      string
	DefaultTenant string

	// Match thresholds are empirical constants carried over from production
	// data; they are env-tunable pending calibration.
	MatchProductThreshold  float64
	MatchCustomerThreshold float64
	MatchContainmentScore  float64

	// DefaultTaxRate applies to order lines whose catalog item carries no
	// tax rate of its own.
	DefaultTaxRate float64
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "alfies.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		LogFile:       getEnv("LOG_FILE", filepath.Join(cwd, "logs", "alfies.log")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DefaultTenant: getEnv("DEFAULT_TENANT", "default"),

		MatchProductThreshold:  getEnvFloat("MATCH_PRODUCT_THRESHOLD", 0.80),
		MatchCustomerThreshold: getEnvFloat("MATCH_CUSTOMER_THRESHOLD", 0.70),
		MatchContainmentScore:  getEnvFloat("MATCH_CONTAINMENT_SCORE", 0.85),

		DefaultTaxRate: getEnvFloat("DEFAULT_TAX_RATE", 0.10),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
