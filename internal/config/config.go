package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrInvalidConfig is returned by Validate for any rejected setting.
var ErrInvalidConfig = errors.New("invalid configuration")

// Counts holds the number of rows each generation stage produces.
// Categories are a fixed list and are not configurable.
type Counts struct {
	Suppliers  int `json:"suppliers"`
	Warehouses int `json:"warehouses"`
	Products   int `json:"products"`
	Customers  int `json:"customers"`
	Orders     int `json:"orders"`
	Reviews    int `json:"reviews"`
	Tickets    int `json:"tickets"`
}

// DefaultCounts mirrors the dataset size the schema was designed around.
func DefaultCounts() Counts {
	return Counts{
		Suppliers:  30,
		Warehouses: 5,
		Products:   300,
		Customers:  3000,
		Orders:     5000,
		Reviews:    1500,
		Tickets:    500,
	}
}

type Config struct {
	// Database
	DBHost           string
	DBPort           int
	DBUser           string
	DBPassword       string
	DBPasswordSecret string
	DBName           string
	DBSSLMode        string

	Environment string

	// Generation
	Seed   uint64
	Counts Counts

	// Optional integrations
	RedisURL        string
	NATSURL         string
	KafkaBrokers    []string
	KafkaTopic      string
	MetricsTextfile string
	ReportPath      string

	// Serve mode
	Port         string
	JWTSecret    string
	RateLimitRPS float64

	// Unparsed values so Validate can report them.
	portRaw string
	seedRaw string
}

// Load reads configuration from the environment. Parsing problems are kept
// on the struct and surfaced by Validate so the caller aborts before
// touching the database.
func Load() *Config {
	defaults := DefaultCounts()
	portRaw := getEnv("DB_PORT", "5432")
	dbPort, _ := strconv.Atoi(portRaw)
	seedRaw := getEnv("DATAGEN_SEED", "0")
	seed, _ := strconv.ParseUint(seedRaw, 10, 64)
	rps, _ := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "1"), 64)

	return &Config{
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           dbPort,
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBPasswordSecret: os.Getenv("DB_PASSWORD_SECRET"),
		DBName:           getEnv("DB_NAME", "ecommerce_db"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),

		Environment: getEnv("ENVIRONMENT", "development"),

		Seed: seed,
		Counts: Counts{
			Suppliers:  getEnvInt("SUPPLIER_COUNT", defaults.Suppliers),
			Warehouses: getEnvInt("WAREHOUSE_COUNT", defaults.Warehouses),
			Products:   getEnvInt("PRODUCT_COUNT", defaults.Products),
			Customers:  getEnvInt("CUSTOMER_COUNT", defaults.Customers),
			Orders:     getEnvInt("ORDER_COUNT", defaults.Orders),
			Reviews:    getEnvInt("REVIEW_COUNT", defaults.Reviews),
			Tickets:    getEnvInt("TICKET_COUNT", defaults.Tickets),
		},

		RedisURL:        os.Getenv("REDIS_URL"),
		NATSURL:         os.Getenv("NATS_URL"),
		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "datagen.runs"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		ReportPath:      os.Getenv("REPORT_PATH"),

		Port:         getEnv("PORT", "8080"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		RateLimitRPS: rps,

		portRaw: portRaw,
		seedRaw: seedRaw,
	}
}

// Validate rejects configuration that would make the run fail part-way.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.DBHost) == "" {
		problems = append(problems, "DB_HOST is empty")
	}
	if c.DBPort < 1 || c.DBPort > 65535 {
		raw := c.portRaw
		if raw == "" {
			raw = strconv.Itoa(c.DBPort)
		}
		problems = append(problems, fmt.Sprintf("DB_PORT %q is not a valid port", raw))
	}
	if strings.TrimSpace(c.DBName) == "" {
		problems = append(problems, "DB_NAME is empty")
	}
	if strings.TrimSpace(c.DBUser) == "" {
		problems = append(problems, "DB_USER is empty")
	}
	if c.seedRaw != "" {
		if _, err := strconv.ParseUint(c.seedRaw, 10, 64); err != nil {
			problems = append(problems, fmt.Sprintf("DATAGEN_SEED %q is not an unsigned integer", c.seedRaw))
		}
	}
	problems = append(problems, c.Counts.problems()...)

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Validate checks the counts on their own, for callers that override them
// after Load (HTTP run requests).
func (c Counts) Validate() error {
	if problems := c.problems(); len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c Counts) problems() []string {
	var problems []string
	named := []struct {
		name  string
		value int
	}{
		{"SUPPLIER_COUNT", c.Suppliers},
		{"WAREHOUSE_COUNT", c.Warehouses},
		{"PRODUCT_COUNT", c.Products},
		{"CUSTOMER_COUNT", c.Customers},
		{"ORDER_COUNT", c.Orders},
		{"REVIEW_COUNT", c.Reviews},
		{"TICKET_COUNT", c.Tickets},
	}
	for _, n := range named {
		if n.value < 0 {
			problems = append(problems, fmt.Sprintf("%s must not be negative", n.name))
		}
	}

	if c.Products > 0 && c.Suppliers == 0 {
		problems = append(problems, "PRODUCT_COUNT requires at least one supplier")
	}
	if c.Orders > 0 && (c.Customers == 0 || c.Products == 0) {
		problems = append(problems, "ORDER_COUNT requires customers and products")
	}
	if c.Reviews > 0 && (c.Customers == 0 || c.Products == 0) {
		problems = append(problems, "REVIEW_COUNT requires customers and products")
	}
	if c.Tickets > 0 && c.Customers == 0 {
		problems = append(problems, "TICKET_COUNT requires customers")
	}
	return problems
}

// SetSeed overrides DATAGEN_SEED.
func (c *Config) SetSeed(seed uint64) {
	c.Seed = seed
	c.seedRaw = strconv.FormatUint(seed, 10)
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// InitDB resolves the password if it lives in Secret Manager, opens the
// connection and pings it so connection failures surface before generation.
func InitDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	if cfg.DBPassword == "" && cfg.DBPasswordSecret != "" {
		password, err := ResolveSecret(ctx, cfg.DBPasswordSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database password: %w", err)
		}
		cfg.DBPassword = password
	}

	logLevel := logger.Warn
	if cfg.IsProduction() {
		logLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns -1 for unparsable values so Validate rejects them.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return -1
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
