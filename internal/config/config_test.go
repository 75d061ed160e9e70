package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_PASSWORD_SECRET",
		"DATAGEN_SEED", "SUPPLIER_COUNT", "WAREHOUSE_COUNT", "PRODUCT_COUNT",
		"CUSTOMER_COUNT", "ORDER_COUNT", "REVIEW_COUNT", "TICKET_COUNT", "KAFKA_BROKERS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "ecommerce_db", cfg.DBName)
	assert.Equal(t, "postgres", cfg.DBUser)
	assert.Empty(t, cfg.DBPassword)
	assert.Equal(t, DefaultCounts(), cfg.Counts)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("DATAGEN_SEED", "42")
	t.Setenv("ORDER_COUNT", "10")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg := Load()

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, "s3cret", cfg.DBPassword)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 10, cfg.Counts.Orders)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Contains(t, cfg.DSN(), "host=db.internal port=6543")
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		message string
	}{
		{"non numeric port", map[string]string{"DB_PORT": "abc"}, `DB_PORT "abc"`},
		{"port out of range", map[string]string{"DB_PORT": "70000"}, `DB_PORT "70000"`},
		{"negative count", map[string]string{"ORDER_COUNT": "-5"}, "ORDER_COUNT must not be negative"},
		{"unparsable count", map[string]string{"REVIEW_COUNT": "many"}, "REVIEW_COUNT must not be negative"},
		{"bad seed", map[string]string{"DATAGEN_SEED": "x1"}, "DATAGEN_SEED"},
		{"orders without customers", map[string]string{"CUSTOMER_COUNT": "0"}, "ORDER_COUNT requires customers"},
		{"products without suppliers", map[string]string{"SUPPLIER_COUNT": "0"}, "PRODUCT_COUNT requires at least one supplier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := Load().Validate()

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidateRejectsEmptyStrings(t *testing.T) {
	cfg := &Config{DBPort: 5432, Counts: DefaultCounts()}

	err := cfg.Validate()

	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "DB_HOST is empty")
	assert.Contains(t, err.Error(), "DB_NAME is empty")
	assert.Contains(t, err.Error(), "DB_USER is empty")
}

func TestCountsValidate(t *testing.T) {
	assert.NoError(t, Counts{}.Validate())
	assert.NoError(t, DefaultCounts().Validate())
	assert.ErrorIs(t, Counts{Tickets: 1}.Validate(), ErrInvalidConfig)
}

func TestSecretVersionName(t *testing.T) {
	assert.Equal(t, "projects/p/secrets/db/versions/latest", SecretVersionName("projects/p/secrets/db"))
	assert.Equal(t, "projects/p/secrets/db/versions/latest", SecretVersionName("projects/p/secrets/db/"))
	assert.Equal(t, "projects/p/secrets/db/versions/3", SecretVersionName("projects/p/secrets/db/versions/3"))
}
