package main

import (
	"context"
	"errors"

	"ecommerce-datagen/internal/cache"
	"ecommerce-datagen/internal/config"
	"ecommerce-datagen/internal/events"
	"ecommerce-datagen/internal/services"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "datagen [command]",
	Short: "Populate the e-commerce schema with synthetic data",
	Long: `Generates categories, suppliers, warehouses, products, inventory, customers,
orders, reviews and support tickets into an existing PostgreSQL schema in one
transaction. Without a command it behaves like "datagen generate".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger = newLogger(cfg)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(generateCmd, args)
	},
}

func newLogger(cfg *config.Config) *logrus.Logger {
	l := logrus.New()
	if cfg.IsProduction() {
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(logrus.InfoLevel)
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// connect opens the database and logs the outcome.
func connect(ctx context.Context) (*gorm.DB, error) {
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		logError(logrus.NewEntry(logger), err, "Failed to connect to database")
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"host":     cfg.DBHost,
		"database": cfg.DBName,
	}).Info("✓ Connected to database")
	return db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close database connection")
	}
}

// logError logs err, adding the SQLSTATE details when postgres rejected a
// statement.
func logError(log *logrus.Entry, err error, msg string) {
	log.WithFields(pgErrorFields(err)).WithError(err).Error(msg)
}

func pgErrorFields(err error) logrus.Fields {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return logrus.Fields{}
	}
	fields := logrus.Fields{"sqlstate": pgErr.Code}
	if pgErr.ConstraintName != "" {
		fields["constraint"] = pgErr.ConstraintName
	}
	if pgErr.TableName != "" {
		fields["table"] = pgErr.TableName
	}
	return fields
}

// newRunLock uses Redis when REDIS_URL is set and reachable, and an
// in-process lock otherwise.
func newRunLock(ctx context.Context) (*cache.RunLock, func()) {
	local := cache.NewRunLock(nil, "", 0)
	if cfg.RedisURL == "" {
		return local, func() {}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Invalid REDIS_URL, using in-process run lock")
		return local, func() {}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unavailable, using in-process run lock")
		_ = client.Close()
		return local, func() {}
	}

	logger.Info("✓ Redis run lock initialized")
	return cache.NewRunLock(client, "", 0), func() { _ = client.Close() }
}

// newPublisher builds a publisher over the configured brokers. It returns a
// nil EventPublisher when no broker is configured.
func newPublisher(ctx context.Context, log *logrus.Entry) (services.EventPublisher, func()) {
	var sinks []events.Sink
	if cfg.NATSURL != "" {
		sink, err := events.NewNATSSink(ctx, cfg.NATSURL, log)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize NATS events (events won't be published)")
		} else {
			sinks = append(sinks, sink)
			log.Info("✓ NATS events publisher initialized")
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		sinks = append(sinks, events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic))
		log.WithField("topic", cfg.KafkaTopic).Info("✓ Kafka events publisher initialized")
	}

	publisher := events.NewPublisher(log, sinks...)
	if !publisher.Enabled() {
		return nil, func() {}
	}
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("Failed to close events publisher")
		}
	}
}
