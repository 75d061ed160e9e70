package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"ecommerce-datagen/internal/config"
	"ecommerce-datagen/internal/metrics"
	"ecommerce-datagen/internal/report"
	"ecommerce-datagen/internal/repository"
	"ecommerce-datagen/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errViolations = errors.New("integrity violations found")

type generateFlags struct {
	seed            uint64
	suppliers       int
	warehouses      int
	products        int
	customers       int
	orders          int
	reviews         int
	tickets         int
	report          string
	metricsTextfile string
	verify          bool
}

var genFlags generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one synthetic dataset",
	Long: `Inserts every stage of the dataset inside a single transaction. A failure in
any stage rolls the whole run back. Flags override the matching environment
variables.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().Uint64Var(&genFlags.seed, "seed", 0, "Random seed, 0 picks one from the clock (or DATAGEN_SEED env)")
	generateCmd.Flags().IntVar(&genFlags.suppliers, "suppliers", 0, "Suppliers to create (or SUPPLIER_COUNT env)")
	generateCmd.Flags().IntVar(&genFlags.warehouses, "warehouses", 0, "Warehouses to create (or WAREHOUSE_COUNT env)")
	generateCmd.Flags().IntVar(&genFlags.products, "products", 0, "Products to create (or PRODUCT_COUNT env)")
	generateCmd.Flags().IntVar(&genFlags.customers, "customers", 0, "Customers to create (or CUSTOMER_COUNT env)")
	generateCmd.Flags().IntVar(&genFlags.orders, "orders", 0, "Orders to create (or ORDER_COUNT env)")
	generateCmd.Flags().IntVar(&genFlags.reviews, "reviews", 0, "Reviews to create (or REVIEW_COUNT env)")
	generateCmd.Flags().IntVar(&genFlags.tickets, "tickets", 0, "Support tickets to create (or TICKET_COUNT env)")
	generateCmd.Flags().StringVar(&genFlags.report, "report", "", "Write an XLSX run report to this path (or REPORT_PATH env)")
	generateCmd.Flags().StringVar(&genFlags.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file (or METRICS_TEXTFILE env)")
	generateCmd.Flags().BoolVar(&genFlags.verify, "verify", false, "Run the integrity verifier after a successful run")
}

// apply copies every flag the user set onto cfg.
func (f *generateFlags) apply(changed func(name string) bool, cfg *config.Config) {
	if changed("seed") {
		cfg.SetSeed(f.seed)
	}
	counts := []struct {
		flag string
		src  int
		dst  *int
	}{
		{"suppliers", f.suppliers, &cfg.Counts.Suppliers},
		{"warehouses", f.warehouses, &cfg.Counts.Warehouses},
		{"products", f.products, &cfg.Counts.Products},
		{"customers", f.customers, &cfg.Counts.Customers},
		{"orders", f.orders, &cfg.Counts.Orders},
		{"reviews", f.reviews, &cfg.Counts.Reviews},
		{"tickets", f.tickets, &cfg.Counts.Tickets},
	}
	for _, c := range counts {
		if changed(c.flag) {
			*c.dst = c.src
		}
	}
	if changed("report") {
		cfg.ReportPath = f.report
	}
	if changed("metrics-textfile") {
		cfg.MetricsTextfile = f.metricsTextfile
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	genFlags.apply(cmd.Flags().Changed, cfg)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Error("Invalid configuration")
		return err
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeDB(db)

	log := logrus.NewEntry(logger)
	repo := repository.NewDatagenRepository(db)
	lock, closeLock := newRunLock(ctx)
	defer closeLock()
	publisher, closePublisher := newPublisher(ctx, log)
	defer closePublisher()
	registry := metrics.NewRegistry()

	runs := services.NewRunService(repo, lock, publisher, registry, log)
	summary, runErr := runs.Run(ctx, services.RunRequest{Counts: cfg.Counts, Seed: cfg.Seed})
	if runErr != nil {
		logError(log, runErr, "Data generation failed")
	}

	var verification *services.VerificationReport
	if runErr == nil && genFlags.verify {
		verification, err = services.NewVerifier(repo, log).Verify(ctx)
		if err != nil {
			logError(log, err, "Verification failed")
			return err
		}
		logVerification(log, verification)
	}

	if cfg.MetricsTextfile != "" {
		if err := registry.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.WithError(err).Warn("Failed to write metrics textfile")
		} else {
			log.WithField("path", cfg.MetricsTextfile).Info("✓ Metrics textfile written")
		}
	}
	if cfg.ReportPath != "" && summary != nil {
		if err := report.WriteRunReport(cfg.ReportPath, summary, verification); err != nil {
			log.WithError(err).Warn("Failed to write run report")
		} else {
			log.WithField("path", cfg.ReportPath).Info("✓ Run report written")
		}
	}

	if runErr != nil {
		return runErr
	}
	if verification != nil && !verification.OK() {
		return errViolations
	}
	return nil
}
