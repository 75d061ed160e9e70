package main

import (
	"ecommerce-datagen/internal/repository"
	"ecommerce-datagen/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the stored dataset against the integrity rules",
	Long: `Reads every generated table and checks totals, line totals, date ordering,
price and rating ranges, ticket resolution and foreign keys. Exits non-zero
when any rule is violated.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
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
	verification, err := services.NewVerifier(repository.NewDatagenRepository(db), log).Verify(ctx)
	if err != nil {
		logError(log, err, "Verification failed")
		return err
	}
	logVerification(log, verification)

	if !verification.OK() {
		return errViolations
	}
	return nil
}

func logVerification(log *logrus.Entry, verification *services.VerificationReport) {
	for _, rule := range verification.Rules {
		entry := log.WithFields(logrus.Fields{
			"rule":       rule.Rule,
			"checked":    rule.Checked,
			"violations": rule.Violations,
		})
		if rule.Violations == 0 {
			entry.Debug("Rule passed")
			continue
		}
		for _, sample := range rule.Samples {
			entry.WithFields(logrus.Fields{
				"table": sample.Table,
				"row":   sample.RowID,
			}).Warn(sample.Detail)
		}
		entry.Error("Rule violated")
	}

	if verification.OK() {
		log.Info("✓ Dataset passed every integrity rule")
		return
	}
	log.WithField("violations", verification.TotalViolations).Error("✗ Dataset has integrity violations")
}
