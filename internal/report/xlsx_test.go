package report

import (
	"path/filepath"
	"testing"
	"time"

	"ecommerce-datagen/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleSummary() *services.RunSummary {
	started := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return &services.RunSummary{
		RunID:      uuid.MustParse("5f0c3a7e-2b1d-4a55-9a8e-6d1f0b2c3d4e"),
		Seed:       42,
		Status:     services.RunStatusCompleted,
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Rows:       map[string]int64{"categories": 10, "orders": 5000, "order_items": 12480},
		Stages: []services.StageResult{
			{Stage: "categories", Rows: 10, DurationSeconds: 0.02},
			{Stage: "orders", Rows: 17480, DurationSeconds: 61.5},
		},
	}
}

func TestWriteRunReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.xlsx")
	verification := &services.VerificationReport{
		Rules: []services.RuleResult{
			{Rule: services.RuleOrderTotal, Checked: 5000},
			{Rule: services.RuleProductPrice, Checked: 300, Violations: 1, Samples: []services.Violation{
				{Table: "products", RowID: 17, Detail: "price 10.00 is not above cost 10.00"},
			}},
		},
		TotalViolations: 1,
	}

	require.NoError(t, WriteRunReport(path, sampleSummary(), verification))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetTables, SheetStages, SheetVerification}, f.GetSheetList())

	runID, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "5f0c3a7e-2b1d-4a55-9a8e-6d1f0b2c3d4e", runID)

	rows, err := f.GetRows(SheetTables)
	require.NoError(t, err)
	require.Len(t, rows, 11)
	assert.Equal(t, []string{"Table", "Rows inserted"}, rows[0])
	assert.Equal(t, []string{"categories", "10"}, rows[1])
	assert.Equal(t, []string{"order_items", "12480"}, rows[8])

	verificationRows, err := f.GetRows(SheetVerification)
	require.NoError(t, err)
	require.Len(t, verificationRows, 4)
	assert.Equal(t, "products", verificationRows[3][3])
	assert.Equal(t, "17", verificationRows[3][4])
}

func TestBuildRunReportWithoutVerification(t *testing.T) {
	f, err := BuildRunReport(sampleSummary(), nil)
	require.NoError(t, err)
	defer f.Close()

	assert.NotContains(t, f.GetSheetList(), SheetVerification)
}

func TestBuildRunReportRequiresSummary(t *testing.T) {
	_, err := BuildRunReport(nil, nil)
	assert.Error(t, err)
}
