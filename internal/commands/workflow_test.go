package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlink-dev/ledgerlink/internal/config"
	"github.com/ledgerlink-dev/ledgerlink/internal/ledger"
	"github.com/ledgerlink-dev/ledgerlink/internal/model"
	"github.com/ledgerlink-dev/ledgerlink/internal/runlog"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func rec(account, id string, day time.Time, desc, amount string) model.TransactionRecord {
	return model.TransactionRecord{
		ID:          id,
		Date:        day,
		Description: desc,
		Amount:      dec(amount),
		Currency:    "CAD",
		AccountID:   account,
	}
}

func TestInitCreatesWorkspace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, true))

	for _, d := range []string{"ledgers", "import", filepath.Join("import", "processed"), "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir())
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.False(t, cfg.Git.AutoCommit, "--no-git disables auto commit")
	assert.Equal(t, 3, cfg.Matching.WindowDays)
}

func TestImportThenLink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, true))

	exportPath := filepath.Join(dir, "import", "chk-march.csv")
	csvData := "date,description,amount,currency\n" +
		"2025-03-03,E-TRANSFER OUT,-150.00,CAD\n" +
		"2025-03-04,COFFEE SHOP,-4.25,CAD\n"
	require.NoError(t, os.WriteFile(exportPath, []byte(csvData), 0o644))

	require.NoError(t, runImport(dir, exportPath, "CHK", "generic"))

	// Export moved to processed.
	_, err := os.Stat(filepath.Join(dir, "import", "processed", "chk-march.csv"))
	require.NoError(t, err)

	// Seed the counterparty ledger directly.
	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.WriteFileAtomic(
		filepath.Join(dir, "ledgers", "SAV.csv"),
		[]model.TransactionRecord{rec("SAV", "SAV-1", day, "E-TRANSFER IN", "150.00")},
	))

	// Dry run reports but does not persist.
	require.NoError(t, runLink(dir, true))
	lg, err := ledger.ReadFile(filepath.Join(dir, "ledgers", "SAV.csv"))
	require.NoError(t, err)
	assert.Nil(t, lg.Records[0].Metadata.Transfer)

	// Real run persists both sides.
	require.NoError(t, runLink(dir, false))
	lg, err = ledger.ReadFile(filepath.Join(dir, "ledgers", "SAV.csv"))
	require.NoError(t, err)
	require.NotNil(t, lg.Records[0].Metadata.Transfer)
	assert.Equal(t, model.RoleCredit, lg.Records[0].Metadata.Transfer.Role)

	// Every step landed in the run log.
	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "import", entries[0].Action)
	assert.Equal(t, "link", entries[1].Action)
	assert.True(t, entries[1].DryRun)
	assert.Equal(t, 2, entries[1].Changed)
	assert.False(t, entries[2].DryRun)
	assert.Equal(t, 2, entries[2].Changed)
}

func TestImportListPending(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, true))

	// Nothing staged yet.
	require.NoError(t, runImportList(dir))

	exportPath := filepath.Join(dir, "import", "chk-march.csv")
	require.NoError(t, os.WriteFile(exportPath, []byte("date,description,amount\n"), 0o644))
	require.NoError(t, runImportList(dir))
}

func TestAccountDetail(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, true))

	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.WriteFileAtomic(
		filepath.Join(dir, "ledgers", "CHK.csv"),
		[]model.TransactionRecord{rec("CHK", "CHK-1", day, "COFFEE SHOP", "-4.25")},
	))

	require.NoError(t, runAccountDetail(dir, "CHK"))

	err := runAccountDetail(dir, "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOPE")
}

func TestRunLinkWithoutConfig(t *testing.T) {
	err := runLink(t.TempDir(), false)
	assert.Error(t, err)
}

func TestMatchingOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Matching.WindowDays = 7
	cfg.Matching.SameSignPairs = [][]string{{"BANK2_LOC", "BANK2_BIZ"}}

	opts := matchingOptions(cfg)
	assert.Equal(t, 7, opts.WindowDays)
	assert.True(t, opts.AllowsSameSign("BANK2_BIZ", "BANK2_LOC"))
	assert.False(t, opts.AllowsSameSign("BANK2_BIZ", "CHK"))
}
