package transfer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlink-dev/ledgerlink/internal/ledger"
	"github.com/ledgerlink-dev/ledgerlink/internal/model"
)

func writeLedger(t *testing.T, dir, name string, records ...model.TransactionRecord) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, ledger.WriteFileAtomic(path, records))
	return path
}

func readLedger(t *testing.T, path string) map[string]model.TransactionRecord {
	t.Helper()
	lg, err := ledger.ReadFile(path)
	require.NoError(t, err)
	byID := make(map[string]model.TransactionRecord, len(lg.Records))
	for _, r := range lg.Records {
		byID[r.ID] = r
	}
	return byID
}

func fileBytes(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// Scenario A: one same-day e-transfer pair links both sides.
func TestLinkTransfersDirectSameDay(t *testing.T) {
	dir := t.TempDir()
	chkPath := writeLedger(t, dir, "chk.csv",
		rec("CHK", "CHK-1", date(2025, 3, 3), "E-TRANSFER OUT", "-150.00"),
	)
	savPath := writeLedger(t, dir, "sav.csv",
		rec("SAV", "SAV-1", date(2025, 3, 3), "E-TRANSFER IN", "150.00"),
	)

	linker := NewLinker(DefaultOptions())
	changed, err := linker.LinkTransfers(dir, true)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	chk := readLedger(t, chkPath)
	sav := readLedger(t, savPath)

	debitLink := chk["CHK-1"].Metadata.Transfer
	creditLink := sav["SAV-1"].Metadata.Transfer
	require.NotNil(t, debitLink)
	require.NotNil(t, creditLink)

	assert.Equal(t, model.RoleDebit, debitLink.Role)
	assert.Equal(t, model.RoleCredit, creditLink.Role)
	assert.Equal(t, model.MethodDirectSameDay, debitLink.Method)
	assert.GreaterOrEqual(t, debitLink.Score, 0.95)
	assert.True(t, debitLink.Amount.Equal(dec("150.00")))

	// Symmetry: each side points at the other.
	assert.Equal(t, "SAV-1", debitLink.CounterpartyTxnID)
	assert.Equal(t, "SAV", debitLink.CounterpartyAccount)
	assert.Equal(t, "CHK-1", creditLink.CounterpartyTxnID)
	assert.Equal(t, "CHK", creditLink.CounterpartyAccount)
	assert.Equal(t, debitLink.Score, creditLink.Score)
}

// Scenario B: a small same-day fee on the debit account is absorbed into
// the transfer's metadata without being matched itself.
func TestLinkTransfersFeeAbsorption(t *testing.T) {
	dir := t.TempDir()
	chkPath := writeLedger(t, dir, "chk.csv",
		rec("CHK", "CHK-1", date(2025, 3, 3), "INTERAC E-TRANSFER SENT", "-100.00"),
		rec("CHK", "CHK-fee", date(2025, 3, 3), "INTERAC FEE", "-1.50"),
	)
	writeLedger(t, dir, "sav.csv",
		rec("SAV", "SAV-1", date(2025, 3, 3), "INTERAC E-TRANSFER RECEIVED", "100.00"),
	)

	linker := NewLinker(DefaultOptions())
	matches, err := linker.ComputeMatches(dir)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, []string{"CHK-fee"}, matches[0].FeeTxnIDs)

	_, err = linker.LinkTransfers(dir, true)
	require.NoError(t, err)

	chk := readLedger(t, chkPath)
	require.NotNil(t, chk["CHK-1"].Metadata.Transfer)
	assert.Equal(t, []string{"CHK-fee"}, chk["CHK-1"].Metadata.Transfer.FeeTxnIDs)
	assert.Nil(t, chk["CHK-fee"].Metadata.Transfer, "fee record must not be matched as a transfer")
}

// Scenario C: an allow-listed pair links two same-sign records.
func TestLinkTransfersSameSignException(t *testing.T) {
	dir := t.TempDir()
	bizPath := writeLedger(t, dir, "bank2_biz.csv",
		rec("BANK2_BIZ", "B-1", date(2025, 4, 1), "INTERNAL SWEEP", "-200.00"),
	)
	locPath := writeLedger(t, dir, "bank2_loc.csv",
		rec("BANK2_LOC", "L-1", date(2025, 4, 1), "INTERNAL SWEEP", "-200.00"),
	)

	opts := DefaultOptions()
	opts.SameSignPairs[NewAccountPair("BANK2_BIZ", "BANK2_LOC")] = true

	linker := NewLinker(opts)
	changed, err := linker.LinkTransfers(dir, true)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	biz := readLedger(t, bizPath)
	loc := readLedger(t, locPath)
	require.NotNil(t, biz["B-1"].Metadata.Transfer)
	require.NotNil(t, loc["L-1"].Metadata.Transfer)
	assert.Equal(t, model.RoleDebit, biz["B-1"].Metadata.Transfer.Role)
	assert.Equal(t, model.RoleCredit, loc["L-1"].Metadata.Transfer.Role)
}

// Scenario D: a second write run over unchanged ledgers reports 0.
func TestLinkTransfersIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "chk.csv",
		rec("CHK", "CHK-1", date(2025, 3, 3), "E-TRANSFER OUT", "-150.00"),
		rec("CHK", "CHK-2", date(2025, 3, 4), "INTERAC E-TRANSFER SENT", "-75.00"),
		rec("CHK", "CHK-fee", date(2025, 3, 4), "INTERAC FEE", "-1.50"),
	)
	writeLedger(t, dir, "sav.csv",
		rec("SAV", "SAV-1", date(2025, 3, 3), "E-TRANSFER IN", "150.00"),
		rec("SAV", "SAV-2", date(2025, 3, 5), "INTERAC E-TRANSFER RECEIVED", "75.00"),
	)

	linker := NewLinker(DefaultOptions())

	first, err := linker.LinkTransfers(dir, true)
	require.NoError(t, err)
	assert.Equal(t, 4, first)

	second, err := linker.LinkTransfers(dir, true)
	require.NoError(t, err)
	assert.Equal(t, 0, second)
}

func TestLinkTransfersDryRun(t *testing.T) {
	dir := t.TempDir()
	chkPath := writeLedger(t, dir, "chk.csv",
		rec("CHK", "CHK-1", date(2025, 3, 3), "E-TRANSFER OUT", "-150.00"),
	)
	savPath := writeLedger(t, dir, "sav.csv",
		rec("SAV", "SAV-1", date(2025, 3, 3), "E-TRANSFER IN", "150.00"),
	)

	beforeChk := fileBytes(t, chkPath)
	beforeSav := fileBytes(t, savPath)

	linker := NewLinker(DefaultOptions())
	changed, err := linker.LinkTransfers(dir, false)
	require.NoError(t, err)
	assert.Equal(t, 2, changed, "dry run still reports the would-be count")

	assert.Equal(t, beforeChk, fileBytes(t, chkPath), "dry run must not touch files")
	assert.Equal(t, beforeSav, fileBytes(t, savPath))
}

func TestLinkTransfersNonDestructive(t *testing.T) {
	dir := t.TempDir()

	annotated := rec("CHK", "CHK-1", date(2025, 3, 3), "E-TRANSFER OUT", "-150.00")
	annotated.Category = "Transfers"
	annotated.Notes = "rent split, march"
	annotated.Counterparty = "Jordan"

	untouched := rec("CHK", "CHK-2", date(2025, 3, 10), "GROCERY MART", "-63.17")
	untouched.Category = "Groceries"

	chkPath := writeLedger(t, dir, "chk.csv", annotated, untouched)
	writeLedger(t, dir, "sav.csv",
		rec("SAV", "SAV-1", date(2025, 3, 3), "E-TRANSFER IN", "150.00"),
	)

	linker := NewLinker(DefaultOptions())
	_, err := linker.LinkTransfers(dir, true)
	require.NoError(t, err)

	chk := readLedger(t, chkPath)
	assert.Equal(t, "Transfers", chk["CHK-1"].Category)
	assert.Equal(t, "rent split, march", chk["CHK-1"].Notes)
	assert.Equal(t, "Jordan", chk["CHK-1"].Counterparty)
	assert.Equal(t, "Groceries", chk["CHK-2"].Category)
	assert.True(t, chk["CHK-2"].Metadata.IsEmpty())
}

func TestLinkTransfersOnlyRewritesChangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "chk.csv",
		rec("CHK", "CHK-1", date(2025, 3, 3), "E-TRANSFER OUT", "-150.00"),
	)
	writeLedger(t, dir, "sav.csv",
		rec("SAV", "SAV-1", date(2025, 3, 3), "E-TRANSFER IN", "150.00"),
	)
	visaPath := writeLedger(t, dir, "visa.csv",
		rec("VISA", "V-1", date(2025, 3, 9), "COFFEE SHOP", "-4.00"),
	)

	before := fileBytes(t, visaPath)

	linker := NewLinker(DefaultOptions())
	_, err := linker.LinkTransfers(dir, true)
	require.NoError(t, err)

	assert.Equal(t, before, fileBytes(t, visaPath), "ledger without changes must stay byte-identical")
}

func TestLinkTransfersRejectsDuplicateAccountID(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "chk.csv",
		rec("CHK", "CHK-1", date(2025, 3, 3), "E-TRANSFER OUT", "-150.00"),
	)
	writeLedger(t, dir, "chk-2024.csv",
		rec("CHK", "CHK-9", date(2025, 3, 3), "INTERAC FEE", "-1.50"),
	)

	linker := NewLinker(DefaultOptions())
	_, err := linker.LinkTransfers(dir, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHK")
}

func TestLinkTransfersPreservesAmountPrecision(t *testing.T) {
	dir := t.TempDir()
	chkPath := writeLedger(t, dir, "chk.csv",
		rec("CHK", "CHK-1", date(2025, 3, 3), "E-TRANSFER OUT", "-150.00"),
		rec("CHK", "CHK-frac", date(2025, 3, 4), "FX ADJUSTMENT", "-0.125"),
	)
	writeLedger(t, dir, "sav.csv",
		rec("SAV", "SAV-1", date(2025, 3, 3), "E-TRANSFER IN", "150.00"),
	)

	linker := NewLinker(DefaultOptions())
	changed, err := linker.LinkTransfers(dir, true)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	// The untouched fractional record survives the rewrite unrounded.
	chk := readLedger(t, chkPath)
	assert.True(t, chk["CHK-frac"].Amount.Equal(dec("-0.125")))
	assert.Contains(t, fileBytes(t, chkPath), "-0.125")
}

func TestLinkTransfersKeepsStaleLink(t *testing.T) {
	dir := t.TempDir()

	// CHK-1 carries a link from an earlier run, but its counterparty ledger
	// is gone. The link stays; runs only add or update, never clear.
	orphan := rec("CHK", "CHK-1", date(2025, 3, 3), "E-TRANSFER OUT", "-150.00")
	orphan.Metadata.Transfer = &model.TransferLink{
		Role:                model.RoleDebit,
		CounterpartyTxnID:   "SAV-gone",
		CounterpartyAccount: "SAV",
		Amount:              dec("150.00"),
		Method:              model.MethodDirectSameDay,
		Score:               0.97,
	}
	chkPath := writeLedger(t, dir, "chk.csv", orphan)

	linker := NewLinker(DefaultOptions())
	changed, err := linker.LinkTransfers(dir, true)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)

	chk := readLedger(t, chkPath)
	require.NotNil(t, chk["CHK-1"].Metadata.Transfer)
	assert.Equal(t, "SAV-gone", chk["CHK-1"].Metadata.Transfer.CounterpartyTxnID)
}

func TestLinkTransfersRelinksWhenBetterCandidateAppears(t *testing.T) {
	dir := t.TempDir()
	chkPath := writeLedger(t, dir, "chk.csv",
		rec("CHK", "CHK-1", date(2025, 3, 3), "E-TRANSFER OUT", "-150.00"),
	)
	savPath := filepath.Join(dir, "sav.csv")
	require.NoError(t, ledger.WriteFileAtomic(savPath,
		[]model.TransactionRecord{rec("SAV", "SAV-late", date(2025, 3, 5), "E-TRANSFER IN", "150.00")},
	))

	linker := NewLinker(DefaultOptions())
	_, err := linker.LinkTransfers(dir, true)
	require.NoError(t, err)

	chk := readLedger(t, chkPath)
	require.NotNil(t, chk["CHK-1"].Metadata.Transfer)
	assert.Equal(t, model.MethodWindowInterac, chk["CHK-1"].Metadata.Transfer.Method)

	// A later import lands the true same-day counterparty.
	require.NoError(t, ledger.Append(savPath,
		[]model.TransactionRecord{rec("SAV", "SAV-sameday", date(2025, 3, 3), "E-TRANSFER IN", "150.00")},
	))

	changed, err := linker.LinkTransfers(dir, true)
	require.NoError(t, err)
	assert.Greater(t, changed, 0)

	chk = readLedger(t, chkPath)
	assert.Equal(t, "SAV-sameday", chk["CHK-1"].Metadata.Transfer.CounterpartyTxnID)
	assert.Equal(t, model.MethodDirectSameDay, chk["CHK-1"].Metadata.Transfer.Method)
}
