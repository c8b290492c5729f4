package transfer

import (
	"github.com/ledgerlink-dev/ledgerlink/internal/ledger"
	"github.com/ledgerlink-dev/ledgerlink/internal/model"
)

// MatchResult is one confirmed transfer produced by a matching run.
type MatchResult struct {
	Debit     model.TransactionRecord
	Credit    model.TransactionRecord
	Method    model.MatchMethod
	Score     float64
	FeeTxnIDs []string
}

// Linker discovers transfers across the ledgers of one workspace and
// persists the link metadata. Matching always re-runs from scratch; the
// diff against existing metadata decides what, if anything, gets written.
type Linker struct {
	opts Options
}

// NewLinker creates a Linker with the given matching options.
func NewLinker(opts Options) *Linker {
	return &Linker{opts: opts}
}

// ComputeMatches runs the matching engine over every ledger directly under
// dir and returns the confirmed transfers without touching any file.
func (l *Linker) ComputeMatches(dir string) ([]MatchResult, error) {
	ledgers, err := ledger.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return l.matchAll(ledgers), nil
}

// LinkTransfers recomputes matches from the current on-disk state of every
// ledger under dir and persists transfer metadata on both sides of each
// confirmed pair. It returns the number of records whose metadata changed.
// With write=false the same count is reported but no file is touched. Only
// ledger files whose content actually changed are rewritten, so a second
// write run over unchanged ledgers returns 0.
//
// The ledger file locks are held from load to write, so an Append landing
// mid-run waits instead of being overwritten by a stale in-memory copy.
func (l *Linker) LinkTransfers(dir string, write bool) (int, error) {
	paths, err := ledger.ListFiles(dir)
	if err != nil {
		return 0, err
	}
	unlock := ledger.LockPaths(paths)
	defer unlock()

	ledgers, err := ledger.ReadFiles(paths)
	if err != nil {
		return 0, err
	}

	matches := l.matchAll(ledgers)

	index := make(map[recordKey]*model.TransactionRecord)
	owner := make(map[recordKey]*ledger.Ledger)
	for _, lg := range ledgers {
		for i := range lg.Records {
			k := recordKey{lg.AccountID, lg.Records[i].ID}
			index[k] = &lg.Records[i]
			owner[k] = lg
		}
	}

	changed := 0
	dirty := make(map[*ledger.Ledger]bool)
	for _, m := range matches {
		debitLink, creditLink := linksFor(m)
		sides := []struct {
			key  recordKey
			link *model.TransferLink
		}{
			{recordKey{m.Debit.AccountID, m.Debit.ID}, debitLink},
			{recordKey{m.Credit.AccountID, m.Credit.ID}, creditLink},
		}
		for _, side := range sides {
			rec := index[side.key]
			if rec.Metadata.Transfer.Equal(side.link) {
				continue
			}
			rec.Metadata.Transfer = side.link
			changed++
			dirty[owner[side.key]] = true
		}
	}

	// A record whose counterparty vanished keeps its last-known link; runs
	// only ever add or update links, never clear them.

	if write {
		for _, lg := range ledgers {
			if !dirty[lg] {
				continue
			}
			if err := ledger.WriteFileAtomic(lg.Path, lg.Records); err != nil {
				return 0, err
			}
		}
	}
	return changed, nil
}

// matchAll generates, scores, and resolves candidates across every distinct
// account pair.
func (l *Linker) matchAll(ledgers []*ledger.Ledger) []MatchResult {
	byAccount := make(map[string][]model.TransactionRecord, len(ledgers))
	for _, lg := range ledgers {
		byAccount[lg.AccountID] = lg.Records
	}

	var cands []candidate
	for i := range ledgers {
		for j := i + 1; j < len(ledgers); j++ {
			if ledgers[i].AccountID == ledgers[j].AccountID {
				continue
			}
			for _, c := range generateCandidates(ledgers[i], ledgers[j], l.opts) {
				if !scoreCandidate(&c, l.opts) {
					continue
				}
				attributeFees(&c, byAccount[c.debit.AccountID], l.opts)
				cands = append(cands, c)
			}
		}
	}

	accepted := resolve(cands)
	results := make([]MatchResult, 0, len(accepted))
	for _, c := range accepted {
		results = append(results, MatchResult{
			Debit:     *c.debit,
			Credit:    *c.credit,
			Method:    c.method,
			Score:     c.score,
			FeeTxnIDs: c.feeIDs,
		})
	}
	return results
}

// linksFor computes the metadata each side of a confirmed transfer carries.
// The amount is the absolute transfer amount in the debit side's currency.
// Fee ids belong to the debit account's records, so only the debit side
// lists them.
func linksFor(m MatchResult) (debit, credit *model.TransferLink) {
	amount := m.Debit.AbsAmount()
	debit = &model.TransferLink{
		Role:                model.RoleDebit,
		CounterpartyTxnID:   m.Credit.ID,
		CounterpartyAccount: m.Credit.AccountID,
		Amount:              amount,
		Method:              m.Method,
		Score:               m.Score,
		FeeTxnIDs:           append([]string(nil), m.FeeTxnIDs...),
	}
	credit = &model.TransferLink{
		Role:                model.RoleCredit,
		CounterpartyTxnID:   m.Debit.ID,
		CounterpartyAccount: m.Debit.AccountID,
		Amount:              amount,
		Method:              m.Method,
		Score:               m.Score,
	}
	return debit, credit
}
