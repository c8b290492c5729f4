package transfer

import "sort"

// recordKey identifies a record across accounts; ids are only unique within
// one ledger.
type recordKey struct {
	account string
	id      string
}

// resolve picks a one-to-one assignment from the scored candidates with a
// greedy highest-score-first pass, not maximum-weight bipartite matching.
// The order is total (score, then absolute amount, then debit id, then
// credit id) so the result never depends on input iteration order.
func resolve(cands []candidate) []candidate {
	ordered := append([]candidate(nil), cands...)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := &ordered[i], &ordered[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if c := a.debit.AbsAmount().Cmp(b.debit.AbsAmount()); c != 0 {
			return c > 0
		}
		if a.debit.ID != b.debit.ID {
			return a.debit.ID < b.debit.ID
		}
		return a.credit.ID < b.credit.ID
	})

	claimed := make(map[recordKey]bool)
	var accepted []candidate
	for _, c := range ordered {
		dk := recordKey{c.debit.AccountID, c.debit.ID}
		ck := recordKey{c.credit.AccountID, c.credit.ID}
		if claimed[dk] || claimed[ck] {
			continue
		}
		claimed[dk] = true
		claimed[ck] = true
		accepted = append(accepted, c)
	}
	return accepted
}
