package transfer

import (
	"time"

	"github.com/ledgerlink-dev/ledgerlink/internal/ledger"
	"github.com/ledgerlink-dev/ledgerlink/internal/model"
)

// candidate is a potential transfer pair. It lives only inside one matching
// run; confirmed candidates surface as MatchResults.
type candidate struct {
	debit  *model.TransactionRecord
	credit *model.TransactionRecord
	method model.MatchMethod
	score  float64
	feeIDs []string
}

// generateCandidates pairs records from two distinct accounts whose dates
// fall within the window and whose signs allow a debit/credit pairing. No
// scoring happens here; window and sign eligibility only.
func generateCandidates(a, b *ledger.Ledger, opts Options) []candidate {
	sameSign := opts.AllowsSameSign(a.AccountID, b.AccountID)

	var out []candidate
	for i := range a.Records {
		ra := &a.Records[i]
		for j := range b.Records {
			rb := &b.Records[j]
			if daysApart(ra.Date, rb.Date) > opts.WindowDays {
				continue
			}
			debit, credit, ok := assignRoles(ra, rb, sameSign)
			if !ok {
				continue
			}
			out = append(out, candidate{debit: debit, credit: credit})
		}
	}
	return out
}

// assignRoles decides which record takes the debit side. Sign decides when
// the signs differ; for allow-listed same-sign pairs the record from the
// account id that sorts first takes the debit role, which keeps role
// assignment stable across runs.
func assignRoles(ra, rb *model.TransactionRecord, sameSign bool) (debit, credit *model.TransactionRecord, ok bool) {
	switch {
	case ra.IsDebit() && rb.IsCredit():
		return ra, rb, true
	case ra.IsCredit() && rb.IsDebit():
		return rb, ra, true
	case sameSign && !ra.Amount.IsZero() && ra.Amount.Sign() == rb.Amount.Sign():
		if ra.AccountID < rb.AccountID {
			return ra, rb, true
		}
		return rb, ra, true
	default:
		return nil, nil, false
	}
}

func daysApart(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
