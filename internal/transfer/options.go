package transfer

import (
	"github.com/shopspring/decimal"
)

// AccountPair is an unordered pair of account ids.
type AccountPair struct {
	A, B string
}

// NewAccountPair normalizes ordering so lookups are order-independent.
func NewAccountPair(a, b string) AccountPair {
	if b < a {
		a, b = b, a
	}
	return AccountPair{A: a, B: b}
}

// Options control one matching run. Start from DefaultOptions; the zero
// value matches nothing.
type Options struct {
	// WindowDays bounds the date distance between a candidate debit and
	// credit.
	WindowDays int
	// AmountTolerance absorbs rounding differences between the two legs.
	AmountTolerance decimal.Decimal
	// FeeMaxAmount caps what counts as an absorbable fee charge.
	FeeMaxAmount decimal.Decimal
	// TransferKeywords mark e-transfer style descriptions.
	TransferKeywords []string
	// FeeKeywords mark fee charges posted near a transfer.
	FeeKeywords []string
	// SameSignPairs lists account pairs whose provider posts both legs with
	// the same sign (e.g. two sub-accounts of one institution).
	SameSignPairs map[AccountPair]bool
}

// DefaultOptions returns the stock matching configuration.
func DefaultOptions() Options {
	return Options{
		WindowDays:       3,
		AmountTolerance:  decimal.New(1, -6),
		FeeMaxAmount:     decimal.New(10, 0),
		TransferKeywords: []string{"E-TRANSFER", "ETRANSFER", "ETRNSFR", "INTERAC", "TRANSFER", "TFR", "SEND MONEY"},
		FeeKeywords:      []string{"FEE", "SERVICE CHARGE"},
		SameSignPairs:    map[AccountPair]bool{},
	}
}

// AllowsSameSign reports whether the pair may match with equal-signed legs.
func (o Options) AllowsSameSign(a, b string) bool {
	return o.SameSignPairs[NewAccountPair(a, b)]
}
