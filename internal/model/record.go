package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one normalized ledger line belonging to a single
// account. Records are created by import, annotated by linking, never
// deleted.
type TransactionRecord struct {
	ID           string    // stable, unique within the account ledger
	Date         time.Time // calendar date, no time component
	Description  string
	Amount       decimal.Decimal // negative = debit/outflow, positive = credit/inflow
	Currency     string
	AccountID    string
	Counterparty string
	Category     string
	Subcategory  string
	Notes        string
	SourceFile   string
	Metadata     Metadata
}

// IsDebit reports whether the record is an outflow.
func (r TransactionRecord) IsDebit() bool { return r.Amount.IsNegative() }

// IsCredit reports whether the record is an inflow.
func (r TransactionRecord) IsCredit() bool { return r.Amount.IsPositive() }

// AbsAmount returns the unsigned amount.
func (r TransactionRecord) AbsAmount() decimal.Decimal { return r.Amount.Abs() }
