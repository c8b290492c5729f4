package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerlink-dev/ledgerlink/internal/model"
)

// GenericParser parses the common "date,description,amount[,currency]"
// export shape most banks can produce.
type GenericParser struct{}

const (
	genericDateFormat = "2006-01-02"
	genericColDate    = 0
	genericColDesc    = 1
	genericColAmount  = 2
	genericColCurr    = 3
)

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads a generic CSV and returns BankTransactions.
func (p *GenericParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // currency column is optional

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading generic CSV: %w", err)
	}

	if len(rows) <= 1 {
		return nil, nil
	}

	var txns []model.BankTransaction
	for i, row := range rows[1:] {
		txn, err := parseGenericRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseGenericRow(row []string) (model.BankTransaction, error) {
	if len(row) < 3 {
		return model.BankTransaction{}, fmt.Errorf("expected at least 3 fields, got %d", len(row))
	}

	date, err := time.Parse(genericDateFormat, row[genericColDate])
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing date %q: %w", row[genericColDate], err)
	}

	amount, err := decimal.NewFromString(row[genericColAmount])
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing amount %q: %w", row[genericColAmount], err)
	}

	txn := model.BankTransaction{
		Date:        date,
		Description: row[genericColDesc],
		Amount:      amount,
	}
	if len(row) > genericColCurr {
		txn.Currency = row[genericColCurr]
	}
	return txn, nil
}
