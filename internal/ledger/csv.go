package ledger

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerlink-dev/ledgerlink/internal/model"
)

// Header is the CSV header for an account ledger file.
const Header = "transaction_id,date,description,amount,currency,account_id,counterparty,category,subcategory,notes,source_file,metadata"

const (
	numFields     = 12
	dateFormat    = "2006-01-02"
	colID         = 0
	colDate       = 1
	colDesc       = 2
	colAmount     = 3
	colCurrency   = 4
	colAccountID  = 5
	colCparty     = 6
	colCategory   = 7
	colSubcat     = 8
	colNotes      = 9
	colSourceFile = 10
	colMetadata   = 11
)

// ReadRecords reads all transaction records from a ledger CSV reader.
func ReadRecords(r io.Reader) ([]model.TransactionRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	// Skip header row.
	var records []model.TransactionRecord
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecords writes records to a ledger CSV writer (including header).
func WriteRecords(w io.Writer, records []model.TransactionRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range records {
		row, err := MarshalRecord(rec)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalRecord converts a TransactionRecord to a CSV row ([]string).
// An empty metadata bag renders as an empty column, not "{}".
func MarshalRecord(rec model.TransactionRecord) ([]string, error) {
	row := make([]string, numFields)
	row[colID] = rec.ID
	row[colDate] = rec.Date.Format(dateFormat)
	row[colDesc] = rec.Description
	row[colAmount] = formatAmount(rec.Amount)
	row[colCurrency] = rec.Currency
	row[colAccountID] = rec.AccountID
	row[colCparty] = rec.Counterparty
	row[colCategory] = rec.Category
	row[colSubcat] = rec.Subcategory
	row[colNotes] = rec.Notes
	row[colSourceFile] = rec.SourceFile

	if !rec.Metadata.IsEmpty() {
		data, err := json.Marshal(rec.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshaling metadata for %s: %w", rec.ID, err)
		}
		row[colMetadata] = string(data)
	}

	return row, nil
}

// formatAmount renders an amount with at least two decimal places while
// keeping any extra precision the source data carried, so rewriting a file
// never rounds an amount the run did not touch.
func formatAmount(d decimal.Decimal) string {
	places := int32(2)
	if e := -d.Exponent(); e > places {
		places = e
	}
	return d.StringFixed(places)
}

// UnmarshalRecord converts a CSV row to a TransactionRecord.
func UnmarshalRecord(row []string) (model.TransactionRecord, error) {
	if len(row) != numFields {
		return model.TransactionRecord{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	date, err := time.Parse(dateFormat, row[colDate])
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("parsing date %q: %w", row[colDate], err)
	}

	amount, err := decimal.NewFromString(row[colAmount])
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("parsing amount %q: %w", row[colAmount], err)
	}

	var meta model.Metadata
	if row[colMetadata] != "" {
		if err := json.Unmarshal([]byte(row[colMetadata]), &meta); err != nil {
			return model.TransactionRecord{}, fmt.Errorf("parsing metadata for %s: %w", row[colID], err)
		}
	}

	return model.TransactionRecord{
		ID:           row[colID],
		Date:         date,
		Description:  row[colDesc],
		Amount:       amount,
		Currency:     row[colCurrency],
		AccountID:    row[colAccountID],
		Counterparty: row[colCparty],
		Category:     row[colCategory],
		Subcategory:  row[colSubcat],
		Notes:        row[colNotes],
		SourceFile:   row[colSourceFile],
		Metadata:     meta,
	}, nil
}
