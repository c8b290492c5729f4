package model

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// TransferRole identifies which side of a transfer a record played.
type TransferRole string

const (
	RoleDebit  TransferRole = "debit"
	RoleCredit TransferRole = "credit"
)

// MatchMethod names the rule that confirmed a transfer pair.
type MatchMethod string

const (
	MethodDirectSameDay MatchMethod = "direct_same_day"
	MethodWindowInterac MatchMethod = "window_interac"
)

// TransferLink is written to metadata["transfer"] on both sides of a
// confirmed transfer. Amount is the absolute transfer amount in the debit
// side's currency.
type TransferLink struct {
	Role                TransferRole    `json:"role"`
	CounterpartyTxnID   string          `json:"counterparty_transaction_id"`
	CounterpartyAccount string          `json:"counterparty_account_id"`
	Amount              decimal.Decimal `json:"amount"`
	Method              MatchMethod     `json:"method"`
	Score               float64         `json:"score"`
	FeeTxnIDs           []string        `json:"fee_transaction_ids,omitempty"`
}

// Equal reports deep field-by-field equality. Fee ids compare as a set.
func (l *TransferLink) Equal(o *TransferLink) bool {
	if l == nil || o == nil {
		return l == o
	}
	if l.Role != o.Role ||
		l.CounterpartyTxnID != o.CounterpartyTxnID ||
		l.CounterpartyAccount != o.CounterpartyAccount ||
		!l.Amount.Equal(o.Amount) ||
		l.Method != o.Method ||
		l.Score != o.Score {
		return false
	}
	if len(l.FeeTxnIDs) != len(o.FeeTxnIDs) {
		return false
	}
	a := append([]string(nil), l.FeeTxnIDs...)
	b := append([]string(nil), o.FeeTxnIDs...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

const transferKey = "transfer"

// Metadata is the open per-record annotation bag stored as a JSON object in
// the ledger's metadata column. The transfer key is owned by the linking
// engine and parsed into a typed TransferLink; every other key round-trips
// through Extra untouched.
type Metadata struct {
	Transfer *TransferLink
	Extra    map[string]json.RawMessage
}

// IsEmpty reports whether the bag carries nothing worth serializing.
func (m Metadata) IsEmpty() bool { return m.Transfer == nil && len(m.Extra) == 0 }

// MarshalJSON renders the bag as a single JSON object. Keys serialize in
// sorted order, which keeps repeated renders of the same state byte-stable.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.Extra)+1)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Transfer != nil {
		raw, err := json.Marshal(m.Transfer)
		if err != nil {
			return nil, err
		}
		out[transferKey] = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the transfer key out of the object and keeps the rest
// as raw passthrough values.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Metadata{}
	if t, ok := raw[transferKey]; ok {
		var link TransferLink
		if err := json.Unmarshal(t, &link); err != nil {
			return err
		}
		m.Transfer = &link
		delete(raw, transferKey)
	}
	if len(raw) > 0 {
		m.Extra = raw
	}
	return nil
}
