package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// New mints a transaction ID like "CHK-1a2b3c4d". IDs are opaque and only
// need to be unique within one account ledger; the account prefix makes
// them readable in diffs and log output.
func New(accountID string) string {
	return fmt.Sprintf("%s-%s", accountID, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// AccountOf returns the account prefix of a minted ID, or "" when the ID
// has no prefix (ids from other sources are accepted verbatim).
func AccountOf(txnID string) string {
	i := strings.LastIndex(txnID, "-")
	if i <= 0 {
		return ""
	}
	return txnID[:i]
}
