package model

// Account summarizes one ledger file discovered in the workspace.
type Account struct {
	ID       string
	Path     string
	Records  int
	Linked   int // records carrying a transfer link
	Currency string
}
