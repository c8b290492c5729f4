package accounts

import (
	"github.com/ledgerlink-dev/ledgerlink/internal/ledger"
	"github.com/ledgerlink-dev/ledgerlink/internal/model"
)

// Service provides in-memory lookup over the accounts discovered from a
// workspace's ledger files.
type Service struct {
	accounts []model.Account
	byID     map[string]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accts []model.Account) *Service {
	byID := make(map[string]model.Account, len(accts))
	for _, a := range accts {
		byID[a.ID] = a
	}
	return &Service{accounts: accts, byID: byID}
}

// Load scans the ledger directory and builds a registry of its accounts.
func Load(ledgersDir string) (*Service, error) {
	ledgers, err := ledger.LoadDir(ledgersDir)
	if err != nil {
		return nil, err
	}

	accts := make([]model.Account, 0, len(ledgers))
	for _, lg := range ledgers {
		a := model.Account{
			ID:      lg.AccountID,
			Path:    lg.Path,
			Records: len(lg.Records),
		}
		for _, rec := range lg.Records {
			if rec.Metadata.Transfer != nil {
				a.Linked++
			}
			if a.Currency == "" {
				a.Currency = rec.Currency
			}
		}
		accts = append(accts, a)
	}
	return NewService(accts), nil
}

// All returns all discovered accounts in ledger file order.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID has a ledger file.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}
