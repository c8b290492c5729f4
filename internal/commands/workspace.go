package commands

import (
	"fmt"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/ledgerlink-dev/ledgerlink/internal/config"
	"github.com/ledgerlink-dev/ledgerlink/internal/transfer"
)

// ledgersDirName is the workspace subdirectory holding one CSV per account.
const ledgersDirName = "ledgers"

func ledgersDir(workspace string) string {
	return filepath.Join(workspace, ledgersDirName)
}

func loadWorkspaceConfig(workspace string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(workspace, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading workspace config (run 'ledgerlink init'?): %w", err)
	}
	return cfg, nil
}

// matchingOptions maps the workspace configuration onto engine options,
// falling back to defaults for anything unset.
func matchingOptions(cfg *config.Config) transfer.Options {
	opts := transfer.DefaultOptions()
	m := cfg.Matching

	if m.WindowDays > 0 {
		opts.WindowDays = m.WindowDays
	}
	if m.AmountTolerance > 0 {
		opts.AmountTolerance = decimal.NewFromFloat(m.AmountTolerance)
	}
	if m.FeeMaxAmount > 0 {
		opts.FeeMaxAmount = decimal.NewFromFloat(m.FeeMaxAmount)
	}
	if len(m.TransferKeywords) > 0 {
		opts.TransferKeywords = m.TransferKeywords
	}
	if len(m.FeeKeywords) > 0 {
		opts.FeeKeywords = m.FeeKeywords
	}
	for _, pair := range m.SameSignPairs {
		opts.SameSignPairs[transfer.NewAccountPair(pair[0], pair[1])] = true
	}
	return opts
}
