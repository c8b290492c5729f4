package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerlink-dev/ledgerlink/internal/transfer"
)

func newMatchesCommand() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "matches",
		Short: "Preview proposed transfer links without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(workspace)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runMatches(absDir)
		},
	}

	cmd.Flags().StringVar(&workspace, "workspace", ".", "workspace directory")

	return cmd
}

func runMatches(workspace string) error {
	cfg, err := loadWorkspaceConfig(workspace)
	if err != nil {
		return err
	}

	linker := transfer.NewLinker(matchingOptions(cfg))
	matches, err := linker.ComputeMatches(ledgersDir(workspace))
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Println("No transfers found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDEBIT\tCREDIT\tAMOUNT\tMETHOD\tSCORE\tFEES")
	for _, m := range matches {
		fees := "-"
		if len(m.FeeTxnIDs) > 0 {
			fees = strings.Join(m.FeeTxnIDs, ";")
		}
		fmt.Fprintf(w, "%s\t%s/%s\t%s/%s\t%s\t%s\t%.2f\t%s\n",
			m.Debit.Date.Format("2006-01-02"),
			m.Debit.AccountID, m.Debit.ID,
			m.Credit.AccountID, m.Credit.ID,
			m.Debit.AbsAmount().StringFixed(2),
			m.Method, m.Score, fees)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("%d proposed transfer(s)\n", len(matches))
	return nil
}
