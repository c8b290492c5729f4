package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerlink-dev/ledgerlink/internal/accounts"
)

func newAccountsCommand() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "accounts [id]",
		Short: "List accounts discovered from the ledger files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(workspace)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			if len(args) == 1 {
				return runAccountDetail(absDir, args[0])
			}
			return runAccounts(absDir)
		},
	}

	cmd.Flags().StringVar(&workspace, "workspace", ".", "workspace directory")

	return cmd
}

func runAccounts(workspace string) error {
	svc, err := accounts.Load(ledgersDir(workspace))
	if err != nil {
		return err
	}

	all := svc.All()
	if len(all) == 0 {
		fmt.Println("No ledgers found. Import a bank export first.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tCURRENCY\tRECORDS\tLINKED\tFILE")
	for _, a := range all {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", a.ID, a.Currency, a.Records, a.Linked, a.Path)
	}
	return w.Flush()
}

func runAccountDetail(workspace, id string) error {
	svc, err := accounts.Load(ledgersDir(workspace))
	if err != nil {
		return err
	}

	a, ok := svc.Get(id)
	if !ok {
		return fmt.Errorf("unknown account %q", id)
	}

	fmt.Printf("Account:  %s\n", a.ID)
	fmt.Printf("Currency: %s\n", a.Currency)
	fmt.Printf("Records:  %d\n", a.Records)
	fmt.Printf("Linked:   %d\n", a.Linked)
	fmt.Printf("File:     %s\n", a.Path)
	return nil
}
