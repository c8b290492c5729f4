package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerlink-dev/ledgerlink/internal/accounts"
	"github.com/ledgerlink-dev/ledgerlink/internal/importer"
	"github.com/ledgerlink-dev/ledgerlink/internal/ledger"
	"github.com/ledgerlink-dev/ledgerlink/internal/runlog"
)

func newImportCommand() *cobra.Command {
	var workspace string
	var account string
	var format string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a bank CSV export, or list pending exports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(workspace)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			if len(args) == 0 {
				return runImportList(absDir)
			}
			if account == "" {
				return fmt.Errorf("--account is required when importing a file")
			}
			return runImport(absDir, args[0], account, format)
		},
	}

	cmd.Flags().StringVar(&workspace, "workspace", ".", "workspace directory")
	cmd.Flags().StringVar(&account, "account", "", "account id the export belongs to")
	cmd.Flags().StringVar(&format, "format", "generic", "bank export format")

	return cmd
}

func runImportList(workspace string) error {
	files, err := importer.Scan(workspace)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No pending exports in import/.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSIZE")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%d\n", f.Name, f.Size)
	}
	return w.Flush()
}

func runImport(workspace, file, account, format string) error {
	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return fmt.Errorf("unknown import format %q", format)
	}

	registry, err := accounts.Load(ledgersDir(workspace))
	if err != nil {
		return err
	}
	if !registry.Exists(account) {
		fmt.Printf("Creating new ledger for account %s\n", account)
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	txns, err := parser.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", file, err)
	}
	if len(txns) == 0 {
		fmt.Println("Nothing to import.")
		return nil
	}

	records := importer.Normalize(txns, account, filepath.Base(file))

	ledgerPath := filepath.Join(ledgersDir(workspace), account+".csv")
	if err := ledger.Append(ledgerPath, records); err != nil {
		return err
	}

	// Exports dropped into import/ move to import/processed/ once ingested.
	if filepath.Dir(file) == filepath.Join(workspace, "import") {
		if err := importer.MarkProcessed(workspace, filepath.Base(file)); err != nil {
			return err
		}
	}

	entry := runlog.Entry{
		Timestamp: time.Now().UTC(),
		Action:    "import",
		Changed:   len(records),
		Details:   fmt.Sprintf("%s -> %s", filepath.Base(file), account),
	}
	if err := runlog.Append(workspace, []runlog.Entry{entry}); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	fmt.Printf("Imported %d record(s) into %s\n", len(records), ledgerPath)
	return nil
}
