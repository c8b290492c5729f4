package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerlink-dev/ledgerlink/internal/gitops"
	"github.com/ledgerlink-dev/ledgerlink/internal/runlog"
	"github.com/ledgerlink-dev/ledgerlink/internal/transfer"
)

func newLinkCommand() *cobra.Command {
	var workspace string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Discover cross-account transfers and write link metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(workspace)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runLink(absDir, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report would-be changes without writing")
	cmd.Flags().StringVar(&workspace, "workspace", ".", "workspace directory")

	return cmd
}

func runLink(workspace string, dryRun bool) error {
	cfg, err := loadWorkspaceConfig(workspace)
	if err != nil {
		return err
	}

	linker := transfer.NewLinker(matchingOptions(cfg))
	changed, err := linker.LinkTransfers(ledgersDir(workspace), !dryRun)
	if err != nil {
		return err
	}

	var hash string
	if !dryRun && changed > 0 && cfg.Git.AutoCommit && gitops.IsRepo(workspace) {
		msg := fmt.Sprintf("link: update transfer metadata on %d record(s)", changed)
		hash, err = gitops.CommitPaths(workspace, []string{ledgersDirName}, msg, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
		if err != nil {
			return fmt.Errorf("committing ledgers: %w", err)
		}
	}

	entry := runlog.Entry{
		Timestamp:  time.Now().UTC(),
		Action:     "link",
		DryRun:     dryRun,
		Changed:    changed,
		CommitHash: hash,
	}
	if err := runlog.Append(workspace, []runlog.Entry{entry}); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	if dryRun {
		fmt.Printf("%d record(s) would change\n", changed)
	} else {
		fmt.Printf("%d record(s) updated\n", changed)
	}
	return nil
}
