package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gulbok-dev/gulbok/internal/runlog"
)

func newLogCommand() *cobra.Command {
	var rootDir string
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(rootDir)
			if err != nil {
				return fmt.Errorf("resolving root: %w", err)
			}

			entries, err := runlog.Read(root)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no pipeline runs logged")
				return nil
			}

			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %d  %-10s %-8s %s\n",
					e.Timestamp.Format("2006-01-02 15:04:05"), e.Year, e.Step, e.Status, e.Details)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", ".", "project root directory")
	cmd.Flags().IntVar(&limit, "limit", 20, "max entries to show")

	return cmd
}
