package commands

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gulbok-dev/gulbok/internal/config"
	"github.com/gulbok-dev/gulbok/internal/validate"
)

func newValidateCommand() *cobra.Command {
	var rootDir string

	cmd := &cobra.Command{
		Use:   "validate <year>",
		Short: "Re-run the integrity checks on an exported year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}

			root, err := filepath.Abs(rootDir)
			if err != nil {
				return fmt.Errorf("resolving root: %w", err)
			}
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			var refs *config.ReferenceTotals
			if r, ok := cfg.ReferenceTotals[year]; ok {
				refs = &r
			}

			dir := filepath.Join(root, cfg.Paths.OutDir, strconv.Itoa(year))
			violations := validate.Check(dir, year, refs)
			if len(violations) > 0 {
				for _, v := range violations {
					fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", v)
				}
				return fmt.Errorf("%d violations", len(violations))
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ all validations passed")
			return nil
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", ".", "project root directory")

	return cmd
}
