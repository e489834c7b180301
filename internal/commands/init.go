package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gulbok-dev/gulbok/internal/config"
)

func newInitCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new pipeline project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized pipeline project in %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "statsbudsjettet", "project name")

	return cmd
}

func runInit(dir, name string) error {
	cfg := config.Default(name)

	for _, d := range []string{cfg.Paths.SourceDir, cfg.Paths.OutDir, "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, "gulbok.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
