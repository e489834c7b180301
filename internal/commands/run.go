package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gulbok-dev/gulbok/internal/budgetfile"
	"github.com/gulbok-dev/gulbok/internal/config"
	"github.com/gulbok-dev/gulbok/internal/gitops"
	"github.com/gulbok-dev/gulbok/internal/pipeline"
	"github.com/gulbok-dev/gulbok/internal/runlog"
)

func newRunCommand() *cobra.Command {
	var rootDir string

	cmd := &cobra.Command{
		Use:   "run [years...]",
		Short: "Run the data pipeline for one or more budget years",
		Long: "Runs ingestion, reconciliation, aggregation, export and validation " +
			"for each given budget year. With no years given, every year with a " +
			"source file in the source directory is processed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(rootDir)
			if err != nil {
				return fmt.Errorf("resolving root: %w", err)
			}

			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			sourceDir := filepath.Join(root, cfg.Paths.SourceDir)
			outBase := filepath.Join(root, cfg.Paths.OutDir)

			years, err := resolveYears(args, sourceDir)
			if err != nil {
				return err
			}

			// Years run sequentially; a fatal error aborts only its own
			// year, and any failure fails the batch.
			allOK := true
			for _, year := range years {
				if err := runYear(cmd, cfg, root, sourceDir, outBase, year); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%d: %v\n", year, err)
					allOK = false
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if !allOK {
				return fmt.Errorf("one or more years failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", ".", "project root directory")

	return cmd
}

// loadConfig reads gulbok.yaml from the project root, falling back to the
// defaults when the file does not exist.
func loadConfig(root string) (*config.Config, error) {
	path := filepath.Join(root, "gulbok.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default("statsbudsjettet"), nil
	}
	return config.Load(path)
}

func resolveYears(args []string, sourceDir string) ([]int, error) {
	if len(args) > 0 {
		years := make([]int, 0, len(args))
		for _, a := range args {
			year, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("invalid year %q", a)
			}
			years = append(years, year)
		}
		return years, nil
	}

	years, err := budgetfile.DiscoverYears(sourceDir)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("no source files found in %s", sourceDir)
	}
	return years, nil
}

func runYear(cmd *cobra.Command, cfg *config.Config, root, sourceDir, outBase string, year int) error {
	sourcePath, err := budgetfile.FindSource(sourceDir, year)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(pipeline.Options{
		Year:        year,
		SourcePath:  sourcePath,
		SettledPath: budgetfile.FindSettled(sourceDir, year-1),
		OutDir:      filepath.Join(outBase, strconv.Itoa(year)),
		Config:      cfg,
		Out:         cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	if logErr := runlog.Append(root, res.Log); logErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", logErr)
	}

	if len(res.Violations) > 0 {
		return fmt.Errorf("validation failed with %d violations", len(res.Violations))
	}

	if cfg.Git.AutoCommit && gitops.IsRepo(root) {
		hash, err := gitops.CommitData(root, filepath.Join(outBase, strconv.Itoa(year)),
			year, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
		if err != nil {
			return fmt.Errorf("publishing: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "published as %s\n", hash)
	}
	return nil
}
