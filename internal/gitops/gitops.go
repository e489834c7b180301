// Package gitops publishes exported data directories by committing them
// to the project's git repository.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// CommitData stages one year's exported data directory and commits it.
// Returns the short commit hash.
func CommitData(repoRoot, dataDir string, year int, authorName, authorEmail string) (string, error) {
	rel, err := filepath.Rel(repoRoot, dataDir)
	if err != nil {
		return "", fmt.Errorf("resolving data dir: %w", err)
	}

	add := exec.Command("git", "add", "--", rel)
	add.Dir = repoRoot
	if out, err := add.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	author := fmt.Sprintf("%s <%s>", authorName, authorEmail)
	message := fmt.Sprintf("Publish budget data for %d", year)
	commit := exec.Command("git", "commit", "-m", message, "--author", author)
	commit.Dir = repoRoot
	if out, err := commit.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	rev := exec.Command("git", "rev-parse", "--short", "HEAD")
	rev.Dir = repoRoot
	out, err := rev.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
