// Package budgetfile formats and parses the file names of source budget
// documents, and discovers which budget years are available in a source
// directory.
package budgetfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// sourcePattern matches both our normalized names ("gul_bok_2026.xlsx")
// and the ministry's published names ("Gul bok 2026.xlsx").
var sourcePattern = regexp.MustCompile(`(?i)^gul[ _]bok[ _](\d{4})\.(csv|xlsx)$`)

// settledPattern matches settled-budget files ("saldert_2025.xlsx",
// "Saldert budsjett 2025.xlsx").
var settledPattern = regexp.MustCompile(`(?i)^saldert(?:[ _]budsjett)?[ _](\d{4})\.(csv|xlsx)$`)

// SourceFileName returns the normalized source file name for a year.
func SourceFileName(year int, format string) string {
	return fmt.Sprintf("gul_bok_%04d.%s", year, strings.ToLower(format))
}

// SettledFileName returns the normalized settled-budget file name.
func SettledFileName(year int, format string) string {
	return fmt.Sprintf("saldert_%04d.%s", year, strings.ToLower(format))
}

// ParseSourceYear extracts the budget year from a source file name.
func ParseSourceYear(name string) (int, bool) {
	return parseYear(sourcePattern, name)
}

// ParseSettledYear extracts the budget year from a settled file name.
func ParseSettledYear(name string) (int, bool) {
	return parseYear(settledPattern, name)
}

func parseYear(pattern *regexp.Regexp, name string) (int, bool) {
	m := pattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// FindSource returns the path of the source file for a year.
func FindSource(dir string, year int) (string, error) {
	paths, err := discover(dir, sourcePattern)
	if err != nil {
		return "", err
	}
	if path, ok := paths[year]; ok {
		return path, nil
	}
	return "", fmt.Errorf("no source file for %d in %s", year, dir)
}

// FindSettled returns the path of the settled budget for a year, or ""
// when none exists (reconciliation is optional).
func FindSettled(dir string, year int) string {
	paths, err := discover(dir, settledPattern)
	if err != nil {
		return ""
	}
	return paths[year]
}

// DiscoverYears lists every budget year with a source file, ascending.
func DiscoverYears(dir string) ([]int, error) {
	paths, err := discover(dir, sourcePattern)
	if err != nil {
		return nil, err
	}
	years := make([]int, 0, len(paths))
	for year := range paths {
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}

func discover(dir string, pattern *regexp.Regexp) (map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source dir: %w", err)
	}

	paths := make(map[int]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if year, ok := parseYear(pattern, e.Name()); ok {
			paths[year] = filepath.Join(dir, e.Name())
		}
	}
	return paths, nil
}
