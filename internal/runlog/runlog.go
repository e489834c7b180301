// Package runlog keeps an append-only CSV audit log of pipeline runs, one
// row per step, under logs/pipeline-log.csv in the project root.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Entry is one row in the pipeline log.
type Entry struct {
	Timestamp time.Time
	Year      int
	Step      string
	Details   string
	Status    string // "ok", "warning" or "error"
}

// Header is the CSV header for pipeline-log.csv.
const Header = "timestamp,year,step,details,status"

const (
	numFields    = 5
	logDir       = "logs"
	logFile      = "logs/pipeline-log.csv"
	colTimestamp = 0
	colYear      = 1
	colStep      = 2
	colDetails   = 3
	colStatus    = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colYear] = strconv.Itoa(e.Year)
	row[colStep] = e.Step
	row[colDetails] = e.Details
	row[colStatus] = e.Status
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	year, err := strconv.Atoi(record[colYear])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing year %q: %w", record[colYear], err)
	}

	return Entry{
		Timestamp: ts,
		Year:      year,
		Step:      record[colStep],
		Details:   record[colDetails],
		Status:    record[colStatus],
	}, nil
}

// Append writes entries to the pipeline log, creating it (with header) on
// first use.
func Append(projectRoot string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Join(projectRoot, logDir), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(projectRoot, logFile)
	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening pipeline log: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	cw := csv.NewWriter(f)
	for _, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing log entry: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from the pipeline log. A missing log yields an
// empty list.
func Read(projectRoot string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(projectRoot, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening pipeline log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading pipeline log: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
