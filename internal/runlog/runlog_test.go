package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(step string) Entry {
	return Entry{
		Timestamp: time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC),
		Year:      2026,
		Step:      step,
		Details:   "4 rows",
		Status:    "ok",
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	e := entry("ingest")
	got, err := UnmarshalEntry(MarshalEntry(e))
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"too", "short"})
	require.Error(t, err)

	_, err = UnmarshalEntry([]string{"not-a-time", "2026", "ingest", "", "ok"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing timestamp")

	_, err = UnmarshalEntry([]string{time.Now().UTC().Format(time.RFC3339), "x", "ingest", "", "ok"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing year")
}

func TestAppendAndRead(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, Append(root, []Entry{entry("ingest"), entry("export")}))
	require.NoError(t, Append(root, []Entry{entry("validate")}))

	raw, err := os.ReadFile(filepath.Join(root, "logs", "pipeline-log.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, Header, lines[0], "header written once")

	entries, err := Read(root)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "ingest", entries[0].Step)
	assert.Equal(t, "validate", entries[2].Step)
	assert.Equal(t, entry("ingest").Timestamp, entries[0].Timestamp)
}

func TestAppend_EmptyIsNoop(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Append(root, nil))

	_, err := os.Stat(filepath.Join(root, "logs", "pipeline-log.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRead_MissingLog(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAppend_QuotesDetailsWithCommas(t *testing.T) {
	root := t.TempDir()
	e := entry("reconcile")
	e.Details = "match rate 95.8%, 50 new"
	require.NoError(t, Append(root, []Entry{e}))

	entries, err := Read(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e.Details, entries[0].Details)
}
