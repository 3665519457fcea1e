package diag

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport(id string, age time.Duration) Report {
	return Report{
		ID:          id,
		GeneratedAt: time.Now().UTC().Add(-age),
		OS:          "linux",
		Arch:        "amd64",
		Outcome:     Outcome{Resolved: true, Binding: "PyQt6"},
	}
}

func TestNewHistory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports.jsonl")

	h, err := NewHistory(path)
	require.NoError(t, err)
	defer h.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)

	// File should have header
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "qtcompat_schema_version")
}

func TestNewHistory_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "nested", "reports.jsonl")

	h, err := NewHistory(path)
	require.NoError(t, err)
	defer h.Close()

	_, err = os.Stat(filepath.Dir(path))
	require.NoError(t, err)
}

func TestHistory_AppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")

	h, err := NewHistory(path)
	require.NoError(t, err)

	require.NoError(t, h.Append(testReport("r1", time.Hour)))
	require.NoError(t, h.Append(testReport("r2", 0)))

	reports, err := h.Load()
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "r1", reports[0].ID)
	assert.Equal(t, "r2", reports[1].ID)
	assert.Equal(t, "PyQt6", reports[1].Outcome.Binding)

	h.Close()
}

func TestHistory_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")

	h, err := NewHistory(path)
	require.NoError(t, err)
	require.NoError(t, h.Append(testReport("r1", 0)))
	require.NoError(t, h.Close())

	h, err = NewHistory(path)
	require.NoError(t, err)
	defer h.Close()

	reports, err := h.Load()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "r1", reports[0].ID)
}

func TestHistory_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")

	h, err := NewHistory(path)
	require.NoError(t, err)
	require.NoError(t, h.Append(testReport("good", 0)))
	require.NoError(t, h.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	h, err = NewHistory(path)
	require.NoError(t, err)
	defer h.Close()

	reports, err := h.Load()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "good", reports[0].ID)
}

func TestHistory_PruneByAge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")

	h, err := NewHistory(path)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Append(testReport("old", 48*time.Hour)))
	require.NoError(t, h.Append(testReport("recent", time.Minute)))

	removed, err := h.Prune(24*time.Hour, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	reports, err := h.Load()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "recent", reports[0].ID)
}

func TestHistory_PruneByCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")

	h, err := NewHistory(path)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Append(testReport("a", 3*time.Hour)))
	require.NoError(t, h.Append(testReport("b", 2*time.Hour)))
	require.NoError(t, h.Append(testReport("c", time.Hour)))

	removed, err := h.Prune(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	reports, err := h.Load()
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "b", reports[0].ID)
	assert.Equal(t, "c", reports[1].ID)
}

func TestRetain(t *testing.T) {
	reports := []Report{
		testReport("stale", 72*time.Hour),
		testReport("a", 3*time.Hour),
		testReport("b", 2*time.Hour),
		testReport("c", time.Hour),
	}

	kept, removed := Retain(reports, 24*time.Hour, 2)
	require.Len(t, removed, 2)
	assert.Equal(t, "stale", removed[0].ID)
	assert.Equal(t, "a", removed[1].ID)
	require.Len(t, kept, 2)
	assert.Equal(t, "b", kept[0].ID)
	assert.Equal(t, "c", kept[1].ID)

	// Zero disables both limits
	kept, removed = Retain(reports, 0, 0)
	assert.Len(t, kept, 4)
	assert.Empty(t, removed)
}

func TestHistory_PruneNothingToDo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")

	h, err := NewHistory(path)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Append(testReport("a", time.Hour)))

	removed, err := h.Prune(24*time.Hour, 10)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestHistory_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")

	h, err := NewHistory(path)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Append(testReport("a", 0)))
	require.NoError(t, h.Clear())

	reports, err := h.Load()
	require.NoError(t, err)
	assert.Empty(t, reports)

	// Header is rewritten
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "qtcompat_schema_version")
}

func TestHistory_ClosedErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")

	h, err := NewHistory(path)
	require.NoError(t, err)
	require.NoError(t, h.Close())

	_, err = h.Load()
	assert.ErrorIs(t, err, ErrHistoryClosed)

	err = h.Append(testReport("a", 0))
	assert.ErrorIs(t, err, ErrHistoryClosed)

	_, err = h.Prune(time.Hour, 1)
	assert.ErrorIs(t, err, ErrHistoryClosed)

	// Close is idempotent
	assert.NoError(t, h.Close())
}
