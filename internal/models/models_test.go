package models

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func entries(scores ...int) []ScoreEntry {
	out := make([]ScoreEntry, 0, len(scores))
	for i, s := range scores {
		out = append(out, ScoreEntry{Initials: fmt.Sprintf("P%02d", i), Score: s, Level: 1})
	}
	return out
}

func TestQualifies(t *testing.T) {
	assert.True(t, Qualifies(nil, 0))
	assert.True(t, Qualifies(entries(500, 400), 1))

	full := entries(1000, 900, 800, 700, 600, 500, 400, 300, 200, 100)
	assert.False(t, Qualifies(full, 100))
	assert.False(t, Qualifies(full, 50))
	assert.True(t, Qualifies(full, 101))
}

func TestInsertOrdersAndTrims(t *testing.T) {
	full := entries(1000, 900, 800, 700, 600, 500, 400, 300, 200, 100)
	out := Insert(full, ScoreEntry{Initials: "NEW", Score: 650})

	require.Len(t, out, MaxEntries)
	assert.Equal(t, "NEW", out[4].Initials)
	assert.Equal(t, 200, out[MaxEntries-1].Score)
	// Input table untouched.
	assert.Equal(t, 100, full[9].Score)
}

func TestInsertKeepsEarlierTiesFirst(t *testing.T) {
	out := Insert(entries(300, 200), ScoreEntry{Initials: "TIE", Score: 200})
	assert.Equal(t, []string{"P00", "P01", "TIE"}, []string{out[0].Initials, out[1].Initials, out[2].Initials})
}

func TestNormalizeInitials(t *testing.T) {
	tests := map[string]string{
		"abc":    "ABC",
		"":       "AAA",
		"z":      "ZAA",
		"j-d!x":  "JDX",
		"longer": "LON",
		"1é2":    "AAA",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeInitials(in), "input %q", in)
	}
}

func TestScoreTableYAML(t *testing.T) {
	table := ScoreTable{Entries: []ScoreEntry{
		{Initials: "ABC", Score: 1200, Level: 2, Lines: 14, Date: "2026-01-02 15:04"},
	}}

	data, err := yaml.Marshal(table)
	if err != nil {
		t.Fatalf("Failed to marshal table: %v", err)
	}

	var table2 ScoreTable
	if err := yaml.Unmarshal(data, &table2); err != nil {
		t.Fatalf("Failed to unmarshal table: %v", err)
	}
	assert.Equal(t, table, table2)
}

func testStore(t *testing.T, store ScoreStore) {
	t.Helper()

	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)

	for i := 1; i <= 12; i++ {
		require.NoError(t, store.Save(ScoreEntry{
			Initials: fmt.Sprintf("P%02d", i),
			Score:    i * 100,
			Level:    i,
			Lines:    i * 3,
			Date:     "2026-10-18 12:00",
		}))
	}

	got, err = store.Load()
	require.NoError(t, err)
	require.Len(t, got, MaxEntries)
	assert.Equal(t, "P12", got[0].Initials)
	assert.Equal(t, 1200, got[0].Score)
	assert.Equal(t, 36, got[0].Lines)
	assert.Equal(t, 300, got[MaxEntries-1].Score)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestYAMLStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store := NewYAMLStore(dir)
	testStore(t, store)

	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestYAMLStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, scoresFile), []byte("entries: [:"), 0644))

	_, err := NewYAMLStore(dir).Load()
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "scores", "hs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	testStore(t, store)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenStore(StoreYAML, dir)
	require.NoError(t, err)
	assert.IsType(t, &YAMLStore{}, s)

	s, err = OpenStore(StoreSQLite, dir)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.(*SQLiteStore).Close())

	_, err = OpenStore("csv", dir)
	assert.Error(t, err)

	_, err = OpenSQLiteStore("  ")
	assert.Error(t, err)
}
