package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDateLayouts(t *testing.T) {
	t.Parallel()
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-03-01",
		"2024-03-01T00:00",
		"2024-03-01T00:00:00",
		"2024-03-01T00:00:00.000Z",
		"2024-03-01T11:00:00+11:00",
	} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		require.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	_, err := ParseDate("03/01/2024")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseDateInReadsBareDatesInZone(t *testing.T) {
	t.Parallel()
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got, err := ParseDateIn("2024-05-01", ny)
	require.NoError(t, err)
	require.Equal(t, "2024-05-01", got.In(ny).Format("2006-01-02"))
	require.True(t, time.Date(2024, 5, 1, 4, 0, 0, 0, time.UTC).Equal(got))

	// an explicit offset wins over loc
	got, err = ParseDateIn("2024-05-01T00:00:00Z", ny)
	require.NoError(t, err)
	require.True(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Equal(got))

	got, err = ParseDateIn("2024-05-01", nil)
	require.NoError(t, err)
	require.Equal(t, time.UTC, got.Location())

	_, err = ParseDateIn("tomorrow", ny)
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestEncodeEntriesMatchesStoredShape(t *testing.T) {
	t.Parallel()
	data, err := encodeEntries([]Entry{{
		ID:       "x",
		Date:     time.Date(2024, 3, 1, 9, 30, 15, 250_000_000, time.FixedZone("AEDT", 11*3600)),
		Category: "Tool Ecosystem",
		Leader:   "Cursor",
		RunnerUp: "GitHub Copilot",
		Notes:    "agent mode",
	}})
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"x","date":"2024-02-29T22:30:15.250Z","category":"Tool Ecosystem","leader":"Cursor","runnerUp":"GitHub Copilot","notes":"agent mode"}]`, string(data))

	tools, err := encodeTools(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", string(tools))
}

func TestDecodeEntriesMigration(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	next := 0
	newID := func() string {
		next++
		return "new-" + string(rune('0'+next))
	}
	entries, mig, err := decodeEntries([]byte(`[
		{"id":"keep","date":"2024-01-01T00:00:00.000Z","category":"Open Source Models","leader":"Llama 3","runnerUp":"","notes":""},
		{"date":"2024-01-02T00:00:00.000Z","category":"Open Source Models","leader":"Mixtral 8x7B","runnerUp":"","notes":""},
		{"id":"","category":"Open Source Models","leader":"Qwen 2","runnerUp":"","notes":""}
	]`), now, newID)
	require.NoError(t, err)
	require.Equal(t, migration{AssignedIDs: 2, AssignedDates: 1}, mig)
	require.Equal(t, []string{"keep", "new-1", "new-2"}, ids(entries))
	require.Equal(t, now, entries[2].Date)
	require.Equal(t, "Mixtral 8x7B", entries[1].Leader)
}
