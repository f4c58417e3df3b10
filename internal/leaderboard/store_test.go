package leaderboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jask/leaderboard/internal/database"
	"github.com/jask/leaderboard/internal/database/repository"
)

var _ batchKV = (*repository.KVRepo)(nil)

var fixedNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func openTestStore(t *testing.T, kv KV) *Store {
	t.Helper()
	s, err := Open(context.Background(), kv,
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(seqIDs()),
	)
	require.NoError(t, err)
	return s
}

func TestOpenFreshStore(t *testing.T) {
	t.Parallel()
	kv := NewMemoryKV()
	s := openTestStore(t, kv)

	entries := s.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, Entry{ID: "id-1", Date: fixedNow, Category: "Foundation Models"}, entries[0])
	require.Equal(t, SeedTools, s.Tools())
	require.Len(t, SeedTools, 21)

	raw, ok, err := kv.Get(context.Background(), KeyEntries)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"id":"id-1","date":"2024-07-01T12:00:00.000Z","category":"Foundation Models","leader":"","runnerUp":"","notes":""}]`, raw)
}

func TestOpenAssignsMissingIDsWithoutTouchingFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyEntries, `[
		{"date":"2024-01-01T00:00:00.000Z","category":"Code Generation","leader":"GPT-4","runnerUp":"Claude 3 Opus","notes":"n1"},
		{"date":"2024-02-01T00:00:00.000Z","category":"Speed/Latency","leader":"Grok","runnerUp":"","notes":"n2"},
		{"category":"Tool Ecosystem","leader":"","runnerUp":"","notes":"undated"}
	]`))
	require.NoError(t, kv.Set(ctx, KeyTools, `["GPT-4"]`))

	s := openTestStore(t, kv)
	entries := s.Entries()
	require.Len(t, entries, 3)

	ids := map[string]bool{}
	for _, e := range entries {
		require.NotEmpty(t, e.ID)
		ids[e.ID] = true
	}
	require.Len(t, ids, 3)

	require.Equal(t, "Code Generation", entries[0].Category)
	require.Equal(t, "GPT-4", entries[0].Leader)
	require.Equal(t, "Claude 3 Opus", entries[0].RunnerUp)
	require.Equal(t, "n1", entries[0].Notes)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), entries[0].Date)
	require.Equal(t, fixedNow, entries[2].Date)
	require.Equal(t, []string{"GPT-4"}, s.Tools())

	// ids assigned during migration are written back and stable across reloads.
	again := openTestStore(t, kv)
	require.Equal(t, entries, again.Entries())
}

func TestOpenReplacesDuplicateIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyEntries, `[
		{"id":"same","date":"2024-01-01T00:00:00.000Z","category":"Code Generation"},
		{"id":"same","date":"2024-01-02T00:00:00.000Z","category":"Code Generation"}
	]`))

	s := openTestStore(t, kv)
	entries := s.Entries()
	require.Equal(t, "same", entries[0].ID)
	require.NotEqual(t, "same", entries[1].ID)
}

func TestOpenRejectsMalformedPayload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyEntries, `{not json`))
	_, err := Open(ctx, kv)
	require.Error(t, err)

	kv = NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyTools, `"GPT-4"`))
	_, err = Open(ctx, kv)
	require.Error(t, err)

	kv = NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyEntries, `[{"id":"a","date":"yesterday"}]`))
	_, err = Open(ctx, kv)
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestUpdateFieldRegistersTools(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t, NewMemoryKV())
	id := s.Entries()[0].ID

	require.NoError(t, s.UpdateField(ctx, id, FieldLeader, "Foo Model"))
	require.NoError(t, s.UpdateField(ctx, id, FieldRunnerUp, "Foo Model"))
	require.NoError(t, s.UpdateField(ctx, id, FieldRunnerUp, "foo model"))
	require.NoError(t, s.UpdateField(ctx, id, FieldNotes, "Not A Tool"))
	require.NoError(t, s.UpdateField(ctx, id, FieldLeader, ""))

	tools := s.Tools()
	count := 0
	for _, name := range tools {
		if name == "Foo Model" {
			count++
		}
	}
	require.Equal(t, 1, count)
	require.True(t, s.HasTool("foo model"), "membership is case-sensitive, so the lowercase variant is its own tool")
	require.False(t, s.HasTool("Not A Tool"))
	require.False(t, s.HasTool(""))
	require.Len(t, tools, len(SeedTools)+2)

	e, ok := s.Entry(id)
	require.True(t, ok)
	require.Equal(t, "", e.Leader)
	require.Equal(t, "foo model", e.RunnerUp)
	require.Equal(t, "Not A Tool", e.Notes)
}

func TestUpdateFieldDateAndCategory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t, NewMemoryKV())
	id := s.Entries()[0].ID

	require.NoError(t, s.UpdateField(ctx, id, FieldDate, "2024-03-05"))
	e, _ := s.Entry(id)
	require.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), e.Date)

	err := s.UpdateField(ctx, id, FieldDate, "not a date")
	require.ErrorIs(t, err, ErrInvalidDate)
	e, _ = s.Entry(id)
	require.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), e.Date)

	require.NoError(t, s.UpdateField(ctx, id, FieldCategory, "Safety & Alignment"))
	err = s.UpdateField(ctx, id, FieldCategory, "Vibes")
	require.ErrorIs(t, err, ErrUnknownCategory)
	e, _ = s.Entry(id)
	require.Equal(t, "Safety & Alignment", e.Category)

	require.ErrorIs(t, s.UpdateField(ctx, id, Field("color"), "red"), ErrUnknownField)
}

func TestDeleteThenUpdateIsNoop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t, NewMemoryKV())
	added, err := s.AddEntry(ctx)
	require.NoError(t, err)
	require.Len(t, s.Entries(), 2)

	require.NoError(t, s.DeleteEntry(ctx, added.ID))
	before := s.Entries()
	toolsBefore := s.Tools()

	for _, f := range Fields {
		require.NoError(t, s.UpdateField(ctx, added.ID, f, "Zed Model"))
	}
	require.NoError(t, s.DeleteEntry(ctx, added.ID))
	require.Equal(t, before, s.Entries())
	require.Equal(t, toolsBefore, s.Tools())
}

func TestIDsStayUniqueAndImmutable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := Open(ctx, NewMemoryKV(), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		e, err := s.AddEntry(ctx)
		require.NoError(t, err)
		require.NoError(t, s.UpdateField(ctx, e.ID, FieldNotes, fmt.Sprintf("row %d", i)))
		if i%3 == 0 {
			require.NoError(t, s.DeleteEntry(ctx, s.Entries()[0].ID))
		}
	}

	seen := map[string]string{}
	for _, e := range s.Entries() {
		_, dup := seen[e.ID]
		require.False(t, dup, "duplicate id %s", e.ID)
		seen[e.ID] = e.Notes
	}
	for _, e := range s.Entries() {
		require.NoError(t, s.UpdateField(ctx, e.ID, FieldLeader, "GPT-4"))
		got, ok := s.Entry(e.ID)
		require.True(t, ok)
		require.Equal(t, e.ID, got.ID)
		require.Equal(t, seen[e.ID], got.Notes)
	}
}

func TestExportImport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src := openTestStore(t, NewMemoryKV())
	id := src.Entries()[0].ID
	require.NoError(t, src.UpdateField(ctx, id, FieldLeader, "Foo Model"))

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))

	dst := openTestStore(t, NewMemoryKV())
	require.NoError(t, dst.Import(ctx, bytes.NewReader(buf.Bytes())))
	require.Equal(t, src.Entries(), dst.Entries())
	require.Equal(t, src.Tools(), dst.Tools())

	// a document without tools keeps the current set
	require.NoError(t, dst.Import(ctx, bytes.NewReader([]byte(`{"aiLeaderboardEntries":[{"category":"Speed/Latency","leader":"x"}]}`))))
	require.Len(t, dst.Entries(), 1)
	require.NotEmpty(t, dst.Entries()[0].ID)
	require.Equal(t, src.Tools(), dst.Tools())

	require.Error(t, dst.Import(ctx, bytes.NewReader([]byte(`[`))))
}

func TestImportToolsOnlyKeepsEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := NewMemoryKV()
	s := openTestStore(t, kv)
	_, err := s.AddEntry(ctx)
	require.NoError(t, err)
	before := s.Entries()
	require.Len(t, before, 2)

	require.NoError(t, s.Import(ctx, bytes.NewReader([]byte(`{"aiTools":["X"]}`))))
	require.Equal(t, before, s.Entries())
	require.Equal(t, []string{"X"}, s.Tools())

	reopened := openTestStore(t, kv)
	require.Len(t, reopened.Entries(), 2)
	require.Equal(t, []string{"X"}, reopened.Tools())
}

func TestImportRejectsDocumentWithoutCollections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t, NewMemoryKV())
	before, tools := s.Entries(), s.Tools()

	for _, doc := range []string{`{}`, `{"entries":[{"leader":"x"}]}`, `{"aiLeaderboardEntries":null}`} {
		err := s.Import(ctx, bytes.NewReader([]byte(doc)))
		require.ErrorIs(t, err, ErrEmptyImport, doc)
	}
	require.Equal(t, before, s.Entries())
	require.Equal(t, tools, s.Tools())
}

func TestImportEmptyEntriesClearsTable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t, NewMemoryKV())

	require.NoError(t, s.Import(ctx, bytes.NewReader([]byte(`{"aiLeaderboardEntries":[]}`))))
	require.Empty(t, s.Entries())
	require.Equal(t, SeedTools, s.Tools())
}

func TestClosedStoreRejectsMutations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t, NewMemoryKV())
	require.NoError(t, s.Close())

	_, err := s.AddEntry(ctx)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, s.DeleteEntry(ctx, "x"), ErrClosed)
	require.ErrorIs(t, s.UpdateField(ctx, "x", FieldNotes, "y"), ErrClosed)
}

type failingKV struct {
	*MemoryKV
	fail bool
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func TestPersistFailureKeepsMutationInMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := &failingKV{MemoryKV: NewMemoryKV()}
	s := openTestStore(t, kv)

	kv.fail = true
	_, err := s.AddEntry(ctx)
	require.Error(t, err)
	assert.Len(t, s.Entries(), 2)
}

func TestStoreOverSQLite(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	path := filepath.Join(t.TempDir(), "board.db")
	db, err := database.OpenMigrated(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := repository.NewKVRepo(db)

	s := openTestStore(t, repo)
	e, err := s.AddEntry(ctx)
	require.NoError(t, err)
	require.NoError(t, s.UpdateField(ctx, e.ID, FieldLeader, "Foo Model"))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, repo, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.Equal(t, s.Entries(), reopened.Entries())
	require.True(t, reopened.HasTool("Foo Model"))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
}
