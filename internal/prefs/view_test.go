package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestViewRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	_, ok, err := LoadView()
	require.NoError(t, err)
	require.False(t, ok)

	want := View{Category: "Code Generation", SortBy: "leader"}
	require.NoError(t, SaveView(want))

	got, ok, err := LoadView()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)

	_, err = os.Stat(filepath.Join(dir, "leaderboard", viewFile+".tmp"))
	require.True(t, os.IsNotExist(err))
}

func TestLoadViewCorrupt(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "leaderboard"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leaderboard", viewFile), []byte("{"), 0o600))

	_, _, err := LoadView()
	require.Error(t, err)
}
