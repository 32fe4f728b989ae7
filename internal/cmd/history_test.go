package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/minigrep/internal/config"
	"github.com/harrison/minigrep/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func countHistory(t *testing.T, home string) int {
	t.Helper()

	store, err := history.NewStore(filepath.Join(home, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	return count
}

func TestHistory_RecordsSearches(t *testing.T) {
	home := setupHome(t)
	poem := writePoem(t)

	_, _, err := executeCommand(t, "search", "to", poem)
	require.NoError(t, err)
	_, _, err = executeCommand(t, "regex", "(", poem)
	require.Error(t, err)

	assert.Equal(t, 2, countHistory(t, home))

	stdout, _, err := executeCommand(t, "history")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], "regex", "newest search first")
	assert.Contains(t, lines[0], "failed")
	assert.Contains(t, stdout, "error: invalid pattern")
	assert.Contains(t, stdout, `search "to" `+poem)
	assert.Contains(t, stdout, "[success, 2 match(es) in 9 line(s)]")
}

func TestHistory_NoHistoryFlag(t *testing.T) {
	home := setupHome(t)
	poem := writePoem(t)

	_, _, err := executeCommand(t, "search", "--no-history", "to", poem)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(home, "history.db"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestHistory_DisabledInConfig(t *testing.T) {
	home := setupHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, config.ConfigFileName), []byte("history:\n  enabled: false\n"), 0644))
	poem := writePoem(t)

	_, _, err := executeCommand(t, "search", "to", poem)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(home, "history.db"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestHistory_Empty(t *testing.T) {
	setupHome(t)

	stdout, _, err := executeCommand(t, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No searches recorded.")
}

func TestHistory_LimitAndMode(t *testing.T) {
	setupHome(t)
	poem := writePoem(t)

	for _, args := range [][]string{
		{"search", "to", poem},
		{"regex", "^To", poem},
		{"search", "nobody", poem},
		{"regex", "frog$", poem},
	} {
		_, _, err := executeCommand(t, args...)
		require.NoError(t, err)
	}

	stdout, _, err := executeCommand(t, "history", "--limit", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"frog$"`)

	stdout, _, err = executeCommand(t, "history", "--mode", "search")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"nobody"`)
	assert.Contains(t, lines[1], `"to"`)

	stdout, _, err = executeCommand(t, "history", "--mode", "regex", "--limit", "1")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"frog$"`)

	_, _, err = executeCommand(t, "history", "--mode", "glob")
	require.Error(t, err)

	_, _, err = executeCommand(t, "history", "--limit", "-1")
	require.Error(t, err)
}

func TestHistoryClear(t *testing.T) {
	t.Run("with --yes", func(t *testing.T) {
		home := setupHome(t)
		poem := writePoem(t)
		_, _, err := executeCommand(t, "search", "to", poem)
		require.NoError(t, err)

		stdout, _, err := executeCommand(t, "history", "clear", "--yes")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Deleted 1 search(es).")
		assert.Equal(t, 0, countHistory(t, home))
	})

	t.Run("confirmation declined", func(t *testing.T) {
		home := setupHome(t)
		poem := writePoem(t)
		_, _, err := executeCommand(t, "search", "to", poem)
		require.NoError(t, err)

		rootCmd := NewRootCommand()
		out := new(bytes.Buffer)
		rootCmd.SetOut(out)
		rootCmd.SetErr(out)
		rootCmd.SetIn(strings.NewReader("n\n"))
		rootCmd.SetArgs([]string{"history", "clear"})
		require.NoError(t, rootCmd.Execute())

		assert.Contains(t, out.String(), "Operation cancelled.")
		assert.Equal(t, 1, countHistory(t, home))
	})

	t.Run("confirmation accepted", func(t *testing.T) {
		home := setupHome(t)
		poem := writePoem(t)
		_, _, err := executeCommand(t, "search", "to", poem)
		require.NoError(t, err)

		rootCmd := NewRootCommand()
		out := new(bytes.Buffer)
		rootCmd.SetOut(out)
		rootCmd.SetErr(out)
		rootCmd.SetIn(strings.NewReader("yes\n"))
		rootCmd.SetArgs([]string{"history", "clear"})
		require.NoError(t, rootCmd.Execute())

		assert.Contains(t, out.String(), "Deleted 1 search(es).")
		assert.Equal(t, 0, countHistory(t, home))
	})
}

func TestHistoryExport(t *testing.T) {
	setupHome(t)
	poem := writePoem(t)
	_, _, err := executeCommand(t, "search", "-i", "to", poem)
	require.NoError(t, err)

	exportPath := filepath.Join(t.TempDir(), "searches.yaml")
	stdout, _, err := executeCommand(t, "history", "export", exportPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Exported 1 search(es)")

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)

	var doc struct {
		Searches []history.Record `yaml:"searches"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Len(t, doc.Searches, 1)
	assert.Equal(t, "search", doc.Searches[0].Mode)
	assert.Equal(t, "to", doc.Searches[0].Pattern)
	assert.True(t, doc.Searches[0].IgnoreCase)
	assert.Equal(t, 4, doc.Searches[0].Matches)
	assert.Equal(t, history.StatusSuccess, doc.Searches[0].Status)
}

func TestHistoryExport_RequiresPath(t *testing.T) {
	setupHome(t)

	_, _, err := executeCommand(t, "history", "export")
	require.Error(t, err)
}

func TestConfirmAction(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		out := new(bytes.Buffer)
		got := confirmAction(strings.NewReader(tt.input), out)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "Continue? [y/N]: ")
	}
}
