package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	custom_error "stockroom/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("LOG_LEVEL", "error")

	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestReconcileOnMemoryBackend(t *testing.T) {
	out, err := run(t, "reconcile", "--backend", "memory")
	require.NoError(t, err)
	assert.Equal(t, "appended 0, updated 0, skipped 0\n", out)
}

func TestLowStockOnMemoryBackend(t *testing.T) {
	out, err := run(t, "low-stock", "--backend", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "ARTICLE")
	assert.Contains(t, out, "DEFICIT")
}

func TestOutstandingOnMemoryBackend(t *testing.T) {
	out, err := run(t, "outstanding", "A-1", "--backend", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "QUANTITY")
}

func TestUnknownBackend(t *testing.T) {
	_, err := run(t, "reconcile", "--backend", "floppy")
	assert.ErrorContains(t, err, "unknown STORE_BACKEND")
}

func TestSubcommandsRegistered(t *testing.T) {
	root := newRootCmd(&app{})

	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{
		"migrate", "reconcile", "worker", "low-stock", "outstanding", "export",
		"stats", "confirm", "project", "report-issue", "issues",
	})
}

func TestStatsOnMemoryBackend(t *testing.T) {
	out, err := run(t, "stats", "--backend", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "USER")
	assert.Contains(t, out, "REPORTS")
}

func TestConfirmReadsMovementsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movements.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"article_number":"A-1","quantity":2,"action":"take"}]`), 0o600))

	out, err := run(t, "confirm", "--backend", "memory", "--user", "ola", "--file", path)
	assert.True(t, custom_error.IsNotFound(err), "got %v", err)
	assert.Equal(t, "processed 0 of 1\n", out)
}

func TestConfirmRequiresUser(t *testing.T) {
	_, err := run(t, "confirm", "--backend", "memory")
	assert.ErrorContains(t, err, "--user is required")
}

func TestProjectStatus(t *testing.T) {
	t.Run("worker is refused", func(t *testing.T) {
		_, err := run(t, "project", "status", "P-1", "finished", "--backend", "memory", "--user", "ola")
		require.Error(t, err)
		assert.True(t, custom_error.IsUnauthorized(err), "got %v", err)
	})

	t.Run("master reaches the store", func(t *testing.T) {
		_, err := run(t, "project", "status", "P-1", "finished", "--backend", "memory", "--user", "ola", "--role", " MASTER ")
		assert.True(t, custom_error.IsNotFound(err), "got %v", err)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := run(t, "project", "status", "P-1", "finished", "--role", "owner")
		assert.ErrorContains(t, err, "unknown role")
	})
}

func TestReportIssueUnknownArticle(t *testing.T) {
	_, err := run(t, "report-issue", "A-1", "damaged", "--backend", "memory", "--user", "ola")
	assert.True(t, custom_error.IsNotFound(err), "got %v", err)
}

func TestIssuesOnMemoryBackend(t *testing.T) {
	out, err := run(t, "issues", "--backend", "memory", "--article", "drill")
	require.NoError(t, err)
	assert.Contains(t, out, "ISSUE")
}
