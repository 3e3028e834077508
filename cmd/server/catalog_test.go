package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ashureev/apsfd-portal/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCloseRepo struct {
	store.Repository
}

func (failingCloseRepo) Close() error { return errors.New("database is locked") }

func TestCloseRepoLogsFailure(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	closeRepo(failingCloseRepo{})

	assert.Contains(t, logs.String(), "Failed to close repository")
	assert.Contains(t, logs.String(), "database is locked")
}

func TestCatalogListSeedsAndPrints(t *testing.T) {
	dbPath = filepath.Join(t.TempDir(), "portal.db")
	t.Cleanup(func() { dbPath = "" })

	var out bytes.Buffer
	catalogListCmd.SetOut(&out)
	catalogListCmd.SetContext(context.Background())
	t.Cleanup(func() { catalogListCmd.SetOut(nil) })

	require.NoError(t, catalogListCmd.RunE(catalogListCmd, nil))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Accounting Fundamentals")
	assert.Contains(t, lines[3], "locked")
}
