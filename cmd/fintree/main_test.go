package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jask/fintree/internal/service"
)

const sampleTree = `
[[node]]
name = "Food"
description = "eating"

  [[node.children]]
  name = "Groceries"

[[node]]
name = "Transport"
`

type cli struct {
	t    *testing.T
	base []string
	dir  string
}

func newCLI(t *testing.T) *cli {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("FINTREE_CONFIG", filepath.Join(dir, "missing.toml"))
	return &cli{
		t:    t,
		dir:  dir,
		base: []string{"--db", filepath.Join(dir, "fintree.db"), "--prefs", filepath.Join(dir, "prefs.json"), "--user", "u1"},
	}
}

func (c *cli) run(args ...string) (string, string, error) {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(append([]string{}, args...), c.base...))
	err := root.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, _, err := c.run(args...)
	require.NoError(c.t, err)
	return out
}

func (c *cli) importSample() {
	c.t.Helper()
	path := filepath.Join(c.dir, "tree.toml")
	require.NoError(c.t, os.WriteFile(path, []byte(sampleTree), 0o600))
	out := c.mustRun("import", "transaction-categories", path)
	require.Equal(c.t, "imported 3 transaction-categories\n", out)
}

func (c *cli) jsonTree(args ...string) []treeRow {
	c.t.Helper()
	out := c.mustRun(append([]string{"tree", "transaction-categories", "--format", "json"}, args...)...)
	var rows []treeRow
	require.NoError(c.t, json.Unmarshal([]byte(out), &rows))
	return rows
}

func TestImportThenPrintText(t *testing.T) {
	c := newCLI(t)
	c.importSample()

	require.Equal(t, "Food  (eating)\nTransport\n", c.mustRun("tree", "transaction-categories"))
	require.Equal(t, "Food  (eating)\n  Groceries\nTransport\n", c.mustRun("tree", "transaction-categories", "--expand-all"))
}

func TestTreeQueryFormats(t *testing.T) {
	c := newCLI(t)
	c.importSample()

	rows := c.jsonTree("--query", "GRO")
	require.Len(t, rows, 2)
	require.Equal(t, "Food", rows[0].Name)
	require.Nil(t, rows[0].ParentID)
	require.Equal(t, []string{"Food", "Groceries"}, rows[1].Path)
	require.Equal(t, rows[0].ID, *rows[1].ParentID)
	require.Equal(t, 1, rows[1].Depth)

	out := c.mustRun("tree", "transaction-categories", "--expand-all", "--format", "yaml")
	var fromYAML []treeRow
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	require.Len(t, fromYAML, 3)
	require.Equal(t, "eating", fromYAML[0].Description)

	_, _, err := c.run("tree", "transaction-categories", "--format", "xml")
	require.ErrorContains(t, err, "unknown format")
}

func TestTreeNoMatchesGoesToStderr(t *testing.T) {
	c := newCLI(t)
	c.importSample()

	out, errOut, err := c.run("tree", "transaction-categories", "--query", "fod")
	require.NoError(t, err)
	require.Empty(t, out)
	require.True(t, strings.HasPrefix(errOut, "no matches"), errOut)
}

func TestReparentValidatesCycles(t *testing.T) {
	c := newCLI(t)
	c.importSample()
	rows := c.jsonTree("--expand-all")
	food, groceries := rows[0].ID, rows[1].ID

	_, _, err := c.run("reparent", "transaction-categories", itoa(food), itoa(groceries))
	require.ErrorIs(t, err, service.ErrCycle)

	out := c.mustRun("reparent", "transaction-categories", itoa(groceries), "root")
	require.Contains(t, out, "top level")
	rows = c.jsonTree()
	require.Len(t, rows, 3)

	_, _, err = c.run("reparent", "transaction-categories", "abc", "root")
	require.ErrorContains(t, err, "invalid id")
	_, _, err = c.run("reparent", "budgets", "1", "root")
	require.ErrorContains(t, err, "want one of")
}

func TestMigrateReportsVersion(t *testing.T) {
	c := newCLI(t)
	require.Equal(t, "schema version 1 (clean)\n", c.mustRun("migrate"))
}

func TestResetNeedsConfirmation(t *testing.T) {
	c := newCLI(t)
	c.importSample()

	_, _, err := c.run("reset")
	require.ErrorContains(t, err, "--yes")
	require.Len(t, c.jsonTree(), 2)

	require.Equal(t, "all data removed\n", c.mustRun("reset", "--yes"))
	require.Empty(t, c.mustRun("tree", "transaction-categories"))
}

func TestDemoSeedsSampleBook(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("demo", "-n", "4", "--seed", "3")
	require.Equal(t, "created 5 accounts and 4 transactions\n", out)

	out = c.mustRun("tree", "accounts", "--expand-all")
	require.Equal(t, "Sample Bank\n  Checking\n  Savings\nCash\n  Wallet\n", out)
	require.NotEmpty(t, c.jsonTree(), "default categories were seeded")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
