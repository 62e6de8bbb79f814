package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdutil "github.com/tranvictor/kredits/cmd/util"
	"github.com/tranvictor/kredits/config"
	"github.com/tranvictor/kredits/router"
	"github.com/tranvictor/kredits/ui"
	"github.com/tranvictor/kredits/util/store"
)

func memoryApp(t *testing.T) *cmdutil.App {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Backend = store.BackendMemory
	app, err := cmdutil.NewApp(context.Background(), cfg, nil, router.AllowAll{})
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func tableRows(r *ui.RecordingUI) []string {
	var rows []string
	for _, e := range r.Entries() {
		if e.Method == "Table" {
			rows = append(rows, e.Value)
		}
	}
	return rows
}

func TestEntryTable(t *testing.T) {
	app := memoryApp(t)
	ctx := context.Background()
	_, err := app.Book.Add(ctx, "raucao", "akMt4")
	require.NoError(t, err)
	_, err = app.Book.Add(ctx, "bumi", "akB")
	require.NoError(t, err)

	entries, err := app.Book.Entries(ctx)
	require.NoError(t, err)

	r := ui.NewRecordingUI()
	entryTable(r, entries)
	assert.Equal(t, []string{
		"nickname | address",
		"bumi | akB",
		"raucao | akMt4",
	}, tableRows(r))
}

func TestFindEntries(t *testing.T) {
	app := memoryApp(t)
	ctx := context.Background()
	_, err := app.Book.Add(ctx, "bumi", "akB4NBW9UuCmHuepksob6yfZs6naHtRCPNy")
	require.NoError(t, err)

	r := ui.NewRecordingUI()
	require.NoError(t, findEntries(ctx, app, r, "bumi"))
	assert.Equal(t, []string{
		"nickname | address",
		"bumi | akB4NBW9UuCmHuepksob6yfZs6naHtRCPNy",
	}, tableRows(r))

	r = ui.NewRecordingUI()
	require.NoError(t, findEntries(ctx, app, r, "zzzzzz"))
	assert.Equal(t, []string{`Nobody in the addressbook matches "zzzzzz".`}, r.Lines())
	assert.Empty(t, tableRows(r))

	r = ui.NewRecordingUI()
	require.NoError(t, findEntries(ctx, app, r, "  "))
	require.Len(t, r.Lines(), 1)
	assert.Contains(t, r.Lines()[0], "What should I look for?")
}
