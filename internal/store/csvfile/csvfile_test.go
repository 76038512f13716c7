package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policydash/internal/model"
	"policydash/internal/store"
	"policydash/internal/table"
)

var inflation = model.Dataset{ID: model.DatasetInflation, File: "inflation_data.csv"}

func sample(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.Join(model.Series{
		Name: "CPI",
		Observations: []model.Observation{
			{Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Value: 262.2},
			{Date: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), Value: 263.3},
		},
	})
	require.NoError(t, err)
	return tbl
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	st, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.SaveTable(ctx, inflation, sample(t)))
	assert.FileExists(t, filepath.Join(dir, "inflation_data.csv"))

	loaded, err := st.LoadTable(ctx, inflation)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, []string{"CPI"}, loaded.Columns())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestSaveOverwrites(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(st.Path(inflation), []byte("date,Old\n1999-01-01,1\n"), 0o644))
	require.NoError(t, st.SaveTable(ctx, inflation, sample(t)))

	loaded, err := st.LoadTable(ctx, inflation)
	require.NoError(t, err)
	assert.False(t, loaded.HasColumn("Old"))
}

func TestLoadMissing(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = st.LoadTable(context.Background(), inflation)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
