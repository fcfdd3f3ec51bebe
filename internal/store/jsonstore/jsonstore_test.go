package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", "list.json"))
	require.NoError(t, err)
	return s
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap)
	assert.NotNil(t, snap)
}

func TestSaveLoadKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	want := store.Snapshot{
		"Fruits": {
			{ID: "b", Name: "Pear", Translation: "Poire", Icon: "🍎", Quantity: 2},
			{ID: "a", Name: "Apple", Translation: "Pomme", Icon: "🍎", Quantity: 1, Purchased: true},
		},
		"Other": {{ID: "c", Name: "Xyzzy", Translation: "Xyzzy", Quantity: 1.5}},
	}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveDoesNotPersistIsNew(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Save(ctx, store.Snapshot{"Dairy": {model.NewItem("Milk", "", "", 1)}}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got["Dairy"], 1)
	assert.False(t, got["Dairy"][0].IsNew)
}

func TestLoadCorrupt(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrCorrupt)
}

func TestLoadBlankFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("\n  "), 0o644))

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Save(ctx, store.Snapshot{"Other": {{ID: "1", Name: "X", Quantity: 1}}}))

	require.NoError(t, s.Clear(ctx))
	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, s.Clear(ctx), "clearing twice is fine")
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newTestStore(t)
	assert.ErrorIs(t, s.Save(ctx, nil), context.Canceled)
	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	s, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultFileName, filepath.Base(s.Path()))
}
