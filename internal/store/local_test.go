package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bevalen/tune-energy-ocr-ui/internal/store"
)

func TestLocalListDownloadDelete(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jan.pdf"), []byte("%PDF-1.4"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "archive"), 0755))

	local, err := store.NewLocal(dir)
	require.NoError(t, err)
	ctx := context.Background()

	objects, err := local.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1) // subdirectories ignored
	assert.Equal(t, "jan.pdf", objects[0].Name)
	assert.Equal(t, int64(8), objects[0].Size)

	data, err := local.Download(ctx, "jan.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	require.NoError(t, local.Delete(ctx, "jan.pdf"))
	objects, err = local.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestLocalCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	_, err := store.NewLocal(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalDownloadMissingFile(t *testing.T) {
	local, err := store.NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = local.Download(context.Background(), "nope.pdf")
	assert.Error(t, err)
}
