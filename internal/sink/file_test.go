package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_WriteAndReplace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	s := NewFileSink(dir, CompressionNone)
	ctx := context.Background()

	require.NoError(t, s.Prepare(ctx))
	require.NoError(t, s.Write(ctx, sampleTable()))

	data, err := os.ReadFile(filepath.Join(dir, "order_item.csv"))
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))

	// A second write replaces the file.
	tbl := sampleTable()
	tbl.Rows = tbl.Rows[:1]
	require.NoError(t, s.Write(ctx, tbl))

	data, err = os.ReadFile(s.Path("order_item"))
	require.NoError(t, err)
	assert.Equal(t, "order_id,price,note\nO1,20.00,\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}

func TestFileSink_CompressedName(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir, CompressionZstd)
	ctx := context.Background()

	require.NoError(t, s.Prepare(ctx))
	require.NoError(t, s.Write(ctx, sampleTable()))

	_, err := os.Stat(filepath.Join(dir, "order_item.csv.zst"))
	assert.NoError(t, err)
}

func TestFileSink_PrepareFails(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := NewFileSink(filepath.Join(blocker, "out"), CompressionNone)
	err := s.Prepare(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output dir")
}
