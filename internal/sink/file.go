package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/olistclean/internal/core"
	"github.com/JonMunkholm/olistclean/internal/logging"
)

// FileSink writes each table to <dir>/<name>.csv[.gz|.zst].
type FileSink struct {
	dir         string
	compression Compression
}

// NewFileSink creates a FileSink rooted at dir.
func NewFileSink(dir string, c Compression) *FileSink {
	return &FileSink{dir: dir, compression: c}
}

// Path returns the file a table is written to.
func (s *FileSink) Path(table string) string {
	return filepath.Join(s.dir, FileName(table, s.compression))
}

// Prepare creates the output directory.
func (s *FileSink) Prepare(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// Write replaces the table's file. The file is written next to its target
// and renamed into place, so readers never see a partial table.
func (s *FileSink) Write(ctx context.Context, t *core.Table) error {
	data, err := Encode(t, s.compression)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+t.Name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	path := s.Path(t.Name)
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}

	logging.FromContext(ctx).Debug("table written",
		"table", t.Name,
		"path", path,
		"rows", len(t.Rows),
		"bytes", len(data),
	)
	return nil
}
