// Package sink persists cleaned tables: local CSV files, PostgreSQL and
// S3-compatible object storage. Every sink implements core.Sink.
package sink

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/JonMunkholm/olistclean/internal/core"
)

// Compression selects how encoded tables are compressed.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// ParseCompression parses a compression name. Empty means none.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionGzip, CompressionZstd:
		return c, nil
	default:
		return "", fmt.Errorf("unknown compression %q (want none, gzip or zstd)", s)
	}
}

// Extension returns the file suffix added after ".csv".
func (c Compression) Extension() string {
	switch c {
	case CompressionGzip:
		return ".gz"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// ContentType returns the MIME type of an encoded table.
func (c Compression) ContentType() string {
	switch c {
	case CompressionGzip:
		return "application/gzip"
	case CompressionZstd:
		return "application/zstd"
	default:
		return "text/csv"
	}
}

// FileName returns the object or file name a table is written under.
func FileName(table string, c Compression) string {
	return table + ".csv" + c.Extension()
}

// EncodeCSV writes t as CSV: one header row with the column names, then one
// row per record. Nulls are empty fields.
func EncodeCSV(w io.Writer, t *core.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(core.ColumnNames(t.Columns)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(core.FormatRow(row)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Encode renders t as CSV and compresses it. Output is deterministic: the
// same table always encodes to the same bytes.
func Encode(t *core.Table, c Compression) ([]byte, error) {
	var raw bytes.Buffer
	if err := EncodeCSV(&raw, t); err != nil {
		return nil, err
	}

	switch c {
	case CompressionGzip:
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(raw.Bytes()); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return buf.Bytes(), nil

	case CompressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(raw.Bytes(), nil), nil

	default:
		return raw.Bytes(), nil
	}
}
