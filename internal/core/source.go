package core

// source.go loads raw dataset files into memory.
//
// Files are read whole: every table is assumed to fit in memory. Decoding
// follows a fixed order:
//   - A UTF-8 BOM (0xEF 0xBB 0xBF), commonly added by Windows programs, is dropped
//   - Bytes that are valid UTF-8 are used as-is
//   - Anything else is decoded as ISO-8859-1 (latin-1)
//
// A missing file is reported as ErrSourceMissing so the caller can skip the
// table instead of aborting the run.

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/charmap"
)

// Encoding names reported on RawTable.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RawTable is a parsed, not yet normalized dataset.
type RawTable struct {
	Name     string
	Header   []string
	Index    HeaderIndex
	Records  [][]string // data rows, header excluded
	Encoding string
	Bytes    int64
}

// Source loads raw datasets by name (file name without extension).
type Source interface {
	Load(ctx context.Context, name string) (*RawTable, error)
}

// DirSource reads <Dir>/<name>.csv, falling back to <Dir>/<name>.csv.gz.
type DirSource struct {
	Dir         string
	MaxFileSize int64 // 0 means unlimited
}

// NewDirSource creates a DirSource.
func NewDirSource(dir string, maxFileSize int64) *DirSource {
	return &DirSource{Dir: dir, MaxFileSize: maxFileSize}
}

// Load implements Source.
func (s *DirSource) Load(ctx context.Context, name string) (*RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.read(name)
	if err != nil {
		return nil, err
	}
	return ParseCSV(name, data)
}

func (s *DirSource) read(name string) ([]byte, error) {
	plain := filepath.Join(s.Dir, name+".csv")

	f, err := os.Open(plain)
	if err == nil {
		defer f.Close()
		return s.readLimited(plain, f)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", plain, err)
	}

	gz, err := os.Open(plain + ".gz")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, plain)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s.gz: %w", plain, err)
	}
	defer gz.Close()

	zr, err := gzip.NewReader(gz)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.gz: %v", ErrInvalidCSV, plain, err)
	}
	defer zr.Close()

	return s.readLimited(plain+".gz", zr)
}

func (s *DirSource) readLimited(path string, r io.Reader) ([]byte, error) {
	if s.MaxFileSize <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return data, nil
	}

	cr := &countingReader{reader: io.LimitReader(r, s.MaxFileSize+1)}
	data, err := io.ReadAll(cr)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if cr.bytesRead > s.MaxFileSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, path, s.MaxFileSize)
	}
	return data, nil
}

// countingReader tracks bytes read so oversize inputs are detected after
// decompression, not only from the on-disk size.
type countingReader struct {
	reader    io.Reader
	bytesRead int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.bytesRead += int64(n)
	return n, err
}

// ParseCSV decodes data and parses it into a RawTable. The first record is
// the header; fully blank data rows are kept and skipped later by stages.
func ParseCSV(name string, data []byte) (*RawTable, error) {
	size := int64(len(data))

	text, encoding, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncoding, name, err)
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCSV, name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, name)
	}

	return &RawTable{
		Name:     name,
		Header:   records[0],
		Index:    MakeHeaderIndex(records[0]),
		Records:  records[1:],
		Encoding: encoding,
		Bytes:    size,
	}, nil
}

func decodeText(data []byte) ([]byte, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, EncodingUTF8, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", err
	}
	return decoded, EncodingLatin1, nil
}

// MemorySource serves datasets from memory. Safe for concurrent use.
type MemorySource struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySource creates an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{files: make(map[string][]byte)}
}

// Add stores CSV text under name and returns the source for chaining.
func (s *MemorySource) Add(name, content string) *MemorySource {
	return s.AddBytes(name, []byte(content))
}

// AddBytes stores raw file bytes under name.
func (s *MemorySource) AddBytes(name string, content []byte) *MemorySource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = content
	return s
}

// Load implements Source.
func (s *MemorySource) Load(ctx context.Context, name string) (*RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.files[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, name)
	}
	return ParseCSV(name, data)
}
