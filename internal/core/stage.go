package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/olistclean/internal/logging"
)

// Row gives a Parse function access to one raw record by column name.
type Row struct {
	cells []string
	index HeaderIndex
	Line  int // 1-based line in the source file, header is line 1
}

// NewRow builds a Row over cells using index for column lookups.
func NewRow(cells []string, index HeaderIndex, line int) Row {
	return Row{cells: cells, index: index, Line: line}
}

// Get returns the raw cell for column, or "" when the column is absent from
// the file or missing from this record.
func (r Row) Get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// ID returns the trimmed cell for an identifier column.
func (r Row) ID(column string) string {
	return strings.TrimSpace(r.Get(column))
}

// CleanStats counts the rows a Clean step removed.
type CleanStats struct {
	Rejected   int // orphans dropped by registry filters
	Duplicates int // later duplicates dropped by dedup
}

// Stage describes one table processor over record type T. Parse and Values
// are required; Clean and Register are optional.
type Stage[T any] struct {
	Info TableInfo

	// Parse normalizes one raw record.
	Parse func(Row) T

	// Clean filters and deduplicates the parsed records.
	Clean func(rows []T, rc *RunContext) ([]T, CleanStats)

	// Register records the identifiers the cleaned records make valid.
	Register func(rows []T, reg *IDRegistry) error

	// Values returns a record's fields in Info.Columns order.
	Values func(T) []any
}

// Definition wraps the stage for the table registry.
func (s Stage[T]) Definition() TableDefinition {
	return TableDefinition{Info: s.Info, Run: s.run}
}

func (s Stage[T]) run(ctx context.Context, rc *RunContext) (report StageReport) {
	start := time.Now()
	report = StageReport{
		Table:  s.Info.Key,
		Phase:  s.Info.Phase,
		Output: s.Info.Output,
		Status: StageDone,
	}
	defer func() { report.Duration = time.Since(start) }()

	log := logging.WithFields(ctx, "table", s.Info.Key, "phase", int(s.Info.Phase))

	raw, err := rc.Source.Load(ctx, s.Info.Source)
	if err != nil {
		if errors.Is(err, ErrSourceMissing) {
			log.Warn("source missing, stage skipped", "source", s.Info.Source)
			report.fail(StageSkipped, err)
		} else {
			log.Error("load failed", "source", s.Info.Source, "error", err)
			report.fail(StageFailed, err)
		}
		return report
	}
	report.Encoding = raw.Encoding

	var he *HeaderError
	if err := ValidateHeaders(raw, s.Info.Columns); errors.As(err, &he) {
		log.Warn("source lacks columns, values will be null", "missing", he.Missing)
		report.MissingColumns = he.Missing
	}

	rows := make([]T, 0, len(raw.Records))
	firstRagged := 0
	for i, rec := range raw.Records {
		if blankRecord(rec) {
			continue
		}
		row := NewRow(rec, raw.Index, i+2)
		if len(rec) != len(raw.Header) {
			report.Ragged++
			if firstRagged == 0 {
				firstRagged = row.Line
			}
		}
		rows = append(rows, s.Parse(row))
	}
	report.Loaded = len(rows)
	if report.Ragged > 0 {
		log.Warn("records with unexpected field count, short rows read as null",
			"count", report.Ragged,
			"first_line", firstRagged,
			"header_fields", len(raw.Header),
		)
	}

	if s.Clean != nil {
		var stats CleanStats
		rows, stats = s.Clean(rows, rc)
		report.Rejected = stats.Rejected
		report.Duplicates = stats.Duplicates
	}
	report.Kept = len(rows)

	if s.Register != nil {
		if err := s.Register(rows, rc.Registry); err != nil {
			log.Error("register identifiers", "error", err)
			report.fail(StageFailed, err)
			return report
		}
	}

	table := &Table{
		Name:    s.Info.Output,
		Columns: s.Info.Columns,
		Rows:    make([][]any, len(rows)),
	}
	for i, row := range rows {
		table.Rows[i] = s.Values(row)
	}

	if err := rc.Sink.Write(ctx, table); err != nil {
		err = fmt.Errorf("persist table %s: %w", s.Info.Output, err)
		log.Error("persist failed", "error", err)
		report.fail(StageFailed, err)
		return report
	}

	log.Debug("stage complete",
		"encoding", report.Encoding,
		"loaded", report.Loaded,
		"rejected", report.Rejected,
		"duplicates", report.Duplicates,
		"kept", report.Kept,
	)
	return report
}

func blankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
