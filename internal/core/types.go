package core

import (
	"context"
	"fmt"
	"time"
)

// Kind names a category of record tracked by the IDRegistry.
type Kind string

const (
	KindZip      Kind = "zip"
	KindProduct  Kind = "product"
	KindSeller   Kind = "seller"
	KindCustomer Kind = "customer"
	KindOrder    Kind = "order"
)

// Phase is one of the four ordered pipeline stages.
type Phase int

const (
	PhaseMasters    Phase = 1 // independent masters: geolocation, products, sellers
	PhaseCustomers  Phase = 2
	PhaseOrders     Phase = 3
	PhaseDependents Phase = 4 // order items, payments, reviews
)

// Phases lists every phase in execution order.
var Phases = []Phase{PhaseMasters, PhaseCustomers, PhaseOrders, PhaseDependents}

func (p Phase) String() string {
	switch p {
	case PhaseMasters:
		return "masters"
	case PhaseCustomers:
		return "customers"
	case PhaseOrders:
		return "orders"
	case PhaseDependents:
		return "dependents"
	default:
		return "unknown"
	}
}

// FieldType represents the data type of a cleaned column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldNumeric // decimal with fixed fractional digits
	FieldFloat
	FieldTimestamp
)

var fieldTypeNames = map[FieldType]string{
	FieldText:      "text",
	FieldInteger:   "integer",
	FieldNumeric:   "numeric",
	FieldFloat:     "float",
	FieldTimestamp: "timestamp",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the type by name in JSON.
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name written by MarshalText.
func (t *FieldType) UnmarshalText(b []byte) error {
	for ft, name := range fieldTypeNames {
		if name == string(b) {
			*t = ft
			return nil
		}
	}
	return fmt.Errorf("unknown field type %q", b)
}

// Column describes one output column.
type Column struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// TableInfo contains descriptive information about a table.
type TableInfo struct {
	Key        string   `json:"key"`        // Unique identifier: "orders"
	Label      string   `json:"label"`      // Display name: "Orders"
	Phase      Phase    `json:"phase"`      // Pipeline phase the table runs in
	Order      int      `json:"order"`      // Position within the phase
	Source     string   `json:"source"`     // Raw dataset name without extension
	Output     string   `json:"output"`     // Cleaned table name
	Columns    []Column `json:"columns"`    // Output columns, in order
	UniqueKey  []string `json:"uniqueKey"`  // Column(s) deduplicated on, if any
	Registers  []Kind   `json:"registers"`  // Kinds this table makes valid
	References []Kind   `json:"references"` // Kinds this table is filtered against
}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// StageFunc cleans one table within a run and reports what happened.
type StageFunc func(ctx context.Context, rc *RunContext) StageReport

// TableDefinition contains everything needed to process a table.
type TableDefinition struct {
	Info TableInfo
	Run  StageFunc
}

// Table is a cleaned dataset ready for persistence. Rows hold typed values
// (string or pgtype wrappers) in Columns order.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// StageStatus is the terminal state of one table within a run.
type StageStatus string

const (
	StageDone    StageStatus = "done"
	StageSkipped StageStatus = "skipped" // source missing
	StageFailed  StageStatus = "failed"  // load or persist error
)

// StageReport records per-table counts for one run.
type StageReport struct {
	Table      string        `json:"table"`
	Phase      Phase         `json:"phase"`
	Output     string        `json:"output"`
	Status     StageStatus   `json:"status"`
	Encoding   string        `json:"encoding,omitempty"`
	Loaded     int           `json:"loaded"`
	Rejected   int           `json:"rejected"`
	Duplicates int           `json:"duplicates"`
	Kept       int           `json:"kept"`
	Duration   time.Duration `json:"duration"`

	// MissingColumns lists expected columns absent from the source header.
	MissingColumns []string `json:"missingColumns,omitempty"`

	// Ragged counts records whose field count differs from the header.
	Ragged int `json:"ragged,omitempty"`

	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`

	err error
}

// Err returns the error that ended the stage, if any.
func (r StageReport) Err() error {
	return r.err
}

func (r *StageReport) fail(status StageStatus, err error) {
	r.Status = status
	r.err = err
	r.Error = err.Error()
	r.ErrorCode = MapError(err).Code
}

// RunStatus is the state of a pipeline run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunAborted   RunStatus = "aborted"
)

// RunReport summarizes a whole pipeline run.
type RunReport struct {
	RunID        string        `json:"runId"`
	Status       RunStatus     `json:"status"`
	StartedAt    time.Time     `json:"startedAt"`
	Duration     time.Duration `json:"duration"`
	Translations int           `json:"translations"`
	Stages       []StageReport `json:"stages"`
	Registry     map[Kind]int  `json:"registry"`
	Error        string        `json:"error,omitempty"`
}

// Stage returns the report for the given table key.
func (r *RunReport) Stage(key string) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.Table == key {
			return s, true
		}
	}
	return StageReport{}, false
}

// Rejected returns the total number of orphan rows dropped in the run.
func (r *RunReport) Rejected() int {
	total := 0
	for _, s := range r.Stages {
		total += s.Rejected
	}
	return total
}
