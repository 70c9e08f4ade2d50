package core

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Progress writes human-readable run progress. The text is for operators;
// RunReport is the machine-readable record.
type Progress struct {
	w io.Writer
}

// NewProgress creates a Progress writing to w. A nil w discards output.
func NewProgress(w io.Writer) *Progress {
	if w == nil {
		w = io.Discard
	}
	return &Progress{w: w}
}

var phaseTitles = map[Phase]string{
	PhaseMasters:    "Processing master tables",
	PhaseCustomers:  "Processing customers",
	PhaseOrders:     "Processing orders",
	PhaseDependents: "Processing items and details",
}

// Phase announces the start of a phase.
func (p *Progress) Phase(phase Phase) {
	fmt.Fprintf(p.w, "\n[PHASE %d] %s...\n", int(phase), phaseTitles[phase])
}

// Translation reports the outcome of loading the translation table.
func (p *Progress) Translation(labels int, err error) {
	if err != nil {
		fmt.Fprintf(p.w, "Category translation unavailable (%s); categories kept as-is.\n", FormatUserError(err))
		return
	}
	fmt.Fprintf(p.w, "Category translation loaded: %d labels.\n", labels)
}

// Stage reports one finished stage.
func (p *Progress) Stage(r StageReport) {
	switch r.Status {
	case StageSkipped:
		fmt.Fprintf(p.w, "  SKIPPED %s: %s\n", r.Table, FormatUserError(r.Err()))
		return
	case StageFailed:
		if r.Loaded == 0 {
			fmt.Fprintf(p.w, "  FAILED %s: %s\n", r.Table, FormatUserError(r.Err()))
			return
		}
	}

	if len(r.MissingColumns) > 0 {
		fmt.Fprintf(p.w, "  WARNING: %s source lacks columns: %s\n", r.Table, strings.Join(r.MissingColumns, ", "))
	}
	if r.Ragged > 0 {
		fmt.Fprintf(p.w, "  WARNING: %d %s records have an unexpected field count.\n", r.Ragged, r.Table)
	}
	if r.Rejected > 0 {
		fmt.Fprintf(p.w, "  WARNING: %d %s rows removed (unknown parent).\n", r.Rejected, r.Table)
	}
	if r.Duplicates > 0 {
		fmt.Fprintf(p.w, "  %d duplicate %s rows removed.\n", r.Duplicates, r.Table)
	}
	fmt.Fprintf(p.w, "  -> %s: %d records.\n", r.Table, r.Kept)

	if r.Status == StageFailed {
		fmt.Fprintf(p.w, "  FAILED %s: %s\n", r.Table, FormatUserError(r.Err()))
	}
}

// Done reports a completed run.
func (p *Progress) Done(r *RunReport) {
	var failed int
	for _, s := range r.Stages {
		if s.Status != StageDone {
			failed++
		}
	}

	if failed > 0 {
		fmt.Fprintf(p.w, "\nDONE with %d incomplete tables in %s.\n", failed, r.Duration.Round(time.Millisecond))
		return
	}
	fmt.Fprintf(p.w, "\nSUCCESS: all tables cleaned and validated in %s.\n", r.Duration.Round(time.Millisecond))
}

// Abort reports a run that stopped early.
func (p *Progress) Abort(err error) {
	fmt.Fprintf(p.w, "\nABORTED: %s\n", FormatUserError(err))
}
