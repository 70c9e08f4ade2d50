package core

// pipeline.go runs the registered table processors in dependency order.
//
// Phases run strictly one after another: a stage never starts before every
// stage of the earlier phases finished and sealed the identifier kinds it
// produces. Within a phase, stages run sequentially in registry order.
//
// Failure semantics:
//   - A missing or unreadable source skips that table only
//   - A failed persist is recorded on the stage; its identifiers stay registered
//   - Only a sink that cannot be prepared aborts the whole run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/olistclean/internal/logging"
)

// Sink persists cleaned tables.
type Sink interface {
	// Prepare makes the output location ready. A Prepare error is fatal
	// for the run.
	Prepare(ctx context.Context) error

	// Write persists one cleaned table, replacing any previous version.
	Write(ctx context.Context, table *Table) error
}

// RunContext carries the per-run state every stage shares.
type RunContext struct {
	Registry    *IDRegistry
	Translation *Translation
	Source      Source
	Sink        Sink
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	// TranslationSource names the optional category translation table.
	// Empty disables translation.
	TranslationSource string

	// Progress receives human-readable progress text. Nil discards it.
	Progress io.Writer

	// Tables overrides the registered table definitions.
	Tables []TableDefinition
}

// Pipeline runs table definitions against a Source and a Sink.
type Pipeline struct {
	source Source
	sink   Sink
	opts   PipelineOptions
}

// NewPipeline creates a Pipeline.
func NewPipeline(source Source, sink Sink, opts PipelineOptions) *Pipeline {
	return &Pipeline{source: source, sink: sink, opts: opts}
}

// Run executes one full run with a fresh identifier registry.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	return p.RunWithRegistry(ctx, NewIDRegistry())
}

// RunWithRegistry executes one full run using reg, which must be empty.
// The report is returned even when the run aborts.
func (p *Pipeline) RunWithRegistry(ctx context.Context, reg *IDRegistry) (*RunReport, error) {
	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.ContextWithRunID(ctx, runID)
	}
	log := logging.FromContext(ctx)
	progress := NewProgress(p.opts.Progress)

	report := &RunReport{
		RunID:     runID,
		Status:    RunRunning,
		StartedAt: time.Now().UTC(),
		Stages:    []StageReport{},
	}
	finish := func(err error) (*RunReport, error) {
		report.Duration = time.Since(report.StartedAt)
		report.Registry = reg.Sizes()
		if err != nil {
			report.Status = RunAborted
			report.Error = err.Error()
			progress.Abort(err)
			log.Error("run aborted", "error", err)
			return report, err
		}
		report.Status = RunCompleted
		progress.Done(report)
		log.Info("run complete",
			"duration", report.Duration,
			"tables", len(report.Stages),
			"rejected", report.Rejected(),
		)
		return report, nil
	}

	log.Info("run started")

	if err := p.sink.Prepare(ctx); err != nil {
		return finish(fmt.Errorf("prepare sink: %w", err))
	}

	translation := p.loadTranslation(ctx, progress)
	report.Translations = translation.Len()

	rc := &RunContext{
		Registry:    reg,
		Translation: translation,
		Source:      p.source,
		Sink:        p.sink,
	}

	defs := p.opts.Tables
	if defs == nil {
		defs = All()
	} else {
		defs = append([]TableDefinition(nil), defs...)
		sortDefinitions(defs)
	}

	for _, phase := range Phases {
		var phaseDefs []TableDefinition
		for _, def := range defs {
			if def.Info.Phase == phase {
				phaseDefs = append(phaseDefs, def)
			}
		}
		if len(phaseDefs) == 0 {
			continue
		}

		progress.Phase(phase)
		for _, def := range phaseDefs {
			if err := ctx.Err(); err != nil {
				return finish(err)
			}

			sr := def.Run(ctx, rc)
			for _, kind := range def.Info.Registers {
				reg.Seal(kind)
			}

			report.Stages = append(report.Stages, sr)
			progress.Stage(sr)
		}
	}

	return finish(nil)
}

func (p *Pipeline) loadTranslation(ctx context.Context, progress *Progress) *Translation {
	if p.opts.TranslationSource == "" {
		return nil
	}

	log := logging.WithFields(ctx, "source", p.opts.TranslationSource)

	raw, err := p.source.Load(ctx, p.opts.TranslationSource)
	if err != nil {
		if errors.Is(err, ErrSourceMissing) {
			log.Info("translation table not found, categories kept as-is")
		} else {
			log.Warn("translation table unreadable, categories kept as-is", "error", err)
		}
		progress.Translation(0, err)
		return nil
	}

	t := LoadTranslation(raw)
	progress.Translation(t.Len(), nil)
	log.Debug("translation loaded", "labels", t.Len())
	return t
}
