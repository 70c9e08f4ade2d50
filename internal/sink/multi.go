package sink

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/olistclean/internal/core"
)

// Multi fans every call out to several sinks concurrently. Tables are
// shared read-only between them.
type Multi struct {
	sinks []core.Sink
}

// NewMulti combines sinks. A single sink is returned unwrapped.
func NewMulti(sinks ...core.Sink) core.Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return &Multi{sinks: sinks}
}

// Prepare prepares every sink. The first error wins.
func (m *Multi) Prepare(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range m.sinks {
		g.Go(func() error { return s.Prepare(ctx) })
	}
	return g.Wait()
}

// Write writes t to every sink. The first error wins and cancels the
// context the remaining writes see.
func (m *Multi) Write(ctx context.Context, t *core.Table) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range m.sinks {
		g.Go(func() error { return s.Write(ctx, t) })
	}
	return g.Wait()
}
