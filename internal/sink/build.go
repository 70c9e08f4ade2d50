package sink

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/olistclean/internal/config"
	"github.com/JonMunkholm/olistclean/internal/core"
)

// FromConfig builds the sink set a configuration asks for: always the
// output directory, plus PostgreSQL and object storage when configured.
// The returned close function releases connections and is never nil.
func FromConfig(ctx context.Context, cfg *config.Config) (core.Sink, func(), error) {
	compression, err := ParseCompression(cfg.Output.Compression)
	if err != nil {
		return nil, func() {}, err
	}

	sinks := []core.Sink{NewFileSink(cfg.Output.Dir, compression)}
	closeFn := func() {}

	if cfg.Database.Enabled() {
		pool, err := OpenPool(ctx, cfg.Database)
		if err != nil {
			return nil, closeFn, err
		}
		closeFn = pool.Close
		sinks = append(sinks, NewPostgresSink(pool, cfg.Database.Schema))
		slog.Info("postgres sink enabled", "schema", cfg.Database.Schema)
	}

	if cfg.ObjectStore.Enabled() {
		client, err := NewObjectClient(cfg.ObjectStore)
		if err != nil {
			closeFn()
			return nil, func() {}, err
		}
		sinks = append(sinks, NewObjectSink(client, cfg.ObjectStore.Bucket, cfg.ObjectStore.Prefix, compression))
		slog.Info("object store sink enabled",
			"endpoint", cfg.ObjectStore.Endpoint,
			"bucket", cfg.ObjectStore.Bucket,
		)
	}

	return NewMulti(sinks...), closeFn, nil
}
