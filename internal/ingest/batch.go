package ingest

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/sensorframe/internal/frame"
	"github.com/banshee-data/sensorframe/internal/monitoring"
)

// BuildAll builds one frame per reading, running up to workers builds at a
// time (GOMAXPROCS when workers <= 0). Each builder is owned by a single
// goroutine. The result preserves reading order; the first failure cancels
// the remaining work and is returned annotated with its frame index.
func BuildAll(ctx context.Context, schema frame.Schema, readings []Reading, workers int) ([]*frame.Frame, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	frames := make([]*frame.Frame, len(readings))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range readings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := Build(schema, readings[i])
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			frames[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	monitoring.Logf("built %d frames (int_slots=%d float_slots=%d)", len(frames), schema.IntSlots, schema.FloatSlots)
	return frames, nil
}
