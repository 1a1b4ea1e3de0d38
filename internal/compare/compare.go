package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"simcheck/internal/align"
	"simcheck/internal/pipeline"
)

type Logger interface {
	Log(level, stage, message, detail string)
}

type Options struct {
	Threshold int
	Workers   int
	Logger    Logger
}

func DefaultOptions() Options {
	return Options{Threshold: align.DefaultThreshold}
}

type pairJob struct {
	slot int
	a, b *Document
}

// CompareAll aligns every unordered pair of docs and returns the complete
// similarity matrix. Pairs are independent and run on a worker pool; each
// job writes only its own slot.
func CompareAll(ctx context.Context, docs []*Document, opts Options) (*Matrix, error) {
	if len(docs) < 2 {
		return nil, &InsufficientInputError{Got: len(docs)}
	}
	ids := make([]string, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		if d == nil {
			return nil, fmt.Errorf("document %d is nil", i)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("duplicate document id %q", d.ID)
		}
		seen[d.ID] = struct{}{}
		ids = append(ids, d.ID)
	}

	jobs := make([]pairJob, 0, len(docs)*(len(docs)-1)/2)
	for i := range docs {
		for j := i + 1; j < len(docs); j++ {
			jobs = append(jobs, pairJob{slot: len(jobs), a: docs[i], b: docs[j]})
		}
	}

	logf(opts.Logger, "ANALYSIS", "pairwise comparison started", fmt.Sprintf("documents=%d pairs=%d workers=%d", len(docs), len(jobs), opts.Workers))
	start := time.Now()

	alignOpts := align.Options{Threshold: opts.Threshold}
	edges := make([]Edge, len(jobs))
	errs := pipeline.Run(ctx, jobs, opts.Workers, func(_ context.Context, job pairJob) error {
		x, y := job.a, job.b
		if y.ID < x.ID {
			x, y = y, x
		}
		res := align.AlignWithOptions(x.NormalizedText(), y.NormalizedText(), alignOpts)
		edges[job.slot] = Edge{
			DocumentA: x.ID,
			DocumentB: y.ID,
			Ratio:     res.Ratio,
			Segments:  res.Segments,
		}
		return nil
	})
	if len(errs) > 0 {
		err := errors.Join(errs...)
		logf(opts.Logger, "RISK", "pairwise comparison aborted", err.Error())
		return nil, fmt.Errorf("compare documents: %w", err)
	}

	logf(opts.Logger, "ANALYSIS", "pairwise comparison completed", fmt.Sprintf("pairs=%d duration_ms=%d", len(jobs), time.Since(start).Milliseconds()))
	return newMatrix(ids, edges), nil
}

func logf(logger Logger, level, message, detail string) {
	if logger == nil {
		return
	}
	logger.Log(level, "COMPARE", message, detail)
}
