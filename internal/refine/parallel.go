package refine

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sirkon/qualflow/internal/mir"
	"github.com/sirkon/qualflow/internal/store"
)

// Job is a method to analyze.
type Job struct {
	Method   *mir.Method
	Declared *store.Declared
}

// Outcome is a result of a job. Exactly one of Result and Err is set.
type Outcome struct {
	Job    Job
	Result *Result
	Err    error
}

// AnalyzeAll analyzes methods in parallel. A method failing to be analyzed does not
// affect others: its error is put into its outcome. The only error returned is the
// context one.
func (e *Engine) AnalyzeAll(ctx context.Context, jobs []Job) ([]Outcome, error) {
	res := make([]Outcome, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r, err := e.Analyze(job.Method, job.Declared)
			if err != nil {
				e.logger.Warn("method analysis failed", zap.String("method", job.Method.Name), zap.Error(err))
			}
			res[i] = Outcome{
				Job:    job,
				Result: r,
				Err:    err,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "analyze methods")
	}

	return res, nil
}
