package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/tilt/telemetry"
)

// Job is one independent evaluation in a batch.
type Job struct {
	Name   string
	Layout string
	Target int
}

// BatchResult holds the outcome of the job at the same index.
// Err is set instead of Result when the job failed.
type BatchResult struct {
	Job    Job
	Result Result
	Err    error
}

// EvaluateBatch runs jobs in parallel, at most engine.workers at a time.
// A failing job does not stop the others. Cancelling ctx stops jobs that
// have not started yet; they report ctx.Err().
func (e *Engine) EvaluateBatch(ctx context.Context, jobs []Job) ([]BatchResult, error) {
	results := make([]BatchResult, len(jobs))

	limit := e.workers
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, job := range jobs {
		results[i].Job = job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			initial, err := e.Parse(job.Layout)
			if err != nil {
				results[i].Err = err
				return nil
			}
			res, err := e.RunSource(job.Name, initial, job.Target)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// Summarize aggregates the successful results of a batch.
func Summarize(results []BatchResult) telemetry.BatchSummary {
	var runs []telemetry.RunStats
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		runs = append(runs, r.Result.Stats(r.Job.Name))
	}
	return telemetry.Summarize(runs, failed)
}
