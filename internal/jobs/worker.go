package jobs

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"go.uber.org/zap"
)

// StatsPipeline is the chunked aggregation pipeline the worker drives.
type StatsPipeline interface {
	ProcessPage(ctx context.Context, userID uint64, year int) error
	Finalize(ctx context.Context, userID uint64, year int) error
}

// CardGenerator regenerates the wrapped card set once stats are final.
type CardGenerator interface {
	Generate(ctx context.Context, userID uint64, year int) ([]uint64, error)
}

type Worker struct {
	ID    string
	Repo  *Repo
	Stats StatsPipeline
	Cards CardGenerator
	Poll  time.Duration
	Log   *zap.SugaredLogger
}

func (w *Worker) Run(ctx context.Context) {
	poll := w.Poll
	if poll <= 0 {
		poll = 800 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				w.Log.Errorw("worker claim error", "err", err)
				continue
			}
			if job == nil {
				continue
			}
			w.Handle(ctx, job)
		}
	}
}

// Handle dispatches one claimed job. Errors are retried with exponential
// backoff up to MaxAttempts; success and no-op invocations both mark done.
func (w *Worker) Handle(ctx context.Context, job *Job) {
	var args PipelineArgs
	if err := json.Unmarshal(job.Payload, &args); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	var err error
	switch job.Type {
	case TypeStatsPage:
		err = w.Stats.ProcessPage(ctx, args.UserID, args.Year)
	case TypeStatsFinalize:
		err = w.Stats.Finalize(ctx, args.UserID, args.Year)
	case TypeCardsGenerate:
		_, err = w.Cards.Generate(ctx, args.UserID, args.Year)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
		return
	}

	if err != nil {
		w.Log.Warnw("job failed", "job_id", job.ID, "type", job.Type, "err", err)
		w.retry(job, err.Error())
		return
	}
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
