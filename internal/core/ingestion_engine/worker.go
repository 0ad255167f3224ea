package ingestion_engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Crawlexa/internal/core"
)

// IngestJob is one crawl submitted over the API, identified by its run ID.
type IngestJob struct {
	RunID string
	URL   string
	Opts  IngestOptions
}

// Worker drains the job queue and drives the pipeline, recording run state
// transitions in the run store so status lookups see queued -> running ->
// complete or failed.
type Worker struct {
	pipeline *Pipeline
	runs     core.RunStore
	jobs     chan IngestJob
}

// NewWorker constructs the worker with a bounded job queue (64).
func NewWorker(pipeline *Pipeline, runs core.RunStore) *Worker {
	return &Worker{
		pipeline: pipeline,
		runs:     runs,
		jobs:     make(chan IngestJob, 64),
	}
}

// Start launches numWorkers goroutines reading from the jobs channel.
// Workers exit when ctx is cancelled.
func (w *Worker) Start(ctx context.Context, numWorkers int) {
	for n := 1; n <= numWorkers; n++ {
		go func(n int) {
			for {
				select {
				case <-ctx.Done():
					logrus.Infof("ingest worker %d shutting down", n)
					return
				case job := <-w.jobs:
					logrus.Infof("ingest worker %d: run %s for %s", n, job.RunID, job.URL)
					w.processOne(ctx, job)
				}
			}
		}(n)
	}
}

// Enqueue schedules a job. Blocks if the queue is full.
func (w *Worker) Enqueue(job IngestJob) {
	w.jobs <- job
}

func (w *Worker) processOne(ctx context.Context, job IngestJob) {
	run, ok := w.runs.Get(job.RunID)
	if !ok {
		logrus.Errorf("ingest worker: unknown run %s", job.RunID)
		return
	}

	run.Status = "running"
	w.runs.Put(run)

	// A crawl can outlive the request that queued it, so bound it on its own.
	proctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	outcome, err := w.pipeline.IngestURL(proctx, job.URL, job.Opts)
	if err != nil {
		logrus.Errorf("ingest worker: run %s failed: %v", job.RunID, err)
		run.Status = "failed"
		run.Error = err.Error()
		run.Outcome = outcome
		w.runs.Put(run)
		return
	}

	run.Status = "complete"
	run.Outcome = outcome
	w.runs.Put(run)
}
