package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/service"
	"github.com/andresuchdata/bestandsanalyse/internal/storage"
	"github.com/andresuchdata/bestandsanalyse/pkg/logger"
)

var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsb": true,
	".xls":  true,
	".csv":  true,
}

// Worker imports every workbook under a storage prefix.
type Worker struct {
	source   storage.ObjectStorage
	importer Importer
	config   BatchConfig
	mu       sync.Mutex
}

func NewWorker(source storage.ObjectStorage, importer Importer, config BatchConfig) *Worker {
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	if config.RetryAttempts < 1 {
		config.RetryAttempts = 1
	}
	return &Worker{source: source, importer: importer, config: config}
}

// Run imports all workbooks under the configured prefix. A failing workbook
// does not stop the others; the run then ends as partial. An error is only
// returned when listing fails or ctx is cancelled.
func (w *Worker) Run(ctx context.Context) (*Run, error) {
	log := logger.WithComponent("pipeline")

	run := &Run{
		Prefix:    w.config.Prefix,
		Status:    StatusPending,
		StartedAt: time.Now(),
	}

	objects, err := w.source.ListObjects(ctx, w.config.Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", w.config.Prefix, err)
	}
	for _, object := range objects {
		if !workbookExtensions[strings.ToLower(path.Ext(object.Key))] {
			continue
		}
		run.Jobs = append(run.Jobs, &Job{Key: object.Key, Status: JobStatusQueued})
	}
	run.TotalFiles = len(run.Jobs)

	log.Info().Str("prefix", w.config.Prefix).Int("files", run.TotalFiles).Msg("batch started")

	run.Status = StatusProcessing
	err = w.processJobsParallel(ctx, run)

	now := time.Now()
	run.CompletedAt = &now
	switch {
	case err != nil:
		run.Status = StatusFailed
		return run, err
	case run.FailedFiles > 0:
		run.Status = StatusPartial
	default:
		run.Status = StatusCompleted
	}

	log.Info().
		Str("status", string(run.Status)).
		Int("processed", run.ProcessedFiles).
		Int("failed", run.FailedFiles).
		Int("rows", run.TotalRows).
		Dur("took", now.Sub(run.StartedAt)).
		Msg("batch finished")

	return run, nil
}

// processJobsParallel processes jobs using a worker pool
func (w *Worker) processJobsParallel(ctx context.Context, run *Run) error {
	jobChan := make(chan *Job, len(run.Jobs))
	var wg sync.WaitGroup

	for i := 0; i < w.config.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				w.processJob(ctx, run, job)
			}
		}()
	}

	var err error
enqueue:
	for _, job := range run.Jobs {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break enqueue
		case jobChan <- job:
		}
	}
	close(jobChan)

	wg.Wait()
	return err
}

func (w *Worker) processJob(ctx context.Context, run *Run, job *Job) {
	w.mu.Lock()
	job.Status = JobStatusProcessing
	w.mu.Unlock()

	data, attempts, err := w.download(ctx, job.Key)
	var result *service.ImportResult
	if err == nil {
		result, err = w.importer.ImportReader(ctx, path.Base(job.Key), bytes.NewReader(data), w.config.Sheet)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	job.Attempts = attempts
	job.ProcessedAt = &now

	if err != nil {
		log := logger.WithComponent("pipeline")
		log.Warn().Err(err).Str("key", job.Key).Msg("batch import failed")
		job.Status = JobStatusFailed
		job.ErrorMessage = err.Error()
		run.FailedFiles++
		return
	}

	job.Status = JobStatusCompleted
	job.Dataset = &result.Dataset
	if result.Report != nil {
		job.Overview = &result.Report.Overview
	}
	run.ProcessedFiles++
	run.TotalRows += result.Dataset.Rows
}

// download fetches an object, retrying transient failures.
func (w *Worker) download(ctx context.Context, key string) ([]byte, int, error) {
	var lastErr error
	for attempt := 1; attempt <= w.config.RetryAttempts; attempt++ {
		data, err := w.source.GetObject(ctx, key)
		if err == nil {
			return data, attempt, nil
		}
		lastErr = err

		if attempt == w.config.RetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, attempt, ctx.Err()
		case <-time.After(w.config.RetryBackoff):
		}
	}
	return nil, w.config.RetryAttempts, lastErr
}
