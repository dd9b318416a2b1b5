package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/domain"
	"github.com/andresuchdata/bestandsanalyse/internal/service"
)

// Importer turns one workbook into a stored dataset.
type Importer interface {
	ImportReader(ctx context.Context, fileName string, r io.Reader, sheetName string) (*service.ImportResult, error)
}

// BatchConfig holds configuration for a batch run over a storage prefix.
type BatchConfig struct {
	Prefix        string
	Sheet         string        // empty selects the first sheet of every workbook
	WorkerCount   int           // number of concurrent imports
	RetryAttempts int           // download attempts per object
	RetryBackoff  time.Duration // wait between download attempts
}

// DefaultBatchConfig returns sensible defaults
func DefaultBatchConfig(prefix string) BatchConfig {
	return BatchConfig{
		Prefix:        prefix,
		WorkerCount:   4,
		RetryAttempts: 3,
		RetryBackoff:  2 * time.Second,
	}
}

// RunStatus represents the state of a batch run
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusPartial    RunStatus = "partial"
	StatusFailed     RunStatus = "failed"
)

// JobStatus represents the state of a single workbook import
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Run tracks one batch execution.
type Run struct {
	Prefix         string     `json:"prefix"`
	Status         RunStatus  `json:"status"`
	TotalFiles     int        `json:"totalFiles"`
	ProcessedFiles int        `json:"processedFiles"`
	FailedFiles    int        `json:"failedFiles"`
	TotalRows      int        `json:"totalRows"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Jobs           []*Job     `json:"jobs"`
}

// Job tracks the import of a single workbook.
type Job struct {
	Key          string              `json:"key"`
	Status       JobStatus           `json:"status"`
	Attempts     int                 `json:"attempts"`
	ErrorMessage string              `json:"error,omitempty"`
	Dataset      *domain.DatasetInfo `json:"dataset,omitempty"`
	Overview     *domain.Overview    `json:"overview,omitempty"`
	ProcessedAt  *time.Time          `json:"processedAt,omitempty"`
}
