package pipeline

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/cache"
	"github.com/andresuchdata/bestandsanalyse/internal/service"
	"github.com/andresuchdata/bestandsanalyse/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodCSV = `Artikel;Bewegungsartentext;Erfassungsdatum;Menge;Betrag Hauswähr;Name des Benutzers
4711;Wareneingang;02.02.2024;10;25,00;SCHMIDT
0815;Inventurdifferenz;03.02.2024;-1;-2,50;SCHMIDT
`

type flakyStorage struct {
	mu       sync.Mutex
	objects  map[string]string
	failures map[string]int
	listErr  error
}

func (s *flakyStorage) ListObjects(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []storage.ObjectInfo
	for k, v := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *flakyStorage) GetObject(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures[key] > 0 {
		s.failures[key]--
		return nil, errors.New("connection reset")
	}
	return []byte(s.objects[key]), nil
}

func (s *flakyStorage) UploadObject(context.Context, string, []byte, string) error {
	return nil
}

func newImporter() *service.MovementService {
	return service.NewMovementService(
		cache.NewMemoryDatasetStore(time.Minute),
		cache.NewNoopReportCache(),
		service.Options{},
	)
}

func TestWorker_Run(t *testing.T) {
	source := &flakyStorage{
		objects: map[string]string{
			"imports/januar.csv":   goodCSV,
			"imports/februar.csv":  goodCSV,
			"imports/kaputt.csv":   "foo;bar\n1;2\n",
			"imports/notizen.txt":  "ignored",
			"archive/dezember.csv": goodCSV,
		},
		failures: map[string]int{"imports/februar.csv": 1},
	}

	cfg := DefaultBatchConfig("imports/")
	cfg.WorkerCount = 2
	cfg.RetryBackoff = 0

	run, err := NewWorker(source, newImporter(), cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusPartial, run.Status)
	assert.Equal(t, 3, run.TotalFiles)
	assert.Equal(t, 2, run.ProcessedFiles)
	assert.Equal(t, 1, run.FailedFiles)
	assert.Equal(t, 4, run.TotalRows)
	require.NotNil(t, run.CompletedAt)

	byKey := make(map[string]*Job)
	for _, job := range run.Jobs {
		byKey[job.Key] = job
	}

	februar := byKey["imports/februar.csv"]
	require.NotNil(t, februar)
	assert.Equal(t, JobStatusCompleted, februar.Status)
	assert.Equal(t, 2, februar.Attempts)
	require.NotNil(t, februar.Overview)
	assert.Equal(t, 2, februar.Overview.TotalRecords)

	kaputt := byKey["imports/kaputt.csv"]
	require.NotNil(t, kaputt)
	assert.Equal(t, JobStatusFailed, kaputt.Status)
	assert.NotEmpty(t, kaputt.ErrorMessage)
}

func TestWorker_RunAllGood(t *testing.T) {
	source := &flakyStorage{objects: map[string]string{"a.csv": goodCSV}}

	run, err := NewWorker(source, newImporter(), BatchConfig{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, 1, run.ProcessedFiles)
}

func TestWorker_RetriesExhausted(t *testing.T) {
	source := &flakyStorage{
		objects:  map[string]string{"a.csv": goodCSV},
		failures: map[string]int{"a.csv": 5},
	}
	cfg := DefaultBatchConfig("")
	cfg.RetryBackoff = 0

	run, err := NewWorker(source, newImporter(), cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, run.Jobs, 1)
	assert.Equal(t, JobStatusFailed, run.Jobs[0].Status)
	assert.Equal(t, 3, run.Jobs[0].Attempts)
	assert.Contains(t, run.Jobs[0].ErrorMessage, "connection reset")
}

func TestWorker_ListError(t *testing.T) {
	source := &flakyStorage{listErr: errors.New("access denied")}

	_, err := NewWorker(source, newImporter(), BatchConfig{}).Run(context.Background())
	assert.ErrorContains(t, err, "access denied")
}
