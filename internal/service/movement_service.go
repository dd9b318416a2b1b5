package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/analytics"
	"github.com/andresuchdata/bestandsanalyse/internal/cache"
	"github.com/andresuchdata/bestandsanalyse/internal/domain"
	"github.com/andresuchdata/bestandsanalyse/internal/export"
	"github.com/andresuchdata/bestandsanalyse/internal/sheet"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrArticleNotFound = errors.New("article not found")
)

const defaultMaxConcurrentImports = 4

// MovementService imports inventory movement workbooks and answers report
// queries against the imported datasets.
type MovementService struct {
	store    cache.DatasetStore
	reports  cache.ReportCache
	imports  *semaphore.Weighted
	maxBytes int64
	now      func() time.Time
}

type Options struct {
	MaxConcurrentImports int
	MaxUploadBytes       int64
}

// ImportResult is returned after a workbook has been imported.
type ImportResult struct {
	Dataset domain.DatasetInfo `json:"dataset"`
	Stats   sheet.Stats        `json:"stats"`
	Report  *domain.Report     `json:"report"`
}

func NewMovementService(store cache.DatasetStore, reports cache.ReportCache, opts Options) *MovementService {
	if reports == nil {
		reports = cache.NewNoopReportCache()
	}
	if opts.MaxConcurrentImports <= 0 {
		opts.MaxConcurrentImports = defaultMaxConcurrentImports
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = sheet.DefaultMaxBytes
	}
	return &MovementService{
		store:    store,
		reports:  reports,
		imports:  semaphore.NewWeighted(int64(opts.MaxConcurrentImports)),
		maxBytes: opts.MaxUploadBytes,
		now:      time.Now,
	}
}

// Import reads one sheet of the uploaded workbook, cleans it and stores the
// resulting dataset. An empty sheet name selects the first sheet.
func (s *MovementService) Import(ctx context.Context, file *domain.UploadedFile, sheetName string) (*ImportResult, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", file.Filename, err)
	}
	defer f.Close()

	return s.ImportReader(ctx, file.Filename, f, sheetName)
}

// ImportReader is Import for callers that already hold the workbook bytes,
// such as the CLI reading from object storage.
func (s *MovementService) ImportReader(ctx context.Context, fileName string, r io.Reader, sheetName string) (*ImportResult, error) {
	if err := s.imports.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.imports.Release(1)

	hash := sha1.New()
	wb, err := sheet.Open(fileName, io.TeeReader(r, hash), sheet.WithMaxBytes(s.maxBytes))
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, stats, err := wb.ReadRows(sheetName)
	if err != nil {
		return nil, err
	}

	dataset := analytics.NewDataset(rows)
	info := domain.DatasetInfo{
		ID:            uuid.NewString(),
		FileName:      fileName,
		Checksum:      hex.EncodeToString(hash.Sum(nil)),
		Sheet:         stats.Sheet,
		Sheets:        wb.SheetNames(),
		Columns:       stats.Columns,
		NonEmptyCells: stats.NonEmptyCells,
		RawRows:       len(rows),
		Rows:          dataset.Len(),
		Cancelled:     dataset.Cancelled(),
		Unknown:       dataset.Unknown(),
		ImportedAt:    s.now().UTC(),
	}

	if err := s.store.Save(ctx, info, dataset); err != nil {
		return nil, fmt.Errorf("failed to store dataset: %w", err)
	}

	report := dataset.Analyze()
	if err := s.reports.Set(ctx, info.ID, report); err != nil {
		log.Warn().Err(err).Msg("movements: cache set report failed")
	}

	log.Info().
		Str("dataset", info.ID).
		Str("file", fileName).
		Str("sheet", info.Sheet).
		Int("raw_rows", info.RawRows).
		Int("rows", info.Rows).
		Int("cancelled", info.Cancelled).
		Int("unknown", info.Unknown).
		Msg("movements imported")

	return &ImportResult{Dataset: info, Stats: stats, Report: report}, nil
}

// Sheets lists the sheet names of an upload without importing it.
func (s *MovementService) Sheets(_ context.Context, file *domain.UploadedFile) ([]string, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", file.Filename, err)
	}
	defer f.Close()

	wb, err := sheet.Open(file.Filename, f, sheet.WithMaxBytes(s.maxBytes))
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return wb.SheetNames(), nil
}

// Info returns the import metadata of a dataset.
func (s *MovementService) Info(ctx context.Context, id string) (domain.DatasetInfo, error) {
	stored, err := s.load(ctx, id)
	if err != nil {
		return domain.DatasetInfo{}, err
	}
	return stored.Info, nil
}

// Report returns the analysis of a dataset. The report is nil when no rows
// survived cleaning.
func (s *MovementService) Report(ctx context.Context, id string) (*domain.Report, error) {
	if report, ok, err := s.reports.Get(ctx, id); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("movements: cache get report failed")
	}

	stored, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	report := stored.Dataset.Analyze()
	if err := s.reports.Set(ctx, id, report); err != nil {
		log.Warn().Err(err).Msg("movements: cache set report failed")
	}
	return report, nil
}

func (s *MovementService) ArticleDetails(ctx context.Context, id, item string) (*domain.ArticleDetail, error) {
	stored, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	detail, ok := stored.Dataset.ArticleDetails(item)
	if !ok {
		return nil, fmt.Errorf("%q: %w", item, ErrArticleNotFound)
	}
	return detail, nil
}

// Export writes a report section or the working rows to w and returns the
// suggested download name. A CSV export without a section exports the rows,
// since the full report has no single tabular form.
func (s *MovementService) Export(ctx context.Context, id string, section export.Section, format export.Format, w io.Writer) (string, error) {
	stored, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}

	if format == export.FormatCSV && section == export.SectionAll {
		section = export.SectionRows
	}
	name := export.FileName(baseName(stored.Info.FileName), section, format, s.now())

	if section == export.SectionRows {
		rows := stored.Dataset.Rows()
		if format == export.FormatCSV {
			err = export.WriteRowsCSV(w, rows)
		} else {
			err = export.WriteRowsJSON(w, rows)
		}
		return name, err
	}

	report, err := s.Report(ctx, id)
	if err != nil {
		return "", err
	}

	switch format {
	case export.FormatCSV:
		err = export.WriteCSV(w, report, section)
	case export.FormatJSON:
		err = export.WriteJSON(w, report, section)
	default:
		err = fmt.Errorf("%q: %w", format, export.ErrUnknownFormat)
	}
	return name, err
}

// Delete drops a dataset and its cached report.
func (s *MovementService) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.reports.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Msg("movements: cache invalidate report failed")
	}
	return nil
}

func (s *MovementService) load(ctx context.Context, id string) (*cache.StoredDataset, error) {
	stored, ok, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrDatasetNotFound)
	}
	return stored, nil
}

func baseName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
