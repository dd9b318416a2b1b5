package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/cache"
	"github.com/andresuchdata/bestandsanalyse/internal/export"
	"github.com/andresuchdata/bestandsanalyse/internal/pipeline"
	"github.com/andresuchdata/bestandsanalyse/internal/service"
	"github.com/andresuchdata/bestandsanalyse/internal/sheet"
	"github.com/urfave/cli/v2"
)

// importWorkbook loads the command input into a throwaway in-memory service.
func importWorkbook(c *cli.Context) (*service.MovementService, *service.ImportResult, error) {
	wb, err := loadWorkbook(c)
	if err != nil {
		return nil, nil, err
	}

	svc := service.NewMovementService(
		cache.NewMemoryDatasetStore(time.Hour),
		cache.NewNoopReportCache(),
		service.Options{MaxConcurrentImports: 1, MaxUploadBytes: c.Int64("max-bytes")},
	)

	result, err := svc.ImportReader(c.Context, wb.name, bytes.NewReader(wb.data), c.String("sheet"))
	if err != nil {
		return nil, nil, err
	}
	return svc, result, nil
}

func runReport(c *cli.Context) error {
	_, result, err := importWorkbook(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := writeIndented(&buf, result); err != nil {
		return err
	}
	return emit(c, buf.Bytes(), export.FormatJSON.ContentType())
}

func runArticle(c *cli.Context) error {
	svc, result, err := importWorkbook(c)
	if err != nil {
		return err
	}

	detail, err := svc.ArticleDetails(c.Context, result.Dataset.ID, c.String("item"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := writeIndented(&buf, detail); err != nil {
		return err
	}
	return emit(c, buf.Bytes(), export.FormatJSON.ContentType())
}

func runExport(c *cli.Context) error {
	format, err := export.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	section, err := export.ParseSection(c.String("section"))
	if err != nil {
		return err
	}

	svc, result, err := importWorkbook(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := svc.Export(c.Context, result.Dataset.ID, section, format, &buf); err != nil {
		return err
	}
	return emit(c, buf.Bytes(), format.ContentType())
}

func runSheets(c *cli.Context) error {
	wb, err := loadWorkbook(c)
	if err != nil {
		return err
	}

	book, err := sheet.Open(wb.name, bytes.NewReader(wb.data), sheet.WithMaxBytes(c.Int64("max-bytes")))
	if err != nil {
		return err
	}
	defer book.Close()

	for _, name := range book.SheetNames() {
		fmt.Fprintln(c.App.Writer, name)
	}
	return nil
}

func runBatch(c *cli.Context) error {
	source, err := newStorage()
	if err != nil {
		return err
	}

	svc := service.NewMovementService(
		cache.NewMemoryDatasetStore(time.Hour),
		cache.NewNoopReportCache(),
		service.Options{MaxConcurrentImports: c.Int("workers")},
	)

	cfg := pipeline.DefaultBatchConfig(c.String("prefix"))
	cfg.Sheet = c.String("sheet")
	cfg.WorkerCount = c.Int("workers")

	run, err := pipeline.NewWorker(source, svc, cfg).Run(c.Context)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if c.Bool("json") {
		if err := writeIndented(&buf, run); err != nil {
			return err
		}
		return emit(c, buf.Bytes(), export.FormatJSON.ContentType())
	}

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSTATUS\tROWS\tCANCELLED\tUNKNOWN\tBETRAG HAUS\tERROR")
	for _, job := range run.Jobs {
		var rows, cancelled, unknown int
		if job.Dataset != nil {
			rows, cancelled, unknown = job.Dataset.Rows, job.Dataset.Cancelled, job.Dataset.Unknown
		}
		local := ""
		if job.Overview != nil {
			local = export.FormatAmount(job.Overview.TotalLocal)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n", job.Key, job.Status, rows, cancelled, unknown, local, job.ErrorMessage)
	}
	fmt.Fprintf(tw, "\n%s: %d/%d imported, %d rows\n", run.Status, run.ProcessedFiles, run.TotalFiles, run.TotalRows)
	if err := tw.Flush(); err != nil {
		return err
	}
	return emit(c, buf.Bytes(), "text/plain; charset=utf-8")
}

func runDrive(c *cli.Context) error {
	svc, err := newDrive(c.Context)
	if err != nil {
		return err
	}

	files, err := svc.ListWorkbooks(c.Context, c.String("folder"))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMODIFIED")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.ID, f.Name, f.ModifiedTime)
	}
	return tw.Flush()
}

// emit writes data to --out or stdout and uploads it when --upload-key is set.
func emit(c *cli.Context, data []byte, contentType string) error {
	if key := c.String("upload-key"); key != "" {
		store, err := newStorage()
		if err != nil {
			return err
		}
		if err := store.UploadObject(c.Context, key, data, contentType); err != nil {
			return err
		}
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		return nil
	}

	_, err := c.App.Writer.Write(data)
	return err
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
