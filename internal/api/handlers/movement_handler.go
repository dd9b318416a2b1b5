package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/bestandsanalyse/internal/domain"
	"github.com/andresuchdata/bestandsanalyse/internal/export"
	"github.com/andresuchdata/bestandsanalyse/internal/service"
	"github.com/andresuchdata/bestandsanalyse/internal/sheet"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type MovementHandler struct {
	service   *service.MovementService
	uploadDir string
	maxBytes  int64
}

func NewMovementHandler(svc *service.MovementService, uploadDir string, maxBytes int64) *MovementHandler {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	if maxBytes <= 0 {
		maxBytes = sheet.DefaultMaxBytes
	}
	return &MovementHandler{service: svc, uploadDir: uploadDir, maxBytes: maxBytes}
}

// Upload imports the multipart field "file". The optional form field
// "sheet" selects the worksheet.
func (h *MovementHandler) Upload(c *gin.Context) {
	upload, ok := h.receive(c)
	if !ok {
		return
	}
	defer h.discard(upload)

	result, err := h.service.Import(c.Request.Context(), upload, c.PostForm("sheet"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Sheets lists the worksheets of an upload so clients can pick one.
func (h *MovementHandler) Sheets(c *gin.Context) {
	upload, ok := h.receive(c)
	if !ok {
		return
	}
	defer h.discard(upload)

	names, err := h.service.Sheets(c.Request.Context(), upload)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fileName": upload.Filename, "sheets": names})
}

func (h *MovementHandler) Report(c *gin.Context) {
	id := c.Param("id")

	info, err := h.service.Info(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	report, err := h.service.Report(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dataset": info, "report": report})
}

func (h *MovementHandler) Article(c *gin.Context) {
	// Item numbers may contain slashes, so the route takes the rest of the path.
	item := strings.TrimPrefix(c.Param("article"), "/")
	detail, err := h.service.ArticleDetails(c.Request.Context(), c.Param("id"), item)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Export serves a report section as a download. Query parameters are
// format (json, csv) and section.
func (h *MovementHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		h.fail(c, err)
		return
	}
	section, err := export.ParseSection(c.Query("section"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	name, err := h.service.Export(c.Request.Context(), c.Param("id"), section, format, &buf)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *MovementHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// receive stores the multipart upload on disk. It writes the error response
// itself and reports false when the request cannot proceed.
func (h *MovementHandler) receive(c *gin.Context) (*domain.UploadedFile, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided", "details": err.Error()})
		return nil, false
	}
	if header.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":   sheet.ErrFileTooLarge.Error(),
			"details": fmt.Sprintf("%s has %d bytes, limit is %d", header.Filename, header.Size, h.maxBytes),
		})
		return nil, false
	}

	upload, err := h.save(c, header)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("failed to save uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save uploaded file"})
		return nil, false
	}
	return upload, true
}

func (h *MovementHandler) save(c *gin.Context, header *multipart.FileHeader) (*domain.UploadedFile, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return nil, err
	}

	name := filepath.Base(header.Filename)
	path := filepath.Join(h.uploadDir, uuid.NewString()+"_"+name)
	if err := c.SaveUploadedFile(header, path); err != nil {
		return nil, err
	}

	return &domain.UploadedFile{Filename: name, Path: path, Size: header.Size}, nil
}

func (h *MovementHandler) discard(upload *domain.UploadedFile) {
	if err := os.Remove(upload.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", upload.Path).Msg("failed to remove upload")
	}
}

func (h *MovementHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("movement request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": rootMessage(err), "details": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrDatasetNotFound),
		errors.Is(err, service.ErrArticleNotFound):
		return http.StatusNotFound
	case errors.Is(err, sheet.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sheet.ErrUnsupportedType),
		errors.Is(err, sheet.ErrTypeMismatch):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, sheet.ErrEmptyFile),
		errors.Is(err, sheet.ErrNoSheets),
		errors.Is(err, sheet.ErrSheetNotFound),
		errors.Is(err, sheet.ErrNoHeader),
		errors.Is(err, sheet.ErrNoData),
		errors.Is(err, export.ErrEmptyReport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, export.ErrUnknownSection),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// rootMessage returns the message of the innermost wrapped error.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
