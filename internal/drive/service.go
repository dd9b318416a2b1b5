package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType      = "application/vnd.google-apps.folder"
	nativeSheetMimeType = "application/vnd.google-apps.spreadsheet"
	xlsxMimeType        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsb": true,
	".xls":  true,
	".csv":  true,
}

// Service reads movement workbooks from Google Drive with a service account.
type Service struct {
	srv *drive.Service
}

func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	if strings.TrimSpace(credentialsJSON) == "" {
		return nil, fmt.Errorf("google drive credentials must be provided")
	}

	config, err := google.JWTConfigFromJSON([]byte(credentialsJSON), drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse drive credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive client: %w", err)
	}

	return &Service{srv: srv}, nil
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

// IsWorkbook reports whether the file can be imported, either by extension
// or because it is a native Google Sheet.
func (f *File) IsWorkbook() bool {
	if f.MimeType == nativeSheetMimeType {
		return true
	}
	return workbookExtensions[strings.ToLower(filepath.Ext(f.Name))]
}

// ImportName is the file name the importer sees. Native sheets are exported
// as xlsx and get that extension.
func (f *File) ImportName() string {
	if f.MimeType == nativeSheetMimeType && !strings.EqualFold(filepath.Ext(f.Name), ".xlsx") {
		return f.Name + ".xlsx"
	}
	return f.Name
}

// ListWorkbooks lists the importable files in a folder. An empty folder id
// means the drive root.
func (s *Service) ListWorkbooks(ctx context.Context, folderID string) ([]*File, error) {
	if folderID == "" {
		folderID = "root"
	}

	var files []*File
	err := s.srv.Files.List().
		Context(ctx).
		Q(fmt.Sprintf("'%s' in parents and trashed=false and mimeType!='%s'", folderID, folderMimeType)).
		Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)").
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				file := toFile(f)
				if file.IsWorkbook() {
					files = append(files, file)
				}
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("unable to list drive folder %s: %w", folderID, err)
	}
	return files, nil
}

// Fetch downloads a workbook and returns it with its import name.
func (s *Service) Fetch(ctx context.Context, fileID string) (*File, []byte, error) {
	meta, err := s.srv.Files.Get(fileID).
		Context(ctx).
		Fields("id, name, mimeType, modifiedTime, size").
		Do()
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read drive file %s: %w", fileID, err)
	}
	file := toFile(meta)
	if !file.IsWorkbook() {
		return nil, nil, fmt.Errorf("drive file %s (%s) is not a workbook", file.Name, file.MimeType)
	}

	var resp *http.Response
	if file.MimeType == nativeSheetMimeType {
		resp, err = s.srv.Files.Export(fileID, xlsxMimeType).Context(ctx).Download()
	} else {
		resp, err = s.srv.Files.Get(fileID).Context(ctx).Download()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("unable to download %s: %w", file.Name, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, nil, fmt.Errorf("unable to download %s: %w", file.Name, err)
	}
	return file, buf.Bytes(), nil
}

func toFile(f *drive.File) *File {
	return &File{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		ModifiedTime: f.ModifiedTime,
		Size:         f.Size,
	}
}
