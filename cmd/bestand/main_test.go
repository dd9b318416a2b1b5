package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andresuchdata/bestandsanalyse/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Artikel;Artikelkurztext;Bewegungsartentext;Erfassungsdatum;Menge;Betrag Hauswähr;Betrag zu EKP;VK-Wert mit MWST;Name des Benutzers
4711;Milch;Wareneingang;02.02.2024;10;25,00;15,00;30,00;SCHMIDT
0815;Brot;Inventurdifferenz;03.02.2024;-1;-2,50;-1,50;-3,00;SCHMIDT
`

type memoryStorage struct {
	objects map[string][]byte
}

func (m *memoryStorage) ListObjects(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for k, v := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	return out, nil
}

func (m *memoryStorage) GetObject(_ context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (m *memoryStorage) UploadObject(_ context.Context, key string, data []byte, _ string) error {
	m.objects[key] = data
	return nil
}

func useMemoryStorage(t *testing.T) *memoryStorage {
	t.Helper()
	store := &memoryStorage{objects: map[string][]byte{}}
	previous := newStorage
	newStorage = func() (storage.ObjectStorage, error) { return store, nil }
	t.Cleanup(func() { newStorage = previous })
	return store
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bestand.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"bestand"}, args...))
	return out.String(), err
}

func TestReportCommand(t *testing.T) {
	out, err := run(t, "report", writeSample(t))
	require.NoError(t, err)

	var result struct {
		Dataset struct {
			Rows int `json:"rows"`
		} `json:"dataset"`
		Report struct {
			Overview struct {
				TotalRecords int `json:"totalRecords"`
			} `json:"overview"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Dataset.Rows)
	assert.Equal(t, 2, result.Report.Overview.TotalRecords)
}

func TestArticleCommand(t *testing.T) {
	out, err := run(t, "article", "--item", "0815", writeSample(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"artikel": "0815"`)

	_, err = run(t, "article", "--item", "9999", writeSample(t))
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	t.Run("to file", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "artikel.csv")
		_, err := run(t, "export", "--section", "byArticle", "--out", dest, writeSample(t))
		require.NoError(t, err)

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"Milch"`)
	})

	t.Run("upload", func(t *testing.T) {
		store := useMemoryStorage(t)
		_, err := run(t, "export", "--format", "json", "--section", "financial", "--upload-key", "exports/fin.json", writeSample(t))
		require.NoError(t, err)
		assert.Contains(t, string(store.objects["exports/fin.json"]), `"profitMargin"`)
	})

	t.Run("bad section", func(t *testing.T) {
		_, err := run(t, "export", "--section", "charts", writeSample(t))
		assert.Error(t, err)
	})
}

func TestObjectSource(t *testing.T) {
	store := useMemoryStorage(t)
	store.objects["imports/2024/bestand.csv"] = []byte(sampleCSV)

	out, err := run(t, "sheets", "--object", "imports/2024/bestand.csv")
	require.NoError(t, err)
	assert.Equal(t, "bestand\n", out)
}

func TestMissingSource(t *testing.T) {
	_, err := run(t, "report")
	assert.ErrorIs(t, err, errNoSource)
}

func TestBatchCommand(t *testing.T) {
	store := useMemoryStorage(t)
	store.objects["imports/januar.csv"] = []byte(sampleCSV)
	store.objects["imports/leer.csv"] = []byte("foo;bar\n1;2\n")
	store.objects["other/februar.csv"] = []byte(sampleCSV)

	out, err := run(t, "batch", "--prefix", "imports/", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "imports/januar.csv")
	assert.Contains(t, out, "imports/leer.csv")
	assert.NotContains(t, out, "other/februar.csv")
	assert.Contains(t, out, "partial: 1/2 imported, 2 rows")

	out, err = run(t, "batch", "--prefix", "imports/januar", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "completed"`)
}
