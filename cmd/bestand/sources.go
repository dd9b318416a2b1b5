package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/andresuchdata/bestandsanalyse/internal/config"
	"github.com/andresuchdata/bestandsanalyse/internal/drive"
	"github.com/andresuchdata/bestandsanalyse/internal/storage"
	"github.com/urfave/cli/v2"
)

var errNoSource = errors.New("no workbook given: pass a file path, --object or --drive-file-id")

// workbook is the raw input of a command.
type workbook struct {
	name string
	data []byte
}

// newStorage is replaced in tests.
var newStorage = func() (storage.ObjectStorage, error) {
	return storage.New(config.Load().Storage)
}

func loadWorkbook(c *cli.Context) (*workbook, error) {
	ctx := c.Context

	switch {
	case c.String("object") != "":
		key := c.String("object")
		store, err := newStorage()
		if err != nil {
			return nil, err
		}
		data, err := store.GetObject(ctx, key)
		if err != nil {
			return nil, err
		}
		return &workbook{name: path.Base(key), data: data}, nil

	case c.String("drive-file-id") != "":
		svc, err := newDrive(ctx)
		if err != nil {
			return nil, err
		}
		file, data, err := svc.Fetch(ctx, c.String("drive-file-id"))
		if err != nil {
			return nil, err
		}
		return &workbook{name: file.ImportName(), data: data}, nil

	case c.Args().Len() > 0:
		name := c.Args().First()
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return &workbook{name: filepath.Base(name), data: data}, nil
	}

	return nil, errNoSource
}

func newDrive(ctx context.Context) (*drive.Service, error) {
	return drive.NewService(ctx, config.Load().Drive.CredentialsJSON)
}
