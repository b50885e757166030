package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var catalogJSON = jsoniter.ConfigCompatibleWithStandardLibrary

type fileCatalogStorage struct {
	logger *zap.Logger
	config *FileConfig
}

// NewFileCatalogStorage provides a catalog store which keeps the whole
// collection as an indented JSON array inside a single file.
func NewFileCatalogStorage(logger *zap.Logger, fileConfig *FileConfig) CatalogStore {
	return &fileCatalogStorage{
		logger: logger,
		config: fileConfig,
	}
}

// Load reads and decodes the whole catalog file. A missing file
// is an empty catalog.
func (fcs *fileCatalogStorage) Load(_ context.Context) ([]Book, error) {
	data, err := os.ReadFile(fcs.config.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCatalogIO, fcs.config.Path, err)
	}
	return decodeCatalog(data)
}

// Save encodes the books and replaces the catalog file. The document is
// first written to a sibling temporary file which is then renamed over
// the previous one.
func (fcs *fileCatalogStorage) Save(_ context.Context, books []Book) error {
	data, err := encodeCatalog(books, fcs.config.Indent)
	if err != nil {
		return err
	}

	dir := filepath.Dir(fcs.config.Path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: create folder %s: %v", ErrCatalogIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(fcs.config.Path)+".tmp-")
	if err != nil {
		return fmt.Errorf("%w: create temporary file: %v", ErrCatalogIO, err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrCatalogIO, tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrCatalogIO, tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), fcs.config.Path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", ErrCatalogIO, fcs.config.Path, err)
	}
	fcs.logger.Debug("catalog saved", zap.String("file.path", fcs.config.Path), zap.Int("books", len(books)))
	return nil
}

// Close is a no-op since the file is only opened during calls.
func (fcs *fileCatalogStorage) Close() error {
	return nil
}

// decodeCatalog parses a catalog document. Blank documents are empty catalogs.
func decodeCatalog(data []byte) ([]Book, error) {
	books := []Book{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return books, nil
	}
	if err := catalogJSON.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogParse, err)
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// encodeCatalog renders the books as a JSON array. A positive indent
// produces a human readable document.
func encodeCatalog(books []Book, indent int) ([]byte, error) {
	if books == nil {
		books = []Book{}
	}
	var data []byte
	var err error
	if indent > 0 {
		data, err = catalogJSON.MarshalIndent(books, "", strings.Repeat(" ", indent))
	} else {
		data, err = catalogJSON.Marshal(books)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrCatalogIO, err)
	}
	return data, nil
}
