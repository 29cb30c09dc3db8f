package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tierquote/internal/storage"
)

// jsonlFile is a JSONL output backed by a file, or by w when no path is set.
type jsonlFile struct {
	file *os.File
	*storage.JSONLWriter
}

func openJSONL(path string, appendMode bool, w io.Writer) (*jsonlFile, error) {
	if path == "" {
		return &jsonlFile{JSONLWriter: storage.NewJSONLWriter(w)}, nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return &jsonlFile{
		file:        file,
		JSONLWriter: storage.NewJSONLWriter(file),
	}, nil
}

func (f *jsonlFile) Close() error {
	if f == nil {
		return nil
	}
	if err := f.Flush(); err != nil {
		if f.file != nil {
			f.file.Close()
		}
		return err
	}
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}
