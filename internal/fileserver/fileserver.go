// Package fileserver contains utilities for interacting with the fileserver.
package fileserver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const directoryPerms = 0o755

var ErrPathOutsideBase = errors.New("path escapes base directory")

type FileServer struct {
	baseDir string
}

func New(baseDir string) *FileServer {
	return &FileServer{
		baseDir: baseDir,
	}
}

func (f *FileServer) BaseDirectory() string {
	return f.baseDir
}

// cleanPath resolves path under baseDir and rejects anything that escapes it.
func cleanPath(baseDir, path string) (string, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolving base directory: %w", err)
	}

	full := filepath.Join(absBase, filepath.Clean("/"+path))
	if full != absBase && !strings.HasPrefix(full, absBase+string(filepath.Separator)) {
		return "", ErrPathOutsideBase
	}
	return full, nil
}

func (f *FileServer) Write(path string, data []byte) (location string, n int, err error) {
	if f == nil {
		return "", 0, nil
	}

	fullpath, err := cleanPath(f.baseDir, path)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullpath), directoryPerms); err != nil {
		return "", 0, fmt.Errorf("creating parent directories: %w", err)
	}

	file, err := os.Create(fullpath)
	if err != nil {
		return "", 0, fmt.Errorf("creating file: %w", err)
	}
	defer func() { _ = file.Close() }()

	n, err = file.Write(data)
	if err != nil {
		return "", 0, fmt.Errorf("writing file: %w", err)
	}

	return fullpath, n, nil
}

func (f *FileServer) Delete(path string) error {
	if f == nil {
		return nil
	}

	fullpath, err := cleanPath(f.baseDir, path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullpath); err != nil {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

func (f *FileServer) Exists(path string) (bool, error) {
	if f == nil {
		return false, nil
	}

	fullpath, err := cleanPath(f.baseDir, path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(fullpath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
