package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage keeps every blob directly under a single shared root,
// addressed by its resolved filename. Names must already be sanitized
// by the upload planner before they reach this layer.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) pathFor(filename string) string {
	return filepath.Join(ls.basePath, filename)
}

func (ls *LocalStorage) Save(filename string, data io.Reader) error {
	file, err := os.Create(ls.pathFor(filename))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, data)
	return err
}

func (ls *LocalStorage) Open(filename string) (io.ReadCloser, error) {
	file, err := os.Open(ls.pathFor(filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %s not found: %w", filename, err)
		}
		return nil, err
	}

	return file, nil
}

// Size returns the on-disk size of the blob. An error is the caller's
// signal to skip the blob during quota accounting.
func (ls *LocalStorage) Size(filename string) (int64, error) {
	info, err := os.Stat(ls.pathFor(filename))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Exists reports whether a blob is currently present under the root.
func (ls *LocalStorage) Exists(filename string) bool {
	_, err := os.Stat(ls.pathFor(filename))
	return err == nil
}

// Delete removes the blob. A missing blob is not an error.
func (ls *LocalStorage) Delete(filename string) error {
	err := os.Remove(ls.pathFor(filename))
	if os.IsNotExist(err) {
		return nil
	}

	return err
}
