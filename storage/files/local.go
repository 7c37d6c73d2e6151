// Package files stores uploaded submission files on local disk under
// generated names, so that original (untrusted) file names never touch the
// filesystem.
package files

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type localStore struct {
	dir string
}

var _ core.FileStore = (*localStore)(nil) // interface compliance check

func NewLocalStore(dir string) (*localStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating uploads dir")
	}
	return &localStore{dir: dir}, nil
}

func (s *localStore) Save(r io.Reader, ext string) (string, error) {
	name := uuid.New().String() + ext
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	defer func() { _ = f.Close() }()

	if _, err = io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", errors.Wrap(err, "writing file")
	}
	return name, nil
}

func (s *localStore) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, s.clean(name)))
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	return f, nil
}

func (s *localStore) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, s.clean(name)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}
	return nil
}

// clean strips any path components from a stored file name.
func (s *localStore) clean(name string) string {
	return filepath.Base(strings.TrimSpace(name))
}
