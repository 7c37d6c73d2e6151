package core

import "io"

// FileStore is any service that can persist uploaded files.
type FileStore interface {
	// Save stores the content of r and returns the generated file name.
	Save(r io.Reader, ext string) (string, error)
	Open(name string) (io.ReadCloser, error)
	Remove(name string) error
}
