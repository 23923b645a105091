package ioutils

import (
	"fmt"
	"io"
	"os"
)

// Borrowed from https://github.com/docker/docker/blob/master/pkg/ioutils/writers.go

type writeCloserWrapper struct {
	io.Writer
	closer func() error
}

func (r *writeCloserWrapper) Close() error {
	return r.closer()
}

// NewWriteCloserWrapper returns a new io.WriteCloser.
func NewWriteCloserWrapper(r io.Writer, closer func() error) io.WriteCloser {
	return &writeCloserWrapper{
		Writer: r,
		closer: closer,
	}
}

// NopWriteCloser returns an io.WriteCloser whose Close does nothing.
func NopWriteCloser(w io.Writer) io.WriteCloser {
	return NewWriteCloserWrapper(w, func() error { return nil })
}

// OpenOutput opens name for writing a report. "-" is stdout, which is
// left open on Close. Files are synced before being closed.
func OpenOutput(name string) (io.WriteCloser, error) {
	return openOutput(name, os.Stdout)
}

func openOutput(name string, stdout io.Writer) (io.WriteCloser, error) {
	if name == "-" {
		return NopWriteCloser(stdout), nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return NewWriteCloserWrapper(f, func() error {
		if err := f.Sync(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}), nil
}
