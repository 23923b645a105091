package ioutils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// Borrowed from https://github.com/docker/docker/blob/master/pkg/ioutils/writers_test.go

func TestWriteCloserWrapperClose(t *testing.T) {
	called := false
	writer := bytes.NewBuffer([]byte{})
	wrapper := NewWriteCloserWrapper(writer, func() error {
		called = true
		return nil
	})
	if err := wrapper.Close(); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatalf("writeCloserWrapper should have call the anonymous function.")
	}
}

func TestNopWriteCloser(t *testing.T) {
	writer := bytes.NewBuffer([]byte{})
	wrapper := NopWriteCloser(writer)
	if err := wrapper.Close(); err != nil {
		t.Fatal("NopWriteCloser always return nil on Close.")
	}
}

func TestOpenOutputStdout(t *testing.T) {
	var stdout bytes.Buffer
	w, err := openOutput("-", &stdout)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("1, 1, 3\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "1, 1, 3\n" {
		t.Errorf("unexpected stdout contents %q", stdout.String())
	}
}

func TestOpenOutputFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "latencies.csv")
	w, err := OpenOutput(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("2, 2, 1\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "2, 2, 1\n" {
		t.Errorf("unexpected file contents %q", data)
	}
}

func TestOpenOutputMissingDir(t *testing.T) {
	name := filepath.Join(t.TempDir(), "missing", "latencies.csv")
	if _, err := OpenOutput(name); err == nil {
		t.Fatal("expected an error creating a file in a missing directory")
	}
}
