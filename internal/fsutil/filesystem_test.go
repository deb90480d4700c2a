package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryWriteReadRoundTrip(t *testing.T) {
	mfs := NewMemoryFileSystem()

	want := []byte("hello, memory fs")
	if err := mfs.WriteFile("/test.txt", want, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := mfs.ReadFile("/test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("ReadFile = %q, want %q", got, want)
	}
}

func TestMemoryCreateLandsOnClose(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/created.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("first ")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := w.Write([]byte("second")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, err := mfs.ReadFile("/created.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "first second" {
		t.Errorf("ReadFile = %q, want %q", got, "first second")
	}
}

func TestMemoryCreateTruncates(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.WriteFile("/update.txt", []byte("initial"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	w, err := mfs.Create("/update.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("replaced")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, err := mfs.ReadFile("/update.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "replaced" {
		t.Errorf("ReadFile = %q, want %q", got, "replaced")
	}
}

func TestMemoryReadMissingFile(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.ReadFile("/nonexistent.txt")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile error = %v, want fs.ErrNotExist", err)
	}
}

func TestMemoryCleansPaths(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.WriteFile("./dirty/../clean.txt", []byte("clean"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := mfs.ReadFile("clean.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "clean" {
		t.Errorf("ReadFile = %q, want %q", got, "clean")
	}
}

func TestMemoryMkdirAllCreatesParents(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.MkdirAll("/a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	for _, dir := range []string{"/a/b/c", "/a/b", "/a"} {
		if !mfs.HasDir(dir) {
			t.Errorf("HasDir(%q) = false, want true", dir)
		}
	}
}

func TestOSFileSystemRoundTrip(t *testing.T) {
	osfs := OSFileSystem{}
	dir := t.TempDir()

	nested := filepath.Join(dir, "sub", "deeper")
	if err := osfs.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	path := filepath.Join(nested, "data.txt")
	if err := osfs.WriteFile(path, []byte("os round trip"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := osfs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "os round trip" {
		t.Errorf("ReadFile = %q, want %q", got, "os round trip")
	}
}

func TestOSFileSystemCreate(t *testing.T) {
	osfs := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "created.txt")

	w, err := osfs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("via writer")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "via writer" {
		t.Errorf("file contents = %q, want %q", got, "via writer")
	}
}
