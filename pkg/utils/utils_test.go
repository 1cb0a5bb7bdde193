package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir", "out.png")

	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte("first"))
		return err
	})
	if err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if string(got) != "first" {
		t.Errorf("Content mismatch: got %q, want %q", got, "first")
	}

	// A failed write must leave the previous file untouched and no temp files behind.
	writeErr := errors.New("boom")
	err = WriteFileAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return writeErr
	})
	if !errors.Is(err, writeErr) {
		t.Fatalf("Expected write error, got %v", err)
	}
	got, _ = os.ReadFile(path)
	if string(got) != "first" {
		t.Errorf("Previous content was clobbered: got %q", got)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the output file, found %d entries", len(entries))
	}
}

func TestWriteFileAtomicPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}
	path := filepath.Join(t.TempDir(), "perm.png")
	if err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte("data"))
		return err
	}); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if got := info.Mode().Perm(); got != FileMode {
		t.Errorf("File mode = %v, want %v", got, FileMode)
	}
}

func TestWriteFileAtomicEmptyPath(t *testing.T) {
	err := WriteFileAtomic("", func(io.Writer) error { return nil })
	if !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Expected ErrEmptyPath, got %v", err)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Live Trigonometry", "Live_Trigonometry"},
		{"src/main.go:12", "src-main.go:12"},
		{"", "plot"},
		{"..", "plot"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultPlotPath(t *testing.T) {
	want := filepath.Join(".plots", "Options.png")
	if got := DefaultPlotPath("Options"); got != want {
		t.Errorf("DefaultPlotPath = %q, want %q", got, want)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"plots/Options.jpg": "jpg",
		"a/b.PNG":           "png",
		"noext":             "png",
		"x.svg":             "svg",
	}
	for in, want := range tests {
		if got := FormatFromPath(in); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}
