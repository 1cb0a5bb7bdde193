// Package utils provides file helpers shared by the chart renderer and the live window.
package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPlotDir is where plots without an explicit path are written.
const DefaultPlotDir = ".plots"

// FileMode is the permission of files written by WriteFileAtomic.
const FileMode os.FileMode = 0o644

var ErrEmptyPath = errors.New("empty output path")

// WriteFileAtomic creates the parent directory of path if needed, streams the
// output of write into a temp file next to path and renames it into place.
// Readers of path never observe a partially written file.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	if path == "" {
		return ErrEmptyPath
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	// Create a temp file in the same directory to ensure atomic move
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
			err = errors.Join(err, fmt.Errorf("removing temp file %s: %w", tmpName, rmErr))
		}
	}() // Clean up if we fail

	if err = write(tmpFile); err != nil {
		_ = tmpFile.Close()
		return err
	}
	// CreateTemp uses 0600; plots should be readable like any other output file.
	if err = tmpFile.Chmod(FileMode); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// SanitizeFileName turns a caption into something usable as a file name.
func SanitizeFileName(caption string) string {
	name := strings.ReplaceAll(caption, "/", "-")
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, string(os.PathSeparator), "-")
	if name == "" || name == "." || name == ".." {
		name = "plot"
	}
	return name
}

// DefaultPlotPath returns the path a plot with the given caption is written to
// when no path was configured.
func DefaultPlotPath(caption string) string {
	return filepath.Join(DefaultPlotDir, SanitizeFileName(caption)+".png")
}

// FormatFromPath returns the lower-cased extension of path without the dot,
// defaulting to png.
func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "png"
	}
	return ext
}
