package window

import (
	"fmt"
	"image/png"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/sudorandom/debug-plotter/pkg/utils"
)

// Capture writes the last frame of every pane to dir as PNG and returns the
// written paths. Panes that never received a frame are skipped.
func (d *Display) Capture(dir string) ([]string, error) {
	d.mu.Lock()
	panes := append([]*pane(nil), d.panes...)
	d.mu.Unlock()

	var paths []string
	for i, p := range panes {
		frame := p.lastFrame()
		if frame == nil {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%02d-%s.png", i, utils.SanitizeFileName(p.title)))
		err := utils.WriteFileAtomic(path, func(w io.Writer) error {
			return png.Encode(w, frame)
		})
		if err != nil {
			return paths, fmt.Errorf("capture %q: %w", p.title, err)
		}
		d.Log.WithFields(logrus.Fields{"plot": p.title, "path": path}).Info("Captured frame")
		paths = append(paths, path)
	}
	return paths, nil
}
