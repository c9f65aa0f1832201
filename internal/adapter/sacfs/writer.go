package sacfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/orient-correct/internal/domain"
	"github.com/couchcryptid/orient-correct/internal/sac"
)

// Writer implements pipeline.Loader, writing each corrected component to
// dir/<prefix><input basename>.
type Writer struct {
	dir    string
	prefix string
	logger *slog.Logger
}

// NewWriter creates a Writer. The directory is created on first Load.
func NewWriter(dir, prefix string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, prefix: prefix, logger: logger}
}

// OutputPath returns where the corrected version of input is written.
func (w *Writer) OutputPath(input string) string {
	return filepath.Join(w.dir, w.prefix+filepath.Base(input))
}

func (w *Writer) Load(_ context.Context, pair domain.CorrectedPair) (domain.Outputs, error) {
	out := domain.Outputs{
		North: w.OutputPath(pair.NorthPath),
		East:  w.OutputPath(pair.EastPath),
	}
	if out.North == out.East {
		return domain.Outputs{}, fmt.Errorf("north and east inputs share the basename %s", filepath.Base(pair.NorthPath))
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return domain.Outputs{}, fmt.Errorf("create output directory: %w", err)
	}
	if err := w.write(out.North, pair.North); err != nil {
		return domain.Outputs{}, err
	}
	if err := w.write(out.East, pair.East); err != nil {
		return domain.Outputs{}, err
	}
	return out, nil
}

func (w *Writer) write(path string, tr domain.Trace) error {
	f, err := sac.FromTrace(tr)
	if err != nil {
		return err
	}
	if err := sac.WriteFile(path, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.logger.Debug("sac file written", "path", path, "channel", tr.Channel, "npts", tr.Len())
	return nil
}
