// Package sacfs reads component pairs from, and writes corrected pairs to,
// SAC files on the local filesystem.
package sacfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/orient-correct/internal/domain"
	"github.com/couchcryptid/orient-correct/internal/sac"
)

// Reader implements pipeline.Extractor over local SAC files.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a Reader.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger}
}

// Extract checks that both paths name regular files before decoding either,
// so a missing east file is reported without reading the north one.
func (r *Reader) Extract(_ context.Context, northPath, eastPath string) (domain.ComponentPair, error) {
	for _, path := range []string{northPath, eastPath} {
		if err := checkInput(path); err != nil {
			return domain.ComponentPair{}, err
		}
	}

	north, err := r.read(northPath)
	if err != nil {
		return domain.ComponentPair{}, fmt.Errorf("read north component: %w", err)
	}
	east, err := r.read(eastPath)
	if err != nil {
		return domain.ComponentPair{}, fmt.Errorf("read east component: %w", err)
	}

	if north.StationID() != east.StationID() {
		r.logger.Warn("component station mismatch",
			"north", north.StationID(),
			"east", east.StationID(),
		)
	}

	return domain.ComponentPair{
		North:     north,
		East:      east,
		NorthPath: northPath,
		EastPath:  eastPath,
	}, nil
}

func (r *Reader) read(path string) (domain.Trace, error) {
	f, err := sac.ReadFile(path)
	if err != nil {
		return domain.Trace{}, err
	}
	tr := f.Trace()
	r.logger.Debug("sac file decoded",
		"path", path,
		"station", tr.StationID(),
		"channel", tr.Channel,
		"npts", tr.Len(),
		"byte_order", f.ByteOrder().String(),
	)
	return tr, nil
}

func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", domain.ErrInputNotFound, path)
	}
	return nil
}
