package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/orient-correct/internal/domain"
)

// OrientationTransformer implements Transformer with the domain remap and
// rotation functions.
type OrientationTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates an OrientationTransformer.
func NewTransformer(logger *slog.Logger) *OrientationTransformer {
	return &OrientationTransformer{logger: logger}
}

func (t *OrientationTransformer) Transform(_ context.Context, pair domain.ComponentPair, rec domain.CorrectionRecord) (domain.CorrectedPair, error) {
	north, east, err := domain.Remap(pair.North, pair.East, rec.Special)
	if err != nil {
		return domain.CorrectedPair{}, err
	}
	if rec.Special != domain.SpecialNone {
		t.logger.Debug("components remapped", "station", rec.Station, "special", rec.Special)
	}

	north, east, err = domain.Rotate(north, east, rec.Average)
	if err != nil {
		return domain.CorrectedPair{}, err
	}

	return domain.CorrectedPair{
		North:     north,
		East:      east,
		NorthPath: pair.NorthPath,
		EastPath:  pair.EastPath,
		Record:    rec,
		Date:      pair.North.Date(),
	}, nil
}
