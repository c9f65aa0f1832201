package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/orient-correct/internal/domain"
	"github.com/couchcryptid/orient-correct/internal/observability"
)

// Extractor loads the north and east components of one observation.
type Extractor interface {
	Extract(ctx context.Context, northPath, eastPath string) (domain.ComponentPair, error)
}

// CorrectionSource resolves the correction for a station on a date.
type CorrectionSource interface {
	Lookup(station domain.StationID, date string) (domain.CorrectionRecord, error)
}

// Transformer applies a correction record to a component pair.
type Transformer interface {
	Transform(ctx context.Context, pair domain.ComponentPair, rec domain.CorrectionRecord) (domain.CorrectedPair, error)
}

// Loader persists a corrected pair.
type Loader interface {
	Load(ctx context.Context, pair domain.CorrectedPair) (domain.Outputs, error)
}

// Publisher announces a completed correction.
type Publisher interface {
	Publish(ctx context.Context, report domain.CorrectionReport) error
}

// Pipeline runs one extract-lookup-transform-load pass.
type Pipeline struct {
	extractor   Extractor
	source      CorrectionSource
	transformer Transformer
	loader      Loader
	publisher   Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, s CorrectionSource, t Transformer, l Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		source:      s,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
	}
}

// WithPublisher sets an optional report publisher.
func (p *Pipeline) WithPublisher(pub Publisher) *Pipeline {
	p.publisher = pub
	return p
}

// Run corrects the pair at northPath/eastPath. Nothing is written unless
// every stage before load succeeds. A publish failure is logged and counted
// but does not fail the run, since the outputs are already on disk.
func (p *Pipeline) Run(ctx context.Context, northPath, eastPath string) (domain.CorrectionReport, error) {
	start := domain.Now()

	var pair domain.ComponentPair
	err := p.stage(ctx, "extract", func() (err error) {
		pair, err = p.extractor.Extract(ctx, northPath, eastPath)
		return err
	})
	if err != nil {
		return domain.CorrectionReport{}, err
	}

	station, date := pair.North.StationID(), pair.North.Date()
	p.logger.Info("components loaded",
		"station", station,
		"date", date,
		"samples", pair.North.Len(),
		"sample_rate", pair.North.SampleRate(),
	)

	var rec domain.CorrectionRecord
	err = p.stage(ctx, "lookup", func() (err error) {
		rec, err = p.source.Lookup(station, date)
		return err
	})
	if err != nil {
		return domain.CorrectionReport{}, fmt.Errorf("lookup correction: %w", err)
	}

	var corrected domain.CorrectedPair
	err = p.stage(ctx, "transform", func() (err error) {
		corrected, err = p.transformer.Transform(ctx, pair, rec)
		return err
	})
	if err != nil {
		return domain.CorrectionReport{}, fmt.Errorf("transform: %w", err)
	}

	var out domain.Outputs
	err = p.stage(ctx, "load", func() (err error) {
		out, err = p.loader.Load(ctx, corrected)
		return err
	})
	if err != nil {
		return domain.CorrectionReport{}, fmt.Errorf("write corrected traces: %w", err)
	}

	report := domain.NewReport(corrected, out)
	p.metrics.CorrectionsApplied.Inc()
	p.metrics.SamplesRotated.Add(float64(corrected.North.Len()))
	p.metrics.RotationAngle.Set(rec.Average)
	p.metrics.LastSuccess.Set(float64(report.ProcessedAt.Unix()))

	if p.publisher != nil {
		err = p.stage(ctx, "publish", func() error {
			return p.publisher.Publish(ctx, report)
		})
		if err != nil {
			p.logger.Warn("publish correction report failed", "error", err, "station", station)
		} else {
			p.metrics.ReportsPublished.Inc()
		}
	}

	p.logger.Info("correction complete",
		"station", station,
		"average", rec.Average,
		"special", rec.Special,
		"north_out", out.North,
		"east_out", out.East,
		"duration", domain.Since(start),
	)
	return report, nil
}

// stage runs fn after checking for cancellation and records its duration
// and outcome under the given stage label.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := domain.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(name).Observe(domain.Since(start).Seconds())
	if err != nil {
		p.metrics.StageErrors.WithLabelValues(name).Inc()
		p.logger.Debug("stage failed", "stage", name, "error", err)
	}
	return err
}
