package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flight-delay-eda/internal/config"
	"github.com/couchcryptid/flight-delay-eda/internal/domain"
	"github.com/couchcryptid/flight-delay-eda/internal/observability"
)

// Renderer draws the chart battery for a cleaned table and returns the
// paths of the files it wrote.
type Renderer interface {
	Render(ctx context.Context, cleaned *domain.Dataset) ([]string, error)
}

// Result carries the tables a run produced. Fields a phase does not touch are nil.
type Result struct {
	Raw     *domain.Dataset
	Cleaned *domain.Dataset
	Charts  []string
}

// Runner sequences the load, clean and plot phases.
type Runner struct {
	cfg      *config.Config
	loader   *Loader
	cleaner  *Cleaner
	renderer Renderer
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	out      io.Writer
	profile  bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets where the load summary is printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithClock sets the clock used to time phases.
func WithClock(c clockwork.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithProfile logs each phase duration and writes the metrics textfile after a run.
func WithProfile(enabled bool) Option {
	return func(r *Runner) { r.profile = enabled }
}

// NewRunner creates a Runner with the given renderer and observability.
func NewRunner(cfg *config.Config, renderer Renderer, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Runner {
	loader := NewLoader(logger, metrics)
	r := &Runner{
		cfg:      cfg,
		loader:   loader,
		cleaner:  NewCleaner(cfg, loader, logger, metrics),
		renderer: renderer,
		logger:   logger,
		metrics:  metrics,
		clock:    clockwork.NewRealClock(),
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes phase. All hands each table to the next stage in memory.
func (r *Runner) Run(ctx context.Context, phase Phase) (*Result, error) {
	r.logger.Info("phase started", "phase", phase.String())
	res := &Result{}
	var err error

	switch phase {
	case PhaseLoad:
		res.Raw, err = r.load()
	case PhaseClean:
		res.Cleaned, err = r.clean(ctx, nil)
	case PhasePlot:
		res.Charts, err = r.plot(ctx, nil)
	case PhaseAll:
		err = r.all(ctx, res)
	case PhaseSmoke:
		res.Cleaned, err = r.timedDataset("smoke", r.smoke)
	default:
		return nil, &UnknownPhaseError{Name: phase.String()}
	}
	if err != nil {
		return nil, err
	}

	if r.profile {
		if err := r.writeProfile(); err != nil {
			return nil, err
		}
	}
	r.logger.Info("phase finished", "phase", phase.String())
	return res, nil
}

func (r *Runner) all(ctx context.Context, res *Result) error {
	var err error
	if res.Raw, err = r.load(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if res.Cleaned, err = r.clean(ctx, res.Raw); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	res.Charts, err = r.plot(ctx, res.Cleaned)
	return err
}

func (r *Runner) load() (*domain.Dataset, error) {
	return r.timedDataset("load", func() (*domain.Dataset, error) {
		raw, err := r.loader.Raw(r.cfg.Data.RawFile)
		if err != nil {
			return nil, err
		}
		PrintSummary(r.out, raw)
		return raw, nil
	})
}

func (r *Runner) clean(ctx context.Context, raw *domain.Dataset) (*domain.Dataset, error) {
	return r.timedDataset("clean", func() (*domain.Dataset, error) {
		return r.cleaner.Clean(ctx, raw)
	})
}

// plot renders cleaned, or the cleaned file when cleaned is nil. It never
// runs the clean phase itself.
func (r *Runner) plot(ctx context.Context, cleaned *domain.Dataset) ([]string, error) {
	var charts []string
	err := r.timed("plot", func() error {
		if cleaned == nil {
			loaded, err := r.loader.Table(r.cfg.Data.CleanedFile, "cleaned", "run Phase 2 first")
			if err != nil {
				return err
			}
			cleaned = loaded
		}
		if err := r.prepare(cleaned); err != nil {
			return err
		}
		var err error
		charts, err = r.renderer.Render(ctx, cleaned)
		return err
	})
	return charts, err
}

// prepare makes sure dates are parsed and features derived, whatever the
// table's origin.
func (r *Runner) prepare(ds *domain.Dataset) error {
	unparsed, err := domain.NormalizeDates(ds)
	if err != nil {
		return fmt.Errorf("normalize dates: %w", err)
	}
	if unparsed > 0 {
		r.logger.Warn("unparseable flight dates set to missing", "count", unparsed)
	}
	if err := domain.EnrichFeatures(ds); err != nil {
		return fmt.Errorf("enrich features: %w", err)
	}
	return nil
}

func (r *Runner) timed(phase string, fn func() error) error {
	start := r.clock.Now()
	err := fn()
	elapsed := r.clock.Since(start)
	r.metrics.PhaseDuration.WithLabelValues(phase).Observe(elapsed.Seconds())
	if r.profile {
		r.logger.Info("phase timing", "phase", phase, "duration", elapsed, "ok", err == nil)
	}
	return err
}

func (r *Runner) timedDataset(phase string, fn func() (*domain.Dataset, error)) (*domain.Dataset, error) {
	var ds *domain.Dataset
	err := r.timed(phase, func() error {
		var err error
		ds, err = fn()
		return err
	})
	return ds, err
}

func (r *Runner) writeProfile() error {
	if err := os.MkdirAll(r.cfg.Plots.Dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", r.cfg.Plots.Dir, err)
	}
	path := r.cfg.MetricsTextfilePath()
	if err := r.metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	r.logger.Info("metrics textfile written", "path", path)
	return nil
}
