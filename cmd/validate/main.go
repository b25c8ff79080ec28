// Command validate checks the artifacts of a cleaning run against the raw
// export: the schema, the cleaned/cancellations partition, per-row cleaning
// invariants, and derived-feature consistency.
//
// Usage:
//
//	go run ./cmd/validate --config config.toml
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/pflag"

	"github.com/couchcryptid/flight-delay-eda/internal/adapter/csvfile"
	"github.com/couchcryptid/flight-delay-eda/internal/config"
	"github.com/couchcryptid/flight-delay-eda/internal/domain"
	"github.com/couchcryptid/flight-delay-eda/internal/pipeline"
)

// maxErrorsPerCheck caps how many rows one check reports.
const maxErrorsPerCheck = 10

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// artifacts are the tables one cleaning run reads and writes. cancellations
// is nil when the run wrote no side file.
type artifacts struct {
	raw           *domain.Dataset
	cleaned       *domain.Dataset
	cancellations *domain.Dataset
}

func main() {
	cfgPath := pflag.String("config", config.DefaultPath, "configuration file")
	pflag.Parse()

	cfg, err := config.Load(*cfgPath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {
	fmt.Println("=== Flight Data Integrity Validation ===")
	fmt.Println()

	a, err := load(cfg.Data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := validate(a)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d raw, %d cleaned, %d cancelled or diverted\n",
		a.raw.Len(), a.cleaned.Len(), rowCount(a.cancellations))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func load(data config.DataConfig) (artifacts, error) {
	var a artifacts
	var err error
	if a.raw, err = csvfile.Load(data.RawFile); err != nil {
		return a, fmt.Errorf("load raw: %w", err)
	}
	if a.cleaned, err = csvfile.Load(data.CleanedFile); err != nil {
		return a, fmt.Errorf("load cleaned (run Phase 2 first): %w", err)
	}
	side := csvfile.CancellationsPath(data.CleanedFile)
	if _, statErr := os.Stat(side); statErr == nil {
		if a.cancellations, err = csvfile.Load(side); err != nil {
			return a, fmt.Errorf("load cancellations: %w", err)
		}
	}
	return a, nil
}

func validate(a artifacts) []*phase {
	return []*phase{
		validateRawSchema(a.raw),
		validatePartition(a),
		validateCleanedRows(a.cleaned),
		validateFeatures(a.cleaned),
		validateAnalysisReady(a.cleaned),
	}
}

func rowCount(ds *domain.Dataset) int {
	if ds == nil {
		return 0
	}
	return ds.Len()
}

// ── Phases ──

func validateRawSchema(raw *domain.Dataset) *phase {
	p := &phase{name: "Raw schema"}
	if err := domain.ValidateSchema(raw, domain.RequiredColumns); err != nil {
		p.errorf("%v", err)
	}
	return p
}

// validatePartition checks the cleaned and cancellations tables are disjoint
// by flag and together no larger than the raw export.
func validatePartition(a artifacts) *phase {
	p := &phase{name: "Cleaned / cancellations partition"}

	if got := a.cleaned.Len() + rowCount(a.cancellations); got > a.raw.Len() {
		p.errorf("cleaned + cancellations = %d rows, raw has only %d", got, a.raw.Len())
	}

	cancelled := a.cleaned.Flags(domain.ColCancelled)
	diverted := a.cleaned.Flags(domain.ColDiverted)
	for i := range cancelled {
		if cancelled[i] || diverted[i] {
			if !p.limited() {
				p.errorf("cleaned row %d is cancelled or diverted", i)
			}
		}
	}

	if a.cancellations == nil {
		return p
	}
	cancelled = a.cancellations.Flags(domain.ColCancelled)
	diverted = a.cancellations.Flags(domain.ColDiverted)
	for i := range cancelled {
		if !cancelled[i] && !diverted[i] && !p.limited() {
			p.errorf("cancellations row %d is neither cancelled nor diverted", i)
		}
	}
	return p
}

// validateCleanedRows checks the columns cleaning must leave non-null.
func validateCleanedRows(cleaned *domain.Dataset) *phase {
	p := &phase{name: "Cleaned row invariants"}

	nonNull := []string{domain.ColArrDelay, domain.ColDepDelay, domain.ColDistance, domain.ColCancellationCode}
	nonNull = append(nonNull, domain.DelayCauseColumns...)
	for _, col := range nonNull {
		missing := cleaned.Missing(col)
		if missing == nil {
			p.errorf("column %s absent", col)
			continue
		}
		n := 0
		for _, m := range missing {
			if m {
				n++
			}
		}
		if n > 0 {
			p.errorf("%s has %d missing values", col, n)
		}
	}

	for i, h := range cleaned.Floats(domain.ColHourOfDay) {
		if (math.IsNaN(h) || h < 0 || h > 23) && !p.limited() {
			p.errorf("row %d: hour_of_day %v outside 0-23", i, h)
		}
	}
	return p
}

// validateFeatures recomputes each derived feature and compares it with the
// stored value.
func validateFeatures(cleaned *domain.Dataset) *phase {
	p := &phase{name: "Derived feature consistency"}

	hours := cleaned.Floats(domain.ColHourOfDay)
	labels := cleaned.Texts(domain.ColTimeOfDay)
	if hours != nil && labels != nil {
		for i := range hours {
			if math.IsNaN(hours[i]) {
				continue
			}
			want := string(domain.AssignTimeOfDay(int(hours[i])))
			if labels[i] != want && !p.limited() {
				p.errorf("row %d: time_of_day %q, hour %d gives %q", i, labels[i], int(hours[i]), want)
			}
		}
	}

	arr := cleaned.Floats(domain.ColArrDelay)
	delayed := cleaned.Texts(domain.ColIsDelayed)
	if arr != nil && delayed != nil {
		for i := range arr {
			want := fmt.Sprint(domain.IsDelayed(arr[i]))
			if delayed[i] != want && !p.limited() {
				p.errorf("row %d: is_delayed %s for arr_delay %v", i, delayed[i], arr[i])
			}
		}
	}

	origins := cleaned.Texts(domain.ColOrigin)
	dests := cleaned.Texts(domain.ColDest)
	stored := cleaned.Texts(domain.ColRoute)
	if origins != nil && dests != nil && stored != nil {
		for i := range stored {
			if origins[i] == "" || dests[i] == "" {
				continue
			}
			if want := domain.Route(origins[i], dests[i]); stored[i] != want && !p.limited() {
				p.errorf("row %d: route %q, want %q", i, stored[i], want)
			}
		}
	}
	return p
}

func validateAnalysisReady(cleaned *domain.Dataset) *phase {
	p := &phase{name: "Analysis readiness"}
	ds := cleaned.Copy()
	if _, err := domain.NormalizeDates(ds); err != nil {
		p.errorf("%v", err)
		return p
	}
	if err := pipeline.CheckAnalysisReady(ds); err != nil {
		p.errorf("%v", err)
	}
	return p
}

// limited reports whether the phase already holds enough row-level errors.
func (p *phase) limited() bool { return len(p.errors) >= maxErrorsPerCheck }
