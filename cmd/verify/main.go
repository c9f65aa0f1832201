// Command verify checks a corrected SAC pair against its inputs: headers are
// preserved, sample counts match, every sample keeps its horizontal
// amplitude and, when a reference table or truth files are given, the
// rotation matches the expected correction.
//
// Usage:
//
//	go run ./cmd/verify \
//	  -north testdata/synthetic/XX.ABC.BHN.sac \
//	  -east testdata/synthetic/XX.ABC.BHE.sac \
//	  -corrected-dir correct_traces \
//	  -table testdata/synthetic/orient.csv \
//	  -truth-dir testdata/synthetic/truth
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/couchcryptid/orient-correct/internal/domain"
	"github.com/couchcryptid/orient-correct/internal/sac"
	"github.com/couchcryptid/orient-correct/internal/table"
)

// phase tracks pass/fail for a verification phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxReported caps per-sample errors listed for one phase.
const maxReported = 10

type options struct {
	north, east  string
	correctedDir string
	prefix       string
	tablePath    string
	truthDir     string
}

func main() {
	var opts options
	flag.StringVar(&opts.north, "north", "", "input north component")
	flag.StringVar(&opts.east, "east", "", "input east component")
	flag.StringVar(&opts.correctedDir, "corrected-dir", "correct_traces", "directory holding the corrected pair")
	flag.StringVar(&opts.prefix, "prefix", "correct.", "corrected file name prefix")
	flag.StringVar(&opts.tablePath, "table", "", "reference table; enables the rotation phase")
	flag.StringVar(&opts.truthDir, "truth-dir", "", "directory of expected corrected traces; enables the truth phase")
	flag.Parse()

	if opts.north == "" || opts.east == "" {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(opts, os.Stdout, os.Stderr))
}

// pair is one north/east pair loaded from disk.
type pair struct {
	north, east *sac.File
}

func (p pair) traces() (domain.Trace, domain.Trace) {
	return p.north.Trace(), p.east.Trace()
}

func loadPair(north, east string) (pair, error) {
	n, err := sac.ReadFile(north)
	if err != nil {
		return pair{}, err
	}
	e, err := sac.ReadFile(east)
	if err != nil {
		return pair{}, err
	}
	return pair{north: n, east: e}, nil
}

func run(opts options, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, "=== Orientation Correction Verification ===")
	fmt.Fprintln(stdout)

	input, err := loadPair(opts.north, opts.east)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: load input pair: %v\n", err)
		return 1
	}
	correctedPath := func(in string) string {
		return filepath.Join(opts.correctedDir, opts.prefix+filepath.Base(in))
	}
	corrected, err := loadPair(correctedPath(opts.north), correctedPath(opts.east))
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: load corrected pair: %v\n", err)
		return 1
	}

	var rec *domain.CorrectionRecord
	if opts.tablePath != "" {
		r, err := lookup(opts.tablePath, input)
		if err != nil {
			fmt.Fprintf(stderr, "FATAL: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Correction: %s Average:%s Special:%s\n",
			r.Station, domain.FormatAngle(r.Average), r.Special)
		rec = &r
	}

	phases := []*phase{
		verifyHeaders(input, corrected, swapped(input, corrected, rec)),
		verifyShape(input, corrected),
		verifyAmplitude(input, corrected),
	}
	if rec != nil {
		phases = append(phases, verifyRotation(input, corrected, *rec))
	}
	if opts.truthDir != "" {
		truth, err := loadPair(
			filepath.Join(opts.truthDir, filepath.Base(opts.north)),
			filepath.Join(opts.truthDir, filepath.Base(opts.east)),
		)
		if err != nil {
			fmt.Fprintf(stderr, "FATAL: load truth pair: %v\n", err)
			return 1
		}
		phases = append(phases, verifyTruth(truth, corrected))
	}

	fmt.Fprintln(stdout)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(stdout, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Samples: %d north, %d east\n", len(input.north.Data), len(input.east.Data))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(stdout, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(stdout, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(stdout, "\nAll checks passed.")
		return 0
	}
	fmt.Fprintln(stdout, "\nVerification FAILED.")
	return 1
}

func lookup(path string, input pair) (domain.CorrectionRecord, error) {
	tbl, err := table.Load(path)
	if err != nil {
		return domain.CorrectionRecord{}, err
	}
	n, _ := input.traces()
	return tbl.Lookup(n.StationID(), n.Date())
}

// swapped reports whether the corrected north file holds the east recording.
// Without a table record the headers decide.
func swapped(input, corrected pair, rec *domain.CorrectionRecord) bool {
	if rec != nil {
		return rec.Special.Swaps()
	}
	return len(sac.HeaderDiff(input.east, corrected.north)) == 0 &&
		len(sac.HeaderDiff(input.north, corrected.north)) > 0
}

// ── Phase 1: Header preservation ──
// Each corrected file keeps the header of the input it was derived from: the
// same slot, or the other slot when the channels were swapped.

func verifyHeaders(input, corrected pair, swapped bool) *phase {
	p := &phase{name: "Phase 1: Header Preservation"}
	northSrc, eastSrc := input.north, input.east
	if swapped {
		northSrc, eastSrc = input.east, input.north
	}
	for _, c := range []struct {
		slot    string
		in, out *sac.File
	}{
		{"north", northSrc, corrected.north},
		{"east", eastSrc, corrected.east},
	} {
		if diff := sac.HeaderDiff(c.in, c.out); len(diff) > 0 {
			p.errorf("%s: %d header words differ, first at byte %d", c.slot, len(diff), diff[0])
		}
	}
	return p
}

// ── Phase 2: Shape ──

func verifyShape(input, corrected pair) *phase {
	p := &phase{name: "Phase 2: Sample Counts"}
	if len(input.north.Data) != len(input.east.Data) {
		p.errorf("input north has %d samples, east %d", len(input.north.Data), len(input.east.Data))
	}
	if len(corrected.north.Data) != len(input.north.Data) {
		p.errorf("north: %d samples in, %d out", len(input.north.Data), len(corrected.north.Data))
	}
	if len(corrected.east.Data) != len(input.east.Data) {
		p.errorf("east: %d samples in, %d out", len(input.east.Data), len(corrected.east.Data))
	}
	if corrected.north.Delta() != input.north.Delta() || corrected.east.Delta() != input.east.Delta() {
		p.errorf("sample interval changed")
	}
	return p
}

// ── Phase 3: Amplitude ──
// Swaps, sign flips and rotations all keep sqrt(n²+e²) per sample.

func verifyAmplitude(input, corrected pair) *phase {
	p := &phase{name: "Phase 3: Horizontal Amplitude"}
	n := minLen(input, corrected)
	for i := 0; i < n; i++ {
		before := math.Hypot(float64(input.north.Data[i]), float64(input.east.Data[i]))
		after := math.Hypot(float64(corrected.north.Data[i]), float64(corrected.east.Data[i]))
		if !closeEnough(before, after) {
			report(p, "sample %d: amplitude %g became %g", i, before, after)
		}
	}
	return p
}

// ── Phase 4: Rotation ──
// Recomputes the correction from the inputs and the table record.

func verifyRotation(input, corrected pair, rec domain.CorrectionRecord) *phase {
	p := &phase{name: "Phase 4: Rotation Matches Table"}
	n, e := input.traces()
	n, e, err := domain.Remap(n, e, rec.Special)
	if err == nil {
		n, e, err = domain.Rotate(n, e, rec.Average)
	}
	if err != nil {
		p.errorf("recompute correction: %v", err)
		return p
	}
	compareSamples(p, "north", n.Samples, corrected.north.Data)
	compareSamples(p, "east", e.Samples, corrected.east.Data)
	return p
}

// ── Phase 5: Truth ──

func verifyTruth(truth, corrected pair) *phase {
	p := &phase{name: "Phase 5: Matches Truth Traces"}
	tn, te := truth.traces()
	compareSamples(p, "north", tn.Samples, corrected.north.Data)
	compareSamples(p, "east", te.Samples, corrected.east.Data)
	return p
}

func compareSamples(p *phase, slot string, want []float64, got []float32) {
	if len(want) != len(got) {
		p.errorf("%s: want %d samples, got %d", slot, len(want), len(got))
		return
	}
	for i := range want {
		if !closeEnough(want[i], float64(got[i])) {
			report(p, "%s sample %d: want %g, got %g", slot, i, want[i], got[i])
		}
	}
}

// report records a per-sample error, collapsing the tail once maxReported
// errors are listed.
func report(p *phase, format string, args ...any) {
	switch {
	case len(p.errors) < maxReported:
		p.errorf(format, args...)
	case len(p.errors) == maxReported:
		p.errorf("further sample errors omitted")
	}
}

func minLen(a, b pair) int {
	return min(len(a.north.Data), len(a.east.Data), len(b.north.Data), len(b.east.Data))
}

// closeEnough compares values that went through float32 storage.
func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= 1e-3+1e-5*math.Max(math.Abs(a), math.Abs(b))
}
