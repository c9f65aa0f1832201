// Command gensac writes a synthetic north/east SAC pair for a misoriented
// station, the true ground motion it was derived from, and the reference
// table row that undoes the misorientation. Running orientcorrect on the
// generated pair reproduces the truth files.
//
// Usage:
//
//	go run ./cmd/gensac \
//	  -out testdata/synthetic \
//	  -table testdata/synthetic/orient.csv \
//	  -station XX.ABC -start 2010-06-15T00:00:00Z -angle 10 -special E_N
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/orient-correct/internal/domain"
	"github.com/couchcryptid/orient-correct/internal/sac"
	"github.com/couchcryptid/orient-correct/internal/table"
)

type options struct {
	outDir    string
	tablePath string
	network   string
	station   string
	start     time.Time
	delta     float64
	npts      int
	angle     float64
	special   domain.Special
	backAz    float64
	seed      uint64
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("gensac", flag.ContinueOnError)
	var opts options
	station := fs.String("station", "XX.ABC", "station as NETWORK.STATION")
	start := fs.String("start", "2010-06-15T00:00:00Z", "start time of the first sample (RFC 3339)")
	special := fs.String("special", "nan", "channel instruction the table row carries")
	fs.StringVar(&opts.outDir, "out", "", "output directory for the SAC files")
	fs.StringVar(&opts.tablePath, "table", "", "reference table to create or append to (default <out>/orient.csv)")
	fs.Float64Var(&opts.delta, "delta", 0.01, "sample interval in seconds")
	fs.IntVar(&opts.npts, "npts", 6000, "samples per component")
	fs.Float64Var(&opts.angle, "angle", 10, "azimuth deviation the table row corrects, degrees")
	fs.Float64Var(&opts.backAz, "back-azimuth", 60, "direction the synthetic wave arrives from, degrees")
	fs.Uint64Var(&opts.seed, "seed", 1, "noise seed")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.outDir == "" {
		fs.Usage()
		return options{}, errors.New("missing required flag: -out")
	}
	if opts.tablePath == "" {
		opts.tablePath = filepath.Join(opts.outDir, "orient.csv")
	}
	var ok bool
	opts.network, opts.station, ok = strings.Cut(*station, ".")
	if !ok || opts.network == "" || opts.station == "" {
		return options{}, fmt.Errorf("station %q is not NETWORK.STATION", *station)
	}
	t, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		return options{}, fmt.Errorf("parse -start: %w", err)
	}
	opts.start = t.UTC()
	if opts.special, err = domain.ParseSpecial(*special); err != nil {
		return options{}, err
	}
	if opts.npts <= 0 || opts.delta <= 0 {
		return options{}, errors.New("-npts and -delta must be positive")
	}
	return opts, nil
}

func run(opts options) error {
	truthN, truthE := groundMotion(opts)

	// The recorded pair is the truth rotated back by the deviation, then put
	// through the channel instruction. Every instruction is its own inverse.
	recN, recE, err := domain.Rotate(truthN, truthE, -opts.angle)
	if err != nil {
		return err
	}
	recN, recE, err = domain.Remap(recN, recE, opts.special)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(opts.outDir, "truth"), 0o755); err != nil {
		return err
	}
	files := []struct {
		dir     string
		channel string
		trace   domain.Trace
	}{
		{opts.outDir, "BHN", recN},
		{opts.outDir, "BHE", recE},
		{filepath.Join(opts.outDir, "truth"), "BHN", truthN},
		{filepath.Join(opts.outDir, "truth"), "BHE", truthE},
	}
	for _, f := range files {
		path, err := writeTrace(opts, f.dir, f.channel, f.trace)
		if err != nil {
			return err
		}
		log.Printf("wrote %s (%d samples)", path, f.trace.Len())
	}

	if err := appendTableRow(opts); err != nil {
		return fmt.Errorf("write table row: %w", err)
	}
	log.Printf("table row for %s.%s in %s", opts.network, opts.station, opts.tablePath)
	return nil
}

// groundMotion synthesizes a decaying wavelet arriving from the back
// azimuth, projected onto true north and east, with a little noise.
func groundMotion(opts options) (domain.Trace, domain.Trace) {
	rng := rand.New(rand.NewPCG(opts.seed, 0))
	sinAz, cosAz := math.Sincos(opts.backAz * math.Pi / 180)
	onset := float64(opts.npts) * opts.delta / 4

	n := make([]float64, opts.npts)
	e := make([]float64, opts.npts)
	for i := range n {
		t := float64(i)*opts.delta - onset
		var amp float64
		if t >= 0 {
			amp = 1000 * math.Exp(-t/2) * math.Sin(2*math.Pi*1.5*t)
		}
		n[i] = amp*cosAz + rng.NormFloat64()
		e[i] = amp*sinAz + rng.NormFloat64()
	}
	base := domain.Trace{
		Network:   opts.network,
		Station:   opts.station,
		StartTime: opts.start,
		Delta:     opts.delta,
	}
	north, east := base, base
	north.Samples, east.Samples = n, e
	return north, east
}

func writeTrace(opts options, dir, channel string, tr domain.Trace) (string, error) {
	data := make([]float32, tr.Len())
	for i, v := range tr.Samples {
		data[i] = float32(v)
	}
	az := 0.0
	if channel == "BHE" {
		az = 90
	}
	f := sac.New(sac.Meta{
		Network:   opts.network,
		Station:   opts.station,
		Channel:   channel,
		StartTime: opts.start,
		Delta:     opts.delta,
		Azimuth:   az,
	}, data)
	path := filepath.Join(dir, fmt.Sprintf("%s.%s.%s.sac", opts.network, opts.station, channel))
	return path, sac.WriteFile(path, f)
}

// appendTableRow writes a row covering the start date's calendar year,
// creating the table with a header if needed.
func appendTableRow(opts options) error {
	_, statErr := os.Stat(opts.tablePath)
	f, err := os.OpenFile(opts.tablePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if errors.Is(statErr, os.ErrNotExist) {
		if err := w.Write(table.Columns); err != nil {
			return err
		}
	}
	year := opts.start.Year()
	row := []string{
		opts.network + "." + opts.station,
		fmt.Sprintf("%04d0101", year),
		fmt.Sprintf("%04d1231", year),
		strconv.FormatFloat(opts.angle, 'f', -1, 64),
		opts.special.String(),
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
