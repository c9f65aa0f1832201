// Package table loads the station orientation reference table and answers
// (station, date) lookups against it.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/orient-correct/internal/domain"
)

var (
	// ErrTableNotFound reports a missing reference table file.
	ErrTableNotFound = errors.New("correction table not found")

	// ErrTableSchema reports a missing column or an invalid row.
	ErrTableSchema = errors.New("invalid correction table")

	// ErrOverlappingRanges reports two rows for one station whose date
	// windows share a day.
	ErrOverlappingRanges = errors.New("overlapping correction date ranges")

	// ErrNoCorrection reports a lookup with no covering row.
	ErrNoCorrection = errors.New("no correction found")
)

// Columns lists the header names a table must contain.
var Columns = []string{"Station", "StartDate", "EndDate", "Average", "Special"}

// row is one CSV record before conversion.
type row struct {
	Station   string `validate:"required,contains=."`
	StartDate string `validate:"len=8,numeric"`
	EndDate   string `validate:"len=8,numeric"`
	Average   string `validate:"required,finite"`
	Special   string `validate:"special"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	rules := map[string]validator.Func{
		// ParseSpecial is the single source of truth for instruction codes.
		"special": func(fl validator.FieldLevel) bool {
			_, err := domain.ParseSpecial(fl.Field().String())
			return err == nil
		},
		// Any decimal or exponent form ParseFloat accepts, except NaN and ±Inf.
		"finite": func(fl validator.FieldLevel) bool {
			f, err := strconv.ParseFloat(fl.Field().String(), 64)
			return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %q validation: %v", tag, err))
		}
	}
	return v
}

// Table indexes correction records by station, each station's records
// sorted by start date with no overlaps.
type Table struct {
	byStation map[domain.StationID][]domain.CorrectionRecord
	rows      int
}

// Load reads and validates the table at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, path)
		}
		return nil, fmt.Errorf("open correction table: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse reads a table from CSV with a header row. Column order is free and
// extra columns are ignored.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrTableSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrTableSchema, err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	t := &Table{byStation: make(map[domain.StationID][]domain.CorrectionRecord)}
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTableSchema, err)
		}
		line, _ := cr.FieldPos(0)
		if blank(fields) {
			continue
		}

		rec, err := parseRow(fields, idx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrTableSchema, line, err)
		}
		t.byStation[rec.Station] = append(t.byStation[rec.Station], rec)
		t.rows++
	}

	if err := t.index(); err != nil {
		return nil, err
	}
	return t, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrTableSchema, strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(fields []string, idx map[string]int) (domain.CorrectionRecord, error) {
	get := func(col string) string {
		if i := idx[col]; i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}
	r := row{
		Station:   get("Station"),
		StartDate: get("StartDate"),
		EndDate:   get("EndDate"),
		Average:   get("Average"),
		Special:   get("Special"),
	}
	if err := validate.Struct(r); err != nil {
		return domain.CorrectionRecord{}, describe(err)
	}
	if r.StartDate > r.EndDate {
		return domain.CorrectionRecord{}, fmt.Errorf("StartDate %s is after EndDate %s", r.StartDate, r.EndDate)
	}

	avg, err := strconv.ParseFloat(r.Average, 64)
	if err != nil {
		return domain.CorrectionRecord{}, fmt.Errorf("Average %q: %w", r.Average, err)
	}
	special, err := domain.ParseSpecial(r.Special)
	if err != nil {
		return domain.CorrectionRecord{}, err
	}

	return domain.CorrectionRecord{
		Station:   domain.StationID(r.Station),
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Average:   avg,
		Special:   special,
	}, nil
}

// describe flattens validator errors into a single message.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s %q fails %s", fe.Field(), fe.Value(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// index sorts each station's records and rejects overlapping windows.
func (t *Table) index() error {
	for station, recs := range t.byStation {
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].StartDate < recs[j].StartDate })
		for i := 1; i < len(recs); i++ {
			if recs[i-1].Overlaps(recs[i]) {
				return fmt.Errorf("%w: %s %s-%s and %s-%s", ErrOverlappingRanges, station,
					recs[i-1].StartDate, recs[i-1].EndDate, recs[i].StartDate, recs[i].EndDate)
			}
		}
	}
	return nil
}

// Lookup returns the record for station whose window contains date
// (YYYYMMDD, both ends inclusive).
func (t *Table) Lookup(station domain.StationID, date string) (domain.CorrectionRecord, error) {
	recs := t.byStation[station]
	// First record starting after date; the candidate is the one before it.
	i := sort.Search(len(recs), func(i int) bool { return recs[i].StartDate > date })
	if i > 0 && recs[i-1].Covers(date) {
		return recs[i-1], nil
	}
	return domain.CorrectionRecord{}, fmt.Errorf("%w for station %s on %s", ErrNoCorrection, station, date)
}

// Len returns the number of records.
func (t *Table) Len() int { return t.rows }

// Stations returns the number of distinct stations.
func (t *Table) Stations() int { return len(t.byStation) }
