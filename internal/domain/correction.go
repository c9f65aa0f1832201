package domain

// CorrectionRecord is one row of the orientation reference table.
type CorrectionRecord struct {
	Station   StationID `json:"station"`
	StartDate string    `json:"start_date"` // inclusive, YYYYMMDD
	EndDate   string    `json:"end_date"`   // inclusive, YYYYMMDD
	Average   float64   `json:"average"`    // degrees
	Special   Special   `json:"special"`
}

// Covers reports whether date (YYYYMMDD) falls inside the record's window.
func (r CorrectionRecord) Covers(date string) bool {
	return r.StartDate <= date && date <= r.EndDate
}

// Overlaps reports whether two windows share at least one day.
func (r CorrectionRecord) Overlaps(other CorrectionRecord) bool {
	return r.StartDate <= other.EndDate && other.StartDate <= r.EndDate
}
