package table

import (
	"log/slog"
	"sync"

	"github.com/couchcryptid/orient-correct/internal/domain"
)

// FileSource loads the table at path on first lookup and reuses it after.
// A load error is returned from every lookup.
type FileSource struct {
	path   string
	logger *slog.Logger

	once  sync.Once
	table *Table
	err   error
}

// NewFileSource creates a lazily loaded table source.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// Lookup loads the table if needed and queries it.
func (s *FileSource) Lookup(station domain.StationID, date string) (domain.CorrectionRecord, error) {
	s.once.Do(func() {
		s.table, s.err = Load(s.path)
		if s.err == nil {
			s.logger.Debug("correction table loaded",
				"path", s.path,
				"rows", s.table.Len(),
				"stations", s.table.Stations(),
			)
		}
	})
	if s.err != nil {
		return domain.CorrectionRecord{}, s.err
	}
	return s.table.Lookup(station, date)
}
