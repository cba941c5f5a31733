package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"StockScreener/internal/model"
)

// entry is the on-disk shape of a cached series.
type entry struct {
	Bars model.BarSeries `json:"bars"`
}

// Store keeps one JSON file per request fingerprint under a directory.
// Freshness is judged only by the file's modification time.
type Store struct {
	Dir string
	Now func() time.Time
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = "./temp/"
	}
	return &Store{Dir: dir, Now: time.Now}
}

// Key derives the deterministic fingerprint for a bar request.
func Key(symbol, timeframe string, limit int, adjustment, feed string) string {
	return fmt.Sprintf("%s_%s_%d_%s_%s", symbol, timeframe, limit, adjustment, feed)
}

// Path returns the cache file path for key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

// IsValid reports whether an entry exists for key and is younger than maxAge.
func (s *Store) IsValid(key string, maxAge time.Duration) bool {
	info, err := os.Stat(s.Path(key))
	if err != nil {
		return false
	}
	return s.now().Sub(info.ModTime()) < maxAge
}

// Get loads the series stored under key. Missing, unreadable and malformed
// entries are all reported as a miss.
func (s *Store) Get(key string) (model.BarSeries, bool) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	if e.Bars == nil {
		e.Bars = model.BarSeries{}
	}
	return e.Bars, true
}

// Put writes bars under key, replacing any previous entry. The payload is
// written to a temporary file and renamed into place.
func (s *Store) Put(key string, bars model.BarSeries) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if bars == nil {
		bars = model.BarSeries{}
	}
	data, err := json.Marshal(entry{Bars: bars})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
