// Package storage persists reading sets between analysis runs: msgpack dump
// files for individual windows, and a sqlite cache so repeated runs can skip
// re-parsing the raw gauge data files.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ehmatthes/sitka-irg-analysis/internal/gauge"
)

// ReadingSet is a persisted window of readings around an anchor point, the
// unit of caching between runs.
type ReadingSet struct {
	Label    string          `msgpack:"label"`
	Anchor   gauge.Reading   `msgpack:"anchor"`
	Readings []gauge.Reading `msgpack:"readings"`
	SavedAt  time.Time       `msgpack:"saved_at"`
}

// DumpFilename returns the dump filename for a reading set, derived from the
// anchor date: reading_dump_09212019.msgpack.
func DumpFilename(set ReadingSet) string {
	return fmt.Sprintf("reading_dump_%s.msgpack", set.Anchor.Time.Format("01022006"))
}

// SaveReadingSet writes a reading set dump file into dir.
func SaveReadingSet(dir string, set ReadingSet) error {
	data, err := msgpack.Marshal(set)
	if err != nil {
		return fmt.Errorf("encoding reading set %s: %w", set.Label, err)
	}
	path := filepath.Join(dir, DumpFilename(set))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing reading set dump: %w", err)
	}
	return nil
}

// LoadReadingSet reads one reading set dump file.
func LoadReadingSet(path string) (ReadingSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReadingSet{}, fmt.Errorf("reading dump file: %w", err)
	}
	var set ReadingSet
	if err := msgpack.Unmarshal(data, &set); err != nil {
		return ReadingSet{}, fmt.Errorf("decoding dump file %s: %w", path, err)
	}
	return set, nil
}

// LoadReadingSets reads every reading set dump file in dir, in filename
// order.
func LoadReadingSets(dir string) ([]ReadingSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing dump directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".msgpack") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	sets := make([]ReadingSet, 0, len(names))
	for _, name := range names {
		set, err := LoadReadingSet(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}
