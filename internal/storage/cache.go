package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ehmatthes/sitka-irg-analysis/internal/gauge"
)

// Cache is a sqlite-backed store of reading sets keyed by label. Timestamps
// are stored as RFC3339 strings and reading slices as msgpack blobs.
type Cache struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS reading_sets (
	label       TEXT PRIMARY KEY,
	anchor_time TEXT NOT NULL,
	start_time  TEXT NOT NULL,
	end_time    TEXT NOT NULL,
	readings    BLOB NOT NULL,
	saved_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reading_sets_anchor ON reading_sets(anchor_time);
`

// OpenCache opens (and if necessary initializes) a reading set cache at path.
// Use ":memory:" for an ephemeral cache.
func OpenCache(path string, logger *zap.SugaredLogger) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}
	return &Cache{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Save upserts a reading set into the cache.
func (c *Cache) Save(ctx context.Context, set ReadingSet) error {
	if len(set.Readings) == 0 {
		return fmt.Errorf("refusing to cache empty reading set %s", set.Label)
	}
	blob, err := msgpack.Marshal(set.Readings)
	if err != nil {
		return fmt.Errorf("encoding readings for %s: %w", set.Label, err)
	}

	savedAt := set.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO reading_sets (label, anchor_time, start_time, end_time, readings, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(label) DO UPDATE SET
			anchor_time = excluded.anchor_time,
			start_time  = excluded.start_time,
			end_time    = excluded.end_time,
			readings    = excluded.readings,
			saved_at    = excluded.saved_at`,
		set.Label,
		set.Anchor.Time.UTC().Format(time.RFC3339),
		set.Readings[0].Time.UTC().Format(time.RFC3339),
		set.Readings[len(set.Readings)-1].Time.UTC().Format(time.RFC3339),
		blob,
		savedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("caching reading set %s: %w", set.Label, err)
	}
	c.logger.Debugf("Cached reading set %s (%d readings)", set.Label, len(set.Readings))
	return nil
}

// Load fetches one reading set by label.
func (c *Cache) Load(ctx context.Context, label string) (ReadingSet, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT label, anchor_time, readings, saved_at FROM reading_sets WHERE label = ?`, label)
	return scanReadingSet(row.Scan)
}

// LoadAll fetches every cached reading set, ordered by anchor time.
func (c *Cache) LoadAll(ctx context.Context) ([]ReadingSet, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT label, anchor_time, readings, saved_at FROM reading_sets ORDER BY anchor_time, label`)
	if err != nil {
		return nil, fmt.Errorf("querying cached reading sets: %w", err)
	}
	defer rows.Close()

	var sets []ReadingSet
	for rows.Next() {
		set, err := scanReadingSet(rows.Scan)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cached reading sets: %w", err)
	}
	return sets, nil
}

func scanReadingSet(scan func(...any) error) (ReadingSet, error) {
	var set ReadingSet
	var anchorStr, savedAtStr string
	var blob []byte
	if err := scan(&set.Label, &anchorStr, &blob, &savedAtStr); err != nil {
		return ReadingSet{}, fmt.Errorf("scanning cached reading set: %w", err)
	}

	anchorTime, err := time.Parse(time.RFC3339, anchorStr)
	if err != nil {
		return ReadingSet{}, fmt.Errorf("malformed cached anchor time %q: %w", anchorStr, err)
	}
	savedAt, err := time.Parse(time.RFC3339, savedAtStr)
	if err != nil {
		return ReadingSet{}, fmt.Errorf("malformed cached saved_at %q: %w", savedAtStr, err)
	}

	var readings []gauge.Reading
	if err := msgpack.Unmarshal(blob, &readings); err != nil {
		return ReadingSet{}, fmt.Errorf("decoding cached readings for %s: %w", set.Label, err)
	}

	set.SavedAt = savedAt
	set.Readings = readings
	for _, r := range readings {
		if r.Time.Equal(anchorTime) {
			set.Anchor = r
			break
		}
	}
	if set.Anchor.Time.IsZero() {
		set.Anchor = gauge.Reading{Time: anchorTime}
	}
	return set, nil
}
