// Package slides provides the known landslide event catalog. Events are
// loaded once per analysis run from a JSON catalog and treated as read-only
// reference data.
package slides

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
)

// catalogTimeLayout matches the timestamps stored in the catalog, e.g.
// "2015-08-18 17:41:00+00:00". All catalog timestamps are UTC.
const catalogTimeLayout = "2006-01-02 15:04:05-07:00"

// eventNamespace seeds the deterministic per-event IDs so identical catalogs
// always produce identical IDs across runs.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("sitka-irg-analysis/slides"))

// Event represents a known landslide event.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Time        time.Time `json:"time"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Fatalities  int       `json:"fatalities"`
	PowerOutage *bool     `json:"power_outage,omitempty"`
	URLs        []string  `json:"urls,omitempty"`
}

// catalogRecord is the raw JSON shape of one catalog entry. Every field is
// decoded explicitly and validated; a record with missing or malformed
// required fields fails the load.
type catalogRecord struct {
	DtSlide      *string  `json:"dt_slide"`
	Name         *string  `json:"name"`
	DescLocation *string  `json:"desc_location"`
	Fatalities   *int     `json:"fatalities"`
	PowerOutage  *bool    `json:"power_outage"`
	URLs         []string `json:"urls"`
}

// LoadCatalog loads known slide events from a JSON catalog file. The returned
// events are sorted by time ascending.
func LoadCatalog(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading slide catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates a JSON slide catalog.
func ParseCatalog(data []byte) ([]Event, error) {
	var records []catalogRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing slide catalog: %w", err)
	}

	events := make([]Event, 0, len(records))
	for i, rec := range records {
		event, err := rec.toEvent()
		if err != nil {
			return nil, fmt.Errorf("slide catalog entry %d: %w", i, err)
		}
		events = append(events, event)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})
	return events, nil
}

func (rec catalogRecord) toEvent() (Event, error) {
	if rec.DtSlide == nil || *rec.DtSlide == "" {
		return Event{}, fmt.Errorf("missing required field dt_slide")
	}
	if rec.Name == nil || *rec.Name == "" {
		return Event{}, fmt.Errorf("missing required field name")
	}
	if rec.DescLocation == nil {
		return Event{}, fmt.Errorf("missing required field desc_location")
	}

	ts, err := time.Parse(catalogTimeLayout, *rec.DtSlide)
	if err != nil {
		return Event{}, fmt.Errorf("malformed dt_slide %q: %w", *rec.DtSlide, err)
	}

	event := Event{
		Time:        ts.UTC(),
		Name:        *rec.Name,
		Location:    *rec.DescLocation,
		PowerOutage: rec.PowerOutage,
		URLs:        rec.URLs,
	}
	if rec.Fatalities != nil {
		event.Fatalities = *rec.Fatalities
	}

	// Content-derived ID: stable across runs, so claimed/unclaimed tracking
	// and cached results stay reproducible.
	event.ID = uuid.NewSHA1(eventNamespace, []byte(event.Name+"|"+event.Time.Format(time.RFC3339)))
	return event, nil
}

func (e Event) String() string {
	return e.Name
}
