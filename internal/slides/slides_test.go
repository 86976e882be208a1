package slides

import (
	"strings"
	"testing"
	"time"
)

const sampleCatalog = `[
  {
    "dt_slide": "2015-08-18 17:41:00+00:00",
    "name": "South Kramer Slide 8/2015",
    "desc_location": "South end of Kramer Ave",
    "fatalities": 3,
    "power_outage": null,
    "urls": ["https://example.com/kramer"]
  },
  {
    "dt_slide": "2011-11-12 19:00:00+00:00",
    "name": "Beaver Lake Slide 11/2011",
    "desc_location": "Beaver Lake, Bear Mountain shoreline",
    "fatalities": 0,
    "power_outage": false,
    "urls": []
  }
]`

func TestParseCatalog(t *testing.T) {
	events, err := ParseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	// Sorted by time: Beaver Lake (2011) before Kramer (2015).
	if events[0].Name != "Beaver Lake Slide 11/2011" {
		t.Errorf("first event = %s, want Beaver Lake", events[0].Name)
	}

	kramer := events[1]
	want := time.Date(2015, time.August, 18, 17, 41, 0, 0, time.UTC)
	if !kramer.Time.Equal(want) {
		t.Errorf("Kramer slide at %s, want %s", kramer.Time, want)
	}
	if kramer.Fatalities != 3 {
		t.Errorf("Kramer fatalities = %d, want 3", kramer.Fatalities)
	}
	if kramer.PowerOutage != nil {
		t.Errorf("Kramer power outage should be unknown, got %v", *kramer.PowerOutage)
	}
	if events[0].PowerOutage == nil || *events[0].PowerOutage {
		t.Error("Beaver Lake power outage should be false")
	}
}

func TestParseCatalogDeterministicIDs(t *testing.T) {
	first, err := ParseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog returned error: %v", err)
	}
	second, err := ParseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog returned error: %v", err)
	}

	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("event %d ID differs between parses: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
	if first[0].ID == first[1].ID {
		t.Error("distinct events should have distinct IDs")
	}
}

func TestParseCatalogValidation(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{
			name:    "missing dt_slide",
			json:    `[{"name": "X", "desc_location": "Y"}]`,
			wantErr: "dt_slide",
		},
		{
			name:    "missing name",
			json:    `[{"dt_slide": "2015-08-18 17:41:00+00:00", "desc_location": "Y"}]`,
			wantErr: "name",
		},
		{
			name:    "missing location",
			json:    `[{"dt_slide": "2015-08-18 17:41:00+00:00", "name": "X"}]`,
			wantErr: "desc_location",
		},
		{
			name:    "malformed timestamp",
			json:    `[{"dt_slide": "August 18th", "name": "X", "desc_location": "Y"}]`,
			wantErr: "dt_slide",
		},
		{
			name:    "not a list",
			json:    `{"dt_slide": "2015-08-18 17:41:00+00:00"}`,
			wantErr: "parsing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.json))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}
