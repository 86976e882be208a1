package gauge

import (
	"math"
	"testing"
	"time"
)

const sampleHydrograph = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<site generationtime="2020-11-01 20:01:00" id="irva2" name="Indian River at Sitka">
  <sigstages/>
  <zerodatum>0</zerodatum>
  <observed>
    <datum>
      <valid timezone="UTC">2020-11-01T19:45:00-00:00</valid>
      <primary name="Stage" units="ft">21.05</primary>
    </datum>
    <datum>
      <valid timezone="UTC">2020-11-01T19:30:00-00:00</valid>
      <primary name="Stage" units="ft">20.99</primary>
    </datum>
    <datum>
      <valid timezone="UTC">2020-11-01T19:15:00-00:00</valid>
      <primary name="Stage" units="ft">20.97</primary>
    </datum>
  </observed>
</site>
`

func TestParseHydrograph(t *testing.T) {
	readings, err := ParseHydrograph([]byte(sampleHydrograph))
	if err != nil {
		t.Fatalf("ParseHydrograph returned error: %v", err)
	}
	if len(readings) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(readings))
	}

	// The feed lists the most recent observation first; parsed readings
	// must come back ascending.
	want := time.Date(2020, time.November, 1, 19, 15, 0, 0, time.UTC)
	if !readings[0].Time.Equal(want) {
		t.Errorf("first reading at %s, want %s", readings[0].Time, want)
	}
	if math.Abs(readings[0].Height-20.97) > 1e-9 {
		t.Errorf("first height = %.2f, want 20.97", readings[0].Height)
	}
	if math.Abs(readings[2].Height-21.05) > 1e-9 {
		t.Errorf("last height = %.2f, want 21.05", readings[2].Height)
	}
}

func TestParseHydrographErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not xml", "not xml at all"},
		{"no observations", `<site><observed></observed></site>`},
		{"bad timestamp", `<site><observed><datum><valid>yesterday</valid><primary>20.97</primary></datum></observed></site>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseHydrograph([]byte(tt.data)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
