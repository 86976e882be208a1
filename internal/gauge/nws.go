package gauge

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// DefaultHydrographURL is the NWS AHPS hydrograph endpoint for the Indian
// River gauge near Sitka (irva2).
const DefaultHydrographURL = "https://water.weather.gov/ahps2/hydrograph_to_xml.php?gage=irva2&output=xml"

// hydrograph mirrors the subset of the AHPS XML document we care about: the
// observed datum list. Each datum carries a timestamp and a primary value
// (stage, in feet).
type hydrograph struct {
	XMLName  xml.Name `xml:"site"`
	Observed struct {
		Datums []hydrographDatum `xml:"datum"`
	} `xml:"observed"`
}

type hydrographDatum struct {
	Valid   string  `xml:"valid"`
	Primary float64 `xml:"primary"`
}

// FetchHydrograph fetches the current observed data for a gauge from the NWS
// hydrograph endpoint and returns the raw XML.
func FetchHydrograph(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching hydrograph data: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hydrograph endpoint returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading hydrograph response: %w", err)
	}
	return body, nil
}

// ParseHydrograph parses observed readings out of an NWS hydrograph XML
// document. The document lists the most recent observation first; the
// returned readings are sorted into ascending order.
func ParseHydrograph(data []byte) ([]Reading, error) {
	var doc hydrograph
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing hydrograph XML: %w", err)
	}
	if len(doc.Observed.Datums) == 0 {
		return nil, fmt.Errorf("hydrograph XML contains no observed readings")
	}

	readings := make([]Reading, 0, len(doc.Observed.Datums))
	for _, d := range doc.Observed.Datums {
		ts, err := parseHydrographTime(d.Valid)
		if err != nil {
			return nil, fmt.Errorf("malformed observed timestamp %q: %w", d.Valid, err)
		}
		readings = append(readings, Reading{Time: ts, Height: d.Primary})
	}

	sort.Slice(readings, func(i, j int) bool {
		return readings[i].Time.Before(readings[j].Time)
	})
	return readings, nil
}

func parseHydrographTime(s string) (time.Time, error) {
	// AHPS emits RFC3339-style timestamps with a -00:00 offset.
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-00:00"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp layout")
}
