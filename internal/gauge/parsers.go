package gauge

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Alaska standard/daylight offsets from UTC. The archival and weekly formats
// record local clock time plus a zone label; everything is normalized to UTC
// on the way in.
const (
	akstOffset = 9 * time.Hour
	akdtOffset = 8 * time.Hour
)

// ReadHxFormat reads readings from a file in the historical (hx) format:
//
//	Date,Type Source,Stage
//	2014-07-14 23:00:00,RZ,21.21
//
// Timestamps are stored in UTC. The first reading appears on line 5, and the
// file is in chronological order.
func ReadHxFormat(path string) ([]Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Header lines are free text, not CSV.
	reader.FieldsPerRecord = -1
	for i := 0; i < 4; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("reading header of %s: %w", path, err)
		}
	}

	var readings []Reading
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("malformed row in %s: %v", path, row)
		}
		// Some exports lead with a zeroed placeholder row.
		if strings.HasPrefix(row[0], "0000-") {
			continue
		}
		ts, err := time.Parse("2006-01-02 15:04:05", row[0])
		if err != nil {
			return nil, fmt.Errorf("malformed timestamp in %s: %w", path, err)
		}
		height, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed height in %s: %w", path, err)
		}
		readings = append(readings, Reading{Time: ts.UTC(), Height: height})
	}
	return readings, nil
}

// ReadArchFormat reads readings from a file in the USGS archival format:
//
//	USGS    15087700    2016-02-09 15:45    AKST    20.86   A   54.0    A
//
// Timestamps are local Alaska clock time with an AKST/AKDT zone label and are
// converted to UTC. The first reading appears on line 35, and the file is in
// chronological order.
func ReadArchFormat(path string) ([]Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	var readings []Reading
	for scanner.Scan() {
		lineNum++
		if lineNum <= 34 {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, fmt.Errorf("malformed line %d in %s: %q", lineNum, path, line)
		}
		dtStr := fields[2] + " " + fields[3]
		dtLocal, err := time.Parse("2006-01-02 15:04", dtStr)
		if err != nil {
			return nil, fmt.Errorf("malformed timestamp on line %d in %s: %w", lineNum, path, err)
		}
		var dtUTC time.Time
		switch fields[4] {
		case "AKST":
			dtUTC = dtLocal.Add(akstOffset)
		case "AKDT":
			dtUTC = dtLocal.Add(akdtOffset)
		default:
			return nil, fmt.Errorf("unknown timezone %q on line %d in %s", fields[4], lineNum, path)
		}
		heightStr := fields[5]
		if len(heightStr) > 5 {
			heightStr = heightStr[:5]
		}
		height, err := strconv.ParseFloat(heightStr, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed height on line %d in %s: %w", lineNum, path, err)
		}
		readings = append(readings, Reading{Time: dtUTC.UTC(), Height: height})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return readings, nil
}

// ReadWeeklyFormat reads readings from a file in the weekly gauge format:
//
//	10/26 12:15     20.97ft
//
// The weekly format carries no year, so the caller supplies it. Files come in
// two timestamp flavors: local AKDT clock time (utc=false) or UTC (utc=true).
// Data begins on line 6 and is in reverse chronological order; the returned
// readings are in ascending order.
func ReadWeeklyFormat(path string, year int, utc bool) ([]Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	var readings []Reading
	for scanner.Scan() {
		lineNum++
		if lineNum <= 5 {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("malformed line %d in %s: %q", lineNum, path, line)
		}
		date, clock := fields[0], fields[1]
		if len(date) < 5 || len(clock) < 5 {
			return nil, fmt.Errorf("malformed timestamp on line %d in %s: %q", lineNum, path, line)
		}
		month, err1 := strconv.Atoi(date[:2])
		day, err2 := strconv.Atoi(date[3:5])
		hour, err3 := strconv.Atoi(clock[:2])
		minute, err4 := strconv.Atoi(clock[3:5])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, fmt.Errorf("malformed timestamp on line %d in %s: %q", lineNum, path, line)
		}
		dt := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
		if !utc {
			dt = dt.Add(akdtOffset)
		}
		heightStr := fields[2]
		if len(heightStr) > 5 {
			heightStr = heightStr[:5]
		}
		height, err := strconv.ParseFloat(heightStr, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed height on line %d in %s: %w", lineNum, path, err)
		}
		readings = append(readings, Reading{Time: dt, Height: height})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	// Weekly files list the most recent reading first.
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}
	return readings, nil
}

// ReadGaugeFile reads readings from a data file, choosing the parser from the
// filename convention used in ir_data_clean/ (e.g.
// irva_utc_072014-022016_hx_format.txt, irva_akdt_022016-102019_arch_format.txt).
func ReadGaugeFile(path string) ([]Reading, error) {
	switch {
	case strings.Contains(path, "hx_format"):
		return ReadHxFormat(path)
	case strings.Contains(path, "arch_format"):
		return ReadArchFormat(path)
	default:
		return nil, fmt.Errorf("can't determine format of data file %s", path)
	}
}
