package models

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v5"

	ex "github.com/karaki0910/my-macro-project/extensions"
)

// CSVOptions controls how a series file is read. Zero values fall back to
// the first column for dates and the second for values.
type CSVOptions struct {
	DateColumn  string
	ValueColumn string
	HasHeader   bool
	Delimiter   rune
}

func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		HasHeader: true,
		Delimiter: ',',
	}
}

var csvDateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006",
}

// missing markers seen in exported statistical series
var csvMissingValues = map[string]bool{
	"": true, ".": true, "NA": true, "NaN": true, "null": true,
}

// LoadTimeSeriesCSV reads a (date, value) file into a TimeSeries. Markers
// like "." or "NA" become missing points rather than being dropped, so gaps
// stay visible to the decomposition pipeline.
func LoadTimeSeriesCSV(filename string, opts *CSVOptions) (*TimeSeries, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening series file: %w", err)
	}
	defer file.Close()

	name := strings.TrimSuffix(strings.ToUpper(filename[strings.LastIndex(filename, "/")+1:]), ".CSV")
	return LoadTimeSeriesCSVFromReader(file, name, opts)
}

func LoadTimeSeriesCSVFromReader(r io.Reader, name string, opts *CSVOptions) (*TimeSeries, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	dateIdx, valueIdx := 0, 1
	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("error reading series header: %w", err)
		}
		for i, h := range header {
			if opts.DateColumn != "" && ex.AreEqual(h, opts.DateColumn) {
				dateIdx = i
			}
			if opts.ValueColumn != "" && ex.AreEqual(h, opts.ValueColumn) {
				valueIdx = i
			}
		}
	}

	points := make([]SeriesPoint, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading series row: %w", err)
		}
		if dateIdx >= len(record) || valueIdx >= len(record) {
			return nil, fmt.Errorf("series row has %d columns, need at least %d", len(record), valueIdx+1)
		}

		timestamp, err := parseCSVDate(record[dateIdx])
		if err != nil {
			return nil, err
		}

		points = append(points, SeriesPoint{
			Timestamp: timestamp,
			Value:     parseCSVValue(record[valueIdx]),
		})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no rows found in series input")
	}

	return NewTimeSeries(name, points)
}

// SaveTimeSeriesCSV writes a series out with a date,value header. Missing
// points are written as empty cells.
func SaveTimeSeriesCSV(ts *TimeSeries, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating series file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"date", ts.Name}); err != nil {
		return err
	}

	for _, p := range ts.Points {
		value := ""
		if p.Value.Valid {
			value = strconv.FormatFloat(p.Value.Float64, 'f', -1, 64)
		}
		if err := writer.Write([]string{p.Timestamp.Format(time.DateOnly), value}); err != nil {
			return err
		}
	}

	return nil
}

func parseCSVDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, format := range csvDateFormats {
		t, err := time.Parse(format, raw)
		if err != nil {
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("error converting date %s to time.Time", raw)
}

func parseCSVValue(raw string) null.Float {
	raw = strings.TrimSpace(raw)
	if csvMissingValues[raw] {
		return null.NewFloat(0, false)
	}
	if conv, err := strconv.ParseFloat(raw, 64); err == nil {
		return null.NewFloat(conv, true)
	}
	return null.NewFloat(0, false)
}
