// dao/csvDao.go
package dao

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"AquaLog.monitor/models"
)

// csvHeader is the fixed column order of every daily log file.
var csvHeader = []string{
	"timestamp", "water_level",
	"inside_up_temperature", "inside_up_humidity",
	"inside_down_temperature", "inside_down_humidity",
	"outside_up_temperature", "outside_up_humidity", "outside_up_lux",
	"outside_down_temperature", "outside_down_humidity", "outside_down_lux",
}

// CSVDao appends measurements to date-partitioned CSV files, one file per
// calendar day derived from the measurement timestamp in local time.
type CSVDao struct {
	dir string
	mu  sync.Mutex
}

func NewCSVDao(dir string) *CSVDao {
	return &CSVDao{dir: dir}
}

// WriteMeasurement appends one row to the partition file for the measurement's
// date, writing the header row first if the file is new. The row is assembled
// before the file is touched, so a measurement with missing nested fields
// leaves no partial write behind.
func (d *CSVDao) WriteMeasurement(m *models.Measurement) error {
	row, err := csvRow(m)
	if err != nil {
		return err
	}

	date := time.Unix(m.Timestamp, 0).Format("2006-01-02")
	filename := filepath.Join(d.dir, fmt.Sprintf("measurements_%s.csv", date))

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Check if file exists before opening, the header is only written once
	_, statErr := os.Stat(filename)
	fileExists := statErr == nil

	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if !fileExists {
		if err := writer.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	if err := writer.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Printf("❌ Error writing measurement to %s: %v", filename, err)
		return fmt.Errorf("failed to flush CSV row: %w", err)
	}

	return nil
}

// csvRow extracts the 12 column values positionally from the nested
// measurement structure. Any absent field is an error carrying its path.
func csvRow(m *models.Measurement) ([]string, error) {
	data := m.Data
	if data == nil {
		return nil, fmt.Errorf("measurement is missing field %q", "data")
	}

	values := []struct {
		path    string
		reading *float64
	}{
		{"data.water_level", data.WaterLevel},
		{"data.inside.up.temperature", temperature(side(data.Inside, "up"))},
		{"data.inside.up.humidity", humidity(side(data.Inside, "up"))},
		{"data.inside.down.temperature", temperature(side(data.Inside, "down"))},
		{"data.inside.down.humidity", humidity(side(data.Inside, "down"))},
		{"data.outside.up.temperature", temperature(side(data.Outside, "up"))},
		{"data.outside.up.humidity", humidity(side(data.Outside, "up"))},
		{"data.outside.up.lux", lux(side(data.Outside, "up"))},
		{"data.outside.down.temperature", temperature(side(data.Outside, "down"))},
		{"data.outside.down.humidity", humidity(side(data.Outside, "down"))},
		{"data.outside.down.lux", lux(side(data.Outside, "down"))},
	}

	row := make([]string, 0, len(csvHeader))
	row = append(row, strconv.FormatInt(m.Timestamp, 10))
	for _, v := range values {
		if v.reading == nil {
			return nil, fmt.Errorf("measurement is missing field %q", v.path)
		}
		row = append(row, strconv.FormatFloat(*v.reading, 'g', -1, 64))
	}

	return row, nil
}

func side(pair *models.ReadingPair, position string) *models.EnvReading {
	if pair == nil {
		return nil
	}
	if position == "up" {
		return pair.Up
	}
	return pair.Down
}

func temperature(r *models.EnvReading) *float64 {
	if r == nil {
		return nil
	}
	return r.Temperature
}

func humidity(r *models.EnvReading) *float64 {
	if r == nil {
		return nil
	}
	return r.Humidity
}

func lux(r *models.EnvReading) *float64 {
	if r == nil {
		return nil
	}
	return r.Lux
}
