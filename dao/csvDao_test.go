package dao

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AquaLog.monitor/models"
)

func fptr(v float64) *float64 { return &v }

func testMeasurement(ts int64) *models.Measurement {
	return &models.Measurement{
		Timestamp: ts,
		Data: &models.MeasurementData{
			WaterLevel: fptr(15),
			Inside: &models.ReadingPair{
				Up:   &models.EnvReading{Temperature: fptr(21.5), Humidity: fptr(40)},
				Down: &models.EnvReading{Temperature: fptr(20.1), Humidity: fptr(42)},
			},
			Outside: &models.ReadingPair{
				Up:   &models.EnvReading{Temperature: fptr(18.3), Humidity: fptr(55), Lux: fptr(1200)},
				Down: &models.EnvReading{Temperature: fptr(17.9), Humidity: fptr(57), Lux: fptr(900)},
			},
		},
	}
}

func partitionFile(dir string, ts int64) string {
	date := time.Unix(ts, 0).Format("2006-01-02")
	return filepath.Join(dir, fmt.Sprintf("measurements_%s.csv", date))
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteMeasurementHeaderWrittenOnce(t *testing.T) {
	dir := t.TempDir()
	d := NewCSVDao(dir)
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local).Unix()

	for i := 0; i < 3; i++ {
		require.NoError(t, d.WriteMeasurement(testMeasurement(ts)))
	}

	rows := readRows(t, partitionFile(dir, ts))
	require.Len(t, rows, 4)
	assert.Equal(t, csvHeader, rows[0])
	for _, row := range rows[1:] {
		assert.Len(t, row, 12)
	}
}

func TestWriteMeasurementColumnOrder(t *testing.T) {
	dir := t.TempDir()
	d := NewCSVDao(dir)
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local).Unix()

	require.NoError(t, d.WriteMeasurement(testMeasurement(ts)))

	rows := readRows(t, partitionFile(dir, ts))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		fmt.Sprintf("%d", ts), "15",
		"21.5", "40",
		"20.1", "42",
		"18.3", "55", "1200",
		"17.9", "57", "900",
	}, rows[1])
}

func TestWriteMeasurementPartitionsByDate(t *testing.T) {
	dir := t.TempDir()
	d := NewCSVDao(dir)
	day1 := time.Date(2026, 8, 29, 23, 0, 0, 0, time.Local).Unix()
	day2 := time.Date(2026, 8, 30, 1, 0, 0, 0, time.Local).Unix()

	require.NoError(t, d.WriteMeasurement(testMeasurement(day1)))
	require.NoError(t, d.WriteMeasurement(testMeasurement(day2)))

	assert.FileExists(t, partitionFile(dir, day1))
	assert.FileExists(t, partitionFile(dir, day2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWriteMeasurementMissingFieldLeavesNoPartialWrite(t *testing.T) {
	dir := t.TempDir()
	d := NewCSVDao(dir)
	m := testMeasurement(time.Now().Unix())
	m.Data.Outside.Up.Lux = nil

	err := d.WriteMeasurement(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.outside.up.lux")

	entries, readErr := os.ReadDir(dir)
	if readErr == nil {
		assert.Empty(t, entries)
	}
}

func TestWriteMeasurementMissingData(t *testing.T) {
	d := NewCSVDao(t.TempDir())
	err := d.WriteMeasurement(&models.Measurement{Timestamp: time.Now().Unix()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"data"`)
}
