// dao/influxDao.go
package dao

import (
	"context"
	"fmt"
	"log"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"AquaLog.monitor/models"
)

// InfluxDao mirrors accepted measurements into InfluxDB as a secondary sink.
// The CSV log stays authoritative; mirror failures are reported to the caller
// who logs them and moves on. The dao owns its client for the lifetime of the
// process.
type InfluxDao struct {
	client influxdb2.Client
	org    string
	bucket string
}

func NewInfluxDao(url, token, org, bucket string) *InfluxDao {
	return &InfluxDao{
		client: influxdb2.NewClient(url, token),
		org:    org,
		bucket: bucket,
	}
}

// Ping checks the connection health once at startup.
func (d *InfluxDao) Ping(ctx context.Context) error {
	health, err := d.client.Health(ctx)
	if err != nil {
		log.Printf("Error connecting to InfluxDB: %v", err)
		return fmt.Errorf("failed to connect to InfluxDB: %v", err)
	}

	if health.Status != "pass" {
		log.Printf("InfluxDB health check failed: %v", health.Message)
		return fmt.Errorf("InfluxDB health check failed: %v", health.Message)
	}

	log.Println("Successfully connected to InfluxDB!")
	return nil
}

// WriteMeasurement writes one point per measurement. Fields that are absent
// from the payload are simply omitted from the point.
func (d *InfluxDao) WriteMeasurement(ctx context.Context, m *models.Measurement) error {
	writeAPI := d.client.WriteAPIBlocking(d.org, d.bucket)

	fields := map[string]interface{}{}
	if m.Data != nil {
		addField(fields, "water_level", m.Data.WaterLevel)
		addReading(fields, "inside_up", side(m.Data.Inside, "up"))
		addReading(fields, "inside_down", side(m.Data.Inside, "down"))
		addReading(fields, "outside_up", side(m.Data.Outside, "up"))
		addReading(fields, "outside_down", side(m.Data.Outside, "down"))
	}
	if len(fields) == 0 {
		return fmt.Errorf("measurement has no fields to mirror")
	}

	point := influxdb2.NewPoint(
		"water_monitor",
		map[string]string{},
		fields,
		time.Unix(m.Timestamp, 0),
	)

	if err := writeAPI.WritePoint(ctx, point); err != nil {
		log.Printf("❌ Error mirroring measurement to InfluxDB: %v", err)
		return fmt.Errorf("failed to write to InfluxDB: %w", err)
	}

	return nil
}

func addReading(fields map[string]interface{}, prefix string, r *models.EnvReading) {
	if r == nil {
		return
	}
	addField(fields, prefix+"_temperature", r.Temperature)
	addField(fields, prefix+"_humidity", r.Humidity)
	addField(fields, prefix+"_lux", r.Lux)
}

func addField(fields map[string]interface{}, name string, v *float64) {
	if v != nil {
		fields[name] = *v
	}
}
