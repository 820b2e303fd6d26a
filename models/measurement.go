package models

// Measurement represents one reading bundle posted by the sensor device.
// Nested fields are pointers so that absent values can be told apart from
// zero readings; only Data is validated up front, deeper fields are checked
// when the CSV row is assembled.
type Measurement struct {
	Timestamp int64            `json:"timestamp"`
	Data      *MeasurementData `json:"data"`
}

// MeasurementData holds the water level plus the four environment readings.
type MeasurementData struct {
	WaterLevel *float64     `json:"water_level"`
	Inside     *ReadingPair `json:"inside"`
	Outside    *ReadingPair `json:"outside"`
}

// ReadingPair groups the up/down sensor positions of one side.
type ReadingPair struct {
	Up   *EnvReading `json:"up"`
	Down *EnvReading `json:"down"`
}

// EnvReading is a single temperature/humidity probe. Lux is only reported by
// the two outside probes and stays nil for inside ones.
type EnvReading struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Lux         *float64 `json:"lux,omitempty"`
}
