package services

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"AquaLog.monitor/models"
)

// mirrorWriteTimeout bounds one best-effort mirror write.
const mirrorWriteTimeout = 5 * time.Second

// MeasurementStore persists one measurement durably.
type MeasurementStore interface {
	WriteMeasurement(*models.Measurement) error
}

// MirrorStore is the optional secondary sink. Mirror writes run off the
// request path, so they carry their own bounded context.
type MirrorStore interface {
	WriteMeasurement(ctx context.Context, m *models.Measurement) error
}

// Broadcaster pushes an accepted measurement to all connected viewers.
type Broadcaster interface {
	Publish(*models.Measurement)
}

// AlertSink receives fire-and-forget alert dispatches.
type AlertSink interface {
	Dispatch(waterLevel float64, timestamp time.Time) bool
}

// MeasurementService orchestrates ingestion: validate, stamp, persist,
// publish, then evaluate the alert policy. It owns the process-wide latest
// measurement behind its own lock.
type MeasurementService struct {
	store   MeasurementStore
	mirror  MirrorStore
	hub     Broadcaster
	limiter *AlertLimiter
	alerts  AlertSink

	now   func() time.Time
	debug bool

	mu     sync.RWMutex
	latest *models.Measurement
}

func NewMeasurementService(store MeasurementStore, limiter *AlertLimiter, alerts AlertSink) *MeasurementService {
	return &MeasurementService{
		store:   store,
		limiter: limiter,
		alerts:  alerts,
		now:     time.Now,
	}
}

// SetBroadcaster attaches the live broadcast hub. The hub is built after the
// service because it reads Latest for request_latest replies.
func (s *MeasurementService) SetBroadcaster(hub Broadcaster) {
	s.hub = hub
}

// SetMirror attaches the optional secondary sink; mirror writes are
// best-effort and never affect the ingestion outcome.
func (s *MeasurementService) SetMirror(mirror MirrorStore) {
	s.mirror = mirror
}

// SetDebug enables per-measurement request logging.
func (s *MeasurementService) SetDebug(debug bool) {
	s.debug = debug
}

// Ingest runs one measurement through the ingestion pipeline. The returned
// error, when non-nil, is a models.APIError carrying the HTTP status to
// report. Persistence happens before publish: on a write failure neither the
// latest measurement nor the broadcast is updated.
func (s *MeasurementService) Ingest(m *models.Measurement) error {
	if m == nil || m.Data == nil {
		return models.NewAPIError(models.ErrorCodeValidationFailed, "Invalid data format", nil, http.StatusBadRequest)
	}

	// The server clock is authoritative: client timestamps drive neither
	// partitioning nor alert timing.
	now := s.now()
	m.Timestamp = now.Unix()

	if s.debug {
		log.Printf("Ingesting measurement at %d", m.Timestamp)
	}

	if err := s.store.WriteMeasurement(m); err != nil {
		log.Printf("❌ Failed to persist measurement: %v", err)
		return models.NewAPIError(models.ErrorCodePersistenceError, err.Error(), nil, http.StatusInternalServerError)
	}

	if s.mirror != nil {
		go func(m *models.Measurement) {
			ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
			defer cancel()
			if err := s.mirror.WriteMeasurement(ctx, m); err != nil {
				log.Printf("⚠️ Measurement mirror write failed: %v", err)
			}
		}(m)
	}

	s.mu.Lock()
	s.latest = m
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Publish(m)
	}

	if wl := m.Data.WaterLevel; wl != nil && s.limiter.Allow(*wl, now) {
		s.alerts.Dispatch(*wl, now)
	}

	return nil
}

// Latest returns the last accepted measurement, or nil before the first one.
func (s *MeasurementService) Latest() *models.Measurement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
