package services

import (
	"log"
	"sync"
	"time"
)

type alertJob struct {
	waterLevel float64
	timestamp  time.Time
}

// AlertDispatcher hands alert sends off to a small worker pool so the
// ingestion path never waits on the messaging API. No caller awaits a job;
// failures are logged here and the limiter guard is reset so the next
// qualifying measurement may retry immediately.
//
// Resetting the cooldown on failure turns the rate limiter into a
// retry-on-failure mechanism while the messaging endpoint is down. That is
// the documented policy of this system, kept as-is pending an owner decision.
type AlertDispatcher struct {
	notifier Notifier
	limiter  *AlertLimiter
	jobs     chan alertJob
	wg       sync.WaitGroup
	once     sync.Once
}

func NewAlertDispatcher(notifier Notifier, limiter *AlertLimiter, workers, queueSize int) *AlertDispatcher {
	d := &AlertDispatcher{
		notifier: notifier,
		limiter:  limiter,
		jobs:     make(chan alertJob, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Dispatch enqueues one alert send without blocking. When the queue is full
// the job is dropped; the limiter guard was already taken by the caller, so
// the cooldown still applies.
func (d *AlertDispatcher) Dispatch(waterLevel float64, timestamp time.Time) bool {
	select {
	case d.jobs <- alertJob{waterLevel: waterLevel, timestamp: timestamp}:
		return true
	default:
		log.Printf("⚠️ Alert queue full, dropping alert for water level %g", waterLevel)
		return false
	}
}

// Stop drains the queue and waits for in-flight sends to finish.
func (d *AlertDispatcher) Stop() {
	d.once.Do(func() {
		close(d.jobs)
	})
	d.wg.Wait()
}

func (d *AlertDispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		if err := d.notifier.Notify(job.waterLevel, job.timestamp); err != nil {
			log.Printf("❌ Failed to send water level alert: %v", err)
			d.limiter.Reset()
		}
	}
}
