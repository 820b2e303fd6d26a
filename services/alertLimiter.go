package services

import (
	"sync"
	"time"
)

// AlertLimiter decides whether a low water level should trigger an external
// alert. One limiter guards the whole process: all sensors share a single
// cooldown, which is a known scope limitation of the system rather than a bug.
type AlertLimiter struct {
	mu               sync.Mutex
	threshold        float64
	cooldown         time.Duration
	lastNotification time.Time
}

func NewAlertLimiter(threshold float64, cooldown time.Duration) *AlertLimiter {
	return &AlertLimiter{threshold: threshold, cooldown: cooldown}
}

// Allow reports whether an alert may fire for the given water level at the
// given time, and on a grant records the time as the last notification time.
// Check and set happen under one lock so that two threshold-crossing
// measurements arriving together cannot both be granted.
func (l *AlertLimiter) Allow(waterLevel float64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if waterLevel > l.threshold {
		return false
	}
	if !l.lastNotification.IsZero() && now.Sub(l.lastNotification) < l.cooldown {
		return false
	}

	l.lastNotification = now
	return true
}

// Reset clears the cooldown guard so the next qualifying measurement may
// trigger an immediate retry. Called when a dispatched alert fails to send.
func (l *AlertLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastNotification = time.Time{}
}

func (l *AlertLimiter) Threshold() float64 {
	return l.threshold
}
