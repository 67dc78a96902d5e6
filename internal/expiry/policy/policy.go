// Package policy holds the pure file-retention rules shared by the sweeper
// and every place that shows a countdown.
package policy

import (
	"fmt"
	"time"

	"printhub/pkg/model"
)

const (
	DefaultWindow         = 24 * time.Hour
	DefaultExpiringWindow = 2 * time.Hour
)

type Policy struct {
	Window         time.Duration
	ExpiringWindow time.Duration
}

func New(window, expiringWindow time.Duration) Policy {
	if window <= 0 {
		window = DefaultWindow
	}
	if expiringWindow <= 0 || expiringWindow >= window {
		expiringWindow = DefaultExpiringWindow
	}
	return Policy{
		Window:         window,
		ExpiringWindow: expiringWindow,
	}
}

// IsExpired is inclusive: a file is expired at exactly Window of age.
func (p Policy) IsExpired(createdAt, now time.Time) bool {
	return now.Sub(createdAt) >= p.Window
}

// IsExpiringSoon reports files inside the last ExpiringWindow of their life.
func (p Policy) IsExpiringSoon(createdAt, now time.Time) bool {
	age := now.Sub(createdAt)
	return age >= p.Window-p.ExpiringWindow && age < p.Window
}

func (p Policy) ExpiresAt(createdAt time.Time) time.Time {
	return createdAt.Add(p.Window)
}

// Cutoff is the newest created_at that is expired at now.
func (p Policy) Cutoff(now time.Time) time.Time {
	return now.Add(-p.Window)
}

func (p Policy) TimeUntilExpiry(createdAt, now time.Time) model.ExpiryInfo {
	left := p.ExpiresAt(createdAt).Sub(now)
	if left <= 0 {
		return model.ExpiryInfo{Expired: true, TimeLeft: "Expired", HoursLeft: 0}
	}

	hours := int(left / time.Hour)
	minutes := int((left % time.Hour) / time.Minute)

	timeLeft := fmt.Sprintf("%dm", minutes)
	if hours > 0 {
		timeLeft = fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return model.ExpiryInfo{
		Expired:   false,
		TimeLeft:  timeLeft,
		HoursLeft: hours,
	}
}
