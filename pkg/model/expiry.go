package model

import "time"

type ExpiryInfo struct {
	Expired   bool   `json:"expired"`
	TimeLeft  string `json:"time_left"`
	HoursLeft int    `json:"hours_left"`
}

type ExpiringFile struct {
	ID          string     `json:"id"`
	CustomerID  string     `json:"customer_id"`
	ShopOwnerID string     `json:"shop_owner_id"`
	FileName    string     `json:"file_name"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Expiry      ExpiryInfo `json:"expiry"`
}

type CleanupStats struct {
	TotalFiles    int64      `json:"total_files"`
	ExpiredFiles  int64      `json:"expired_files"`
	ExpiringFiles int64      `json:"expiring_files"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	NextRunAt     *time.Time `json:"next_run_at,omitempty"`
}

type SweepResult struct {
	DeletedCount int       `json:"deleted_count"`
	Errors       []string  `json:"errors"`
	StartedAt    time.Time `json:"started_at"`
	Duration     string    `json:"duration"`
	Skipped      bool      `json:"skipped,omitempty"`
}
