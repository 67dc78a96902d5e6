package model

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusQueued    JobStatus = "queued"
	JobStatusPrinting  JobStatus = "printing"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
)

const (
	ColorTypeColor      = "color"
	ColorTypeBlackWhite = "black_white"

	PaperQualityStandard = "standard"
	PaperQualityPremium  = "premium"
)

// jobStatusRank orders the forward path. Cancelled sits outside it.
var jobStatusRank = map[JobStatus]int{
	JobStatusPending:   0,
	JobStatusQueued:    1,
	JobStatusPrinting:  2,
	JobStatusCompleted: 3,
}

func (s JobStatus) Valid() bool {
	_, ok := jobStatusRank[s]
	return ok || s == JobStatusCancelled
}

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// IsActive reports whether the job still occupies the shop's queue.
func (s JobStatus) IsActive() bool {
	return s.Valid() && !s.IsTerminal()
}

// CanTransition reports whether a job may move from one status to another.
// Moves only go forward along pending → queued → printing → completed, and
// cancelled is reachable from any non-terminal status.
func CanTransition(from, to JobStatus) bool {
	if !from.Valid() || !to.Valid() || from.IsTerminal() {
		return false
	}
	if to == JobStatusCancelled {
		return true
	}
	return jobStatusRank[to] > jobStatusRank[from]
}

// TimestampField names the column stamped when a job enters status.
func TimestampField(status JobStatus) string {
	switch status {
	case JobStatusPrinting:
		return "started_at"
	case JobStatusCompleted:
		return "completed_at"
	case JobStatusCancelled:
		return "cancelled_at"
	default:
		return ""
	}
}

type PrintSettings struct {
	PaperSize    string `json:"paperSize" bson:"paperSize" validate:"omitempty,max=20"`
	ColorType    string `json:"colorType" bson:"colorType" validate:"omitempty,oneof=color black_white"`
	PaperQuality string `json:"paperQuality" bson:"paperQuality" validate:"omitempty,oneof=standard premium"`
	Copies       int    `json:"copies" bson:"copies" validate:"omitempty,min=1,max=1000"`
}

func (s *PrintSettings) IsColor() bool {
	return s != nil && s.ColorType == ColorTypeColor
}

type PrintJob struct {
	ID                string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ShopOwnerID       string         `json:"shop_owner_id" bson:"shop_owner_id" validate:"required,mongodb"`
	CustomerID        string         `json:"customer_id" bson:"customer_id" validate:"required,mongodb"`
	CustomerName      string         `json:"customer_name,omitempty" bson:"customer_name,omitempty" validate:"omitempty,max=100"`
	CustomerEmail     string         `json:"customer_email,omitempty" bson:"customer_email,omitempty" validate:"omitempty,email"`
	BookingID         string         `json:"booking_id,omitempty" bson:"booking_id,omitempty" validate:"omitempty,mongodb"`
	FileName          string         `json:"file_name" bson:"file_name" validate:"required,min=1,max=255"`
	FileURL           string         `json:"file_url,omitempty" bson:"file_url,omitempty"`
	FileSize          int64          `json:"file_size" bson:"file_size" validate:"min=0"`
	Pages             int            `json:"pages" bson:"pages" validate:"min=1,max=10000"`
	Copies            int            `json:"copies" bson:"copies" validate:"min=1,max=1000"`
	ColorPages        int            `json:"color_pages" bson:"color_pages" validate:"min=0"`
	TotalCost         float64        `json:"total_cost" bson:"total_cost" validate:"min=0"`
	Status            JobStatus      `json:"status" bson:"status" validate:"required,job_status"`
	Priority          int            `json:"priority" bson:"priority" validate:"min=0,max=10"`
	EstimatedDuration int            `json:"estimated_duration,omitempty" bson:"estimated_duration,omitempty" validate:"min=0"`
	Notes             string         `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
	PrintSettings     *PrintSettings `json:"print_settings,omitempty" bson:"print_settings,omitempty" validate:"omitempty"`
	SubmittedAt       time.Time      `json:"submitted_at" bson:"submitted_at"`
	StartedAt         *time.Time     `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CancelledAt       *time.Time     `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" bson:"updated_at"`
}

// StoragePath is the object key of the job's file inside the uploads bucket.
func (j *PrintJob) StoragePath() string {
	if j.FileURL != "" {
		return j.FileURL
	}
	return j.CustomerID + "/" + j.FileName
}

// PrintJobFilter narrows job queries. Zero values are ignored.
type PrintJobFilter struct {
	ShopOwnerID   string
	CustomerID    string
	Status        JobStatus
	CreatedBefore time.Time
	CreatedAfter  time.Time
}

// UploadedFile describes a document stored in the uploads bucket, ready to be
// attached to a print job or booking.
type UploadedFile struct {
	FileName    string `json:"file_name"`
	StoragePath string `json:"storage_path"`
	ContentType string `json:"content_type,omitempty"`
	FileSize    int64  `json:"file_size"`
	URL         string `json:"url,omitempty"`
}

type StatusUpdate struct {
	Status JobStatus `json:"status" validate:"required,job_status"`
}

type BulkStatusUpdate struct {
	IDs    []string  `json:"ids" validate:"required,min=1,max=200,dive,mongodb"`
	Status JobStatus `json:"status" validate:"required,job_status"`
}

type BulkResult struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
	URLs      map[string]string `json:"urls,omitempty"`
}

// Message summarises the outcome as "N succeeded, M failed".
func (r *BulkResult) Message() string {
	return fmt.Sprintf("%d succeeded, %d failed", len(r.Succeeded), len(r.Failed))
}

type CustomerJobSummary struct {
	TotalJobs     int     `json:"total_jobs"`
	CompletedJobs int     `json:"completed_jobs"`
	ActiveJobs    int     `json:"active_jobs"`
	TotalSpent    float64 `json:"total_spent"`
}
