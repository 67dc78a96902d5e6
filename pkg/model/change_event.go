package model

import "time"

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

const TablePrintJobs = "print_jobs"

// ChangeEvent is a row-level change on print_jobs, scoped to one shop.
// Record is nil for deletes.
type ChangeEvent struct {
	Type        ChangeType `json:"type"`
	Table       string     `json:"table"`
	ShopOwnerID string     `json:"shop_owner_id"`
	RecordID    string     `json:"record_id"`
	Record      *PrintJob  `json:"record,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

func NewJobEvent(t ChangeType, job *PrintJob) ChangeEvent {
	ev := ChangeEvent{
		Type:        t,
		Table:       TablePrintJobs,
		ShopOwnerID: job.ShopOwnerID,
		RecordID:    job.ID,
		OccurredAt:  time.Now().UTC(),
	}
	if t != ChangeDelete {
		copied := *job
		ev.Record = &copied
	}
	return ev
}
