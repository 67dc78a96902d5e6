package model

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusPending, JobStatusQueued, true},
		{JobStatusQueued, JobStatusPrinting, true},
		{JobStatusPrinting, JobStatusCompleted, true},
		{JobStatusPending, JobStatusCompleted, true},
		{JobStatusPending, JobStatusCancelled, true},
		{JobStatusPrinting, JobStatusCancelled, true},
		{JobStatusPrinting, JobStatusQueued, false},
		{JobStatusQueued, JobStatusPending, false},
		{JobStatusQueued, JobStatusQueued, false},
		{JobStatusCompleted, JobStatusCancelled, false},
		{JobStatusCancelled, JobStatusPending, false},
		{JobStatusCompleted, JobStatusPrinting, false},
		{"unknown", JobStatusQueued, false},
		{JobStatusPending, "unknown", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTimestampField(t *testing.T) {
	tests := map[JobStatus]string{
		JobStatusPending:   "",
		JobStatusQueued:    "",
		JobStatusPrinting:  "started_at",
		JobStatusCompleted: "completed_at",
		JobStatusCancelled: "cancelled_at",
	}
	for status, want := range tests {
		if got := TimestampField(status); got != want {
			t.Errorf("TimestampField(%s) = %q, want %q", status, got, want)
		}
	}
}

func TestJobStatus_IsActive(t *testing.T) {
	active := []JobStatus{JobStatusPending, JobStatusQueued, JobStatusPrinting}
	for _, s := range active {
		if !s.IsActive() {
			t.Errorf("%s should be active", s)
		}
	}
	for _, s := range []JobStatus{JobStatusCompleted, JobStatusCancelled, "bogus"} {
		if s.IsActive() {
			t.Errorf("%s should not be active", s)
		}
	}
}

func TestPrintJob_StoragePath(t *testing.T) {
	job := &PrintJob{CustomerID: "c1", FileName: "thesis.pdf"}
	if got := job.StoragePath(); got != "c1/thesis.pdf" {
		t.Errorf("StoragePath() = %s", got)
	}

	job.FileURL = "c1/1700000000-thesis.pdf"
	if got := job.StoragePath(); got != "c1/1700000000-thesis.pdf" {
		t.Errorf("StoragePath() with FileURL = %s", got)
	}
}

func TestNewJobEvent(t *testing.T) {
	job := &PrintJob{ID: "j1", ShopOwnerID: "s1", Status: JobStatusQueued}

	ev := NewJobEvent(ChangeUpdate, job)
	if ev.Record == nil || ev.Record == job {
		t.Fatal("expected a copied record on UPDATE")
	}
	if ev.ShopOwnerID != "s1" || ev.RecordID != "j1" || ev.Table != TablePrintJobs {
		t.Errorf("unexpected event %+v", ev)
	}

	del := NewJobEvent(ChangeDelete, job)
	if del.Record != nil {
		t.Error("DELETE events carry no record")
	}
}

func TestDayOf(t *testing.T) {
	date := time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC) // Saturday
	if got := DayOf(date); got != Saturday {
		t.Errorf("DayOf() = %s, want saturday", got)
	}
	if got := DayOf(date.AddDate(0, 0, 1)); got != Sunday {
		t.Errorf("DayOf() = %s, want sunday", got)
	}
}
