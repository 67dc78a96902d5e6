package realtime

import (
	"sort"
	"sync"
	"time"

	"printhub/pkg/model"
)

// JobList is an in-memory view of a shop's queue kept current by applying
// change events. It never holds two entries with the same id.
type JobList struct {
	mu         sync.RWMutex
	jobs       map[string]*model.PrintJob
	tombstones map[string]time.Time
}

func NewJobList() *JobList {
	return &JobList{
		jobs:       make(map[string]*model.PrintJob),
		tombstones: make(map[string]time.Time),
	}
}

// Reset replaces the contents with a freshly fetched list.
func (l *JobList) Reset(jobs []*model.PrintJob) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jobs = make(map[string]*model.PrintJob, len(jobs))
	l.tombstones = make(map[string]time.Time)
	for _, j := range jobs {
		if j == nil || j.ID == "" {
			continue
		}
		l.put(j)
	}
}

// Apply folds one event into the list and reports whether anything changed.
// Inserts and updates are last-writer-wins on updated_at, so a stale event
// never overwrites a newer row and never resurrects a deleted one.
func (l *JobList) Apply(ev model.ChangeEvent) bool {
	if ev.RecordID == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch ev.Type {
	case model.ChangeDelete:
		_, existed := l.jobs[ev.RecordID]
		delete(l.jobs, ev.RecordID)
		at := ev.OccurredAt
		if prev, ok := l.tombstones[ev.RecordID]; !ok || at.After(prev) {
			l.tombstones[ev.RecordID] = at
		}
		return existed

	case model.ChangeInsert, model.ChangeUpdate:
		if ev.Record == nil {
			return false
		}
		rec := *ev.Record
		rec.ID = ev.RecordID

		if deletedAt, ok := l.tombstones[rec.ID]; ok && !rec.UpdatedAt.After(deletedAt) {
			return false
		}
		if cur, ok := l.jobs[rec.ID]; ok && rec.UpdatedAt.Before(cur.UpdatedAt) {
			return false
		}
		delete(l.tombstones, rec.ID)
		l.put(&rec)
		return true
	}
	return false
}

func (l *JobList) put(j *model.PrintJob) {
	copied := *j
	l.jobs[j.ID] = &copied
}

func (l *JobList) Get(id string) (*model.PrintJob, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	j, ok := l.jobs[id]
	if !ok {
		return nil, false
	}
	copied := *j
	return &copied, true
}

func (l *JobList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.jobs)
}

// Snapshot returns copies of the jobs, newest submission first.
func (l *JobList) Snapshot() []*model.PrintJob {
	l.mu.RLock()
	out := make([]*model.PrintJob, 0, len(l.jobs))
	for _, j := range l.jobs {
		copied := *j
		out = append(out, &copied)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool {
		if !out[i].SubmittedAt.Equal(out[k].SubmittedAt) {
			return out[i].SubmittedAt.After(out[k].SubmittedAt)
		}
		return out[i].ID > out[k].ID
	})
	return out
}
