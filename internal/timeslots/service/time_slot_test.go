package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	slotserrors "printhub/internal/timeslots/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

const shopID = "65f1a2b3c4d5e6f7a8b9c0d1"

type memorySlotRepository struct {
	byDate     map[string][]*model.TimeSlot
	replaceErr error
	findErr    error
	txCalls    int
}

func newMemorySlotRepository() *memorySlotRepository {
	return &memorySlotRepository{byDate: map[string][]*model.TimeSlot{}}
}

func (m *memorySlotRepository) ReplaceForDate(_ context.Context, _ string, date string, slots []*model.TimeSlot) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.byDate[date] = slots
	return nil
}

func (m *memorySlotRepository) FindByDate(_ context.Context, _ string, date string) ([]*model.TimeSlot, error) {
	return m.byDate[date], m.findErr
}

func (m *memorySlotRepository) FindAvailable(_ context.Context, _ string, date string) ([]*model.TimeSlot, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []*model.TimeSlot
	for _, s := range m.byDate[date] {
		if s.HasCapacity() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memorySlotRepository) FindByID(_ context.Context, id string) (*model.TimeSlot, error) {
	if id == "bad" {
		return nil, slotserrors.ErrInvalidID
	}
	for _, slots := range m.byDate {
		for _, s := range slots {
			if s.ID == id {
				return s, nil
			}
		}
	}
	return nil, slotserrors.ErrNotFound
}

func (m *memorySlotRepository) Reserve(context.Context, string) (*model.TimeSlot, error) {
	return nil, errors.New("not used")
}

func (m *memorySlotRepository) Release(context.Context, string) (*model.TimeSlot, error) {
	return nil, errors.New("not used")
}

func (m *memorySlotRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.txCalls++
	return fn(mongo.NewSessionContext(ctx, nil))
}

type weekHours map[model.DayOfWeek]model.OperatingHours

func (w weekHours) ForDay(_ context.Context, shopOwnerID string, day model.DayOfWeek) (*model.OperatingHours, error) {
	h, ok := w[day]
	if !ok {
		h = model.OperatingHours{OpenTime: "09:00", CloseTime: "10:00", IsOpen: true}
	}
	h.ShopOwnerID = shopOwnerID
	h.DayOfWeek = day
	return &h, nil
}

type fixedSettings struct {
	settings model.SlotSettings
}

func (f fixedSettings) SlotSettings(context.Context, string) (*model.SlotSettings, error) {
	s := f.settings
	return &s, nil
}

// 2026-10-19 is a Monday.
var testNow = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

func newTestService(repo *memorySlotRepository, hours weekHours) *timeSlotService {
	cfg := &config.Config{Log: logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})}
	svc := NewTimeSlotService(repo, hours, fixedSettings{model.SlotSettings{SlotDurationMin: 15, MaxJobsPerSlot: 3, AdvanceDays: 10}}, cfg).(*timeSlotService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestGenerate(t *testing.T) {
	repo := newMemorySlotRepository()
	svc := newTestService(repo, weekHours{})

	slots, err := svc.Generate(context.Background(), shopID, "2026-10-19")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	if slots[0].MaxCapacity != 3 || slots[0].ShopOwnerID != shopID {
		t.Errorf("unexpected slot %+v", slots[0])
	}
	if repo.txCalls != 1 || len(repo.byDate["2026-10-19"]) != 4 {
		t.Errorf("expected slots written in one transaction, tx=%d stored=%d", repo.txCalls, len(repo.byDate["2026-10-19"]))
	}
}

func TestGenerate_Rejections(t *testing.T) {
	closedSunday := weekHours{model.Sunday: {OpenTime: "09:00", CloseTime: "18:00", IsOpen: false}}

	tests := []struct {
		name string
		date string
		repo func(*memorySlotRepository)
		code string
	}{
		{name: "malformed", date: "19-10-2026", code: apperrors.CodeInvalidInput},
		{name: "past", date: "2026-10-18", code: apperrors.CodeInvalidInput},
		{name: "beyond advance window", date: "2026-10-30", code: apperrors.CodeInvalidInput},
		{name: "closed day", date: "2026-10-25", code: apperrors.CodeInvalidInput},
		{
			name: "booked date",
			date: "2026-10-20",
			repo: func(m *memorySlotRepository) { m.replaceErr = slotserrors.ErrDateBooked },
			code: apperrors.CodeConflict,
		},
		{
			name: "store failure",
			date: "2026-10-20",
			repo: func(m *memorySlotRepository) { m.replaceErr = errors.New("boom") },
			code: apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemorySlotRepository()
			if tt.repo != nil {
				tt.repo(repo)
			}
			_, err := newTestService(repo, closedSunday).Generate(context.Background(), shopID, tt.date)
			if !apperrors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestGenerate_LastDayOfWindow(t *testing.T) {
	if _, err := newTestService(newMemorySlotRepository(), weekHours{}).Generate(context.Background(), shopID, "2026-10-29"); err != nil {
		t.Fatalf("expected the last day of the window to be accepted, got %v", err)
	}
}

func TestGenerateRange(t *testing.T) {
	hours := weekHours{
		model.Sunday:  {IsOpen: false},
		model.Tuesday: {OpenTime: "12:00", CloseTime: "09:00", IsOpen: true},
	}
	svc := newTestService(newMemorySlotRepository(), hours)

	result, err := svc.GenerateRange(context.Background(), shopID, "2026-10-19", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Dates) != 5 || result.Slots != 20 {
		t.Errorf("expected 5 days and 20 slots, got %d days and %d slots", len(result.Dates), result.Slots)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "2026-10-25" {
		t.Errorf("expected sunday skipped, got %v", result.Skipped)
	}
	if _, ok := result.Failures["2026-10-20"]; !ok || len(result.Failures) != 1 {
		t.Errorf("expected tuesday failure, got %v", result.Failures)
	}
	if result.Summary != "5 succeeded, 1 failed" {
		t.Errorf("unexpected summary %q", result.Summary)
	}
}

func TestListAvailable(t *testing.T) {
	repo := newMemorySlotRepository()
	repo.byDate["2026-10-20"] = []*model.TimeSlot{
		{ID: "a", SlotTime: "09:00", CurrentBookings: 3, MaxCapacity: 3, IsAvailable: false},
		{ID: "b", SlotTime: "09:15", CurrentBookings: 1, MaxCapacity: 3, IsAvailable: true},
	}
	svc := newTestService(repo, weekHours{})

	slots, err := svc.ListAvailable(context.Background(), shopID, "2026-10-20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 1 || slots[0].ID != "b" {
		t.Errorf("expected only slot b, got %v", slots)
	}

	empty, err := svc.ListAvailable(context.Background(), shopID, "2026-10-21")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %v, %v", empty, err)
	}
}

func TestGetByID(t *testing.T) {
	repo := newMemorySlotRepository()
	repo.byDate["2026-10-20"] = []*model.TimeSlot{{ID: "a"}}
	svc := newTestService(repo, weekHours{})

	if _, err := svc.GetByID(context.Background(), "a"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "missing"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "bad"); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}
