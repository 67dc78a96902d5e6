package service

import (
	"context"
	"io"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	hourserrors "printhub/internal/operatinghours/errors"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/logger"
	"printhub/pkg/model"
	"printhub/pkg/validation"
)

const shopID = "65f1a2b3c4d5e6f7a8b9c0d1"

type memoryHoursRepository struct {
	rows map[model.DayOfWeek]model.OperatingHours
}

func (m *memoryHoursRepository) FindByShop(context.Context, string) ([]model.OperatingHours, error) {
	var out []model.OperatingHours
	for _, h := range m.rows {
		out = append(out, h)
	}
	return out, nil
}

func (m *memoryHoursRepository) FindDay(_ context.Context, _ string, day model.DayOfWeek) (*model.OperatingHours, error) {
	h, ok := m.rows[day]
	if !ok {
		return nil, hourserrors.ErrNotFound
	}
	return &h, nil
}

func (m *memoryHoursRepository) UpsertWeek(_ context.Context, _ string, hours []model.OperatingHours) error {
	if m.rows == nil {
		m.rows = map[model.DayOfWeek]model.OperatingHours{}
	}
	for _, h := range hours {
		m.rows[h.DayOfWeek] = h
	}
	return nil
}

func (m *memoryHoursRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type recordingListings struct {
	hours map[string]model.DayHours
}

func (l *recordingListings) SetBusinessHours(_ context.Context, _ string, hours map[string]model.DayHours) error {
	l.hours = hours
	return nil
}

func newTestService(repo *memoryHoursRepository, listings ListingUpdater) OperatingHoursService {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	return NewOperatingHoursService(repo, listings, validation.New(log), &config.Config{Log: log})
}

func TestGet_DefaultsWhenUnset(t *testing.T) {
	week, err := newTestService(&memoryHoursRepository{}, nil).Get(context.Background(), shopID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week))
	}
	if week[0].DayOfWeek != model.Monday || !week[0].IsOpen || week[0].OpenTime != "09:00" || week[0].CloseTime != "18:00" {
		t.Errorf("unexpected monday %+v", week[0])
	}
	if week[6].DayOfWeek != model.Sunday || week[6].IsOpen {
		t.Errorf("sunday should be closed by default, got %+v", week[6])
	}
}

func TestForDay(t *testing.T) {
	repo := &memoryHoursRepository{rows: map[model.DayOfWeek]model.OperatingHours{
		model.Sunday: {DayOfWeek: model.Sunday, OpenTime: "10:00", CloseTime: "14:00", IsOpen: true},
	}}
	svc := newTestService(repo, nil)

	sunday, err := svc.ForDay(context.Background(), shopID, model.Sunday)
	if err != nil || !sunday.IsOpen || sunday.OpenTime != "10:00" {
		t.Fatalf("unexpected sunday %+v, %v", sunday, err)
	}

	monday, err := svc.ForDay(context.Background(), shopID, model.Monday)
	if err != nil || monday.OpenTime != DefaultOpenTime {
		t.Fatalf("expected default monday, got %+v, %v", monday, err)
	}
}

func TestUpsertWeek(t *testing.T) {
	repo := &memoryHoursRepository{}
	listings := &recordingListings{}
	svc := newTestService(repo, listings)

	week, err := svc.UpsertWeek(context.Background(), shopID, []model.OperatingHours{
		{DayOfWeek: "Saturday", OpenTime: "10:00", CloseTime: "16:00", IsOpen: true},
		{DayOfWeek: model.Monday, OpenTime: "08:00", CloseTime: "20:00", IsOpen: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(week) != 7 {
		t.Fatalf("expected full week, got %d", len(week))
	}
	if repo.rows[model.Saturday].OpenTime != "10:00" {
		t.Errorf("day name not normalised: %+v", repo.rows)
	}
	if got := listings.hours["monday"]; got.Open != "08:00" || got.Close != "20:00" || !got.IsOpen {
		t.Errorf("listing not updated: %+v", got)
	}
	if got := listings.hours["sunday"]; got.IsOpen {
		t.Errorf("unset sunday should stay closed in listing")
	}
}

func TestUpsertWeek_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		hours []model.OperatingHours
		code  string
	}{
		{name: "empty", hours: nil, code: apperrors.CodeInvalidInput},
		{name: "open after close", hours: []model.OperatingHours{{DayOfWeek: model.Monday, OpenTime: "18:00", CloseTime: "09:00", IsOpen: true}}, code: apperrors.CodeInvalidInput},
		{name: "bad clock", hours: []model.OperatingHours{{DayOfWeek: model.Monday, OpenTime: "25:00", CloseTime: "26:00", IsOpen: true}}, code: apperrors.CodeValidation},
		{name: "unknown day", hours: []model.OperatingHours{{DayOfWeek: "funday", OpenTime: "09:00", CloseTime: "17:00"}}, code: apperrors.CodeValidation},
		{name: "duplicate day", hours: []model.OperatingHours{
			{DayOfWeek: model.Monday, OpenTime: "09:00", CloseTime: "17:00"},
			{DayOfWeek: model.Monday, OpenTime: "09:00", CloseTime: "17:00"},
		}, code: apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService(&memoryHoursRepository{}, nil).UpsertWeek(context.Background(), shopID, tt.hours)
			if !apperrors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestUpsertWeek_ClosedDayMayHaveAnyOrder(t *testing.T) {
	_, err := newTestService(&memoryHoursRepository{}, nil).UpsertWeek(context.Background(), shopID, []model.OperatingHours{
		{DayOfWeek: model.Sunday, OpenTime: "18:00", CloseTime: "09:00", IsOpen: false},
	})
	if err != nil {
		t.Fatalf("closed day should not be checked for order: %v", err)
	}
}
