package validation

import (
	"errors"
	"testing"

	apperrors "printhub/pkg/errors"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

func TestStruct_CustomTags(t *testing.T) {
	v := New(logger.Discard())

	tests := []struct {
		name      string
		input     any
		wantField string
	}{
		{
			name: "valid operating hours",
			input: &model.OperatingHours{
				ShopOwnerID: "507f1f77bcf86cd799439011",
				DayOfWeek:   model.Monday,
				OpenTime:    "09:00",
				CloseTime:   "18:00",
			},
		},
		{
			name: "bad open time",
			input: &model.OperatingHours{
				ShopOwnerID: "507f1f77bcf86cd799439011",
				DayOfWeek:   model.Monday,
				OpenTime:    "9am",
				CloseTime:   "18:00",
			},
			wantField: "open_time",
		},
		{
			name: "bad weekday",
			input: &model.OperatingHours{
				ShopOwnerID: "507f1f77bcf86cd799439011",
				DayOfWeek:   "funday",
				OpenTime:    "09:00",
				CloseTime:   "18:00",
			},
			wantField: "day_of_week",
		},
		{
			name:      "bad job status",
			input:     &model.StatusUpdate{Status: "done"},
			wantField: "status",
		},
		{
			name:      "bad slot date",
			input:     &model.GenerateSlotsRequest{Date: "17/10/2026"},
			wantField: "date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %s, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestToAppError(t *testing.T) {
	err := ToAppError(ValidationErrors{{Field: "pages", Message: "pages must be at least 1"}})

	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation AppError, got %v", err)
	}
	if apperrors.AsAppError(err).Details["pages"] != "pages must be at least 1" {
		t.Errorf("unexpected details %v", apperrors.AsAppError(err).Details)
	}

	plain := errors.New("boom")
	if ToAppError(plain) != plain {
		t.Error("non-validation errors should pass through")
	}
}
