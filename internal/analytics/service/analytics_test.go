package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"printhub/pkg/config"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

const shopID = "65f1a2b3c4d5e6f7a8b9c0d1"

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type mockAnalyticsRepository struct {
	jobs        []model.JobFact
	previousErr error
	currentErr  error
	customers   []*model.CustomerStats
}

func (m *mockAnalyticsRepository) CompletedJobs(_ context.Context, _ string, from, to time.Time) ([]model.JobFact, error) {
	if to.Equal(testNow) {
		if m.currentErr != nil {
			return nil, m.currentErr
		}
	} else if m.previousErr != nil {
		return nil, m.previousErr
	}

	var out []model.JobFact
	for _, j := range m.jobs {
		if !j.CreatedAt.Before(from) && !j.CreatedAt.After(to) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *mockAnalyticsRepository) Customers(context.Context, string) ([]*model.CustomerStats, error) {
	return m.customers, nil
}

func newTestService(repo *mockAnalyticsRepository) *analyticsService {
	cfg := &config.Config{Log: logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})}
	svc := NewAnalyticsService(repo, cfg).(*analyticsService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func fact(customer string, cost float64, daysAgo int, colorType string) model.JobFact {
	return model.JobFact{
		CustomerID: customer,
		TotalCost:  cost,
		ColorType:  colorType,
		CreatedAt:  testNow.AddDate(0, 0, -daysAgo).Add(-time.Hour),
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{"growth", 150, 100, 50},
		{"decline", 50, 100, -50},
		{"zero baseline with activity", 10, 0, 100},
		{"nothing either side", 0, 0, 0},
		{"rounded to one decimal", 2, 3, -33.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentChange(decimal.NewFromFloat(tt.current), decimal.NewFromFloat(tt.previous))
			if got != tt.want {
				t.Errorf("PercentChange(%v, %v) = %v, want %v", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	repo := &mockAnalyticsRepository{jobs: []model.JobFact{
		fact("a", 10.10, 0, "color"),
		fact("a", 5.20, 1, "black_white"),
		fact("b", 4.70, 1, ""),
		fact("c", 10, 9, "color"),
	}}
	svc := newTestService(repo)

	summary, err := svc.Summary(context.Background(), shopID, 7)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.Revenue != 20 || summary.Jobs != 3 || summary.UniqueCustomers != 2 {
		t.Errorf("totals = revenue %v jobs %d customers %d", summary.Revenue, summary.Jobs, summary.UniqueCustomers)
	}
	if summary.AvgJobValue != 6.67 {
		t.Errorf("AvgJobValue = %v, want 6.67", summary.AvgJobValue)
	}
	if summary.RevenueChange != 100 || summary.JobsChange != 200 || summary.CustomersChange != 100 {
		t.Errorf("changes = revenue %v jobs %v customers %v", summary.RevenueChange, summary.JobsChange, summary.CustomersChange)
	}
	if summary.AvgJobValueChange != -33.3 {
		t.Errorf("AvgJobValueChange = %v, want -33.3", summary.AvgJobValueChange)
	}

	if len(summary.Daily) != 2 {
		t.Fatalf("Daily = %+v, want 2 days", summary.Daily)
	}
	first, last := summary.Daily[0], summary.Daily[1]
	if first.Date != "2026-10-16" || first.Day != "Fri" || first.Jobs != 2 || first.Revenue != 9.9 {
		t.Errorf("Daily[0] = %+v", first)
	}
	if last.Date != "2026-10-17" || last.Day != "Sat" || last.Revenue != 10.1 {
		t.Errorf("Daily[1] = %+v", last)
	}

	if len(summary.TopServices) != 3 {
		t.Fatalf("TopServices = %+v", summary.TopServices)
	}
	names := []string{summary.TopServices[0].Name, summary.TopServices[1].Name, summary.TopServices[2].Name}
	if strings.Join(names, ",") != "Other,black_white,color" {
		t.Errorf("TopServices order = %v", names)
	}
	if summary.TopServices[0].Percentage != 33 {
		t.Errorf("Percentage = %d, want 33", summary.TopServices[0].Percentage)
	}
}

func TestSummary_EmptyWindows(t *testing.T) {
	svc := newTestService(&mockAnalyticsRepository{})

	summary, err := svc.Summary(context.Background(), shopID, 30)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.Revenue != 0 || summary.RevenueChange != 0 || len(summary.Daily) != 0 || len(summary.TopServices) != 0 {
		t.Errorf("Summary() = %+v, want empty", summary)
	}
}

func TestSummary_Errors(t *testing.T) {
	t.Run("unsupported range", func(t *testing.T) {
		_, err := newTestService(&mockAnalyticsRepository{}).Summary(context.Background(), shopID, 5)
		if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			t.Errorf("Summary() error = %v, want invalid input", err)
		}
	})

	t.Run("current window fails", func(t *testing.T) {
		_, err := newTestService(&mockAnalyticsRepository{currentErr: errors.New("boom")}).Summary(context.Background(), shopID, 7)
		if !apperrors.HasCode(err, apperrors.CodeInternal) {
			t.Errorf("Summary() error = %v, want internal", err)
		}
	})

	t.Run("previous window fails", func(t *testing.T) {
		repo := &mockAnalyticsRepository{previousErr: errors.New("boom"), jobs: []model.JobFact{fact("a", 3, 0, "")}}
		summary, err := newTestService(repo).Summary(context.Background(), shopID, 7)
		if err != nil {
			t.Fatalf("Summary() error = %v", err)
		}
		if summary.RevenueChange != 100 {
			t.Errorf("RevenueChange = %v, want 100 without a baseline", summary.RevenueChange)
		}
	})
}

func TestExportCSV(t *testing.T) {
	repo := &mockAnalyticsRepository{jobs: []model.JobFact{fact("a", 12.5, 0, "color")}}
	content, fileName, err := newTestService(repo).ExportCSV(context.Background(), shopID, 14)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	if fileName != "shop-analytics-14-days.csv" {
		t.Errorf("fileName = %q", fileName)
	}
	want := "Metric,Value,Change\n" +
		"Total Revenue,$12.50,100.0%\n" +
		"Total Jobs,1,100.0%\n" +
		"Avg Job Value,$12.50,100.0%\n" +
		"Unique Customers,1,100.0%\n"
	if string(content) != want {
		t.Errorf("content =\n%s\nwant\n%s", content, want)
	}
}

func TestCustomers_UnknownName(t *testing.T) {
	repo := &mockAnalyticsRepository{customers: []*model.CustomerStats{
		{UserID: "a", FullName: "Ada", TotalOrders: 2, TotalSpent: 10.456},
		{UserID: "b", TotalOrders: 1, TotalSpent: 3},
	}}

	customers, err := newTestService(repo).Customers(context.Background(), shopID)
	if err != nil {
		t.Fatalf("Customers() error = %v", err)
	}
	if customers[0].TotalSpent != 10.46 {
		t.Errorf("TotalSpent = %v, want 10.46", customers[0].TotalSpent)
	}
	if customers[1].FullName != UnknownCustomer {
		t.Errorf("FullName = %q, want %q", customers[1].FullName, UnknownCustomer)
	}
}
