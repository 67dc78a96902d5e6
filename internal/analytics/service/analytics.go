package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"printhub/internal/analytics/repository"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/model"
)

const (
	UnknownCustomer = "Unknown Customer"
	OtherService    = "Other"

	maxTopServices = 6
	dateLayout     = "2006-01-02"
)

// Ranges lists the reporting windows, in days, a summary can cover.
var Ranges = map[int]bool{7: true, 14: true, 30: true, 90: true}

type AnalyticsService interface {
	Summary(ctx context.Context, shopOwnerID string, days int) (*model.AnalyticsSummary, error)
	ExportCSV(ctx context.Context, shopOwnerID string, days int) (content []byte, fileName string, err error)
	Customers(ctx context.Context, shopOwnerID string) ([]*model.CustomerStats, error)
}

type analyticsService struct {
	repo repository.AnalyticsRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewAnalyticsService(repo repository.AnalyticsRepository, cfg *config.Config) AnalyticsService {
	return &analyticsService{
		repo: repo,
		cfg:  cfg,
		now:  mongotx.Now,
	}
}

// Summary compares completed jobs of the last `days` days against the
// window of the same length right before it.
func (s *analyticsService) Summary(ctx context.Context, shopOwnerID string, days int) (*model.AnalyticsSummary, error) {
	if !Ranges[days] {
		return nil, apperrors.InvalidInput("days must be one of 7, 14, 30 or 90")
	}

	to := s.now()
	from := to.AddDate(0, 0, -days)
	prevTo := from.Add(-time.Nanosecond)
	prevFrom := from.AddDate(0, 0, -days)

	var current, previous []model.JobFact
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.repo.CompletedJobs(gctx, shopOwnerID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.repo.CompletedJobs(gctx, shopOwnerID, prevFrom, prevTo)
		if err != nil {
			s.cfg.Log.Warn("comparison window unavailable", "shop_owner_id", shopOwnerID, "error", err)
			previous = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("failed to load analytics", "shop_owner_id", shopOwnerID, "days", days, "error", err)
		return nil, apperrors.Internal("failed to load analytics", err)
	}

	summary := BuildSummary(current, previous)
	summary.Days = days
	summary.From = from
	summary.To = to
	return summary, nil
}

type windowTotals struct {
	revenue   decimal.Decimal
	jobs      int
	avg       decimal.Decimal
	customers int
}

func totals(facts []model.JobFact) windowTotals {
	t := windowTotals{revenue: decimal.Zero, avg: decimal.Zero}
	seen := make(map[string]struct{})
	for _, f := range facts {
		t.revenue = t.revenue.Add(decimal.NewFromFloat(f.TotalCost))
		seen[f.CustomerID] = struct{}{}
	}
	t.jobs = len(facts)
	t.customers = len(seen)
	if t.jobs > 0 {
		t.avg = t.revenue.Div(decimal.NewFromInt(int64(t.jobs)))
	}
	return t
}

// PercentChange is the relative change from previous to current, in percent,
// rounded to one decimal. A zero baseline yields 100 when anything happened.
func PercentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.GreaterThan(decimal.Zero) {
			return 100
		}
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// BuildSummary aggregates the current window and compares it to the previous one.
func BuildSummary(current, previous []model.JobFact) *model.AnalyticsSummary {
	cur, prev := totals(current), totals(previous)

	return &model.AnalyticsSummary{
		Revenue:           money(cur.revenue),
		RevenueChange:     PercentChange(cur.revenue, prev.revenue),
		Jobs:              cur.jobs,
		JobsChange:        PercentChange(decimal.NewFromInt(int64(cur.jobs)), decimal.NewFromInt(int64(prev.jobs))),
		AvgJobValue:       money(cur.avg),
		AvgJobValueChange: PercentChange(cur.avg, prev.avg),
		UniqueCustomers:   cur.customers,
		CustomersChange:   PercentChange(decimal.NewFromInt(int64(cur.customers)), decimal.NewFromInt(int64(prev.customers))),
		Daily:             dailyPerformance(current),
		TopServices:       topServices(current),
	}
}

func dailyPerformance(facts []model.JobFact) []model.DailyPerformance {
	type day struct {
		revenue decimal.Decimal
		jobs    int
		weekday time.Weekday
	}
	byDate := make(map[string]*day)
	for _, f := range facts {
		created := f.CreatedAt.UTC()
		key := created.Format(dateLayout)
		d, ok := byDate[key]
		if !ok {
			d = &day{revenue: decimal.Zero, weekday: created.Weekday()}
			byDate[key] = d
		}
		d.revenue = d.revenue.Add(decimal.NewFromFloat(f.TotalCost))
		d.jobs++
	}

	out := make([]model.DailyPerformance, 0, len(byDate))
	for date, d := range byDate {
		out = append(out, model.DailyPerformance{
			Date:    date,
			Day:     d.weekday.String()[:3],
			Revenue: money(d.revenue),
			Jobs:    d.jobs,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func topServices(facts []model.JobFact) []model.ServiceBreakdown {
	if len(facts) == 0 {
		return []model.ServiceBreakdown{}
	}

	type group struct {
		count   int
		revenue decimal.Decimal
	}
	byName := make(map[string]*group)
	for _, f := range facts {
		name := f.ColorType
		if name == "" {
			name = OtherService
		}
		svc, ok := byName[name]
		if !ok {
			svc = &group{revenue: decimal.Zero}
			byName[name] = svc
		}
		svc.count++
		svc.revenue = svc.revenue.Add(decimal.NewFromFloat(f.TotalCost))
	}

	total := decimal.NewFromInt(int64(len(facts)))
	out := make([]model.ServiceBreakdown, 0, len(byName))
	for name, svc := range byName {
		out = append(out, model.ServiceBreakdown{
			Name:       name,
			Count:      svc.count,
			Revenue:    money(svc.revenue),
			Percentage: int(decimal.NewFromInt(int64(svc.count)).Div(total).Mul(decimal.NewFromInt(100)).Round(0).IntPart()),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > maxTopServices {
		out = out[:maxTopServices]
	}
	return out
}

func (s *analyticsService) ExportCSV(ctx context.Context, shopOwnerID string, days int) ([]byte, string, error) {
	summary, err := s.Summary(ctx, shopOwnerID, days)
	if err != nil {
		return nil, "", err
	}

	content, err := SummaryCSV(summary)
	if err != nil {
		return nil, "", apperrors.Internal("failed to export analytics", err)
	}
	return content, fmt.Sprintf("shop-analytics-%d-days.csv", days), nil
}

// SummaryCSV renders the headline metrics as Metric,Value,Change rows.
func SummaryCSV(summary *model.AnalyticsSummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"Metric", "Value", "Change"},
		{"Total Revenue", fmt.Sprintf("$%.2f", summary.Revenue), fmt.Sprintf("%.1f%%", summary.RevenueChange)},
		{"Total Jobs", fmt.Sprintf("%d", summary.Jobs), fmt.Sprintf("%.1f%%", summary.JobsChange)},
		{"Avg Job Value", fmt.Sprintf("$%.2f", summary.AvgJobValue), fmt.Sprintf("%.1f%%", summary.AvgJobValueChange)},
		{"Unique Customers", fmt.Sprintf("%d", summary.UniqueCustomers), fmt.Sprintf("%.1f%%", summary.CustomersChange)},
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *analyticsService) Customers(ctx context.Context, shopOwnerID string) ([]*model.CustomerStats, error) {
	customers, err := s.repo.Customers(ctx, shopOwnerID)
	if err != nil {
		s.cfg.Log.Error("failed to load customers", "shop_owner_id", shopOwnerID, "error", err)
		return nil, apperrors.Internal("failed to load customers", err)
	}

	for _, c := range customers {
		if c.FullName == "" {
			c.FullName = UnknownCustomer
		}
		c.TotalSpent = money(decimal.NewFromFloat(c.TotalSpent))
	}
	return customers, nil
}
