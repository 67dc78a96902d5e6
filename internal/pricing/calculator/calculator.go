// Package calculator prices print jobs from a shop's pricing rules.
package calculator

import (
	"github.com/shopspring/decimal"

	"printhub/pkg/model"
)

var (
	premiumMultiplier = decimal.NewFromFloat(1.5)
	hundred           = decimal.NewFromInt(100)
)

// DefaultRules apply to shops that have not configured pricing yet.
func DefaultRules() []model.PricingRule {
	return []model.PricingRule{
		{
			ServiceType:            model.ServiceBlackWhite,
			PricePerPage:           2.0,
			ColorMultiplier:        1.0,
			MinimumCharge:          2.0,
			BulkDiscountThreshold:  100,
			BulkDiscountPercentage: 10.0,
		},
		{
			ServiceType:            model.ServiceColor,
			PricePerPage:           5.0,
			ColorMultiplier:        2.0,
			MinimumCharge:          5.0,
			BulkDiscountThreshold:  50,
			BulkDiscountPercentage: 15.0,
		},
	}
}

// SelectRule picks the rule matching colorType, falling back to the defaults.
func SelectRule(colorType string, rules []model.PricingRule) model.PricingRule {
	serviceType := model.ServiceBlackWhite
	if colorType == model.ColorTypeColor {
		serviceType = model.ServiceColor
	}

	for _, r := range rules {
		if r.ServiceType == serviceType {
			return r
		}
	}

	defaults := DefaultRules()
	for _, r := range defaults {
		if r.ServiceType == serviceType {
			return r
		}
	}
	return defaults[0]
}

// CalculateJobCost returns the cost of one document rounded to two decimals.
func CalculateJobCost(job model.JobSpec, rules []model.PricingRule) float64 {
	return jobCost(job, rules).InexactFloat64()
}

func jobCost(job model.JobSpec, rules []model.PricingRule) decimal.Decimal {
	rule := SelectRule(job.ColorType, rules)

	pricePerPage := decimal.NewFromFloat(rule.PricePerPage)
	if job.ColorType == model.ColorTypeColor {
		pricePerPage = pricePerPage.Mul(decimal.NewFromFloat(rule.ColorMultiplier))
	}
	if job.PaperQuality == model.PaperQualityPremium {
		pricePerPage = pricePerPage.Mul(premiumMultiplier)
	}

	copies := job.Copies
	if copies < 1 {
		copies = 1
	}
	totalPages := job.Pages * copies
	total := decimal.NewFromInt(int64(totalPages)).Mul(pricePerPage)

	if totalPages >= rule.BulkDiscountThreshold {
		discount := total.Mul(decimal.NewFromFloat(rule.BulkDiscountPercentage)).Div(hundred)
		total = total.Sub(discount)
	}

	total = decimal.Max(total, decimal.NewFromFloat(rule.MinimumCharge))
	return total.Round(2)
}

// CalculateMultipleFilesCost prices every file with the shared print
// settings. Files without a page count are priced as one page.
func CalculateMultipleFilesCost(files []model.JobSpec, settings *model.PrintSettings, rules []model.PricingRule) model.Quote {
	quote := model.Quote{Files: make([]float64, 0, len(files))}
	total := decimal.Zero

	for _, f := range files {
		spec := Apply(f, settings)
		if spec.Pages < 1 {
			spec.Pages = 1
		}
		cost := jobCost(spec, rules)
		total = total.Add(cost)
		quote.Files = append(quote.Files, cost.InexactFloat64())
	}

	quote.Total = total.Round(2).InexactFloat64()
	return quote
}

// Apply overlays non-empty print settings onto a file's own spec.
func Apply(spec model.JobSpec, settings *model.PrintSettings) model.JobSpec {
	if settings == nil {
		return spec
	}
	if settings.ColorType != "" {
		spec.ColorType = settings.ColorType
	}
	if settings.PaperQuality != "" {
		spec.PaperQuality = settings.PaperQuality
	}
	if settings.Copies > 0 {
		spec.Copies = settings.Copies
	}
	return spec
}
