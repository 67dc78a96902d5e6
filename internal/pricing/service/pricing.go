package service

import (
	"context"
	"errors"

	"printhub/internal/pricing/calculator"
	pricingerrors "printhub/internal/pricing/errors"
	"printhub/internal/pricing/repository"
	"printhub/pkg/config"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/model"
	"printhub/pkg/validation"
)

type PricingService interface {
	ListRules(ctx context.Context, shopOwnerID string) ([]model.PricingRule, error)
	UpsertRule(ctx context.Context, rule *model.PricingRule) error
	DeleteRule(ctx context.Context, shopOwnerID, id string) error
	Quote(ctx context.Context, req *model.QuoteRequest) (*model.Quote, error)
	JobCost(ctx context.Context, shopOwnerID string, job model.JobSpec) (float64, error)
}

type pricingService struct {
	repo      repository.PricingRuleRepository
	validator *validation.Validator
	cfg       *config.Config
}

func NewPricingService(repo repository.PricingRuleRepository, v *validation.Validator, cfg *config.Config) PricingService {
	return &pricingService{
		repo:      repo,
		validator: v,
		cfg:       cfg,
	}
}

// ListRules returns the shop's rules, or the default rule set when the shop
// has none configured.
func (s *pricingService) ListRules(ctx context.Context, shopOwnerID string) ([]model.PricingRule, error) {
	rules, err := s.repo.FindByShop(ctx, shopOwnerID)
	if err != nil {
		s.cfg.Log.Error("failed to load pricing rules", "shop_owner_id", shopOwnerID, "error", err)
		return nil, apperrors.Internal("failed to load pricing rules", err)
	}
	if len(rules) == 0 {
		rules = calculator.DefaultRules()
		for i := range rules {
			rules[i].ShopOwnerID = shopOwnerID
		}
	}
	return rules, nil
}

func (s *pricingService) UpsertRule(ctx context.Context, rule *model.PricingRule) error {
	if err := s.validator.Struct(rule); err != nil {
		return validation.ToAppError(err)
	}

	if err := s.repo.Upsert(ctx, rule); err != nil {
		s.cfg.Log.Error("failed to save pricing rule",
			"shop_owner_id", rule.ShopOwnerID,
			"service_type", rule.ServiceType,
			"error", err,
		)
		return apperrors.Internal("failed to save pricing rule", err)
	}

	s.cfg.Log.Info("pricing rule saved",
		"shop_owner_id", rule.ShopOwnerID,
		"service_type", rule.ServiceType,
		"rule_id", rule.ID,
	)
	return nil
}

func (s *pricingService) DeleteRule(ctx context.Context, shopOwnerID, id string) error {
	if err := s.repo.Delete(ctx, shopOwnerID, id); err != nil {
		switch {
		case errors.Is(err, pricingerrors.ErrInvalidID):
			return apperrors.InvalidInput("invalid pricing rule ID format")
		case errors.Is(err, pricingerrors.ErrNotFound):
			return apperrors.NotFoundWithID("Pricing rule", id)
		}
		s.cfg.Log.Error("failed to delete pricing rule", "rule_id", id, "error", err)
		return apperrors.Internal("failed to delete pricing rule", err)
	}

	s.cfg.Log.Info("pricing rule deleted", "shop_owner_id", shopOwnerID, "rule_id", id)
	return nil
}

func (s *pricingService) Quote(ctx context.Context, req *model.QuoteRequest) (*model.Quote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.ToAppError(err)
	}

	rules, err := s.ListRules(ctx, req.ShopOwnerID)
	if err != nil {
		return nil, err
	}

	quote := calculator.CalculateMultipleFilesCost(req.Files, req.Settings, rules)
	return &quote, nil
}

func (s *pricingService) JobCost(ctx context.Context, shopOwnerID string, job model.JobSpec) (float64, error) {
	rules, err := s.ListRules(ctx, shopOwnerID)
	if err != nil {
		return 0, err
	}
	return calculator.CalculateJobCost(job, rules), nil
}
