package plan

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/vastahq/vasta/internal/config"
	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/types"
)

// Plan describes one subscription tier: its pricing, the platform fee taken on
// storefront sales, and what the tier unlocks.
type Plan struct {
	Code                  types.PlanCode  `json:"code"`
	Name                  string          `json:"name"`
	MonthlyPrice          decimal.Decimal `json:"monthly_price"`
	YearlyPrice           decimal.Decimal `json:"yearly_price"`
	TransactionFeePercent decimal.Decimal `json:"transaction_fee_percent"`
	// OfferLimit is the product cap for the tier, nil meaning unlimited
	OfferLimit *int     `json:"offer_limit"`
	Features   []string `json:"features"`
}

// plans is the static tier table. Provider price ids are deployment-specific
// and come from configuration, not from this table.
var plans = []Plan{
	{
		Code:                  types.PlanCodeStarter,
		Name:                  "Starter",
		MonthlyPrice:          decimal.Zero,
		YearlyPrice:           decimal.Zero,
		TransactionFeePercent: decimal.NewFromInt(8),
		OfferLimit:            lo.ToPtr(3),
		Features: []string{
			"Up to 3 products",
			"Transparent checkout",
			"Scalable bio page",
			"Basic analytics",
			"Email support",
		},
	},
	{
		Code:                  types.PlanCodePro,
		Name:                  "Pro",
		MonthlyPrice:          decimal.NewFromInt(49),
		YearlyPrice:           decimal.NewFromInt(38),
		TransactionFeePercent: decimal.NewFromInt(4),
		OfferLimit:            lo.ToPtr(10),
		Features: []string{
			"Up to 10 products",
			"No watermark",
			"Scalable bio page",
			"Basic analytics",
			"Email support",
			"Custom domain",
			"Premium themes",
		},
	},
	{
		Code:                  types.PlanCodeBusiness,
		Name:                  "Business",
		MonthlyPrice:          decimal.NewFromInt(99),
		YearlyPrice:           decimal.NewFromInt(87),
		TransactionFeePercent: decimal.NewFromInt(1),
		OfferLimit:            nil,
		Features: []string{
			"Unlimited products",
			"VIP support",
			"Advanced analytics",
			"No watermark",
			"Scalable bio page",
			"Custom domain",
			"Premium themes",
			"Integration API",
			"Multiple members",
		},
	},
}

// Catalog resolves plan metadata and provider price identifiers. Pure lookup,
// no state beyond the injected configuration.
type Catalog struct {
	prices config.PlansConfig
}

func NewCatalog(cfg *config.Configuration) *Catalog {
	return &Catalog{prices: cfg.Plans}
}

// List returns the full tier table in display order.
func (c *Catalog) List() []Plan {
	return plans
}

// Get returns the plan for a code.
func (c *Catalog) Get(code types.PlanCode) (*Plan, error) {
	p, found := lo.Find(plans, func(p Plan) bool {
		return p.Code == code
	})
	if !found {
		return nil, ierr.NewError("plan not found").
			WithHint("Unknown plan code").
			WithReportableDetails(map[string]any{
				"plan_code": code.String(),
			}).
			Mark(ierr.ErrNotFound)
	}
	return &p, nil
}

// PlanForPriceID reverse-maps a provider price id to the plan it belongs to.
// Webhook events identify the running price, not the plan; this is how a
// provider-side plan change lands back on the local record.
func (c *Catalog) PlanForPriceID(priceID string) (types.PlanCode, bool) {
	if priceID == "" {
		return "", false
	}
	switch priceID {
	case c.prices.Pro.MonthlyPriceID, c.prices.Pro.YearlyPriceID:
		return types.PlanCodePro, true
	case c.prices.Business.MonthlyPriceID, c.prices.Business.YearlyPriceID:
		return types.PlanCodeBusiness, true
	}
	return "", false
}

// PriceID resolves the provider price id for a (plan, cycle) pair. A missing
// id is a configuration gap, surfaced as a server fault rather than a user
// error.
func (c *Catalog) PriceID(code types.PlanCode, cycle types.BillingCycle) (string, error) {
	priceID := c.prices.PriceID(code, cycle)
	if priceID == "" {
		return "", ierr.NewError("price configuration missing for target plan").
			WithHint("Price configuration missing for target plan").
			WithReportableDetails(map[string]any{
				"plan_code":     code.String(),
				"billing_cycle": cycle.String(),
			}).
			Mark(ierr.ErrPriceConfig)
	}
	return priceID, nil
}
