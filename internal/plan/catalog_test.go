package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastahq/vasta/internal/config"
	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/types"
)

func testCatalog() *Catalog {
	return NewCatalog(&config.Configuration{
		Plans: config.PlansConfig{
			Pro: config.PlanPriceConfig{
				MonthlyPriceID: "price_pro_m",
				YearlyPriceID:  "price_pro_y",
			},
			Business: config.PlanPriceConfig{
				MonthlyPriceID: "price_business_m",
			},
		},
	})
}

func TestCatalogList(t *testing.T) {
	catalog := testCatalog()

	listed := catalog.List()
	require.Len(t, listed, 3)
	assert.Equal(t, types.PlanCodeStarter, listed[0].Code)
	assert.Equal(t, types.PlanCodePro, listed[1].Code)
	assert.Equal(t, types.PlanCodeBusiness, listed[2].Code)

	assert.True(t, listed[0].MonthlyPrice.IsZero())
	assert.Nil(t, listed[2].OfferLimit)
}

func TestCatalogGet(t *testing.T) {
	catalog := testCatalog()

	p, err := catalog.Get(types.PlanCodePro)
	require.NoError(t, err)
	assert.Equal(t, "Pro", p.Name)

	_, err = catalog.Get(types.PlanCode("enterprise"))
	assert.True(t, ierr.IsNotFound(err))
}

func TestCatalogPriceID(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name    string
		code    types.PlanCode
		cycle   types.BillingCycle
		want    string
		wantErr bool
	}{
		{name: "pro monthly", code: types.PlanCodePro, cycle: types.BillingCycleMonthly, want: "price_pro_m"},
		{name: "pro yearly", code: types.PlanCodePro, cycle: types.BillingCycleYearly, want: "price_pro_y"},
		{name: "business monthly", code: types.PlanCodeBusiness, cycle: types.BillingCycleMonthly, want: "price_business_m"},
		{name: "business yearly unconfigured", code: types.PlanCodeBusiness, cycle: types.BillingCycleYearly, wantErr: true},
		{name: "free plan has no price", code: types.PlanCodeStarter, cycle: types.BillingCycleMonthly, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := catalog.PriceID(tt.code, tt.cycle)
			if tt.wantErr {
				assert.True(t, ierr.IsPriceConfig(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
