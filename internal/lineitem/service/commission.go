package service

import (
	"math"

	"github.com/smallbiznis/marketplace/internal/lineitem/domain"
)

// commissionPercentage reports whether a commission applies. Absent and zero
// percentages are "no commission"; negative ones are a misconfiguration.
func commissionPercentage(commission *domain.Commission) (float64, bool, error) {
	if commission == nil || commission.Percentage == nil {
		return 0, false, nil
	}
	p := *commission.Percentage
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0, false, domain.ErrInvalidCommission
	}
	return p, p > 0, nil
}

// providerCommission reduces the provider payout by a share of the base
// order price. Extra line items such as shipping are not commissioned.
func providerCommission(order domain.LineItem, commission *domain.Commission) ([]domain.LineItem, error) {
	percentage, ok, err := commissionPercentage(commission)
	if err != nil || !ok {
		return nil, err
	}

	base, err := LineTotal(order)
	if err != nil {
		return nil, err
	}
	return []domain.LineItem{
		{
			Code:       domain.CodeProviderCommission,
			UnitPrice:  base,
			Percentage: domain.Float64(-percentage),
			IncludeFor: []domain.Party{domain.PartyProvider},
		},
	}, nil
}

// customerCommission is added on top of the base order price in the payin.
func customerCommission(order domain.LineItem, commission *domain.Commission) ([]domain.LineItem, error) {
	percentage, ok, err := commissionPercentage(commission)
	if err != nil || !ok {
		return nil, err
	}

	base, err := LineTotal(order)
	if err != nil {
		return nil, err
	}
	return []domain.LineItem{
		{
			Code:       domain.CodeCustomerCommission,
			UnitPrice:  base,
			Percentage: domain.Float64(percentage),
			IncludeFor: []domain.Party{domain.PartyCustomer},
		},
	}, nil
}
