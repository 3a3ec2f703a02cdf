package service

import (
	"math"
	"sort"

	listingdomain "github.com/smallbiznis/marketplace/internal/listing/domain"
)

// ResolveDiscount returns the percentage of the highest-threshold tier that
// totalDays reaches, or 0. Tiers missing either value are ignored. Tiers with
// equal thresholds keep their configured order.
func ResolveDiscount(tiers []listingdomain.DiscountTier, totalDays float64) float64 {
	if !isPositive(totalDays) {
		return 0
	}

	eligible := make([]listingdomain.DiscountTier, 0, len(tiers))
	for _, tier := range tiers {
		if !isPositive(tier.ThresholdDays) || !isPositive(tier.Percentage) {
			continue
		}
		eligible = append(eligible, tier)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].ThresholdDays > eligible[j].ThresholdDays
	})

	for _, tier := range eligible {
		if tier.ThresholdDays <= totalDays {
			return tier.Percentage
		}
	}
	return 0
}

func isPositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
