package service

import (
	"math"
	"testing"

	listingdomain "github.com/smallbiznis/marketplace/internal/listing/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolveDiscount(t *testing.T) {
	tiers := []listingdomain.DiscountTier{
		{ThresholdDays: 3, Percentage: 10},
		{ThresholdDays: 7, Percentage: 20},
	}

	tests := []struct {
		name string
		days float64
		want float64
	}{
		{name: "highest reached tier", days: 7, want: 20},
		{name: "above highest tier", days: 30, want: 20},
		{name: "between tiers", days: 5, want: 10},
		{name: "exactly at lower tier", days: 3, want: 10},
		{name: "below every tier", days: 2, want: 0},
		{name: "no days", days: 0, want: 0},
		{name: "negative days", days: -4, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDiscount(tiers, tt.days))
		})
	}
}

func TestResolveDiscountIgnoresIncompleteTiers(t *testing.T) {
	tiers := []listingdomain.DiscountTier{
		{ThresholdDays: 2, Percentage: 0},
		{ThresholdDays: 0, Percentage: 50},
		{ThresholdDays: math.NaN(), Percentage: 40},
		{ThresholdDays: 4, Percentage: math.Inf(1)},
		{ThresholdDays: 1, Percentage: 5},
	}

	assert.Equal(t, 5.0, ResolveDiscount(tiers, 10))
	assert.Equal(t, 0.0, ResolveDiscount(nil, 10))
}

func TestResolveDiscountUnsortedInput(t *testing.T) {
	tiers := []listingdomain.DiscountTier{
		{ThresholdDays: 14, Percentage: 25},
		{ThresholdDays: 3, Percentage: 10},
		{ThresholdDays: 7, Percentage: 15},
	}

	assert.Equal(t, 15.0, ResolveDiscount(tiers, 10))
	assert.Equal(t, 25.0, ResolveDiscount(tiers, 14))
}

func TestResolveDiscountEqualThresholdsKeepConfiguredOrder(t *testing.T) {
	tiers := []listingdomain.DiscountTier{
		{ThresholdDays: 5, Percentage: 12},
		{ThresholdDays: 5, Percentage: 30},
	}

	assert.Equal(t, 12.0, ResolveDiscount(tiers, 5))
}

func TestResolveDiscountIsMonotonicForIncreasingTiers(t *testing.T) {
	tiers := []listingdomain.DiscountTier{
		{ThresholdDays: 2, Percentage: 5},
		{ThresholdDays: 5, Percentage: 10},
		{ThresholdDays: 10, Percentage: 20},
		{ThresholdDays: 28, Percentage: 35},
	}

	prev := 0.0
	for days := 0; days <= 40; days++ {
		got := ResolveDiscount(tiers, float64(days))
		assert.GreaterOrEqual(t, got, prev, "days %d", days)
		prev = got
	}
}
