// Package domain describes the listing record consumed from the marketplace
// platform. Only the fields pricing reads are modelled.
package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/smallbiznis/marketplace/pkg/money"
)

// UnitType is the pricing granularity of a listing.
type UnitType string

const (
	UnitTypeDay   UnitType = "day"
	UnitTypeNight UnitType = "night"
	UnitTypeHour  UnitType = "hour"
	UnitTypeItem  UnitType = "item"

	// UnitTypeUnsupported covers every value the pricing engine does not know.
	UnitTypeUnsupported UnitType = "unsupported"
)

// ParseUnitType maps raw public data onto the closed set of unit types.
func ParseUnitType(raw string) UnitType {
	switch UnitType(strings.ToLower(strings.TrimSpace(raw))) {
	case UnitTypeDay:
		return UnitTypeDay
	case UnitTypeNight:
		return UnitTypeNight
	case UnitTypeHour:
		return UnitTypeHour
	case UnitTypeItem:
		return UnitTypeItem
	default:
		return UnitTypeUnsupported
	}
}

// UsesDateRange reports whether bookings are priced per calendar day.
func (u UnitType) UsesDateRange() bool {
	return u == UnitTypeDay || u == UnitTypeNight
}

func (u UnitType) String() string { return string(u) }

type Listing struct {
	ID         string     `json:"id,omitempty"`
	Attributes Attributes `json:"attributes"`
}

type Attributes struct {
	Price      money.Money `json:"price"`
	PublicData PublicData  `json:"publicData"`
}

// PublicData is the listing's extended data as written by the listing editor.
type PublicData struct {
	UnitType string `json:"unitType"`

	DiscountThreshold1  Number `json:"discountThreshold1"`
	DiscountPercentage1 Number `json:"discountPercentage1"`
	DiscountThreshold2  Number `json:"discountThreshold2"`
	DiscountPercentage2 Number `json:"discountPercentage2"`
	DiscountThreshold3  Number `json:"discountThreshold3"`
	DiscountPercentage3 Number `json:"discountPercentage3"`
	DiscountThreshold4  Number `json:"discountThreshold4"`
	DiscountPercentage4 Number `json:"discountPercentage4"`

	ShippingPriceInSubunitsOneItem         Number `json:"shippingPriceInSubunitsOneItem"`
	ShippingPriceInSubunitsAdditionalItems Number `json:"shippingPriceInSubunitsAdditionalItems"`
}

// DiscountTier grants Percentage off once a booking reaches ThresholdDays.
// Absent values are zero.
type DiscountTier struct {
	ThresholdDays float64 `json:"thresholdDays"`
	Percentage    float64 `json:"percentage"`
}

// ShippingFees is the per-listing delivery fee schedule in subunits.
type ShippingFees struct {
	FeeFirstItem      *int64 `json:"feeFirstItem,omitempty"`
	FeeAdditionalItem *int64 `json:"feeAdditionalItem,omitempty"`
}

// Configured reports whether shipping can be charged at all.
func (s ShippingFees) Configured() bool {
	return s.FeeFirstItem != nil && *s.FeeFirstItem > 0
}

func (l Listing) UnitType() UnitType {
	return ParseUnitType(l.Attributes.PublicData.UnitType)
}

// Price is the listing's unit price with the currency code normalized.
func (l Listing) Price() money.Money {
	return money.New(l.Attributes.Price.Amount, l.Attributes.Price.Currency)
}

// DiscountTiers returns the four configured tiers in field order. Filtering
// and ordering are left to the discount resolver.
func (p PublicData) DiscountTiers() []DiscountTier {
	pairs := [][2]Number{
		{p.DiscountThreshold1, p.DiscountPercentage1},
		{p.DiscountThreshold2, p.DiscountPercentage2},
		{p.DiscountThreshold3, p.DiscountPercentage3},
		{p.DiscountThreshold4, p.DiscountPercentage4},
	}
	tiers := make([]DiscountTier, 0, len(pairs))
	for _, pair := range pairs {
		tiers = append(tiers, DiscountTier{
			ThresholdDays: pair[0].OrZero(),
			Percentage:    pair[1].OrZero(),
		})
	}
	return tiers
}

func (p PublicData) ShippingFees() (ShippingFees, error) {
	first, err := p.ShippingPriceInSubunitsOneItem.Subunits()
	if err != nil {
		return ShippingFees{}, fmt.Errorf("shippingPriceInSubunitsOneItem: %w", err)
	}
	additional, err := p.ShippingPriceInSubunitsAdditionalItems.Subunits()
	if err != nil {
		return ShippingFees{}, fmt.Errorf("shippingPriceInSubunitsAdditionalItems: %w", err)
	}
	return ShippingFees{FeeFirstItem: first, FeeAdditionalItem: additional}, nil
}

// Subunits returns the value as a whole subunit amount, or nil when absent.
// Values beyond the int64 range fail with money.ErrAmountOverflow.
func (n Number) Subunits() (*int64, error) {
	v, ok := n.Float64()
	if !ok {
		return nil, nil
	}
	rounded := math.Round(v)
	if rounded < math.MinInt64 || rounded >= math.MaxInt64 {
		return nil, money.ErrAmountOverflow
	}
	amount := int64(rounded)
	return &amount, nil
}
