package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/marketplace/internal/lineitem/domain"
	listingdomain "github.com/smallbiznis/marketplace/internal/listing/domain"
	"github.com/smallbiznis/marketplace/pkg/money"
)

// quantityResult is what a unit type contributes: the order quantity and the
// line items tied to it (discounts, delivery fees). A nil quantity means the
// order data had nothing to count.
type quantityResult struct {
	quantity       *float64
	extraLineItems []domain.LineItem
}

// dateRangeQuantity prices day and night bookings. order must already be
// normalized so that BookingEnd is the last charged day.
func dateRangeQuantity(listing listingdomain.Listing, order domain.OrderData) (quantityResult, error) {
	if !order.HasBookingDates() {
		return quantityResult{}, nil
	}

	days := float64(CountChargedDays(*order.BookingStart, *order.BookingEnd, order.IncludeSaturday, order.IncludeSunday))
	result := quantityResult{quantity: domain.Float64(days)}

	percentage := ResolveDiscount(listing.Attributes.PublicData.DiscountTiers(), days)
	if percentage <= 0 {
		return result, nil
	}

	base, err := listing.Price().MulQuantity(days)
	if err != nil {
		return quantityResult{}, err
	}
	discount, err := base.Percentage(percentage)
	if err != nil {
		return quantityResult{}, fmt.Errorf("discount %v%%: %w", percentage, err)
	}

	result.extraLineItems = []domain.LineItem{
		{
			Code:       domain.DiscountCode(percentage),
			UnitPrice:  discount.Neg(),
			Quantity:   domain.Float64(1),
			IncludeFor: domain.BothParties(),
		},
	}
	return result, nil
}

// itemQuantity prices product sales and adds the delivery line item.
// Pickup is free by default.
func itemQuantity(listing listingdomain.Listing, order domain.OrderData) (quantityResult, error) {
	if order.StockReservationQuantity == nil {
		return quantityResult{}, nil
	}

	quantity := *order.StockReservationQuantity
	currency := listing.Price().Currency
	result := quantityResult{quantity: domain.Float64(float64(quantity))}

	switch domain.ParseDeliveryMethod(order.DeliveryMethod) {
	case domain.DeliveryMethodShipping:
		fees, err := listing.Attributes.PublicData.ShippingFees()
		if err != nil {
			return quantityResult{}, err
		}
		fee, ok, err := shippingFee(fees, currency, quantity)
		if err != nil {
			return quantityResult{}, fmt.Errorf("shipping fee: %w", err)
		}
		if !ok {
			return result, nil
		}
		result.extraLineItems = []domain.LineItem{
			{
				Code:       domain.CodeShippingFee,
				UnitPrice:  fee,
				Quantity:   domain.Float64(1),
				IncludeFor: domain.BothParties(),
			},
		}
	case domain.DeliveryMethodPickup:
		result.extraLineItems = []domain.LineItem{
			{
				Code:       domain.CodePickupFee,
				UnitPrice:  money.Zero(currency),
				Quantity:   domain.Float64(1),
				IncludeFor: domain.BothParties(),
			},
		}
	}
	return result, nil
}

// shippingFee charges the first item in full and every further item at the
// additional-item rate. A missing additional rate counts as zero.
func shippingFee(fees listingdomain.ShippingFees, currency string, quantity int64) (money.Money, bool, error) {
	if !fees.Configured() {
		return money.Money{}, false, nil
	}

	additional := int64(0)
	if fees.FeeAdditionalItem != nil && *fees.FeeAdditionalItem > 0 {
		additional = *fees.FeeAdditionalItem
	}
	extraItems := max(quantity-1, 0)

	total := decimal.NewFromInt(additional).
		Mul(decimal.NewFromInt(extraItems)).
		Add(decimal.NewFromInt(*fees.FeeFirstItem))
	fee, err := money.FromDecimal(total, currency)
	if err != nil {
		return money.Money{}, false, err
	}
	return fee, true, nil
}

// hourQuantity prices time slots by elapsed hours. Partial hours stay
// fractional; rounding happens on the line total.
func hourQuantity(order domain.OrderData) quantityResult {
	if !order.HasBookingDates() {
		return quantityResult{}
	}
	hours := order.BookingEnd.Sub(*order.BookingStart).Hours()
	return quantityResult{quantity: domain.Float64(hours)}
}
