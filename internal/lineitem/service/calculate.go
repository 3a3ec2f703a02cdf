package service

import (
	"strings"

	"github.com/smallbiznis/marketplace/internal/lineitem/domain"
	listingdomain "github.com/smallbiznis/marketplace/internal/listing/domain"
)

// TransactionLineItems prices an order against a listing.
//
// The result always starts with the base price item (line-item/{unitType}),
// followed by unit-type extras, then the provider and customer commissions.
// Items included for the customer add up to the payin total, items included
// for the provider to the payout total.
//
// The function is pure: inputs are not modified and equal inputs give equal
// output.
func TransactionLineItems(
	listing listingdomain.Listing,
	order domain.OrderData,
	providerRate *domain.Commission,
	customerRate *domain.Commission,
) ([]domain.LineItem, error) {
	unitPrice := listing.Price()
	if strings.TrimSpace(unitPrice.Currency) == "" {
		return nil, domain.ErrInvalidListingPrice
	}

	unitType := listing.UnitType()
	normalized := NormalizeOrderData(unitType, order)

	var (
		result quantityResult
		err    error
	)
	switch unitType {
	case listingdomain.UnitTypeDay, listingdomain.UnitTypeNight:
		result, err = dateRangeQuantity(listing, normalized)
	case listingdomain.UnitTypeItem:
		result, err = itemQuantity(listing, normalized)
	case listingdomain.UnitTypeHour:
		result = hourQuantity(normalized)
	case listingdomain.UnitTypeUnsupported:
		// nothing to count
	}
	if err != nil {
		return nil, err
	}
	if result.quantity == nil || !isPositive(*result.quantity) {
		return nil, domain.ErrMissingQuantity
	}

	base := domain.LineItem{
		Code:       domain.UnitCode(unitType),
		UnitPrice:  unitPrice,
		Quantity:   result.quantity,
		IncludeFor: domain.BothParties(),
	}

	providerItems, err := providerCommission(base, providerRate)
	if err != nil {
		return nil, err
	}
	customerItems, err := customerCommission(base, customerRate)
	if err != nil {
		return nil, err
	}

	lineItems := make([]domain.LineItem, 0, 1+len(result.extraLineItems)+len(providerItems)+len(customerItems))
	lineItems = append(lineItems, base)
	lineItems = append(lineItems, result.extraLineItems...)
	lineItems = append(lineItems, providerItems...)
	lineItems = append(lineItems, customerItems...)

	if len(lineItems) > domain.MaxLineItems {
		return nil, domain.ErrTooManyLineItems
	}
	return lineItems, nil
}

// NormalizeOrderData returns a copy of order ready for quantity resolution.
// Day and night bookings arrive end-exclusive; the copy's BookingEnd is moved
// back one calendar day so it names the last charged day.
func NormalizeOrderData(unitType listingdomain.UnitType, order domain.OrderData) domain.OrderData {
	normalized := order
	if unitType.UsesDateRange() && order.BookingEnd != nil {
		end := order.BookingEnd.AddDate(0, 0, -1)
		normalized.BookingEnd = &end
	}
	return normalized
}
