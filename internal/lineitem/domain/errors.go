package domain

import "errors"

var (
	ErrMissingQuantity     = errors.New("missing_quantity")
	ErrInvalidCommission   = errors.New("invalid_commission")
	ErrInvalidListingPrice = errors.New("invalid_listing_price")
	ErrInvalidLineItemCode = errors.New("invalid_line_item_code")
	ErrInvalidPricingMode  = errors.New("invalid_pricing_mode")
	ErrTooManyLineItems    = errors.New("too_many_line_items")
)

// MissingQuantityMessage is shown to API clients that omit every quantity source.
const MissingQuantityMessage = `transition should contain quantity information: stockReservationQuantity, quantity, or bookingStart & bookingEnd (if "line-item/day" or "line-item/night" is used)`
