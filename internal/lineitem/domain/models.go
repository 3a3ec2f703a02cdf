// Package domain contains the line item contract shared with the marketplace
// platform's transaction API and the order breakdown UI.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	listingdomain "github.com/smallbiznis/marketplace/internal/listing/domain"
	"github.com/smallbiznis/marketplace/pkg/money"
)

// Line item codes recognised by the order breakdown. Unknown codes are still
// valid and fall back to a generic renderer.
const (
	CodePrefix             = "line-item/"
	CodeShippingFee        = "line-item/shipping-fee"
	CodePickupFee          = "line-item/pickup-fee"
	CodeProviderCommission = "line-item/provider-commission"
	CodeCustomerCommission = "line-item/customer-commission"

	MaxCodeLength = 64
	// MaxLineItems is the platform limit per transaction.
	MaxLineItems = 50
)

// UnitCode is the base price code for a unit type, e.g. line-item/day.
func UnitCode(unitType listingdomain.UnitType) string {
	return CodePrefix + unitType.String()
}

// DiscountCode names a duration discount, e.g. line-item/discount-20%.
func DiscountCode(percentage float64) string {
	return fmt.Sprintf("%sdiscount-%s%%", CodePrefix, strconv.FormatFloat(percentage, 'f', -1, 64))
}

// Party is a side of the transaction a line item counts towards.
type Party string

const (
	PartyCustomer Party = "customer"
	PartyProvider Party = "provider"
)

// BothParties is the default inclusion for prices shared by customer and provider.
func BothParties() []Party {
	return []Party{PartyCustomer, PartyProvider}
}

type DeliveryMethod string

const (
	DeliveryMethodShipping DeliveryMethod = "shipping"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
	DeliveryMethodNone     DeliveryMethod = "none"
)

// ParseDeliveryMethod treats anything unrecognised as no delivery.
func ParseDeliveryMethod(raw string) DeliveryMethod {
	switch DeliveryMethod(strings.ToLower(strings.TrimSpace(raw))) {
	case DeliveryMethodShipping:
		return DeliveryMethodShipping
	case DeliveryMethodPickup:
		return DeliveryMethodPickup
	default:
		return DeliveryMethodNone
	}
}

// OrderData carries the order parameters sent by the checkout page. Which
// fields matter depends on the listing's unit type.
type OrderData struct {
	BookingStart    *time.Time `json:"bookingStart,omitempty"`
	BookingEnd      *time.Time `json:"bookingEnd,omitempty"`
	IncludeSaturday bool       `json:"includeSaturday,omitempty"`
	IncludeSunday   bool       `json:"includeSunday,omitempty"`

	StockReservationQuantity *int64 `json:"stockReservationQuantity,omitempty"`
	DeliveryMethod           string `json:"deliveryMethod,omitempty"`
}

func (o OrderData) HasBookingDates() bool {
	return o.BookingStart != nil && o.BookingEnd != nil
}

// Commission is the platform's cut for one side of the transaction.
type Commission struct {
	Percentage *float64 `json:"percentage,omitempty" mapstructure:"percentage"`
}

// LineItem is one priced component of an order. Exactly one of Quantity and
// Percentage is set.
type LineItem struct {
	Code       string       `json:"code"`
	UnitPrice  money.Money  `json:"unitPrice"`
	Quantity   *float64     `json:"quantity,omitempty"`
	Percentage *float64     `json:"percentage,omitempty"`
	IncludeFor []Party      `json:"includeFor"`
	LineTotal  *money.Money `json:"lineTotal,omitempty"`
	Reversal   bool         `json:"reversal"`
}

func (l LineItem) IncludedFor(party Party) bool {
	for _, p := range l.IncludeFor {
		if p == party {
			return true
		}
	}
	return false
}

// QuoteRequest asks for the line items of a prospective transaction.
// Commission overrides replace the configured commissions when set.
type QuoteRequest struct {
	Listing            listingdomain.Listing `json:"listing"`
	OrderData          OrderData             `json:"orderData"`
	ProviderCommission *Commission           `json:"-"`
	CustomerCommission *Commission           `json:"-"`
}

type QuoteResult struct {
	LineItems   []LineItem  `json:"lineItems"`
	PayinTotal  money.Money `json:"payinTotal"`
	PayoutTotal money.Money `json:"payoutTotal"`
}

func Float64(v float64) *float64 { return &v }
