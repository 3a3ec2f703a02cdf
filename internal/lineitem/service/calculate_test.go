package service

import (
	"testing"
	"time"

	"github.com/smallbiznis/marketplace/internal/lineitem/domain"
	listingdomain "github.com/smallbiznis/marketplace/internal/listing/domain"
	"github.com/smallbiznis/marketplace/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListing(unitType string, amount int64) listingdomain.Listing {
	return listingdomain.Listing{
		ID: "listing-1",
		Attributes: listingdomain.Attributes{
			Price:      money.New(amount, "USD"),
			PublicData: listingdomain.PublicData{UnitType: unitType},
		},
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func int64Ptr(v int64) *int64 { return &v }

func commission(p float64) *domain.Commission {
	return &domain.Commission{Percentage: domain.Float64(p)}
}

func bookingOrder(start, end time.Time) domain.OrderData {
	return domain.OrderData{BookingStart: timePtr(start), BookingEnd: timePtr(end)}
}

func TestTransactionLineItemsDayBooking(t *testing.T) {
	listing := newListing("day", 10000)
	order := bookingOrder(date(2024, time.January, 1), date(2024, time.January, 4))

	items, err := TransactionLineItems(listing, order, nil, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "line-item/day", items[0].Code)
	assert.Equal(t, money.New(10000, "USD"), items[0].UnitPrice)
	require.NotNil(t, items[0].Quantity)
	assert.Equal(t, 3.0, *items[0].Quantity)
	assert.Nil(t, items[0].Percentage)
	assert.Equal(t, domain.BothParties(), items[0].IncludeFor)
}

func TestTransactionLineItemsNightSkipsWeekendByDefault(t *testing.T) {
	listing := newListing("night", 8000)
	// Friday to Monday: Friday, Saturday and Sunday nights.
	order := bookingOrder(date(2024, time.January, 5), date(2024, time.January, 8))

	items, err := TransactionLineItems(listing, order, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *items[0].Quantity)

	order.IncludeSaturday = true
	order.IncludeSunday = true
	items, err = TransactionLineItems(listing, order, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "line-item/night", items[0].Code)
	assert.Equal(t, 3.0, *items[0].Quantity)
}

func TestTransactionLineItemsCommissions(t *testing.T) {
	listing := newListing("day", 10000)
	order := bookingOrder(date(2024, time.January, 1), date(2024, time.January, 4))

	items, err := TransactionLineItems(listing, order, commission(10), commission(15))
	require.NoError(t, err)
	require.Len(t, items, 3)

	provider := items[1]
	assert.Equal(t, domain.CodeProviderCommission, provider.Code)
	assert.Equal(t, money.New(30000, "USD"), provider.UnitPrice)
	assert.Equal(t, -10.0, *provider.Percentage)
	assert.Nil(t, provider.Quantity)
	assert.Equal(t, []domain.Party{domain.PartyProvider}, provider.IncludeFor)

	customer := items[2]
	assert.Equal(t, domain.CodeCustomerCommission, customer.Code)
	assert.Equal(t, money.New(30000, "USD"), customer.UnitPrice)
	assert.Equal(t, 15.0, *customer.Percentage)
	assert.Equal(t, []domain.Party{domain.PartyCustomer}, customer.IncludeFor)
}

func TestTransactionLineItemsZeroCommissionIsOmitted(t *testing.T) {
	listing := newListing("day", 10000)
	order := bookingOrder(date(2024, time.January, 1), date(2024, time.January, 2))

	items, err := TransactionLineItems(listing, order, commission(0), &domain.Commission{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestTransactionLineItemsRejectsNegativeCommission(t *testing.T) {
	listing := newListing("day", 10000)
	order := bookingOrder(date(2024, time.January, 1), date(2024, time.January, 2))

	_, err := TransactionLineItems(listing, order, commission(-5), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidCommission)
}

func TestTransactionLineItemsDurationDiscount(t *testing.T) {
	listing := newListing("day", 10000)
	listing.Attributes.PublicData.DiscountThreshold1 = listingdomain.NumberOf(3)
	listing.Attributes.PublicData.DiscountPercentage1 = listingdomain.NumberOf(10)
	listing.Attributes.PublicData.DiscountThreshold2 = listingdomain.NumberOf(7)
	listing.Attributes.PublicData.DiscountPercentage2 = listingdomain.NumberOf(20)
	order := bookingOrder(date(2024, time.January, 1), date(2024, time.January, 4))

	items, err := TransactionLineItems(listing, order, commission(10), nil)
	require.NoError(t, err)
	require.Len(t, items, 3)

	discount := items[1]
	assert.Equal(t, "line-item/discount-10%", discount.Code)
	assert.Equal(t, money.New(-3000, "USD"), discount.UnitPrice)
	assert.Equal(t, 1.0, *discount.Quantity)
	assert.Equal(t, domain.BothParties(), discount.IncludeFor)

	// Commission is charged on the undiscounted order.
	assert.Equal(t, domain.CodeProviderCommission, items[2].Code)
	assert.Equal(t, money.New(30000, "USD"), items[2].UnitPrice)
}

func TestTransactionLineItemsItemShipping(t *testing.T) {
	listing := newListing("item", 2500)
	listing.Attributes.PublicData.ShippingPriceInSubunitsOneItem = listingdomain.NumberOf(500)
	listing.Attributes.PublicData.ShippingPriceInSubunitsAdditionalItems = listingdomain.NumberOf(200)
	order := domain.OrderData{StockReservationQuantity: int64Ptr(3), DeliveryMethod: "shipping"}

	items, err := TransactionLineItems(listing, order, nil, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "line-item/item", items[0].Code)
	assert.Equal(t, 3.0, *items[0].Quantity)

	assert.Equal(t, domain.CodeShippingFee, items[1].Code)
	assert.Equal(t, money.New(900, "USD"), items[1].UnitPrice)
	assert.Equal(t, 1.0, *items[1].Quantity)
}

func TestTransactionLineItemsShippingFeeVariants(t *testing.T) {
	tests := []struct {
		name       string
		first      listingdomain.Number
		additional listingdomain.Number
		quantity   int64
		wantFee    *int64
	}{
		{name: "single item", first: listingdomain.NumberOf(500), additional: listingdomain.NumberOf(200), quantity: 1, wantFee: int64Ptr(500)},
		{name: "additional fee missing", first: listingdomain.NumberOf(500), quantity: 4, wantFee: int64Ptr(500)},
		{name: "not configured", additional: listingdomain.NumberOf(200), quantity: 2},
		{name: "zero first item fee", first: listingdomain.NumberOf(0), additional: listingdomain.NumberOf(200), quantity: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := newListing("item", 2500)
			listing.Attributes.PublicData.ShippingPriceInSubunitsOneItem = tt.first
			listing.Attributes.PublicData.ShippingPriceInSubunitsAdditionalItems = tt.additional
			order := domain.OrderData{StockReservationQuantity: int64Ptr(tt.quantity), DeliveryMethod: "shipping"}

			items, err := TransactionLineItems(listing, order, nil, nil)
			require.NoError(t, err)
			if tt.wantFee == nil {
				assert.Len(t, items, 1)
				return
			}
			require.Len(t, items, 2)
			assert.Equal(t, money.New(*tt.wantFee, "USD"), items[1].UnitPrice)
		})
	}
}

func TestTransactionLineItemsRejectsAmountOverflow(t *testing.T) {
	shippingListing := func(first, additional float64) listingdomain.Listing {
		listing := newListing("item", 10000)
		listing.Attributes.PublicData.ShippingPriceInSubunitsOneItem = listingdomain.NumberOf(first)
		listing.Attributes.PublicData.ShippingPriceInSubunitsAdditionalItems = listingdomain.NumberOf(additional)
		return listing
	}

	tests := []struct {
		name     string
		listing  listingdomain.Listing
		quantity int64
	}{
		{name: "quantity times price", listing: newListing("item", 10000), quantity: 1 << 62},
		{name: "shipping for many items", listing: shippingListing(500, 200), quantity: 1 << 62},
		{name: "additional item fee", listing: shippingListing(500, 1e18), quantity: 20},
		{name: "first item fee beyond int64", listing: shippingListing(1e19, 200), quantity: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := domain.OrderData{StockReservationQuantity: int64Ptr(tt.quantity), DeliveryMethod: "shipping"}

			items, err := TransactionLineItems(tt.listing, order, commission(10), nil)
			if err == nil {
				_, err = ConstructValidLineItems(items)
			}
			assert.ErrorIs(t, err, money.ErrAmountOverflow)
		})
	}
}

func TestTransactionLineItemsNormalizesCurrency(t *testing.T) {
	listing := newListing("item", 2500)
	listing.Attributes.Price.Currency = "usd"
	listing.Attributes.PublicData.ShippingPriceInSubunitsOneItem = listingdomain.NumberOf(500)
	order := domain.OrderData{StockReservationQuantity: int64Ptr(2), DeliveryMethod: "shipping"}

	items, err := TransactionLineItems(listing, order, commission(10), commission(5))
	require.NoError(t, err)
	require.Len(t, items, 4)
	for _, item := range items {
		assert.Equal(t, "USD", item.UnitPrice.Currency, item.Code)
	}
}

func TestTransactionLineItemsItemPickup(t *testing.T) {
	listing := newListing("item", 2500)
	listing.Attributes.PublicData.ShippingPriceInSubunitsOneItem = listingdomain.NumberOf(500)
	order := domain.OrderData{StockReservationQuantity: int64Ptr(2), DeliveryMethod: "pickup"}

	items, err := TransactionLineItems(listing, order, nil, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, domain.CodePickupFee, items[1].Code)
	assert.True(t, items[1].UnitPrice.IsZero())
	assert.Equal(t, "USD", items[1].UnitPrice.Currency)
}

func TestTransactionLineItemsItemWithoutDelivery(t *testing.T) {
	listing := newListing("item", 2500)
	order := domain.OrderData{StockReservationQuantity: int64Ptr(2)}

	items, err := TransactionLineItems(listing, order, nil, nil)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestTransactionLineItemsHourBooking(t *testing.T) {
	listing := newListing("hour", 1999)
	start := time.Date(2024, time.January, 6, 10, 0, 0, 0, time.UTC)
	order := bookingOrder(start, start.Add(150*time.Minute))

	items, err := TransactionLineItems(listing, order, nil, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "line-item/hour", items[0].Code)
	assert.Equal(t, 2.5, *items[0].Quantity)

	total, err := LineTotal(items[0])
	require.NoError(t, err)
	assert.Equal(t, int64(4998), total.Amount)
}

func TestTransactionLineItemsMissingQuantity(t *testing.T) {
	start := date(2024, time.January, 1)

	tests := []struct {
		name     string
		unitType string
		order    domain.OrderData
	}{
		{name: "day without dates", unitType: "day"},
		{name: "night without end", unitType: "night", order: domain.OrderData{BookingStart: timePtr(start)}},
		{name: "day ending on start", unitType: "day", order: bookingOrder(start, start)},
		{name: "only weekend days", unitType: "day", order: bookingOrder(date(2024, time.January, 6), date(2024, time.January, 8))},
		{name: "hour without dates", unitType: "hour"},
		{name: "hour reversed", unitType: "hour", order: bookingOrder(start.Add(time.Hour), start)},
		{name: "item without quantity", unitType: "item"},
		{name: "item zero quantity", unitType: "item", order: domain.OrderData{StockReservationQuantity: int64Ptr(0)}},
		{name: "unsupported unit type", unitType: "fortnight", order: domain.OrderData{
			BookingStart:             timePtr(start),
			BookingEnd:               timePtr(start.AddDate(0, 0, 3)),
			StockReservationQuantity: int64Ptr(2),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := TransactionLineItems(newListing(tt.unitType, 1000), tt.order, commission(10), nil)
			assert.ErrorIs(t, err, domain.ErrMissingQuantity)
			assert.Nil(t, items)
		})
	}
}

func TestTransactionLineItemsRequiresCurrency(t *testing.T) {
	listing := newListing("item", 1000)
	listing.Attributes.Price.Currency = ""

	_, err := TransactionLineItems(listing, domain.OrderData{StockReservationQuantity: int64Ptr(1)}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidListingPrice)
}

func TestTransactionLineItemsIsPure(t *testing.T) {
	listing := newListing("day", 10000)
	listing.Attributes.PublicData.DiscountThreshold1 = listingdomain.NumberOf(2)
	listing.Attributes.PublicData.DiscountPercentage1 = listingdomain.NumberOf(5)
	end := date(2024, time.January, 4)
	order := bookingOrder(date(2024, time.January, 1), end)

	first, err := TransactionLineItems(listing, order, commission(10), commission(5))
	require.NoError(t, err)
	second, err := TransactionLineItems(listing, order, commission(10), commission(5))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, end, *order.BookingEnd)
}

func TestNormalizeOrderData(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.January, 4)
	order := bookingOrder(start, end)

	dayOrder := NormalizeOrderData(listingdomain.UnitTypeDay, order)
	assert.Equal(t, date(2024, time.January, 3), *dayOrder.BookingEnd)
	assert.Equal(t, end, *order.BookingEnd)

	hourOrder := NormalizeOrderData(listingdomain.UnitTypeHour, order)
	assert.Equal(t, end, *hourOrder.BookingEnd)

	empty := NormalizeOrderData(listingdomain.UnitTypeNight, domain.OrderData{})
	assert.Nil(t, empty.BookingEnd)
}
