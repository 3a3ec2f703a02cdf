package domain

import (
	"encoding/json"
	"testing"

	"github.com/smallbiznis/marketplace/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingDecodesLoosePublicData(t *testing.T) {
	payload := `{
		"id": "listing-1",
		"attributes": {
			"price": {"amount": 10000, "currency": "USD"},
			"publicData": {
				"unitType": "Day",
				"discountThreshold1": "7",
				"discountPercentage1": 20,
				"discountThreshold2": "abc",
				"discountPercentage2": 5,
				"discountThreshold3": null,
				"discountPercentage4": "NaN",
				"shippingPriceInSubunitsOneItem": 500,
				"shippingPriceInSubunitsAdditionalItems": "200"
			}
		}
	}`

	var listing Listing
	require.NoError(t, json.Unmarshal([]byte(payload), &listing))

	assert.Equal(t, UnitTypeDay, listing.UnitType())
	assert.Equal(t, int64(10000), listing.Price().Amount)

	tiers := listing.Attributes.PublicData.DiscountTiers()
	require.Len(t, tiers, 4)
	assert.Equal(t, DiscountTier{ThresholdDays: 7, Percentage: 20}, tiers[0])
	assert.Equal(t, DiscountTier{ThresholdDays: 0, Percentage: 5}, tiers[1])
	assert.Equal(t, DiscountTier{}, tiers[2])
	assert.Equal(t, DiscountTier{}, tiers[3])

	fees, err := listing.Attributes.PublicData.ShippingFees()
	require.NoError(t, err)
	require.True(t, fees.Configured())
	assert.Equal(t, int64(500), *fees.FeeFirstItem)
	assert.Equal(t, int64(200), *fees.FeeAdditionalItem)
}

func TestPriceNormalizesCurrency(t *testing.T) {
	listing := Listing{Attributes: Attributes{Price: money.Money{Amount: 2500, Currency: " usd"}}}
	assert.Equal(t, money.Money{Amount: 2500, Currency: "USD"}, listing.Price())
}

func TestShippingFeesRejectOutOfRangeAmounts(t *testing.T) {
	var data PublicData
	require.NoError(t, json.Unmarshal([]byte(`{
		"shippingPriceInSubunitsOneItem": 1e19,
		"shippingPriceInSubunitsAdditionalItems": 200
	}`), &data))

	_, err := data.ShippingFees()
	assert.ErrorIs(t, err, money.ErrAmountOverflow)

	data = PublicData{
		ShippingPriceInSubunitsOneItem:         NumberOf(500),
		ShippingPriceInSubunitsAdditionalItems: NumberOf(-1e300),
	}
	_, err = data.ShippingFees()
	assert.ErrorIs(t, err, money.ErrAmountOverflow)

	data.ShippingPriceInSubunitsAdditionalItems = Number{}
	fees, err := data.ShippingFees()
	require.NoError(t, err)
	assert.Nil(t, fees.FeeAdditionalItem)
	assert.Equal(t, int64(500), *fees.FeeFirstItem)
}

func TestParseUnitType(t *testing.T) {
	assert.Equal(t, UnitTypeNight, ParseUnitType(" night "))
	assert.Equal(t, UnitTypeHour, ParseUnitType("hour"))
	assert.Equal(t, UnitTypeItem, ParseUnitType("item"))
	assert.Equal(t, UnitTypeUnsupported, ParseUnitType("week"))
	assert.Equal(t, UnitTypeUnsupported, ParseUnitType(""))

	assert.True(t, UnitTypeDay.UsesDateRange())
	assert.True(t, UnitTypeNight.UsesDateRange())
	assert.False(t, UnitTypeHour.UsesDateRange())
}

func TestNumberRoundTrip(t *testing.T) {
	out, err := json.Marshal(struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}{A: NumberOf(12.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":12.5,"b":null}`, string(out))
}
