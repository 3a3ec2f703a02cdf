package service

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/marketplace/internal/lineitem/domain"
	"github.com/smallbiznis/marketplace/pkg/money"
)

// LineTotal is unitPrice × quantity for quantity items and
// unitPrice × percentage / 100 for percentage items.
func LineTotal(item domain.LineItem) (money.Money, error) {
	switch {
	case item.Quantity != nil && item.Percentage == nil:
		return item.UnitPrice.MulQuantity(*item.Quantity)
	case item.Percentage != nil && item.Quantity == nil:
		return item.UnitPrice.Percentage(*item.Percentage)
	default:
		return money.Money{}, domain.ErrInvalidPricingMode
	}
}

// PayinTotal is what the customer pays.
func PayinTotal(items []domain.LineItem, currency string) (money.Money, error) {
	return partyTotal(items, domain.PartyCustomer, currency)
}

// PayoutTotal is what the provider receives. The platform keeps
// PayinTotal - PayoutTotal.
func PayoutTotal(items []domain.LineItem, currency string) (money.Money, error) {
	return partyTotal(items, domain.PartyProvider, currency)
}

func partyTotal(items []domain.LineItem, party domain.Party, currency string) (money.Money, error) {
	totals := make([]money.Money, 0, len(items))
	for _, item := range items {
		if !item.IncludedFor(party) {
			continue
		}
		total, err := LineTotal(item)
		if err != nil {
			return money.Money{}, fmt.Errorf("line item %s: %w", item.Code, err)
		}
		totals = append(totals, total)
	}
	return money.Sum(currency, totals...)
}

// ConstructValidLineItems checks each line item against the platform rules
// and returns copies with LineTotal filled in and Reversal cleared.
func ConstructValidLineItems(items []domain.LineItem) ([]domain.LineItem, error) {
	if len(items) > domain.MaxLineItems {
		return nil, domain.ErrTooManyLineItems
	}

	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if !validCode(item.Code) {
			return nil, fmt.Errorf("line item %q: %w", item.Code, domain.ErrInvalidLineItemCode)
		}
		total, err := LineTotal(item)
		if err != nil {
			return nil, fmt.Errorf("line item %s: %w", item.Code, err)
		}

		valid := item
		valid.IncludeFor = append([]domain.Party(nil), item.IncludeFor...)
		if len(valid.IncludeFor) == 0 {
			valid.IncludeFor = domain.BothParties()
		}
		valid.LineTotal = &total
		valid.Reversal = false
		out = append(out, valid)
	}
	return out, nil
}

func validCode(code string) bool {
	if len(code) > domain.MaxCodeLength {
		return false
	}
	suffix, ok := strings.CutPrefix(code, domain.CodePrefix)
	return ok && strings.TrimSpace(suffix) != ""
}
