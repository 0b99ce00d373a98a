// Package pricing converts a requested ticket mix into priced line
// items. It is a pure function of the category snapshot passed in:
// nothing here reads the catalog, so a quote can never observe two
// different price states.
package pricing

import (
	"fmt"

	"github.com/avelichko/tourbooking/internal/domain"
)

type RequestedItem struct {
	CategoryID string
	Quantity   int
}

type Quote struct {
	Items      []domain.LineItem
	TotalCents int64
}

// Price builds a quote for the requested mix against the given
// activity's category snapshot. Categories belonging to another
// activity are rejected: a caller must not book seats priced for a
// different excursion. Totals are exact integer sums of minor units;
// rounding happened once, when the catalog prices were parsed (see
// internal/money).
func Price(activityID string, categories []domain.TicketCategory, requested []RequestedItem) (Quote, error) {
	if len(requested) == 0 {
		return Quote{}, domain.ErrInvalidQuantity
	}

	byID := make(map[string]domain.TicketCategory, len(categories))
	for _, c := range categories {
		if c.ActivityID == activityID {
			byID[c.ID] = c
		}
	}

	quote := Quote{Items: make([]domain.LineItem, 0, len(requested))}
	for _, req := range requested {
		if req.Quantity < 1 {
			return Quote{}, fmt.Errorf("category %s: %w", req.CategoryID, domain.ErrInvalidQuantity)
		}
		cat, ok := byID[req.CategoryID]
		if !ok {
			return Quote{}, fmt.Errorf("category %s: %w", req.CategoryID, domain.ErrUnknownCategory)
		}
		item := domain.LineItem{
			CategoryID:     cat.ID,
			Quantity:       req.Quantity,
			UnitPriceCents: cat.PriceCents,
		}
		quote.Items = append(quote.Items, item)
		quote.TotalCents += item.SubtotalCents()
	}
	return quote, nil
}
