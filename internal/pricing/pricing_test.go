package pricing

import (
	"testing"

	"github.com/avelichko/tourbooking/internal/domain"
	"github.com/stretchr/testify/assert"
)

var categories = []domain.TicketCategory{
	{ID: "cat-adult", ActivityID: "act-1", Name: "Adult", PriceCents: 1000},
	{ID: "cat-child", ActivityID: "act-1", Name: "Child", PriceCents: 600},
	{ID: "cat-other", ActivityID: "act-2", Name: "Adult", PriceCents: 1500},
}

func TestPrice_TwoAdultsOneChild(t *testing.T) {
	quote, err := Price("act-1", categories, []RequestedItem{
		{CategoryID: "cat-adult", Quantity: 2},
		{CategoryID: "cat-child", Quantity: 1},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(2600), quote.TotalCents)
	assert.Len(t, quote.Items, 2)
	assert.Equal(t, int64(1000), quote.Items[0].UnitPriceCents)
	assert.Equal(t, int64(600), quote.Items[1].UnitPriceCents)
}

func TestPrice_RejectsCrossActivityCategory(t *testing.T) {
	_, err := Price("act-1", categories, []RequestedItem{
		{CategoryID: "cat-other", Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestPrice_RejectsUnknownCategory(t *testing.T) {
	_, err := Price("act-1", categories, []RequestedItem{
		{CategoryID: "no-such", Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestPrice_RejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		_, err := Price("act-1", categories, []RequestedItem{
			{CategoryID: "cat-adult", Quantity: qty},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
}

func TestPrice_RejectsEmptyRequest(t *testing.T) {
	_, err := Price("act-1", categories, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestPrice_SnapshotIndependentOfLaterEdits(t *testing.T) {
	snapshot := []domain.TicketCategory{
		{ID: "cat-adult", ActivityID: "act-1", PriceCents: 1000},
	}
	quote, err := Price("act-1", snapshot, []RequestedItem{
		{CategoryID: "cat-adult", Quantity: 3},
	})
	assert.NoError(t, err)

	// A later catalog edit must not affect the quote already taken.
	snapshot[0].PriceCents = 9999
	assert.Equal(t, int64(3000), quote.TotalCents)
	assert.Equal(t, int64(1000), quote.Items[0].UnitPriceCents)
}
