package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ovation/internal/errors"
	"ovation/internal/models"
)

func day(offset int) time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestFlatPolicy(t *testing.T) {
	policy := FlatPolicy{Price: decimal.NewFromInt(50)}

	for _, name := range models.TicketTypeNames {
		price, err := policy.UnitPrice(name)
		require.NoError(t, err)
		assert.True(t, price.Equal(decimal.NewFromInt(50)))
	}

	_, err := policy.UnitPrice("Balcony")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestTieredPolicy(t *testing.T) {
	event := &models.Event{TicketPrice: decimal.NewFromInt(50)}
	policy := Resolve(event, []models.TicketType{
		{Name: models.TicketTypeGeneral, UnitPrice: decimal.NewFromInt(50)},
		{Name: models.TicketTypeVIP, UnitPrice: decimal.NewFromInt(300)},
	})

	price, err := policy.UnitPrice(models.TicketTypeVIP)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(300)))

	// FanFest is a recognized type but this event does not offer it.
	_, err = policy.UnitPrice(models.TicketTypeFanFest)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestResolveFallsBackToFlat(t *testing.T) {
	event := &models.Event{TicketPrice: decimal.NewFromInt(25)}
	policy := Resolve(event, nil)

	price, err := policy.UnitPrice(models.TicketTypeGeneral)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(25)))
}

func TestEffectivePrice(t *testing.T) {
	base := decimal.NewFromInt(100)
	phases := []models.SalePhase{
		{PhaseName: "Early Bird", StartDate: day(0), EndDate: day(10), DiscountPercent: 20},
		{PhaseName: "Last Minute", StartDate: day(20), EndDate: day(30), DiscountPercent: 5},
	}

	assert.True(t, EffectivePrice(base, phases, day(5)).Equal(decimal.NewFromInt(80)))
	assert.True(t, EffectivePrice(base, phases, day(25)).Equal(decimal.NewFromInt(95)))

	// Outside every phase the base price applies.
	assert.True(t, EffectivePrice(base, phases, day(15)).Equal(base))
	assert.True(t, EffectivePrice(base, nil, day(5)).Equal(base))

	// Boundaries are inclusive.
	assert.True(t, EffectivePrice(base, phases, day(0)).Equal(decimal.NewFromInt(80)))
	assert.True(t, EffectivePrice(base, phases, day(10)).Equal(decimal.NewFromInt(80)))
}

func TestEffectivePriceFirstContainingPhaseWins(t *testing.T) {
	base := decimal.NewFromInt(100)
	phases := []models.SalePhase{
		{PhaseName: "A", StartDate: day(0), EndDate: day(10), DiscountPercent: 30},
		{PhaseName: "B", StartDate: day(5), EndDate: day(15), DiscountPercent: 10},
	}

	assert.True(t, EffectivePrice(base, phases, day(7)).Equal(decimal.NewFromInt(70)))
}

func TestEffectivePriceRounding(t *testing.T) {
	base := decimal.RequireFromString("33.33")
	phases := []models.SalePhase{
		{StartDate: day(0), EndDate: day(10), DiscountPercent: 15},
	}

	// 33.33 * 0.85 = 28.3305, rounded to 28.33.
	assert.True(t, EffectivePrice(base, phases, day(5)).Equal(decimal.RequireFromString("28.33")))
}
