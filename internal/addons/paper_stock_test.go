package addons

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/printshop-backend/internal/productconfig"
)

func stock(name string) productconfig.ProductPaperStock {
	return productconfig.ProductPaperStock{PaperStockID: uuid.New(), Name: name, Multiplier: decimal.NewFromInt(1)}
}

func TestTogglePaperStockFirstBecomesDefault(t *testing.T) {
	gloss := stock("14pt gloss")
	matte := stock("16pt matte")

	stocks, attached, err := TogglePaperStock(nil, gloss)
	require.NoError(t, err)
	require.True(t, attached)
	require.True(t, stocks[0].IsDefault)

	stocks, _, err = TogglePaperStock(stocks, matte)
	require.NoError(t, err)
	assert.False(t, stocks[1].IsDefault)
	assert.Equal(t, 1, DefaultCount(stocks))
}

func TestRemovingDefaultPromotesNextRemaining(t *testing.T) {
	a, b, c := stock("a"), stock("b"), stock("c")
	stocks := []productconfig.ProductPaperStock{a, b, c}
	stocks, err := SetDefaultPaperStock(stocks, a.PaperStockID)
	require.NoError(t, err)

	stocks, attached, err := TogglePaperStock(stocks, a)
	require.NoError(t, err)
	assert.False(t, attached)
	require.Len(t, stocks, 2)
	assert.Equal(t, b.PaperStockID, stocks[0].PaperStockID)
	assert.True(t, stocks[0].IsDefault)
	assert.False(t, stocks[1].IsDefault)
}

func TestRemovingNonDefaultKeepsDefault(t *testing.T) {
	a, b, c := stock("a"), stock("b"), stock("c")
	stocks, err := SetDefaultPaperStock([]productconfig.ProductPaperStock{a, b, c}, c.PaperStockID)
	require.NoError(t, err)

	stocks, _, err = TogglePaperStock(stocks, a)
	require.NoError(t, err)
	def, ok := productconfig.ProductConfig{PaperStocks: stocks}.DefaultPaperStock()
	require.True(t, ok)
	assert.Equal(t, c.PaperStockID, def.PaperStockID)
}

func TestRemovingLastStockLeavesNoDefault(t *testing.T) {
	a := stock("a")
	stocks, _, _ := TogglePaperStock(nil, a)
	stocks, _, err := TogglePaperStock(stocks, a)
	require.NoError(t, err)
	assert.Empty(t, stocks)
	assert.Zero(t, DefaultCount(stocks))
}

func TestDefaultUniquenessUnderRandomToggles(t *testing.T) {
	pool := []productconfig.ProductPaperStock{stock("a"), stock("b"), stock("c"), stock("d"), stock("e")}
	rng := rand.New(rand.NewSource(42))

	var stocks []productconfig.ProductPaperStock
	for i := 0; i < 500; i++ {
		pick := pool[rng.Intn(len(pool))]
		var err error
		if rng.Intn(4) == 0 && len(stocks) > 0 {
			stocks, err = SetDefaultPaperStock(stocks, stocks[rng.Intn(len(stocks))].PaperStockID)
		} else {
			stocks, _, err = TogglePaperStock(stocks, pick)
		}
		require.NoError(t, err)

		count := DefaultCount(stocks)
		if len(stocks) == 0 {
			require.Zero(t, count, "step %d", i)
		} else {
			require.Equal(t, 1, count, "step %d", i)
		}
	}
}

func TestSetDefaultPaperStockUnknown(t *testing.T) {
	_, err := SetDefaultPaperStock([]productconfig.ProductPaperStock{stock("a")}, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, productconfig.ErrUnconfiguredOption))
}

func TestTogglePaperStockRejectsNegativeCost(t *testing.T) {
	s := stock("a")
	s.AdditionalCost = decimal.NewFromInt(-1)
	_, _, err := TogglePaperStock(nil, s)
	require.Error(t, err)
}

func TestTogglePaperStockRejectsCostBeyondStoredPrecision(t *testing.T) {
	s := stock("a")
	s.AdditionalCost = decimal.RequireFromString("0.00005")
	_, _, err := TogglePaperStock(nil, s)
	require.Error(t, err)
	violation, ok := productconfig.ViolationOf(err)
	require.True(t, ok)
	assert.Equal(t, "additional_cost", violation.Field)
}
