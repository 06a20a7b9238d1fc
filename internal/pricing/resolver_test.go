package pricing

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/printshop-backend/internal/productconfig"
	"github.com/angelmondragon/printshop-backend/internal/tiers"
	"github.com/angelmondragon/printshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func businessCardTiers() []productconfig.PricingTier {
	return tiers.Normalize([]productconfig.PricingTier{
		{MinQuantity: 1, PricePerUnit: dec("1.50"), DiscountPercentage: dec("0")},
		{MinQuantity: 100, PricePerUnit: dec("1.30"), DiscountPercentage: dec("5")},
		{MinQuantity: 250, PricePerUnit: dec("1.15"), DiscountPercentage: dec("10")},
		{MinQuantity: 500, PricePerUnit: dec("1.00"), DiscountPercentage: dec("15")},
		{MinQuantity: 1000, PricePerUnit: dec("0.90"), DiscountPercentage: dec("20")},
		{MinQuantity: 5000, PricePerUnit: dec("0.80"), DiscountPercentage: dec("30")},
	})
}

type fixture struct {
	cfg      productconfig.ProductConfig
	gloss    productconfig.ProductPaperStock
	linen    productconfig.ProductPaperStock
	cutting  productconfig.AddOnDefinition
	numbered productconfig.AddOnDefinition
	corners  productconfig.AddOnDefinition
	proof    productconfig.AddOnDefinition
}

func newFixture() fixture {
	f := fixture{}
	f.gloss = productconfig.ProductPaperStock{PaperStockID: uuid.New(), Name: "14pt gloss", Multiplier: dec("1"), IsDefault: true}
	f.linen = productconfig.ProductPaperStock{PaperStockID: uuid.New(), Name: "100lb linen", Multiplier: dec("1.2"), AdditionalCost: dec("0.05")}

	f.cutting = productconfig.AddOnDefinition{
		ID: uuid.New(), Name: "Custom cutting", Kind: enums.AddOnKindStandard,
		PricingModel:  enums.PricingModelFlat,
		Configuration: productconfig.Configuration{Flat: &productconfig.FlatConfig{Price: dec("50")}},
		Active:        true,
	}
	min := dec("1")
	f.numbered = productconfig.AddOnDefinition{
		ID: uuid.New(), Name: "Numbering", Kind: enums.AddOnKindVariableData,
		PricingModel: enums.PricingModelPerUnit,
		Configuration: productconfig.Configuration{
			PerUnit: &productconfig.PerUnitConfig{BasePrice: dec("10"), PricePerUnit: dec("0.02")},
			SubFields: []productconfig.SubField{
				{Key: "start", Label: "Starting number", Type: enums.SubFieldTypeNumber, Required: true, Min: &min},
				{Key: "color", Type: enums.SubFieldTypeSelect, Options: []string{"black", "red"}, Default: "black"},
			},
		},
		Active: true,
	}
	f.corners = productconfig.AddOnDefinition{
		ID: uuid.New(), Name: "Corner rounding", Kind: enums.AddOnKindCornerRounding,
		PricingModel: enums.PricingModelCustom,
		Configuration: productconfig.Configuration{
			Custom: &productconfig.CustomConfig{
				Control: enums.AddOnControlRadio,
				Choices: []productconfig.Choice{
					{Value: "two", Label: "Two corners", AdditionalPrice: dec("15")},
					{Value: "four", Label: "Four corners", AdditionalPrice: dec("25")},
				},
			},
			SubFields: []productconfig.SubField{
				{Key: "radius", Type: enums.SubFieldTypeSelect, Options: []string{"1/8", "1/4"}, Required: true, ShowWhen: "four"},
			},
		},
		Active: true,
	}
	f.proof = productconfig.AddOnDefinition{
		ID: uuid.New(), Name: "Digital proof", Kind: enums.AddOnKindProof,
		PricingModel: enums.PricingModelCustom,
		Configuration: productconfig.Configuration{Custom: &productconfig.CustomConfig{
			Control:       enums.AddOnControlSelect,
			Choices:       []productconfig.Choice{{Value: "pdf", AdditionalPrice: dec("0")}, {Value: "hard", AdditionalPrice: dec("20")}},
			DefaultChoice: "pdf",
		}},
		Mandatory: true,
		Active:    true,
	}

	set := productconfig.AddOnSet{ID: uuid.New(), Name: "cards", Version: 1, Items: []productconfig.AddOnSetItem{
		{AddOnID: f.numbered.ID, DisplayPosition: enums.DisplayPositionAbove, SortOrder: 0},
		{AddOnID: f.corners.ID, DisplayPosition: enums.DisplayPositionAbove, SortOrder: 1},
		{AddOnID: f.proof.ID, DisplayPosition: enums.DisplayPositionAbove, SortOrder: 2, IsDefault: true},
		{AddOnID: f.cutting.ID, DisplayPosition: enums.DisplayPositionIn, SortOrder: 0},
	}}

	f.cfg = productconfig.ProductConfig{
		ProductID:       uuid.New(),
		Name:            "Business cards",
		Status:          enums.ConfigStatusPublished,
		Version:         3,
		BasePrice:       dec("29.99"),
		SetupFee:        dec("0"),
		Tiers:           businessCardTiers(),
		PaperStocks:     []productconfig.ProductPaperStock{f.gloss, f.linen},
		DefaultAddOnSet: &set,
		AddOns: map[uuid.UUID]productconfig.AddOnDefinition{
			f.cutting.ID:  f.cutting,
			f.numbered.ID: f.numbered,
			f.corners.ID:  f.corners,
			f.proof.ID:    f.proof,
		},
		ProductionDays: 5,
		Rush:           productconfig.RushConfig{Available: true, Days: 2, Fee: dec("35")},
		GangRun:        productconfig.GangRunConfig{Eligible: true, MinGangQuantity: 100, MaxGangQuantity: 1000},
	}
	return f
}

func TestResolvePriceMatchesTier(t *testing.T) {
	f := newFixture()

	out, err := ResolvePrice(f.cfg, Selection{Quantity: 150})
	require.NoError(t, err)

	require.NotNil(t, out.TierMinQuantity)
	require.NotNil(t, out.TierMaxQuantity)
	assert.Equal(t, 100, *out.TierMinQuantity)
	assert.Equal(t, 249, *out.TierMaxQuantity)
	assert.Equal(t, "1.30", out.UnitPrice.StringFixed(2))
	assert.Equal(t, "5", out.DiscountPercentage.String())
	assert.Equal(t, "195.00", out.Subtotal.StringFixed(2))
	assert.Equal(t, "195.00", out.Total.StringFixed(2))
	require.Len(t, out.Options, 1, "mandatory proof is always priced")
	assert.Equal(t, f.proof.ID, out.Options[0].AddOnID)
	assert.Equal(t, "pdf", out.Options[0].Value)
	assert.Equal(t, f.gloss.PaperStockID, *out.PaperStockID)
}

func TestResolvePriceEmptyTableFallsBackToBasePrice(t *testing.T) {
	f := newFixture()
	f.cfg.Tiers = nil

	out, err := ResolvePrice(f.cfg, Selection{Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, "29.99", out.UnitPrice.StringFixed(2))
	assert.True(t, out.DiscountPercentage.IsZero())
	assert.Nil(t, out.TierMinQuantity)
	assert.Equal(t, "299.90", out.Subtotal.StringFixed(2))
}

func TestResolvePriceEmptyTableWithoutBasePrice(t *testing.T) {
	f := newFixture()
	f.cfg.Tiers = nil
	f.cfg.BasePrice = decimal.Zero

	_, err := ResolvePrice(f.cfg, Selection{Quantity: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, productconfig.ErrInvalidQuantity))
}

func TestResolvePriceFlatAddOnChargedOnce(t *testing.T) {
	f := newFixture()

	out, err := ResolvePrice(f.cfg, Selection{
		Quantity: 1000,
		AddOns:   map[uuid.UUID]string{f.cutting.ID: "true"},
	})
	require.NoError(t, err)
	assert.Equal(t, "50.00", out.OptionsTotal.StringFixed(2))
	assert.Equal(t, "950.00", out.Subtotal.StringFixed(2))
}

func TestResolvePricePerUnitAndChoiceAddOns(t *testing.T) {
	f := newFixture()

	out, err := ResolvePrice(f.cfg, Selection{
		Quantity: 500,
		AddOns: map[uuid.UUID]string{
			f.numbered.ID: "",
			f.corners.ID:  "four",
			f.proof.ID:    "hard",
		},
		SubFields: map[uuid.UUID]map[string]string{
			f.numbered.ID: {"start": "1001"},
			f.corners.ID:  {"radius": "1/4"},
		},
	})
	require.NoError(t, err)

	// numbering 10 + 0.02*500 = 20, corners 25, proof 20
	assert.Equal(t, "65.00", out.OptionsTotal.StringFixed(2))
	assert.Equal(t, "565.00", out.Subtotal.StringFixed(2))
	require.Len(t, out.Options, 3)
	assert.Equal(t, f.numbered.ID, out.Options[0].AddOnID)
	assert.Equal(t, "black", out.Options[0].SubFields["color"])
	assert.Equal(t, "1/4", out.Options[1].SubFields["radius"])
}

func TestResolvePricePaperStockMultiplierAndAdditionalCost(t *testing.T) {
	f := newFixture()
	id := f.linen.PaperStockID

	out, err := ResolvePrice(f.cfg, Selection{Quantity: 150, PaperStockID: &id})
	require.NoError(t, err)
	// 1.30 * 1.2 + 0.05
	assert.Equal(t, "1.61", out.UnitPrice.StringFixed(2))
	assert.Equal(t, "241.50", out.Subtotal.StringFixed(2))
	assert.Equal(t, "1.2", out.PaperMultiplier.String())
}

func TestResolvePriceZeroMultiplierTreatedAsOne(t *testing.T) {
	f := newFixture()
	f.cfg.PaperStocks[0].Multiplier = decimal.Zero

	out, err := ResolvePrice(f.cfg, Selection{Quantity: 150})
	require.NoError(t, err)
	assert.Equal(t, "1.30", out.UnitPrice.StringFixed(2))
}

func TestResolvePriceSetupAndRush(t *testing.T) {
	f := newFixture()
	f.cfg.SetupFee = dec("12.5")

	out, err := ResolvePrice(f.cfg, Selection{Quantity: 100, RushRequested: true})
	require.NoError(t, err)
	assert.Equal(t, "130.00", out.Subtotal.StringFixed(2))
	assert.Equal(t, "35.00", out.RushFee.StringFixed(2))
	assert.Equal(t, "177.50", out.Total.StringFixed(2))

	f.cfg.Rush.Available = false
	_, err = ResolvePrice(f.cfg, Selection{Quantity: 100, RushRequested: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, productconfig.ErrUnconfiguredOption))
}

func TestResolvePriceGangRunPath(t *testing.T) {
	f := newFixture()

	out, err := ResolvePrice(f.cfg, Selection{Quantity: 50})
	require.NoError(t, err)
	assert.False(t, out.GangRun)
	assert.Equal(t, enums.ProductionPathStandalone, out.ProductionPath)

	out, err = ResolvePrice(f.cfg, Selection{Quantity: 500})
	require.NoError(t, err)
	assert.True(t, out.GangRun)
	assert.Equal(t, enums.ProductionPathGangRun, out.ProductionPath)
}

func TestResolvePriceRejections(t *testing.T) {
	f := newFixture()
	unknown := uuid.New()

	cases := map[string]struct {
		sel      Selection
		sentinel error
		field    string
	}{
		"zeroQuantity":     {sel: Selection{Quantity: 0}, sentinel: productconfig.ErrInvalidQuantity, field: "quantity"},
		"negativeQuantity": {sel: Selection{Quantity: -5}, sentinel: productconfig.ErrInvalidQuantity, field: "quantity"},
		"unknownPaper":     {sel: Selection{Quantity: 10, PaperStockID: &unknown}, sentinel: productconfig.ErrUnconfiguredOption, field: "paper_stock_id"},
		"unattachedAddOn":  {sel: Selection{Quantity: 10, AddOns: map[uuid.UUID]string{unknown: "true"}}, sentinel: productconfig.ErrUnconfiguredOption, field: "addons"},
		"unknownChoice": {
			sel:      Selection{Quantity: 10, AddOns: map[uuid.UUID]string{f.corners.ID: "three"}},
			sentinel: productconfig.ErrUnconfiguredOption,
			field:    "addons[" + f.corners.ID.String() + "]",
		},
		"missingChoice": {
			sel:      Selection{Quantity: 10, AddOns: map[uuid.UUID]string{f.corners.ID: ""}},
			sentinel: productconfig.ErrUnconfiguredOption,
			field:    "addons[" + f.corners.ID.String() + "]",
		},
		"missingRequiredSubField": {
			sel:      Selection{Quantity: 10, AddOns: map[uuid.UUID]string{f.numbered.ID: ""}},
			sentinel: productconfig.ErrUnconfiguredOption,
			field:    "addons[" + f.numbered.ID.String() + "].sub_fields.start",
		},
		"subFieldBelowMin": {
			sel: Selection{
				Quantity:  10,
				AddOns:    map[uuid.UUID]string{f.numbered.ID: ""},
				SubFields: map[uuid.UUID]map[string]string{f.numbered.ID: {"start": "0"}},
			},
			sentinel: productconfig.ErrUnconfiguredOption,
			field:    "addons[" + f.numbered.ID.String() + "].sub_fields.start",
		},
		"subFieldBadOption": {
			sel: Selection{
				Quantity:  10,
				AddOns:    map[uuid.UUID]string{f.numbered.ID: ""},
				SubFields: map[uuid.UUID]map[string]string{f.numbered.ID: {"start": "5", "color": "gold"}},
			},
			sentinel: productconfig.ErrUnconfiguredOption,
			field:    "addons[" + f.numbered.ID.String() + "].sub_fields.color",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ResolvePrice(f.cfg, tc.sel)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.sentinel))

			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.False(t, typed.Retryable())
			violation, ok := typed.Details().(productconfig.Violation)
			require.True(t, ok)
			assert.Equal(t, tc.field, violation.Field)
		})
	}
}

func TestResolvePriceHiddenSubFieldIgnored(t *testing.T) {
	f := newFixture()

	out, err := ResolvePrice(f.cfg, Selection{
		Quantity: 10,
		AddOns:   map[uuid.UUID]string{f.corners.ID: "two"},
	})
	require.NoError(t, err)
	require.Len(t, out.Options, 2)
	assert.Empty(t, out.Options[0].SubFields)
}

func TestResolvePriceMonotonicWithinTier(t *testing.T) {
	f := newFixture()
	sel := Selection{
		AddOns:    map[uuid.UUID]string{f.numbered.ID: "", f.cutting.ID: "true"},
		SubFields: map[uuid.UUID]map[string]string{f.numbered.ID: {"start": "1"}},
	}

	for _, tier := range f.cfg.Tiers {
		upper := tier.MinQuantity + 300
		if tier.MaxQuantity != nil {
			upper = *tier.MaxQuantity
		}
		var prev decimal.Decimal
		for q := tier.MinQuantity; q <= upper; q++ {
			sel.Quantity = q
			out, err := ResolvePrice(f.cfg, sel)
			require.NoError(t, err)
			if q > tier.MinQuantity && out.Subtotal.LessThan(prev) {
				t.Fatalf("subtotal decreased from %s to %s at quantity %d", prev, out.Subtotal, q)
			}
			prev = out.Subtotal
		}
	}
}

func TestResolvePriceNeverAppliesDiscountPercentage(t *testing.T) {
	f := newFixture()

	withDiscount, err := ResolvePrice(f.cfg, Selection{Quantity: 5000})
	require.NoError(t, err)

	zeroed := f.cfg.Clone()
	for i := range zeroed.Tiers {
		zeroed.Tiers[i].DiscountPercentage = decimal.Zero
	}
	withoutDiscount, err := ResolvePrice(zeroed, Selection{Quantity: 5000})
	require.NoError(t, err)

	assert.Equal(t, "30", withDiscount.DiscountPercentage.String())
	assert.True(t, withDiscount.Total.Equal(withoutDiscount.Total))
	assert.Equal(t, "4000.00", withDiscount.Subtotal.StringFixed(2))
}

func TestResolvePriceIsDeterministic(t *testing.T) {
	f := newFixture()
	sel := Selection{
		Quantity:  750,
		AddOns:    map[uuid.UUID]string{f.numbered.ID: "", f.corners.ID: "four", f.cutting.ID: "true"},
		SubFields: map[uuid.UUID]map[string]string{f.numbered.ID: {"start": "7"}, f.corners.ID: {"radius": "1/8"}},
	}

	first, err := ResolvePrice(f.cfg, sel)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := ResolvePrice(f.cfg, sel)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolvePriceSubtotalUsesReportedUnitPrice(t *testing.T) {
	cases := map[string]struct {
		price      string
		multiplier string
		quantity   int
		unit       string
		subtotal   string
	}{
		"roundsDown":         {price: "0.333", multiplier: "1", quantity: 3, unit: "0.33", subtotal: "0.99"},
		"halfAwayFromZero":   {price: "1.30", multiplier: "1.15", quantity: 1000, unit: "1.50", subtotal: "1500.00"},
		"fourPlaceTierPrice": {price: "0.1234", multiplier: "1", quantity: 10000, unit: "0.12", subtotal: "1200.00"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.cfg.Tiers = tiers.Normalize([]productconfig.PricingTier{{MinQuantity: 1, PricePerUnit: dec(tc.price)}})
			f.cfg.PaperStocks[0].Multiplier = dec(tc.multiplier)

			out, err := ResolvePrice(f.cfg, Selection{Quantity: tc.quantity})
			require.NoError(t, err)
			assert.Equal(t, tc.unit, out.UnitPrice.StringFixed(2))
			assert.Equal(t, tc.subtotal, out.Subtotal.StringFixed(2))
			assertBreakdownAddsUp(t, out)
		})
	}
}

func TestResolvePriceBreakdownAddsUp(t *testing.T) {
	f := newFixture()
	f.cfg.SetupFee = dec("7.4999")
	f.cfg.Rush.Fee = dec("12.345")
	f.linen.Multiplier = dec("1.15")
	f.cfg.PaperStocks[1] = f.linen
	perUnit := *f.numbered.Configuration.PerUnit
	perUnit.PricePerUnit = dec("0.0133")
	f.numbered.Configuration.PerUnit = &perUnit
	f.cfg.AddOns[f.numbered.ID] = f.numbered
	linen := f.linen.PaperStockID

	for _, q := range []int{1, 7, 99, 100, 333, 999, 1000, 4999, 5001} {
		out, err := ResolvePrice(f.cfg, Selection{
			Quantity:      q,
			PaperStockID:  &linen,
			AddOns:        map[uuid.UUID]string{f.numbered.ID: "", f.corners.ID: "two"},
			SubFields:     map[uuid.UUID]map[string]string{f.numbered.ID: {"start": "1"}},
			RushRequested: true,
		})
		require.NoError(t, err, "quantity %d", q)
		assertBreakdownAddsUp(t, out)
	}
}

func assertBreakdownAddsUp(t *testing.T, out *PriceBreakdown) {
	t.Helper()
	options := decimal.Zero
	for _, line := range out.Options {
		assert.True(t, line.Amount.Equal(line.Amount.Round(MoneyPlaces)), "option %s not in cents: %s", line.Name, line.Amount)
		options = options.Add(line.Amount)
	}
	assert.True(t, out.OptionsTotal.Equal(options), "options total %s != sum of lines %s", out.OptionsTotal, options)

	subtotal := out.UnitPrice.Mul(decimal.NewFromInt(int64(out.Quantity))).Add(out.OptionsTotal)
	assert.True(t, out.Subtotal.Equal(subtotal), "subtotal %s != %s x %d + %s", out.Subtotal, out.UnitPrice, out.Quantity, out.OptionsTotal)

	total := out.Subtotal.Add(out.SetupFee).Add(out.RushFee)
	assert.True(t, out.Total.Equal(total), "total %s != %s + %s + %s", out.Total, out.Subtotal, out.SetupFee, out.RushFee)
	assert.True(t, out.Total.Equal(out.Total.Round(MoneyPlaces)), "total not in cents: %s", out.Total)
}
