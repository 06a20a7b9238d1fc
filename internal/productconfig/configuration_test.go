package productconfig

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/printshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
)

func TestConfigurationValidateVariantMustMatchModel(t *testing.T) {
	cfg := Configuration{Flat: &FlatConfig{Price: decimal.NewFromInt(5)}}

	require.NoError(t, cfg.Validate(enums.PricingModelFlat))

	err := cfg.Validate(enums.PricingModelPerUnit)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAddOn))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestConfigurationValidateRejectsMultipleVariants(t *testing.T) {
	cfg := Configuration{
		Flat:    &FlatConfig{Price: decimal.NewFromInt(5)},
		PerUnit: &PerUnitConfig{PricePerUnit: decimal.NewFromInt(1)},
	}
	require.Error(t, cfg.Validate(enums.PricingModelFlat))
}

func TestConfigurationValidateRejectsPricesBeyondStoredPrecision(t *testing.T) {
	precise := decimal.RequireFromString("0.12345")
	cases := map[string]struct {
		cfg   Configuration
		model enums.PricingModel
		field string
	}{
		"flat": {
			cfg:   Configuration{Flat: &FlatConfig{Price: precise}},
			model: enums.PricingModelFlat,
			field: "configuration.flat.price",
		},
		"perUnit": {
			cfg:   Configuration{PerUnit: &PerUnitConfig{BasePrice: decimal.NewFromInt(10), PricePerUnit: precise}},
			model: enums.PricingModelPerUnit,
			field: "configuration.per_unit.price_per_unit",
		},
		"choice": {
			cfg: Configuration{Custom: &CustomConfig{
				Control: enums.AddOnControlRadio,
				Choices: []Choice{{Value: "two", AdditionalPrice: decimal.NewFromInt(15)}, {Value: "four", AdditionalPrice: precise}},
			}},
			model: enums.PricingModelCustom,
			field: "configuration.custom.choices[1].additional_price",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.cfg.Validate(tc.model)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAddOn))
			violation, ok := ViolationOf(err)
			require.True(t, ok)
			assert.Equal(t, tc.field, violation.Field)
			assert.Equal(t, "0.12345", violation.Value)
		})
	}

	ok := Configuration{Flat: &FlatConfig{Price: decimal.RequireFromString("0.1234")}}
	assert.NoError(t, ok.Validate(enums.PricingModelFlat))
}

func TestCustomConfigurationDefaultChoiceMustExist(t *testing.T) {
	cfg := Configuration{Custom: &CustomConfig{
		Control:       enums.AddOnControlSelect,
		Choices:       []Choice{{Value: "4mm", Label: "4mm radius"}},
		DefaultChoice: "8mm",
	}}

	err := cfg.Validate(enums.PricingModelCustom)
	require.Error(t, err)
	details, ok := pkgerrors.As(err).Details().(Violation)
	require.True(t, ok)
	assert.Equal(t, "configuration.custom.default_choice", details.Field)
	assert.Equal(t, "8mm", details.Value)
}

func TestSubFieldShowWhenReferencesChoice(t *testing.T) {
	cfg := Configuration{
		Custom: &CustomConfig{
			Control: enums.AddOnControlRadio,
			Choices: []Choice{{Value: "yes"}, {Value: "no"}},
		},
		SubFields: []SubField{{Key: "count", Type: enums.SubFieldTypeNumber, ShowWhen: "yes"}},
	}
	require.NoError(t, cfg.Validate(enums.PricingModelCustom))

	cfg.SubFields[0].ShowWhen = "maybe"
	require.Error(t, cfg.Validate(enums.PricingModelCustom))
}

func TestSubFieldMinMaxOrdering(t *testing.T) {
	min := decimal.NewFromInt(10)
	max := decimal.NewFromInt(1)
	cfg := Configuration{
		Flat:      &FlatConfig{Price: decimal.NewFromInt(1)},
		SubFields: []SubField{{Key: "lines", Type: enums.SubFieldTypeNumber, Min: &min, Max: &max}},
	}
	require.Error(t, cfg.Validate(enums.PricingModelFlat))
}

func TestProductConfigCloneIsIndependent(t *testing.T) {
	max := 99
	cfg := ProductConfig{
		Tiers:       []PricingTier{{MinQuantity: 0, MaxQuantity: &max}},
		PaperStocks: []ProductPaperStock{{Name: "gloss", IsDefault: true}},
	}

	clone := cfg.Clone()
	*clone.Tiers[0].MaxQuantity = 5
	clone.PaperStocks[0].IsDefault = false

	assert.Equal(t, 99, *cfg.Tiers[0].MaxQuantity)
	assert.True(t, cfg.PaperStocks[0].IsDefault)
}

func TestProductConfigReplaceSetSwapsDefaultAndExtra(t *testing.T) {
	shared := AddOnSet{ID: uuid.New(), Name: "shared", Version: 1}
	other := AddOnSet{ID: uuid.New(), Name: "other", Version: 4}
	cfg := ProductConfig{DefaultAddOnSet: &shared, ExtraAddOnSets: []AddOnSet{other}}

	updated := shared
	updated.Version = 2
	updated.Items = []AddOnSetItem{{AddOnID: uuid.New(), DisplayPosition: enums.DisplayPositionIn}}

	require.True(t, cfg.ReplaceSet(updated))
	assert.Equal(t, 2, cfg.DefaultAddOnSet.Version)
	assert.Len(t, cfg.DefaultAddOnSet.Items, 1)
	assert.Equal(t, 1, shared.Version)

	assert.False(t, cfg.ReplaceSet(AddOnSet{ID: uuid.New()}))
	assert.Equal(t, 4, cfg.ExtraAddOnSets[0].Version)
}
