package valuation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mta-tools/wycena/internal/model"
)

func TestPriceVisualItem_ByID(t *testing.T) {
	eng := newTestEngine(nil)
	res := &Result{}

	eng.priceVisualItem(model.VisualItem{ID: 200, Name: "Felgi", Raw: "Felgi (200)"}, res)

	require.Len(t, res.VisualItems, 1)
	assert.Equal(t, "Felgi (200)", res.VisualItems[0].Name)
	assert.Equal(t, int64(45000), res.VisualItems[0].BasePrice)
	assert.Equal(t, int64(22500), res.VisualItems[0].MarketPrice)
}

func TestPriceVisualItem_UnknownID(t *testing.T) {
	eng := newTestEngine(nil)
	res := &Result{}

	eng.priceVisualItem(model.VisualItem{ID: 999, Name: "Felgi", Raw: "Felgi (999)"}, res)

	assert.Empty(t, res.VisualItems)
	require.Len(t, res.Missing, 1)
	assert.Contains(t, res.Missing[0], "999")
}

func TestPriceVisualItem_WideningSplitsIntoTwoLines(t *testing.T) {
	eng := newTestEngine(nil)
	res := &Result{}

	eng.priceVisualItem(model.VisualItem{Name: "Poszerzenia (2, 2)"}, res)

	require.Len(t, res.VisualItems, 2)
	assert.Equal(t, "Poszerzenia przód (2)", res.VisualItems[0].Name)
	assert.Equal(t, "Poszerzenia tył (2)", res.VisualItems[1].Name)
	for _, l := range res.VisualItems {
		assert.Equal(t, int64(15000), l.BasePrice)
		assert.Equal(t, int64(7500), l.MarketPrice)
	}
	assert.Empty(t, res.Missing)
}

func TestPriceVisualItem_WideningPartiallyMissing(t *testing.T) {
	eng := newTestEngine(nil)
	res := &Result{}

	// only width 2 is in the test catalog
	eng.priceVisualItem(model.VisualItem{Name: "Poszerzenia (2, 4)"}, res)

	require.Len(t, res.VisualItems, 1)
	assert.Equal(t, "Poszerzenia przód (2)", res.VisualItems[0].Name)
	require.Len(t, res.Missing, 1)
	assert.Contains(t, res.Missing[0], "poszerzenia:4")
}

func TestSynthesizeVisualKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"Przyciemnienie szyb (70%)", "przyciemnienie szyb:70"},
		{"Przyciemnienie szyb (70)", "przyciemnienie szyb:70"},
		{"Felgi 12 cali", "felgi:very-small"},
		{"Felgi 13\"", "felgi:small"},
		{"Felgi 14 cali", "felgi:small"},
		{"Felgi 15 cali", "felgi:standard"},
		{"Felgi 18 cali", "felgi:large"},
		{"Opony (Sportowe)", "opony:sportowe"},
		{"Neon podwozia", "neon podwozia"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, label := synthesizeVisualKey(tt.name)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.name, label)
		})
	}
}

func TestPriceVisualItem_TintAndRims(t *testing.T) {
	eng := newTestEngine(nil)
	res := &Result{}

	eng.priceVisualItem(model.VisualItem{Name: "Przyciemnienie szyb (70%)"}, res)
	eng.priceVisualItem(model.VisualItem{Name: "Felgi 14 cali"}, res)
	eng.priceVisualItem(model.VisualItem{Name: "Felgi 18 cali"}, res)
	eng.priceVisualItem(model.VisualItem{Name: "Opony (Sportowe)"}, res)

	require.Len(t, res.VisualItems, 4)
	assert.Equal(t, int64(6000), res.VisualItems[0].MarketPrice)  // tint 12000/2
	assert.Equal(t, int64(10000), res.VisualItems[1].MarketPrice) // small rims 20000/2
	assert.Equal(t, int64(17500), res.VisualItems[2].MarketPrice) // large rims 35000/2
	assert.Equal(t, int64(9000), res.VisualItems[3].MarketPrice)  // tires 18000/2
	assert.Empty(t, res.Missing)
}

func TestPriceColor_OrdinaryAtHalf(t *testing.T) {
	eng := newTestEngine(nil)
	res := &Result{}

	err := eng.priceColor(context.Background(), model.ColorLights, "Ocean", res)
	require.NoError(t, err)

	require.Len(t, res.VisualItems, 1)
	assert.Equal(t, "lights color: Ocean", res.VisualItems[0].Name)
	assert.Equal(t, int64(25000), res.VisualItems[0].BasePrice)
	assert.Equal(t, int64(12500), res.VisualItems[0].MarketPrice)
}

func TestPriceColor_OrdinaryDashboard(t *testing.T) {
	eng := newTestEngine(nil)
	res := &Result{}

	err := eng.priceColor(context.Background(), model.ColorDashboard, "Czerwony", res)
	require.NoError(t, err)

	require.Len(t, res.VisualItems, 1)
	assert.Equal(t, int64(8000), res.VisualItems[0].MarketPrice)
}

func TestPriceColor_SpecialFromStoreAtFull(t *testing.T) {
	store := &fakeStore{prices: map[string]int64{
		storeKey(model.ColorLights, "Neon", model.RarityLimited): 400000,
	}}
	eng := newTestEngine(store)
	res := &Result{}

	err := eng.priceColor(context.Background(), model.ColorLights, "Neon - Limitowane", res)
	require.NoError(t, err)

	require.Len(t, res.VisualItems, 1)
	assert.Equal(t, int64(400000), res.VisualItems[0].BasePrice)
	assert.Equal(t, int64(400000), res.VisualItems[0].MarketPrice)
	assert.Equal(t, "(100%)", res.VisualItems[0].Note)
}

func TestPriceColor_SpecialUnknownGoesToMissing(t *testing.T) {
	eng := newTestEngine(nil)
	res := &Result{}

	err := eng.priceColor(context.Background(), model.ColorDashboard, "Gold - Unikatowe", res)
	require.NoError(t, err)

	assert.Empty(t, res.VisualItems)
	require.Len(t, res.Missing, 1)
	assert.Contains(t, res.Missing[0], "dashboard color")
	assert.Contains(t, res.Missing[0], "price unknown")
}

func TestPriceColor_EmptyFieldIsSkipped(t *testing.T) {
	eng := newTestEngine(nil)
	res := &Result{}

	err := eng.priceColor(context.Background(), model.ColorLights, "   ", res)
	require.NoError(t, err)
	assert.Empty(t, res.VisualItems)
	assert.Empty(t, res.Missing)
}

func TestMissingSpecialColors(t *testing.T) {
	store := &fakeStore{prices: map[string]int64{
		storeKey(model.ColorLights, "Neon", model.RarityLimited): 400000,
	}}
	eng := newTestEngine(store)

	card := &model.VehicleCard{
		LightsColorRaw:    "Neon - Limitowane",
		DashboardColorRaw: "Gold - Unikatowe",
	}
	missing, err := eng.MissingSpecialColors(context.Background(), card)
	require.NoError(t, err)

	require.Len(t, missing, 1)
	assert.Equal(t, model.ColorDashboard, missing[0].Type)
	assert.Equal(t, "Gold", missing[0].Name)
	assert.Equal(t, model.RarityUnique, missing[0].Rarity)
}
