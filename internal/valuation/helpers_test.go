package valuation

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/mta-tools/wycena/internal/catalog"
	"github.com/mta-tools/wycena/internal/model"
)

// fakeStore is an in-memory SpecialPriceReader for engine tests.
type fakeStore struct {
	prices map[string]int64
	err    error
}

func storeKey(typ model.SpecialColorType, name, rarity string) string {
	return fmt.Sprintf("%s|%s|%s", typ, model.NormalizeKey(name), rarity)
}

func (f *fakeStore) GetSpecialColorPrice(_ context.Context, typ model.SpecialColorType, name, rarity string) (int64, bool, error) {
	if f.err != nil {
		return 0, false, eris.Wrap(f.err, "fake store")
	}
	p, ok := f.prices[storeKey(typ, name, rarity)]
	return p, ok, nil
}

// newTestCatalog builds the catalog shared by most engine tests.
func newTestCatalog() *catalog.Catalog {
	cat := catalog.New()
	cat.Salon = []catalog.SalonRow{
		{Model: "Infernus", Vehicle: "Infernus GT", Engine: "R6 (3.0dm3)", Price: 900000},
		{Model: "Sultan", Vehicle: "Sultan", Engine: "R4 (2.0dm3)", Price: 300000},
		{Model: "Sultan", Vehicle: "Sultan", Engine: "R4 (2.5dm3)", Price: 340000},
	}
	cat.EngineUpgrades = []catalog.EngineUpgradeRow{
		{ModelKeys: "Infernus, Infernus Kakimoto", From: 3.0, To: 4.0, Price: 120000},
		{ModelKeys: "Infernus, Infernus Kakimoto", From: 4.0, To: 5.0, Price: 180000},
		{ModelKeys: "Sultan", From: 2.0, To: 3.0, Price: 100},
		{ModelKeys: "Sultan", From: 3.0, To: 4.0, Price: 150},
	}
	cat.Bodykits = []catalog.BodykitRow{
		{BaseModel: "Infernus", Name: "GT", Level: 45, Price: 250000},
		{BaseModel: "Spoiler", Name: "Aero III", Level: 30, Price: 90000},
	}
	cat.VisualByID = map[int]int64{200: 45000}
	cat.VisualByName = map[string]int64{
		"neon podwozia":            30000,
		"poszerzenia:2":            15000,
		"przyciemnienie szyb:70":   12000,
		"felgi:small":              20000,
		"felgi:large":              35000,
		"opony:sportowe":           18000,
		"kolor_swiatel:ocean":      25000,
		"kolor_licznika:czerwony":  16000,
	}
	cat.MechByKey = map[string]int64{
		"turbo:v2":               95000,
		"ecu:v4":                 80000,
		"c.f.i:v2":               120000,
		"zestaw:torowy":          200000,
		"lpg:50l":                30000,
		"zmiana napedu:4x4":      150000,
		"naped":                  60000,
		"gwintowane zawieszenie": 40000,
		"ogranicznik":            5000,
	}
	cat.BuildIndexes()
	return cat
}

func newTestEngine(store *fakeStore) *Engine {
	if store == nil {
		store = &fakeStore{prices: map[string]int64{}}
	}
	return New(newTestCatalog(), store)
}
