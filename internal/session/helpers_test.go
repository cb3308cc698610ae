package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mta-tools/wycena/internal/catalog"
	"github.com/mta-tools/wycena/internal/model"
	"github.com/mta-tools/wycena/internal/valuation"
)

// memStore is an in-memory store.Store for workflow tests.
type memStore struct {
	prices   map[string]model.SpecialColorPrice
	vehicles map[int]*model.VehicleCard
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		prices:   map[string]model.SpecialColorPrice{},
		vehicles: map[int]*model.VehicleCard{},
	}
}

func priceKey(typ model.SpecialColorType, name, rarity string) string {
	return fmt.Sprintf("%s|%s|%s", typ, model.NormalizeKey(name), rarity)
}

func (s *memStore) GetSpecialColorPrice(_ context.Context, typ model.SpecialColorType, name, rarity string) (int64, bool, error) {
	if s.err != nil {
		return 0, false, eris.Wrap(s.err, "mem store")
	}
	rec, ok := s.prices[priceKey(typ, name, rarity)]
	return rec.Price, ok, nil
}

func (s *memStore) UpsertSpecialColorPrice(_ context.Context, rec model.SpecialColorPrice) error {
	if s.err != nil {
		return eris.Wrap(s.err, "mem store")
	}
	s.prices[priceKey(rec.Type, rec.Name, rec.Rarity)] = rec
	return nil
}

func (s *memStore) ListSpecialColorPrices(_ context.Context, typ model.SpecialColorType) ([]model.SpecialColorPrice, error) {
	var recs []model.SpecialColorPrice
	for _, r := range s.prices {
		if typ == "" || r.Type == typ {
			recs = append(recs, r)
		}
	}
	return recs, nil
}

func (s *memStore) GetVehicle(_ context.Context, vuid int) (*model.VehicleCard, error) {
	if s.err != nil {
		return nil, eris.Wrap(s.err, "mem store")
	}
	return s.vehicles[vuid], nil
}

func (s *memStore) UpsertVehicle(_ context.Context, card *model.VehicleCard) error {
	if s.err != nil {
		return eris.Wrap(s.err, "mem store")
	}
	s.vehicles[card.VUID] = card
	return nil
}

func (s *memStore) Migrate(context.Context) error { return nil }
func (s *memStore) Close() error                  { return nil }

// testCatalog covers the Infernus scenario the workflow tests run.
func testCatalog() *catalog.Catalog {
	cat := catalog.New()
	cat.Salon = []catalog.SalonRow{
		{Model: "Infernus", Vehicle: "Infernus GT", Engine: "R6 (3.0dm3)", Price: 900000},
	}
	cat.MechByKey = map[string]int64{"turbo:v2": 95000}
	cat.BuildIndexes()
	return cat
}

// testWorkflow builds a workflow over an in-memory store and a fixed
// clock the caller can move.
func testWorkflow(st *memStore) (*Workflow, *Manager, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mgr := NewManager(10 * time.Minute)
	mgr.now = func() time.Time { return now }

	eng := valuation.New(testCatalog(), st)
	return NewWorkflow(st, eng, mgr), mgr, &now
}

// sampleCard is a pasteable card for VUID 1079 with a crowd-priced
// dashboard color.
const sampleCard = `VUID
1079
Model
Infernus GT (1079)
Silnik
R6 (3.0dm3)
Tuning mechaniczny
Turbo (V2)
Kolor licznika
Red - Limitowane
`

// plainCard has no special colors, so its valuation never parks.
const plainCard = `VUID
1079
Model
Infernus GT (1079)
Silnik
R6 (3.0dm3)
Tuning mechaniczny
Turbo (V2)
`
