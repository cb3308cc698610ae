// Package valuation computes the market resale value of a parsed vehicle
// card against the price catalog and the crowd-sourced special-color
// store. Pricing runs in five independent, additive stages; a lookup
// miss in any stage becomes a diagnostic, never an abort.
package valuation

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mta-tools/wycena/internal/cardparse"
	"github.com/mta-tools/wycena/internal/catalog"
	"github.com/mta-tools/wycena/internal/model"
)

const (
	// Kits at or above this tier resell at full price.
	fullValueKitLevel = 40

	// Aero kits are cataloged under a fixed pseudo-model.
	aeroPseudoModel = "Spoiler"

	dispEps = 1e-9
)

// SpecialPriceReader is the slice of the store the engine needs.
type SpecialPriceReader interface {
	GetSpecialColorPrice(ctx context.Context, typ model.SpecialColorType, name, rarity string) (int64, bool, error)
}

// Engine evaluates vehicle cards. Safe for concurrent use: the catalog
// is read-only and the store handles its own coordination.
type Engine struct {
	cat   *catalog.Catalog
	store SpecialPriceReader
}

// New creates a valuation engine.
func New(cat *catalog.Catalog, store SpecialPriceReader) *Engine {
	return &Engine{cat: cat, store: store}
}

// Evaluate prices a card. The only error path is a store failure while
// reading special-color prices; everything else degrades to diagnostics.
func (e *Engine) Evaluate(ctx context.Context, card *model.VehicleCard) (*Result, error) {
	res := &Result{}

	baseline := e.computeSalonAvg(card, res)
	e.computeEngineUpgrade(card, baseline, res)
	e.computeBodykits(card, res)
	if err := e.computeVisual(ctx, card, res); err != nil {
		return nil, err
	}
	e.computeMechanical(card, res)

	zap.L().Info("valuation: evaluated",
		zap.Int("vuid", card.VUID),
		zap.Int64("total", res.Total()),
		zap.Int("missing", len(res.Missing)),
	)
	return res, nil
}

// vehicleDisplayName strips the trailing "(id)" from the raw model line.
func vehicleDisplayName(card *model.VehicleCard) string {
	name := card.ModelRaw
	if idx := strings.LastIndex(name, "("); idx > 0 {
		name = strings.TrimSpace(name[:idx])
	}
	return name
}

// computeSalonAvg runs stage 1 and returns the factory baseline
// displacement (0 when unknown): the minimum displacement among the
// salon rows the vehicle matched.
func (e *Engine) computeSalonAvg(card *model.VehicleCard, res *Result) float64 {
	vehicleName := vehicleDisplayName(card)
	vehicleKey := model.NormalizeKey(vehicleName)
	engineKey := model.NormalizeKey(card.EngineRaw)
	baseModelKey := model.NormalizeKey(card.BaseModel)

	// Relaxation ladder: exact vehicle+engine, vehicle only, base model only.
	filters := []func(catalog.SalonRow) bool{
		func(r catalog.SalonRow) bool {
			return model.NormalizeKey(r.Vehicle) == vehicleKey && model.NormalizeKey(r.Engine) == engineKey
		},
		func(r catalog.SalonRow) bool {
			return model.NormalizeKey(r.Vehicle) == vehicleKey
		},
		func(r catalog.SalonRow) bool {
			return model.NormalizeKey(r.Model) == baseModelKey
		},
	}

	var matched []catalog.SalonRow
	for _, keep := range filters {
		for _, r := range e.cat.Salon {
			if keep(r) {
				matched = append(matched, r)
			}
		}
		if len(matched) > 0 {
			break
		}
	}

	if len(matched) == 0 {
		res.addMissing("salon: no entry for '%s' + '%s'", vehicleName, card.EngineRaw)
		return 0
	}

	var sum int64
	baseline := 0.0
	for _, r := range matched {
		sum += r.Price
		if d, ok := cardparse.EngineDisplacementDm3(r.Engine); ok {
			if baseline == 0 || d < baseline {
				baseline = d
			}
		}
	}
	res.SalonAvg = int64(math.Round(float64(sum) / float64(len(matched))))
	return baseline
}

// upgradeLookupKeys returns the normalized keys an upgrade row may list
// this vehicle under.
func upgradeLookupKeys(card *model.VehicleCard) []string {
	vehicleName := vehicleDisplayName(card)
	candidates := []string{
		model.NormalizeKey(card.BaseModel),
		model.NormalizeKey(vehicleName),
	}
	if f := strings.Fields(vehicleName); len(f) > 0 {
		candidates = append(candidates, model.NormalizeKey(f[0]))
	}
	if f := strings.Fields(card.BaseModel); len(f) > 0 {
		candidates = append(candidates, model.NormalizeKey(f[0]))
	}

	seen := make(map[string]bool, len(candidates))
	var keys []string
	for _, k := range candidates {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// computeEngineUpgrade runs stage 2: sums the ordered displacement steps
// between the factory baseline and the current displacement. Market
// value of an upgrade is half its base cost.
func (e *Engine) computeEngineUpgrade(card *model.VehicleCard, baseline float64, res *Result) {
	current, ok := cardparse.EngineDisplacementDm3(card.EngineRaw)
	if !ok {
		res.addMissing("engine: cannot read dm3 displacement from '%s'", card.EngineRaw)
		return
	}

	steps := e.cat.UpgradeSteps(upgradeLookupKeys(card))
	if len(steps) == 0 {
		res.addMissing("engine: no upgrade steps for model '%s'", card.BaseModel)
		return
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].From < steps[j].From })

	var base int64
	switch {
	case baseline > 0 && current <= baseline+dispEps:
		// factory engine, nothing was purchased
		return
	case baseline > 0:
		covered := baseline
		for _, s := range steps {
			if s.To <= baseline+dispEps || s.From >= current-dispEps {
				continue
			}
			if s.From > covered+dispEps {
				res.addMissing("engine: gap in upgrade steps for '%s' between %.2f and %.2f dm3",
					card.BaseModel, covered, s.From)
			}
			base += s.Price
			if s.To > covered {
				covered = s.To
			}
		}
		if covered < current-dispEps {
			res.addMissing("engine: upgrade steps for '%s' stop at %.2f dm3, engine has %.2f dm3",
				card.BaseModel, covered, current)
		}
	default:
		// no factory baseline: fall back to the single interval holding
		// the current displacement
		found := false
		for _, s := range steps {
			if current >= s.From-dispEps && current <= s.To+dispEps {
				base = s.Price
				found = true
				break
			}
		}
		if !found {
			res.addMissing("engine: no step interval for %.2f dm3 in '%s'", current, card.BaseModel)
			return
		}
	}

	res.EngineUpgradeBase = base
	res.EngineUpgradeMarket = int64(math.Round(float64(base) * 0.5))
}

// computeBodykits runs stage 3: the main kit under the vehicle's base
// model and the aero kit under the "Spoiler" pseudo-model.
func (e *Engine) computeBodykits(card *model.VehicleCard, res *Result) {
	add := func(baseModel, name string) {
		kit, ok := e.cat.Bodykit(baseModel, name)
		if !ok {
			res.addMissing("bodykit: no price for '%s %s'", baseModel, name)
			return
		}
		mult, note := 0.5, "(50%)"
		if kit.Level >= fullValueKitLevel {
			mult, note = 1.0, "(100%)"
		}
		res.Bodykits = append(res.Bodykits, Line{
			Name:        baseModel + " " + kit.Name,
			BasePrice:   kit.Price,
			MarketPrice: int64(math.Round(float64(kit.Price) * mult)),
			Note:        note,
		})
	}

	if card.BodykitMainName != "" {
		add(card.BaseModel, card.BodykitMainName)
	}
	if card.BodykitAeroName != "" {
		add(aeroPseudoModel, card.BodykitAeroName)
	}
}

func halfRound(v int64) int64 {
	return int64(math.Round(float64(v) * 0.5))
}
