// Package catalog holds the operator-maintained price reference tables
// and their lookup indexes. Loaded once at startup, read-only afterwards.
package catalog

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/mta-tools/wycena/internal/model"
)

// SalonRow is one dealer base-price entry for a model+engine combination.
type SalonRow struct {
	Model   string // base model key, e.g. "Infernus"
	Vehicle string // full display name, e.g. "Infernus GT"
	Engine  string // engine display string, e.g. "V8 (5.0dm3)"
	Price   int64
}

// EngineUpgradeRow is one priced displacement step. ModelKeys carries the
// raw comma-separated key list from the file; Keys the normalized set.
type EngineUpgradeRow struct {
	ModelKeys string
	Keys      []string
	From      float64
	To        float64
	Price     int64
}

// AppliesTo reports whether any of the given normalized keys is in the
// row's applicable-model set.
func (r EngineUpgradeRow) AppliesTo(keys []string) bool {
	for _, k := range keys {
		for _, rk := range r.Keys {
			if rk == k {
				return true
			}
		}
	}
	return false
}

// BodykitRow is one body-kit price entry, indexed by (base model, name).
type BodykitRow struct {
	BaseModel string
	Name      string
	Level     int
	Price     int64
}

type bodykitKey struct {
	baseModel string
	name      string
}

// Catalog aggregates the six price tables.
type Catalog struct {
	Salon          []SalonRow
	EngineUpgrades []EngineUpgradeRow
	Bodykits       []BodykitRow

	VisualByID   map[int]int64
	VisualByName map[string]int64 // NormalizeKey'd
	MechByKey    map[string]int64 // FoldKey'd

	bodykitIdx map[bodykitKey]BodykitRow
}

// New returns an empty catalog with all maps allocated.
func New() *Catalog {
	return &Catalog{
		VisualByID:   make(map[int]int64),
		VisualByName: make(map[string]int64),
		MechByKey:    make(map[string]int64),
		bodykitIdx:   make(map[bodykitKey]BodykitRow),
	}
}

// BuildIndexes derives the quick-lookup maps from the row slices. Must be
// called after loading and before any lookup.
func (c *Catalog) BuildIndexes() {
	c.bodykitIdx = make(map[bodykitKey]BodykitRow, len(c.Bodykits))
	for _, b := range c.Bodykits {
		c.bodykitIdx[bodykitKey{model.NormalizeKey(b.BaseModel), model.NormalizeKey(b.Name)}] = b
	}
	for i := range c.EngineUpgrades {
		r := &c.EngineUpgrades[i]
		r.Keys = splitModelKeys(r.ModelKeys)
	}
}

func splitModelKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if key := model.NormalizeKey(k); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// Bodykit looks up a kit by base model and exact kit name. Fails closed.
func (c *Catalog) Bodykit(baseModel, name string) (BodykitRow, bool) {
	if strings.TrimSpace(baseModel) == "" || strings.TrimSpace(name) == "" {
		return BodykitRow{}, false
	}
	row, ok := c.bodykitIdx[bodykitKey{model.NormalizeKey(baseModel), model.NormalizeKey(name)}]
	return row, ok
}

// VisualPriceByID returns the catalog price for an ID-keyed visual item.
func (c *Catalog) VisualPriceByID(id int) (int64, bool) {
	p, ok := c.VisualByID[id]
	return p, ok
}

// VisualPriceByName returns the price for a name-keyed visual item. The
// key must already be normalized with model.NormalizeKey.
func (c *Catalog) VisualPriceByName(key string) (int64, bool) {
	p, ok := c.VisualByName[key]
	return p, ok
}

// MechPrice returns the price for a mechanical tuning key. The key must
// already be folded with model.FoldKey.
func (c *Catalog) MechPrice(key string) (int64, bool) {
	p, ok := c.MechByKey[key]
	return p, ok
}

// UpgradeSteps returns the upgrade rows applicable to any of the given
// normalized model keys, in file order.
func (c *Catalog) UpgradeSteps(keys []string) []EngineUpgradeRow {
	var out []EngineUpgradeRow
	for _, r := range c.EngineUpgrades {
		if r.AppliesTo(keys) {
			out = append(out, r)
		}
	}
	return out
}

var moneyCleaner = strings.NewReplacer("$", "", " ", "", "\t", "", " ", "")

// ParseMoney parses an operator-written money value: optional "$",
// whitespace variants, and "," thousands separators are all accepted.
func ParseMoney(s string) (int64, error) {
	s = moneyCleaner.Replace(strings.TrimSpace(s))
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	// also allow "57,500"
	v, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return 0, eris.Errorf("catalog: cannot parse money value %q", s)
	}
	return v, nil
}
