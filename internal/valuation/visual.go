package valuation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/mta-tools/wycena/internal/cardparse"
	"github.com/mta-tools/wycena/internal/model"
)

var (
	wideningRe = regexp.MustCompile(`(?i)^poszerzenia\s*\((\d+)\s*,\s*(\d+)\)$`)
	tintRe     = regexp.MustCompile(`(?i)^przyciemnienie\s+szyb\s*\((\d+)\s*%?\)$`)
	rimSizeRe  = regexp.MustCompile(`(?i)^felgi\b.*?(\d+)`)
	tireRe     = regexp.MustCompile(`(?i)^opony\s*\(([^)]+)\)$`)
)

// rimCategory maps an inch size onto the catalog's controlled rim
// vocabulary.
func rimCategory(inches int) string {
	switch {
	case inches <= 12:
		return "very-small"
	case inches <= 14:
		return "small"
	case inches >= 17:
		return "large"
	default:
		return "standard"
	}
}

// computeVisual runs stage 4: each visual item at 50% of catalog price,
// with bespoke key synthesis for a few composite patterns, plus the two
// color attributes. Only a store failure is an error.
func (e *Engine) computeVisual(ctx context.Context, card *model.VehicleCard, res *Result) error {
	for _, v := range card.VisualTuning {
		e.priceVisualItem(v, res)
	}

	if err := e.priceColor(ctx, model.ColorLights, card.LightsColorRaw, res); err != nil {
		return err
	}
	return e.priceColor(ctx, model.ColorDashboard, card.DashboardColorRaw, res)
}

func (e *Engine) priceVisualItem(v model.VisualItem, res *Result) {
	if v.IDKeyed() {
		price, ok := e.cat.VisualPriceByID(v.ID)
		if !ok {
			res.addMissing("visual: no price for ID %d (%s)", v.ID, v.Name)
			return
		}
		res.VisualItems = append(res.VisualItems, Line{
			Name:        fmt.Sprintf("%s (%d)", v.Name, v.ID),
			BasePrice:   price,
			MarketPrice: halfRound(price),
		})
		return
	}

	// Symmetric widening carries two priced sides in one token.
	if m := wideningRe.FindStringSubmatch(v.Name); m != nil {
		e.priceWidening(m[1], m[2], res)
		return
	}

	key, label := synthesizeVisualKey(v.Name)
	price, ok := e.cat.VisualPriceByName(key)
	if !ok {
		res.addMissing("visual: no price for '%s' (key '%s')", v.Name, key)
		return
	}
	res.VisualItems = append(res.VisualItems, Line{
		Name:        label,
		BasePrice:   price,
		MarketPrice: halfRound(price),
	})
}

// priceWidening prices the front and rear sides as separate line items.
func (e *Engine) priceWidening(front, rear string, res *Result) {
	sides := []struct {
		label string
		size  string
	}{
		{"Poszerzenia przód", front},
		{"Poszerzenia tył", rear},
	}
	for _, s := range sides {
		key := "poszerzenia:" + s.size
		price, ok := e.cat.VisualPriceByName(key)
		if !ok {
			res.addMissing("visual: no price for '%s (%s)' (key '%s')", s.label, s.size, key)
			continue
		}
		res.VisualItems = append(res.VisualItems, Line{
			Name:        fmt.Sprintf("%s (%s)", s.label, s.size),
			BasePrice:   price,
			MarketPrice: halfRound(price),
		})
	}
}

// synthesizeVisualKey turns a named visual item into its catalog key.
// Composite patterns (tint percentage, rim size, tire type) get derived
// keys; everything else is the normalized name itself.
func synthesizeVisualKey(name string) (key, label string) {
	if m := tintRe.FindStringSubmatch(name); m != nil {
		return "przyciemnienie szyb:" + m[1], name
	}
	if m := rimSizeRe.FindStringSubmatch(name); m != nil {
		if inches, err := strconv.Atoi(m[1]); err == nil {
			return "felgi:" + rimCategory(inches), name
		}
	}
	if m := tireRe.FindStringSubmatch(name); m != nil {
		return "opony:" + model.NormalizeKey(m[1]), name
	}
	return model.NormalizeKey(name), name
}

// priceColor handles one of the two color attributes. Ordinary colors
// come from the catalog at 50%; rare-limited and rare-unique colors come
// from the crowd-sourced store at 100% of the stored price.
func (e *Engine) priceColor(ctx context.Context, typ model.SpecialColorType, raw string, res *Result) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	name, rarity := cardparse.ParseColorWithRarity(raw)
	if name == "" {
		return nil
	}

	label := colorLabel(typ)

	if model.IsSpecialRarity(rarity) {
		price, ok, err := e.store.GetSpecialColorPrice(ctx, typ, name, rarity)
		if err != nil {
			return eris.Wrapf(err, "valuation: read special color price %s/%s", typ, name)
		}
		if !ok {
			res.addMissing("%s '%s - %s': price unknown, reply with a price and it will be remembered",
				label, name, rarity)
			return nil
		}
		res.VisualItems = append(res.VisualItems, Line{
			Name:        fmt.Sprintf("%s: %s - %s", label, name, rarity),
			BasePrice:   price,
			MarketPrice: price, // crowd price is already the market price
			Note:        "(100%)",
		})
		return nil
	}

	key := colorCatalogKey(typ, name)
	price, ok := e.cat.VisualPriceByName(key)
	if !ok {
		res.addMissing("%s: no price for '%s' (key '%s')", label, name, key)
		return nil
	}
	res.VisualItems = append(res.VisualItems, Line{
		Name:        fmt.Sprintf("%s: %s", label, name),
		BasePrice:   price,
		MarketPrice: halfRound(price),
	})
	return nil
}

func colorLabel(typ model.SpecialColorType) string {
	if typ == model.ColorLights {
		return "lights color"
	}
	return "dashboard color"
}

// colorCatalogKey builds the visual-name key ordinary colors are filed
// under, e.g. "kolor_swiatel:ocean".
func colorCatalogKey(typ model.SpecialColorType, name string) string {
	prefix := "kolor_swiatel:"
	if typ == model.ColorDashboard {
		prefix = "kolor_licznika:"
	}
	return model.NormalizeKey(prefix + name)
}
