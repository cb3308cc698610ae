package valuation

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/mta-tools/wycena/internal/cardparse"
	"github.com/mta-tools/wycena/internal/model"
)

// MissingSpecialColors returns the rare colors on the card that have no
// crowd-sourced price yet. The workflow uses this to decide whether a
// valuation can run immediately or must first ask the user for prices.
func (e *Engine) MissingSpecialColors(ctx context.Context, card *model.VehicleCard) ([]model.SpecialColorKey, error) {
	attrs := []struct {
		typ model.SpecialColorType
		raw string
	}{
		{model.ColorLights, card.LightsColorRaw},
		{model.ColorDashboard, card.DashboardColorRaw},
	}

	var missing []model.SpecialColorKey
	for _, a := range attrs {
		if strings.TrimSpace(a.raw) == "" {
			continue
		}
		name, rarity := cardparse.ParseColorWithRarity(a.raw)
		if name == "" || !model.IsSpecialRarity(rarity) {
			continue
		}
		_, ok, err := e.store.GetSpecialColorPrice(ctx, a.typ, name, rarity)
		if err != nil {
			return nil, eris.Wrapf(err, "valuation: check special color %s/%s", a.typ, name)
		}
		if !ok {
			missing = append(missing, model.SpecialColorKey{Type: a.typ, Name: name, Rarity: rarity})
		}
	}
	return missing, nil
}
