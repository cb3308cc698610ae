package valuation

import (
	"fmt"
	"strings"

	"github.com/mta-tools/wycena/internal/model"
)

// Line is one priced entry of a valuation category.
type Line struct {
	Name        string `json:"name"`
	BasePrice   int64  `json:"base_price"`
	MarketPrice int64  `json:"market_price"`
	Note        string `json:"note,omitempty"`
}

// Result is the itemized outcome of a valuation. Categories that could
// not be priced contribute entries to Missing instead of failing the run.
type Result struct {
	SalonAvg            int64 `json:"salon_avg"`
	EngineUpgradeBase   int64 `json:"engine_upgrade_base"`
	EngineUpgradeMarket int64 `json:"engine_upgrade_market"`

	Bodykits    []Line `json:"bodykits,omitempty"`
	VisualItems []Line `json:"visual_items,omitempty"`
	MechItems   []Line `json:"mech_items,omitempty"`

	Missing []string `json:"missing,omitempty"`
}

// Total sums the salon average and every market-priced line item.
func (r *Result) Total() int64 {
	total := r.SalonAvg + r.EngineUpgradeMarket
	for _, l := range r.Bodykits {
		total += l.MarketPrice
	}
	for _, l := range r.VisualItems {
		total += l.MarketPrice
	}
	for _, l := range r.MechItems {
		total += l.MarketPrice
	}
	return total
}

func (r *Result) addMissing(format string, args ...any) {
	r.Missing = append(r.Missing, fmt.Sprintf(format, args...))
}

// FormatMoney renders an amount with thousands separators, "1,250,000$".
func FormatMoney(v int64) string {
	s := fmt.Sprintf("%d", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "$"
	if neg {
		out = "-" + out
	}
	return out
}

// Render formats the result as a plain-text report for the
// conversational surface.
func (r *Result) Render(card *model.VehicleCard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Valuation VUID %d\n", card.VUID)
	fmt.Fprintf(&b, "%s\nEngine: %s\n\n", card.ModelRaw, card.EngineRaw)
	fmt.Fprintf(&b, "Salon (average): %s\n", FormatMoney(r.SalonAvg))
	fmt.Fprintf(&b, "Engine upgrade: %s (base %s)\n",
		FormatMoney(r.EngineUpgradeMarket), FormatMoney(r.EngineUpgradeBase))

	writeSection := func(title string, lines []Line) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n", title)
		for _, l := range lines {
			fmt.Fprintf(&b, "  %s: %s (base %s)", l.Name, FormatMoney(l.MarketPrice), FormatMoney(l.BasePrice))
			if l.Note != "" {
				fmt.Fprintf(&b, " %s", l.Note)
			}
			b.WriteByte('\n')
		}
	}
	writeSection("Body kits", r.Bodykits)
	writeSection("Visual", r.VisualItems)
	writeSection("Mechanical", r.MechItems)

	fmt.Fprintf(&b, "\nTotal: %s\n", FormatMoney(r.Total()))

	if len(r.Missing) > 0 {
		b.WriteString("\nMissing prices:\n")
		for _, m := range r.Missing {
			fmt.Fprintf(&b, "  - %s\n", m)
		}
	}
	return b.String()
}
