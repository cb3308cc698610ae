package valuation

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mta-tools/wycena/internal/model"
)

//go:embed aliases.yaml
var aliasesYAML []byte

// mechAliases maps folded synonym -> canonical catalog key. Declarative
// so new spelling variants are data, not code.
var mechAliases = loadAliases()

func loadAliases() map[string]string {
	raw := map[string]string{}
	if err := yaml.Unmarshal(aliasesYAML, &raw); err != nil {
		// the file is embedded at build time; failing to parse it is a
		// programming error, not a runtime condition
		panic(fmt.Sprintf("valuation: bad aliases.yaml: %v", err))
	}
	aliases := make(map[string]string, len(raw))
	for k, v := range raw {
		aliases[model.FoldKey(k)] = model.FoldKey(v)
	}
	return aliases
}

var (
	versionRe = regexp.MustCompile(`(?i)\bv\s*(\d)\b`)
	litersRe  = regexp.MustCompile(`(?i)\b(\d{2,3})\s*l\b`)
	parensRe  = regexp.MustCompile(`\s*\(([^)]*)\)\s*`)
)

// prefixes that keep 100% of their base price on the resale market;
// everything else is worth half.
var fullValueMechPrefixes = []string{"c.f.i", "zestaw"}

func isFullValueMech(key string) bool {
	for _, p := range fullValueMechPrefixes {
		if key == p || strings.HasPrefix(key, p+":") {
			return true
		}
	}
	return false
}

// computeMechanical runs stage 5: alias resolution, parametrized key
// decomposition, legacy-module suppression, then catalog lookup.
func (e *Engine) computeMechanical(card *model.VehicleCard, res *Result) {
	type mechEntry struct {
		name string
		key  string
	}

	entries := make([]mechEntry, 0, len(card.MechanicalTuningRaw))
	hasDrivetrainChange := false
	for _, raw := range card.MechanicalTuningRaw {
		name := model.Normalize(raw)
		key := normalizeMechKey(name)
		if strings.HasPrefix(key, "zmiana napedu") {
			hasDrivetrainChange = true
		}
		entries = append(entries, mechEntry{name: name, key: key})
	}

	for _, entry := range entries {
		// a drivetrain change already includes the drivetrain module;
		// pricing both would double count
		if hasDrivetrainChange && entry.key == "naped" {
			zap.L().Debug("valuation: drivetrain module suppressed by drivetrain change",
				zap.String("item", entry.name))
			continue
		}

		price, ok := e.cat.MechPrice(entry.key)
		if !ok {
			res.addMissing("mech: no price for '%s' (key '%s')", entry.name, entry.key)
			continue
		}
		full := isFullValueMech(entry.key)
		note := "(50%)"
		if full {
			note = "(100%)"
		}
		var market int64
		if full {
			market = price
		} else {
			market = halfRound(price)
		}
		res.MechItems = append(res.MechItems, Line{
			Name:        entry.name,
			BasePrice:   price,
			MarketPrice: market,
			Note:        note,
		})
	}
}

// normalizeMechKey folds a raw mechanical token, resolves aliases, and
// decomposes the parametrized item families into "family:param" keys:
// "ECU (V4)" -> "ecu:v4", "LPG (50L)" -> "lpg:50l", "Zmiana napędu
// (4x4)" -> "zmiana napedu:4x4", "Zestaw (Torowy)" -> "zestaw:torowy".
func normalizeMechKey(name string) string {
	key := model.FoldKey(name)

	// alias pass on the full token, then on the token with its
	// parenthesized parameter removed
	if canon, ok := mechAliases[key]; ok {
		key = canon
	} else if bare := model.FoldKey(parensRe.ReplaceAllString(key, " ")); bare != key {
		if canon, ok := mechAliases[bare]; ok {
			key = canon + extractParamSuffix(name)
			return decomposeMechKey(key)
		}
	}

	return decomposeMechKey(key)
}

// extractParamSuffix re-attaches a parenthesized parameter after alias
// resolution, ":<param>" folded.
func extractParamSuffix(name string) string {
	m := parensRe.FindStringSubmatch(name)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return ""
	}
	return ":" + model.FoldKey(m[1])
}

func decomposeMechKey(key string) string {
	switch {
	case strings.HasPrefix(key, "ecu"):
		return versionedKey("ecu", key)
	case strings.HasPrefix(key, "turbo"):
		return versionedKey("turbo", key)
	case strings.HasPrefix(key, "c.f.i") || strings.HasPrefix(key, "cfi"):
		return versionedKey("c.f.i", key)
	case strings.HasPrefix(key, "lpg"):
		return capacityKey("lpg", key)
	case strings.HasPrefix(key, "zbiornik"):
		return capacityKey("zbiornik", key)
	case strings.HasPrefix(key, "zmiana napedu"):
		return paramKey("zmiana napedu", key)
	case strings.HasPrefix(key, "zestaw"):
		return paramKey("zestaw", key)
	}
	return key
}

// versionedKey extracts a V1..V9 tier: "turbo (v3)" -> "turbo:v3".
func versionedKey(family, key string) string {
	if m := versionRe.FindStringSubmatch(key); m != nil {
		return family + ":v" + m[1]
	}
	return family
}

// capacityKey extracts a liter capacity: "lpg (50l)" -> "lpg:50l".
func capacityKey(family, key string) string {
	if m := litersRe.FindStringSubmatch(key); m != nil {
		return family + ":" + m[1] + "l"
	}
	return family
}

// paramKey keeps whatever follows the family name as the parameter:
// "zestaw (torowy)" -> "zestaw:torowy".
func paramKey(family, key string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(key, family))
	rest = strings.Trim(rest, ":")
	if m := parensRe.FindStringSubmatch(rest); m != nil {
		rest = strings.TrimSpace(m[1])
	}
	rest = model.FoldKey(rest)
	if rest == "" {
		return family
	}
	return family + ":" + rest
}
