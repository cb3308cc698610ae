// Package cardparse converts a pasted vehicle card into a
// model.VehicleCard. The paste format is line-oriented but unreliable:
// a field label and its value may share a line or be split across two,
// so extraction rules run in a fixed order and each reports success or
// failure instead of guessing.
package cardparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/mta-tools/wycena/internal/model"
)

// Field labels as they appear on cards pasted from the game client.
const (
	labelVUID      = "VUID"
	labelModel     = "Model"
	labelEngine    = "Silnik"
	labelVisual    = "Tuning wizualny"
	labelMech      = "Tuning mechaniczny"
	labelLights    = "Kolor świateł"
	labelDashboard = "Kolor licznika"
)

// fieldRule extracts one labeled field. The pattern tolerates the value
// following the label on the same line or on the next one.
type fieldRule struct {
	label string
	re    *regexp.Regexp
}

func newFieldRule(label string) fieldRule {
	return fieldRule{
		label: label,
		re:    regexp.MustCompile(`(?mi)^[ \t]*` + regexp.QuoteMeta(label) + `[ \t]*(?:\r?\n|[ \t])+[ \t]*(.+?)[ \t]*$`),
	}
}

func (r fieldRule) extract(text string) (string, bool) {
	m := r.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return model.Normalize(m[1]), true
}

var (
	vuidRule      = newFieldRule(labelVUID)
	modelRule     = newFieldRule(labelModel)
	engineRule    = newFieldRule(labelEngine)
	visualRule    = newFieldRule(labelVisual)
	mechRule      = newFieldRule(labelMech)
	lightsRule    = newFieldRule(labelLights)
	dashboardRule = newFieldRule(labelDashboard)

	modelIDRe = regexp.MustCompile(`\((\d+)\)\s*$`)
	aeroRe    = regexp.MustCompile(`(?i)\bAero\s+(IV|III|II|I)\b`)
	dm3Re     = regexp.MustCompile(`(?i)\(([\d.,]+)\s*dm`)
)

// allLabels is used to recognize a captured "value" that is actually the
// next field's label, which happens when a field is empty on the card.
var allLabels = []string{
	labelVUID, labelModel, labelEngine, labelVisual, labelMech, labelLights, labelDashboard,
}

func looksLikeLabel(s string) bool {
	key := model.FoldKey(s)
	for _, l := range allLabels {
		if key == model.FoldKey(l) {
			return true
		}
	}
	return false
}

// Parse converts pasted card text into a VehicleCard. VUID, Model, and
// Silnik are required; every other field defaults to empty.
func Parse(text string) (*model.VehicleCard, error) {
	text = strings.ReplaceAll(text, " ", " ")

	card := &model.VehicleCard{}

	vuidStr, ok := vuidRule.extract(text)
	if !ok {
		return nil, eris.New("cardparse: no VUID field in the paste")
	}
	vuid, err := strconv.Atoi(vuidStr)
	if err != nil {
		return nil, eris.Errorf("cardparse: VUID %q is not a number", vuidStr)
	}
	card.VUID = vuid

	if card.ModelRaw, ok = modelRule.extract(text); !ok {
		return nil, eris.New("cardparse: no Model field in the paste")
	}
	if card.EngineRaw, ok = engineRule.extract(text); !ok {
		return nil, eris.New("cardparse: no Silnik field in the paste")
	}

	if v, ok := visualRule.extract(text); ok && !looksLikeLabel(v) {
		card.VisualTuning = parseVisualList(v)
	}
	if v, ok := mechRule.extract(text); ok && !looksLikeLabel(v) {
		card.MechanicalTuningRaw = SplitTopLevel(v)
	}

	card.LightsColorRaw = extractColor(text, lightsRule, labelDashboard)
	card.DashboardColorRaw = extractColor(text, dashboardRule, labelLights)

	decomposeModel(card)
	return card, nil
}

// extractColor applies the regular field rule first; when the captured
// value is itself a field label (the color line was empty or wrapped
// unexpectedly), it rescans the raw text line by line: same-line
// remainder first, then the following line unless that line is the other
// color's label. Ambiguity leaves the field empty.
func extractColor(text string, rule fieldRule, otherLabel string) string {
	v, ok := rule.extract(text)
	if ok && !looksLikeLabel(v) {
		return v
	}

	lines := strings.Split(text, "\n")
	labelKey := model.FoldKey(rule.label)
	for i, line := range lines {
		norm := model.Normalize(line)
		if norm == "" {
			continue
		}
		key := model.FoldKey(norm)
		if key == labelKey {
			// label alone on its line: value should be on the next one
			if i+1 >= len(lines) {
				return ""
			}
			next := model.Normalize(lines[i+1])
			if next == "" || looksLikeLabel(next) {
				return ""
			}
			return next
		}
		if strings.HasPrefix(key, labelKey+" ") {
			// slice off as many words as the label has; the line may
			// spell the label without diacritics
			words := strings.Fields(norm)
			rest := strings.Join(words[len(strings.Fields(rule.label)):], " ")
			if rest != "" && model.FoldKey(rest) != model.FoldKey(otherLabel) {
				return rest
			}
		}
	}
	return ""
}

// SplitTopLevel splits a comma-separated list while ignoring commas
// nested inside parentheses, so "Poszerzenia (2,2), Neon" stays two
// items. Empty segments are dropped.
func SplitTopLevel(s string) []string {
	var (
		items []string
		buf   strings.Builder
		depth int
	)
	flush := func() {
		if item := model.Normalize(buf.String()); item != "" {
			items = append(items, item)
		}
		buf.Reset()
	}
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				flush()
				continue
			}
		}
		buf.WriteRune(r)
	}
	flush()
	return items
}

func parseVisualList(s string) []model.VisualItem {
	tokens := SplitTopLevel(s)
	items := make([]model.VisualItem, 0, len(tokens))
	for _, t := range tokens {
		item := model.VisualItem{Raw: t, Name: t}
		if m := modelIDRe.FindStringSubmatch(t); m != nil {
			if id, err := strconv.Atoi(m[1]); err == nil {
				item.ID = id
				item.Name = model.Normalize(modelIDRe.ReplaceAllString(t, ""))
			}
		}
		items = append(items, item)
	}
	return items
}

// decomposeModel derives BaseModel, ModelID, and the body-kit names from
// the raw model string, e.g. "Infernus GT Aero III (1079)".
func decomposeModel(card *model.VehicleCard) {
	raw := card.ModelRaw

	if m := modelIDRe.FindStringSubmatch(raw); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			card.ModelID = id
			raw = model.Normalize(modelIDRe.ReplaceAllString(raw, ""))
		}
	}

	fields := strings.Fields(raw)
	if len(fields) == 0 {
		card.BaseModel = raw
		return
	}
	card.BaseModel = fields[0]

	if m := aeroRe.FindStringSubmatch(raw); m != nil {
		card.BodykitAeroName = "Aero " + strings.ToUpper(m[1])
		raw = model.Normalize(aeroRe.ReplaceAllString(raw, ""))
	}

	if len(fields) >= 2 {
		if rest := strings.TrimSpace(strings.TrimPrefix(raw, card.BaseModel)); rest != "" {
			card.BodykitMainName = rest
		}
	}
}

// EngineDisplacementDm3 extracts the displacement from an engine string
// like "V8 (5.0dm3)". Comma decimals are accepted.
func EngineDisplacementDm3(engineRaw string) (float64, bool) {
	m := dm3Re.FindStringSubmatch(engineRaw)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseColorWithRarity splits "Ocean - Limitowane" into the color name
// and a canonical rarity tag. Unknown tags pass through verbatim; a bare
// color name returns an empty rarity. Idempotent on the name part.
func ParseColorWithRarity(raw string) (name, rarity string) {
	s := model.Normalize(raw)
	if s == "" {
		return "", ""
	}
	parts := strings.SplitN(s, " - ", 2)
	if len(parts) < 2 {
		return s, ""
	}
	name = strings.TrimSpace(parts[0])
	tag := strings.TrimSpace(parts[1])
	tagKey := model.FoldKey(tag)
	switch {
	case strings.Contains(tagKey, "limit"):
		return name, model.RarityLimited
	case strings.Contains(tagKey, "unikat"):
		return name, model.RarityUnique
	default:
		return name, tag
	}
}
