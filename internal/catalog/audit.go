package catalog

import (
	"fmt"
	"sort"
)

const boundEps = 1e-9

// AuditEngineUpgrades checks, per model key, that the upgrade-step
// intervals are contiguous and non-overlapping. Returns human-readable
// findings; an empty slice means the table is consistent.
func (c *Catalog) AuditEngineUpgrades() []string {
	byKey := make(map[string][]EngineUpgradeRow)
	for _, r := range c.EngineUpgrades {
		for _, k := range r.Keys {
			byKey[k] = append(byKey[k], r)
		}
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var findings []string
	for _, k := range keys {
		steps := byKey[k]
		sort.Slice(steps, func(i, j int) bool { return steps[i].From < steps[j].From })
		for i := range steps {
			if steps[i].To <= steps[i].From {
				findings = append(findings, fmt.Sprintf(
					"%s: empty interval [%.2f, %.2f)", k, steps[i].From, steps[i].To))
			}
			if i == 0 {
				continue
			}
			prev := steps[i-1]
			switch {
			case steps[i].From > prev.To+boundEps:
				findings = append(findings, fmt.Sprintf(
					"%s: gap between [%.2f, %.2f) and [%.2f, %.2f)",
					k, prev.From, prev.To, steps[i].From, steps[i].To))
			case steps[i].From < prev.To-boundEps:
				findings = append(findings, fmt.Sprintf(
					"%s: overlap between [%.2f, %.2f) and [%.2f, %.2f)",
					k, prev.From, prev.To, steps[i].From, steps[i].To))
			}
		}
	}
	return findings
}
