// Package model defines the core domain types shared by the parser,
// catalog, valuation engine, and stores.
package model

import "time"

// SpecialColorType distinguishes the two color attributes a card can carry.
type SpecialColorType string

const (
	ColorLights    SpecialColorType = "lights"
	ColorDashboard SpecialColorType = "dashboard"
)

// Rarity tags produced by cardparse.ParseColorWithRarity. Anything else
// found after the " - " separator passes through verbatim.
const (
	RarityLimited = "rare-limited"
	RarityUnique  = "rare-unique"
)

// IsSpecialRarity reports whether a rarity tag marks a crowd-priced color.
func IsSpecialRarity(rarity string) bool {
	return rarity == RarityLimited || rarity == RarityUnique
}

// VehicleCard is the structured form of a pasted vehicle description.
// Immutable once produced by the parser; persisted verbatim in the
// vehicle cache so repeat valuations skip the paste step.
type VehicleCard struct {
	VUID      int    `json:"vuid"`
	ModelRaw  string `json:"model_raw"`
	EngineRaw string `json:"engine_raw"`

	BaseModel string `json:"base_model"`
	ModelID   int    `json:"model_id,omitempty"` // trailing "(N)" on the model line; 0 = absent

	BodykitMainName string `json:"bodykit_main,omitempty"` // e.g. "GT"
	BodykitAeroName string `json:"bodykit_aero,omitempty"` // e.g. "Aero III"

	VisualTuning        []VisualItem `json:"visual,omitempty"`
	MechanicalTuningRaw []string     `json:"mech,omitempty"`

	LightsColorRaw    string `json:"lights_color,omitempty"`
	DashboardColorRaw string `json:"dashboard_color,omitempty"`
}

// VisualItem is one comma-separated entry of the visual tuning list.
type VisualItem struct {
	ID   int    `json:"id,omitempty"` // parsed from a trailing "(1079)"; 0 = name-keyed
	Name string `json:"name"`
	Raw  string `json:"raw"`
}

// IDKeyed reports whether the item is priced by numeric catalog id.
func (v VisualItem) IDKeyed() bool { return v.ID > 0 }

// SpecialColorKey identifies one crowd-priced color attribute.
type SpecialColorKey struct {
	Type   SpecialColorType `json:"type"`
	Name   string           `json:"name"`
	Rarity string           `json:"rarity"`
}

// SpecialColorPrice is the persisted crowd-submitted price for a rare
// color. Keyed by (Type, NameKey, Rarity); later submissions overwrite
// earlier ones.
type SpecialColorPrice struct {
	ID        string           `json:"id"`
	Type      SpecialColorType `json:"type"`
	Name      string           `json:"name"`
	NameKey   string           `json:"name_key"`
	Rarity    string           `json:"rarity"`
	Price     int64            `json:"price"`
	AddedBy   string           `json:"added_by"`
	UpdatedAt time.Time        `json:"updated_at"`
}
