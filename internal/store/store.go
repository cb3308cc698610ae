package store

import (
	"context"

	"github.com/mta-tools/wycena/internal/model"
)

// Store defines the persistence interface for crowd-sourced special
// color prices and the vehicle card archive.
type Store interface {
	// Special color prices. Get reports (price, found); absence is not
	// an error. Upsert overwrites on the (type, name_key, rarity) key.
	GetSpecialColorPrice(ctx context.Context, typ model.SpecialColorType, name, rarity string) (int64, bool, error)
	UpsertSpecialColorPrice(ctx context.Context, rec model.SpecialColorPrice) error
	ListSpecialColorPrices(ctx context.Context, typ model.SpecialColorType) ([]model.SpecialColorPrice, error)

	// Vehicle cards, keyed by VUID. Get returns nil when absent.
	GetVehicle(ctx context.Context, vuid int) (*model.VehicleCard, error)
	UpsertVehicle(ctx context.Context, card *model.VehicleCard) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
