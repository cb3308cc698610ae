// Package session holds the per-user pending-valuation state machine:
// a valuation that cannot complete immediately parks here until the
// user supplies the missing card or prices, or the state expires.
package session

import (
	"time"

	"github.com/mta-tools/wycena/internal/model"
)

// Phase is the step a pending valuation is waiting on.
type Phase string

const (
	PhaseAwaitingCard   Phase = "awaiting-card-paste"
	PhaseAwaitingPrices Phase = "awaiting-special-color-prices"
)

// State is one user's pending valuation. One active state per user;
// created when a request cannot complete immediately, removed on
// completion or expiry.
type State struct {
	UserID    string
	ChannelID string
	VUID      int
	Phase     Phase
	ExpiresAt time.Time

	// Missing lists the special colors still lacking a crowd price,
	// only meaningful in PhaseAwaitingPrices.
	Missing []model.SpecialColorKey
}
