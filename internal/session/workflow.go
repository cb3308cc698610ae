package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mta-tools/wycena/internal/cardparse"
	"github.com/mta-tools/wycena/internal/catalog"
	"github.com/mta-tools/wycena/internal/model"
	"github.com/mta-tools/wycena/internal/store"
	"github.com/mta-tools/wycena/internal/valuation"
)

// Reply is what the conversational surface sends back to the user.
// Done marks a terminal exchange: the result was delivered or the
// session ended, and no further reply is expected.
type Reply struct {
	Text string
	Done bool
}

// Workflow drives the multi-turn valuation exchange: request, optional
// card paste, optional price collection, result. It owns the pending
// states through the Manager; the chat layer only routes messages.
type Workflow struct {
	store    store.Store
	engine   *valuation.Engine
	sessions *Manager
}

// NewWorkflow wires the workflow to its store, engine, and session manager.
func NewWorkflow(st store.Store, eng *valuation.Engine, sessions *Manager) *Workflow {
	return &Workflow{store: st, engine: eng, sessions: sessions}
}

// RequestValuation starts a valuation for the given vehicle. A known
// vehicle with all prices on file completes immediately; otherwise a
// pending state is created and the reply asks for what is missing. A
// new request discards any previous pending state for the user.
func (w *Workflow) RequestValuation(ctx context.Context, userID, channelID string, vuid int) (*Reply, error) {
	var notice string
	if prev, _ := w.sessions.Get(userID); prev != nil {
		w.sessions.Delete(userID)
		notice = "Your previous pending valuation was discarded.\n"
		zap.L().Debug("session: pending state replaced by new request",
			zap.String("user", userID), zap.Int("old_vuid", prev.VUID), zap.Int("vuid", vuid))
	}

	card, err := w.store.GetVehicle(ctx, vuid)
	if err != nil {
		return nil, eris.Wrapf(err, "session: load vehicle %d", vuid)
	}

	st := &State{UserID: userID, ChannelID: channelID, VUID: vuid}
	if card == nil {
		st.Phase = PhaseAwaitingCard
		w.sessions.Put(st)
		return &Reply{Text: notice + fmt.Sprintf(
			"Vehicle %d is not on file yet. Paste its vehicle card (you have %s).",
			vuid, w.sessions.TTL())}, nil
	}
	return w.advance(ctx, notice, st, card, false)
}

// HandleMessage routes a free-form message from a user with a pending
// state. Returns (nil, nil) when the user has nothing pending, so the
// chat layer can ignore the message.
func (w *Workflow) HandleMessage(ctx context.Context, userID, channelID, text string) (*Reply, error) {
	st, expired := w.sessions.Get(userID)
	if expired {
		return &Reply{Text: "Your pending valuation expired. Request it again.", Done: true}, nil
	}
	if st == nil {
		return nil, nil
	}

	switch st.Phase {
	case PhaseAwaitingCard:
		return w.handleCardPaste(ctx, st, text)
	case PhaseAwaitingPrices:
		return w.handlePriceReply(ctx, st, text)
	}
	return nil, eris.Errorf("session: unknown phase %q", st.Phase)
}

// handleCardPaste validates a pasted card. Parse failures and a wrong
// VUID re-prompt without touching the expiry clock.
func (w *Workflow) handleCardPaste(ctx context.Context, st *State, text string) (*Reply, error) {
	card, err := cardparse.Parse(text)
	if err != nil {
		return &Reply{Text: fmt.Sprintf(
			"Could not read that card (%v). Paste the full vehicle card for VUID %d.",
			err, st.VUID)}, nil
	}
	if card.VUID != st.VUID {
		return &Reply{Text: fmt.Sprintf(
			"That card is for VUID %d, but this valuation is for VUID %d. Paste the right card.",
			card.VUID, st.VUID)}, nil
	}

	if err := w.store.UpsertVehicle(ctx, card); err != nil {
		return nil, eris.Wrapf(err, "session: cache vehicle %d", card.VUID)
	}
	return w.advance(ctx, "", st, card, true)
}

// handlePriceReply consumes key=value lines, persisting each resolved
// price immediately, then re-prompts for the remainder or finishes.
func (w *Workflow) handlePriceReply(ctx context.Context, st *State, text string) (*Reply, error) {
	var problems []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		typ, price, perr := parsePriceLine(line)
		if perr != nil {
			problems = append(problems, perr.Error())
			continue
		}
		idx := indexMissing(st.Missing, typ)
		if idx < 0 {
			problems = append(problems, fmt.Sprintf("no %s color price is pending", typ))
			continue
		}

		key := st.Missing[idx]
		rec := model.SpecialColorPrice{
			Type:    key.Type,
			Name:    key.Name,
			Rarity:  key.Rarity,
			Price:   price,
			AddedBy: st.UserID,
		}
		if err := w.store.UpsertSpecialColorPrice(ctx, rec); err != nil {
			return nil, eris.Wrapf(err, "session: save price for %s '%s'", key.Type, key.Name)
		}
		st.Missing = append(st.Missing[:idx], st.Missing[idx+1:]...)
	}

	if len(st.Missing) > 0 {
		msg := promptForPrices(st.Missing)
		if len(problems) > 0 {
			msg = strings.Join(problems, "\n") + "\n" + msg
		}
		return &Reply{Text: msg}, nil
	}

	card, err := w.store.GetVehicle(ctx, st.VUID)
	if err != nil {
		return nil, eris.Wrapf(err, "session: reload vehicle %d", st.VUID)
	}
	if card == nil {
		w.sessions.Delete(st.UserID)
		return nil, eris.Errorf("session: vehicle %d missing from cache", st.VUID)
	}
	return w.finish(ctx, "", st, card)
}

// advance runs the missing-special-color check: either park in the
// price-collection phase or go straight to the result. stored says
// whether st already lives in the session map.
func (w *Workflow) advance(ctx context.Context, notice string, st *State, card *model.VehicleCard, stored bool) (*Reply, error) {
	missing, err := w.engine.MissingSpecialColors(ctx, card)
	if err != nil {
		return nil, eris.Wrapf(err, "session: check special colors for %d", st.VUID)
	}
	if len(missing) > 0 {
		st.Phase = PhaseAwaitingPrices
		st.Missing = missing
		if stored {
			w.sessions.Extend(st)
		} else {
			w.sessions.Put(st)
		}
		return &Reply{Text: notice + promptForPrices(missing)}, nil
	}
	return w.finish(ctx, notice, st, card)
}

// finish evaluates the card, removes the state, and renders the result.
func (w *Workflow) finish(ctx context.Context, notice string, st *State, card *model.VehicleCard) (*Reply, error) {
	w.sessions.Delete(st.UserID)
	res, err := w.engine.Evaluate(ctx, card)
	if err != nil {
		return nil, eris.Wrapf(err, "session: evaluate vehicle %d", st.VUID)
	}
	return &Reply{Text: notice + res.Render(card), Done: true}, nil
}

// promptForPrices asks the user for the still-missing crowd prices.
func promptForPrices(missing []model.SpecialColorKey) string {
	var b strings.Builder
	b.WriteString("I need a market price for:\n")
	for _, k := range missing {
		fmt.Fprintf(&b, "  - %s color '%s - %s'\n", k.Type, k.Name, k.Rarity)
	}
	b.WriteString("Reply with lines like 'lights = 400000' or 'licznik = 250,000$'.")
	return b.String()
}

// colorKeywords maps folded reply keys onto the two color attributes.
var colorKeywords = map[string]model.SpecialColorType{
	"lights":         model.ColorLights,
	"swiatla":        model.ColorLights,
	"kolor swiatel":  model.ColorLights,
	"dashboard":      model.ColorDashboard,
	"licznik":        model.ColorDashboard,
	"kolor licznika": model.ColorDashboard,
}

// parsePriceLine parses one "key = value" reply line.
func parsePriceLine(line string) (model.SpecialColorType, int64, error) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", 0, eris.Errorf("cannot read '%s': expected key = price", line)
	}
	typ, ok := colorKeywords[model.FoldKey(parts[0])]
	if !ok {
		return "", 0, eris.Errorf("unknown attribute '%s': use lights/swiatla or dashboard/licznik",
			strings.TrimSpace(parts[0]))
	}
	price, err := catalog.ParseMoney(parts[1])
	if err != nil || price <= 0 {
		return "", 0, eris.Errorf("'%s' is not a valid price", strings.TrimSpace(parts[1]))
	}
	return typ, price, nil
}

func indexMissing(missing []model.SpecialColorKey, typ model.SpecialColorType) int {
	for i, k := range missing {
		if k.Type == typ {
			return i
		}
	}
	return -1
}
