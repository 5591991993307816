package table

import (
	"github.com/lox/holdem-table/internal/advisor"
	"github.com/lox/holdem-table/internal/deck"
)

// PlayerView is the projected, per-viewer-safe representation of one seated
// player (SPEC_FULL.md §4.7): every other player's hole cards are always
// omitted, and disconnected players are filtered out by the caller before
// this is sent.
type PlayerView struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Chips             int    `json:"chips"`
	IsAdmin           bool   `json:"isAdmin"`
	InHand            bool   `json:"inHand"`
	Folded            bool   `json:"folded"`
	AllIn             bool   `json:"allIn"`
	BetThisRound      int    `json:"betThisRound"`
	TotalContribution int    `json:"totalContribution"`
}

// ShowdownView is the wire shape of the lastShowdown snapshot.
type ShowdownView struct {
	Board       []string          `json:"board"`
	Descriptions map[string]string `json:"descriptions"`
	Payouts     []Payout          `json:"payouts"`
}

// View is the full per-viewer projection described by SPEC_FULL.md §4.7 and
// the `state` event in §6, short of the connection-layer envelope fields
// (`joined`, `youId`) that only the server package can supply.
type View struct {
	GameStarted    bool
	HandInProgress bool
	HandNumber     int
	Phase          string

	StartingStack int
	SmallBlind    int
	BigBlind      int

	Pot        int
	CurrentBet int

	DealerID      string
	SmallBlindID  string
	BigBlindID    string
	CurrentTurnID string

	CommunityCards []deck.Card
	DeckRemaining  int
	BurnCount      int

	YourCards []deck.Card

	AvailableActions LegalActions
	CanAct           bool
	HandInsight      *advisor.Insight

	Players []PlayerView
	Logs    []LogEntry

	LastShowdown *ShowdownView
}

// View builds the projection for viewerID. viewerID may name a player not
// currently seated (e.g. a spectator socket before join); in that case the
// viewer-specific fields are simply left at their zero value.
func (t *Table) View(viewerID string) *View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked(viewerID)
}

func (t *Table) viewLocked(viewerID string) *View {
	v := &View{
		GameStarted:    t.gameStarted,
		HandInProgress: t.handInProgress,
		HandNumber:     t.handNumber,
		Phase:          t.phaseLocked(),
		StartingStack:  t.startingStack,
		SmallBlind:     t.smallBlind,
		BigBlind:       t.bigBlind,
		Logs:           append([]LogEntry{}, t.logs...),
	}

	if t.hand != nil {
		v.Pot = t.hand.Pot()
		v.CurrentBet = t.hand.currentBet
		v.CommunityCards = append([]deck.Card{}, t.hand.board...)
		v.DeckRemaining = t.hand.deck.Remaining()
		v.BurnCount = t.hand.deck.BurnCount()
		v.DealerID = t.hand.players[t.hand.button].ID
		sbPos, bbPos := t.hand.blindSeats()
		v.SmallBlindID = t.hand.players[sbPos].ID
		v.BigBlindID = t.hand.players[bbPos].ID
		if t.hand.activeSeat >= 0 {
			v.CurrentTurnID = t.hand.players[t.hand.activeSeat].ID
		}
		if t.hand.lastShowdown != nil {
			v.LastShowdown = showdownView(t.hand.lastShowdown)
		}
	}

	for _, p := range t.seats {
		if p.Disconnected {
			continue
		}
		v.Players = append(v.Players, PlayerView{
			ID:                p.ID,
			Name:              p.Name,
			Chips:             p.Chips,
			IsAdmin:           p.IsAdmin,
			InHand:            p.InHand,
			Folded:            p.Folded,
			AllIn:             p.AllIn,
			BetThisRound:      p.BetThisRound,
			TotalContribution: p.TotalContribution,
		})
	}

	viewer := t.findSeat(viewerID)
	if viewer == nil {
		return v
	}

	if viewer.InHand {
		v.YourCards = append([]deck.Card{}, viewer.HoleCards...)
	}

	if t.hand != nil {
		seat := t.hand.seatIndexOf(viewer)
		if seat != -1 {
			v.AvailableActions = t.hand.LegalActionsForSeat(seat)
			v.CanAct = seat == t.hand.activeSeat && viewer.Actionable()
			v.HandInsight = advisor.Compute(viewer.HoleCards, t.hand.board)
		}
	}

	return v
}

func (t *Table) phaseLocked() string {
	if !t.gameStarted || t.hand == nil {
		return "lobby"
	}
	return t.hand.street.String()
}

func showdownView(s *Showdown) *ShowdownView {
	codes := make([]string, len(s.Board))
	for i, c := range s.Board {
		codes[i] = c.Code()
	}
	return &ShowdownView{
		Board:        codes,
		Descriptions: s.Descriptions,
		Payouts:      s.Payouts,
	}
}
