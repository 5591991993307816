package table

import (
	"errors"
	"fmt"

	"github.com/lox/holdem-table/internal/deck"
	"github.com/lox/holdem-table/internal/evaluator"
)

// Street is one step of the hand lifecycle state machine
// (SPEC_FULL.md §4.5).
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	default:
		return "unknown"
	}
}

// ErrActionNotReopened is returned when a player tries to raise after an
// all-in under-raise that did not reopen action for them.
var ErrActionNotReopened = errors.New("action not reopened")

// Hand is the live state of one hand in progress: the seated players
// participating, the button, the street, the board, the deck, and the
// current-bet/last-raise-size betting state. It is owned exclusively by a
// Table and mutated only through ProcessAction/ForceFold/advanceStreet.
type Hand struct {
	players []*Player // ring order, starting at the dealer (index 0)
	button  int

	street Street
	board  []deck.Card
	deck   *deck.Deck

	currentBet    int
	lastRaiseSize int

	activeSeat int // index into players, or -1 if none can act

	smallBlind int
	bigBlind   int

	lastShowdown *Showdown
}

// Showdown is the snapshot recorded after a hand ends, either by fold-out or
// by full evaluation, per SPEC_FULL.md §4.5.
type Showdown struct {
	Board        []deck.Card
	Descriptions map[string]string // player id -> hand description, only for revealed hands
	Payouts      []Payout
}

// newHand builds a fresh hand: deals hole cards, posts blinds, and computes
// the first turn pointer (fast-forwarding immediately if nobody can act).
// players must already be in ring order starting at the dealer seat
// (index 0); only players with InHand==true are dealt in.
func newHand(players []*Player, smallBlind, bigBlind int, d *deck.Deck) *Hand {
	h := &Hand{
		players:       players,
		button:        0,
		street:        Preflop,
		deck:          d,
		lastRaiseSize: bigBlind,
		smallBlind:    smallBlind,
		bigBlind:      bigBlind,
	}

	h.dealHoleCards()
	h.postBlinds()
	h.computeActedFlags()
	h.activeSeat = h.nextActionable(h.firstToActSeat())

	if h.activeSeat == -1 {
		h.fastForward()
	}

	return h
}

func (h *Hand) dealHoleCards() {
	for round := 0; round < 2; round++ {
		for i := 1; i <= len(h.players); i++ {
			p := h.players[(h.button+i)%len(h.players)]
			if !p.InHand {
				continue
			}
			c, err := h.deck.Draw("hole card")
			if err != nil {
				panic(fmt.Errorf("dealing hole cards: %w", err))
			}
			p.HoleCards = append(p.HoleCards, c)
		}
	}
}

func (h *Hand) postBlinds() {
	sbPos, bbPos := h.blindSeats()

	sbAmount := h.players[sbPos].contribute(h.smallBlind)
	bbAmount := h.players[bbPos].contribute(h.bigBlind)

	h.currentBet = maxInt(h.bigBlind, maxInt(sbAmount, bbAmount))
}

// blindSeats returns (smallBlindSeat, bigBlindSeat) as indices into
// h.players. Heads-up: the dealer (seat 0) posts small blind and acts first
// preflop.
func (h *Hand) blindSeats() (int, int) {
	n := len(h.players)
	if n == 2 {
		return h.button, (h.button + 1) % n
	}
	return (h.button + 1) % n, (h.button + 2) % n
}

// firstToActSeat returns the seat that should act first on the current
// street, before accounting for actionability: preflop it's the player left
// of the big blind, postflop it's the player left of the dealer.
func (h *Hand) firstToActSeat() int {
	if h.street == Preflop {
		_, bbPos := h.blindSeats()
		return (bbPos + 1) % len(h.players)
	}
	return (h.button + 1) % len(h.players)
}

// computeActedFlags marks every non-actionable player's acted flag true (a
// folded or all-in player cannot "act" again this street) and every
// actionable player's acted flag false, per SPEC_FULL.md §4.5 step 7 and the
// street-transition rule.
func (h *Hand) computeActedFlags() {
	for _, p := range h.players {
		p.Acted = !p.Actionable()
		p.EverActed = false
	}
}

// nextActionable scans forward from seat (inclusive) and returns the first
// actionable seat, or -1 if none.
func (h *Hand) nextActionable(from int) int {
	n := len(h.players)
	for i := 0; i < n; i++ {
		pos := (from + i) % n
		if h.players[pos].Actionable() {
			return pos
		}
	}
	return -1
}

// LegalActionsForSeat returns the legal actions for the player at seat,
// given the hand's current betting state. Returns the zero value if seat is
// not the active seat.
func (h *Hand) LegalActionsForSeat(seat int) LegalActions {
	if seat != h.activeSeat {
		return LegalActions{}
	}
	return legalActionsFor(h.players[seat], h.currentBet, h.lastRaiseSize)
}

// ProcessAction applies action (with raiseTo meaningful only for Raise) from
// the player currently on turn, identified by seat. It returns a
// client-protocol error (never an invariant panic) for illegal actions.
func (h *Hand) ProcessAction(seat int, action ActionType, raiseTo int) error {
	if seat != h.activeSeat {
		return fmt.Errorf("not your turn")
	}
	p := h.players[seat]
	if !p.Actionable() {
		return fmt.Errorf("player is not actionable")
	}

	legal := legalActionsFor(p, h.currentBet, h.lastRaiseSize)

	switch action {
	case Fold:
		p.fold()

	case Check:
		if !legal.CanCheck {
			return fmt.Errorf("cannot check, must call %d", legal.CallAmount)
		}
		p.Acted = true
		p.EverActed = true

	case Call:
		if !legal.CanCall {
			return fmt.Errorf("no call available")
		}
		p.contribute(legal.CallAmount)
		p.Acted = true
		p.EverActed = true

	case Raise:
		if !legal.CanRaise {
			if !raiseRightsOpen(p, h.currentBet-p.BetThisRound) {
				return ErrActionNotReopened
			}
			return fmt.Errorf("raise is not legal")
		}
		if !isLegalRaiseAmount(raiseTo, h.currentBet, legal.MinRaiseTo, legal.MaxRaiseTo) {
			return fmt.Errorf("raise must be between %d and %d", legal.MinRaiseTo, legal.MaxRaiseTo)
		}

		full := isFullRaise(raiseTo, h.currentBet, h.lastRaiseSize)
		delta := raiseTo - p.BetThisRound
		p.contribute(delta)

		if full {
			h.lastRaiseSize = raiseTo - h.currentBet
		}
		h.currentBet = raiseTo

		// A full raise reopens action for every other player still in the
		// hand. An under-raise (always all-in) does not: any other player
		// who has already acted this street keeps acted=true and is held to
		// call/fold, per SPEC_FULL.md §4.4's "all-in under-raise does not
		// reopen action" rule. Players who haven't acted at all yet this
		// street are unaffected either way.
		for _, other := range h.players {
			if other == p || !other.Actionable() {
				continue
			}
			if full {
				other.Acted = false
			} else if other.EverActed {
				other.Acted = true
			}
		}
		p.Acted = true
		p.EverActed = true

	default:
		return fmt.Errorf("unknown action")
	}

	h.advanceTurn()
	return nil
}

// ForceFold folds the player at seat regardless of turn order (disconnect
// handling, SPEC_FULL.md §4.7). It is a no-op if the player is not
// actionable.
func (h *Hand) ForceFold(seat int) {
	p := h.players[seat]
	if !p.Actionable() {
		return
	}
	p.fold()
	if seat == h.activeSeat {
		h.advanceTurn()
	} else if h.bettingRoundComplete() {
		h.advanceStreet()
	}
}

func (h *Hand) advanceTurn() {
	if h.foldedOut() {
		h.resolveFoldOut()
		return
	}

	next := h.nextActionable(h.activeSeat + 1)
	if next == -1 || h.bettingRoundComplete() {
		h.activeSeat = -1
		h.advanceStreet()
		return
	}
	h.activeSeat = next
}

// bettingRoundComplete implements SPEC_FULL.md §4.4's round-completion rule:
// every still-actionable player has acted and matches currentBet.
func (h *Hand) bettingRoundComplete() bool {
	for _, p := range h.players {
		if p.Actionable() && (!p.Acted || p.BetThisRound != h.currentBet) {
			return false
		}
	}
	return true
}

// contenders returns players still eligible to win the pot: dealt in and
// not folded (includes all-in players).
func (h *Hand) contenders() []*Player {
	var out []*Player
	for _, p := range h.players {
		if p.InHand && !p.Folded {
			out = append(out, p)
		}
	}
	return out
}

func (h *Hand) foldedOut() bool {
	return len(h.contenders()) <= 1
}

// resolveFoldOut implements the fold-out shortcut in SPEC_FULL.md §4.3: a
// single remaining contender wins the whole pot without showdown.
func (h *Hand) resolveFoldOut() {
	contenders := h.contenders()
	contributions := h.contributions()

	var payouts []Payout
	if len(contenders) == 1 {
		winner := contenders[0]
		total := 0
		for _, c := range contributions {
			total += c
		}
		payouts = []Payout{{PlayerID: winner.ID, Amount: total}}
		winner.Chips += total
	}

	h.street = Showdown
	h.activeSeat = -1
	h.lastShowdown = &Showdown{
		Board:        append([]deck.Card{}, h.board...),
		Descriptions: map[string]string{},
		Payouts:      payouts,
	}
}

func (h *Hand) contributions() map[string]int {
	m := make(map[string]int, len(h.players))
	for _, p := range h.players {
		m[p.ID] = p.TotalContribution
	}
	return m
}

// advanceStreet implements SPEC_FULL.md §4.5's street-transition and
// fast-forward logic.
func (h *Hand) advanceStreet() {
	if h.street == Showdown {
		return
	}

	for _, p := range h.players {
		p.resetForStreet()
	}
	h.currentBet = 0
	h.lastRaiseSize = h.bigBlind

	switch h.street {
	case Preflop:
		h.burnAndDeal(3)
		h.street = Flop
	case Flop:
		h.burnAndDeal(1)
		h.street = Turn
	case Turn:
		h.burnAndDeal(1)
		h.street = River
	case River:
		h.street = Showdown
		h.resolveShowdown()
		return
	}

	h.computeActedFlags()
	h.activeSeat = h.nextActionable(h.firstToActSeat())

	if h.activeSeat == -1 {
		h.fastForward()
	}
}

func (h *Hand) burnAndDeal(n int) {
	if err := h.deck.Burn("street transition"); err != nil {
		panic(fmt.Errorf("burning before street: %w", err))
	}
	for i := 0; i < n; i++ {
		c, err := h.deck.Draw("community card")
		if err != nil {
			panic(fmt.Errorf("dealing community card: %w", err))
		}
		h.board = append(h.board, c)
	}
}

// fastForward implements the GLOSSARY's fast-forward rule: if nobody can
// act but ≥2 contenders remain, reveal all remaining community cards (each
// preceded by a burn) and go straight to showdown.
func (h *Hand) fastForward() {
	if h.foldedOut() {
		h.resolveFoldOut()
		return
	}

	for h.street != Showdown {
		remaining := map[Street]int{Preflop: 3, Flop: 1, Turn: 1, River: 0}[h.street]
		if remaining > 0 {
			h.burnAndDeal(remaining)
		}
		switch h.street {
		case Preflop:
			h.street = Flop
		case Flop:
			h.street = Turn
		case Turn:
			h.street = River
		case River:
			h.street = Showdown
			h.resolveShowdown()
			return
		}
	}
}

// resolveShowdown implements SPEC_FULL.md §4.3's full payout algorithm and
// records the lastShowdown snapshot.
func (h *Hand) resolveShowdown() {
	contenders := h.contenders()

	hands := make(map[string]evaluator.Hand, len(contenders))
	descriptions := make(map[string]string, len(contenders))
	for _, p := range contenders {
		all := append(append([]deck.Card{}, p.HoleCards...), h.board...)
		hand := evaluator.Evaluate(all)
		hands[p.ID] = hand
		descriptions[p.ID] = hand.Describe()
	}

	seatOrder := h.seatOrderAfterDealer()
	pots := buildSidePots(h.contributions())
	payouts := distributeShowdown(pots, hands, seatOrder)

	for _, payout := range payouts {
		for _, p := range h.players {
			if p.ID == payout.PlayerID {
				p.Chips += payout.Amount
			}
		}
	}

	h.lastShowdown = &Showdown{
		Board:        append([]deck.Card{}, h.board...),
		Descriptions: descriptions,
		Payouts:      payouts,
	}
	h.activeSeat = -1
}

// seatOrderAfterDealer returns player ids in ring order starting immediately
// after the dealer, for the ordered-remainder payout rule.
func (h *Hand) seatOrderAfterDealer() []string {
	n := len(h.players)
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = h.players[(h.button+1+i)%n].ID
	}
	return out
}

// IsComplete reports whether the hand has reached showdown (including via
// fold-out).
func (h *Hand) IsComplete() bool {
	return h.street == Showdown
}

// Pot returns the total of every player's contribution so far, the
// `pot` field of the wire projection.
func (h *Hand) Pot() int {
	total := 0
	for _, p := range h.players {
		total += p.TotalContribution
	}
	return total
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
