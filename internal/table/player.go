// Package table implements the table engine: the hand lifecycle state
// machine, the betting engine's legal-action and raise-rights logic, and
// side-pot payout, all built around a single mutex-guarded Table exactly as
// SPEC_FULL.md §5 and §9 call for — a monitor-style struct rather than a
// channel actor, following this codebase's own GameEngine/Table pairing.
package table

import "github.com/lox/holdem-table/internal/deck"

// Player is a process-lifetime entity owned exclusively by the Table. It
// persists across hands; only holeCards and the per-hand flags are reset at
// hand start and hand finish.
type Player struct {
	ID   string
	Name string

	Chips int

	IsAdmin      bool
	Disconnected bool
	InHand       bool
	Folded       bool
	AllIn        bool
	Acted        bool // reset false whenever a full raise reopens the round
	EverActed    bool // sticky for the street; never reset by a non-full raise

	HoleCards []deck.Card

	BetThisRound      int
	TotalContribution int
}

// NewPlayer creates a new player with the given starting chip stack. The
// first player ever seated is made admin by the Table on join.
func NewPlayer(id, name string, chips int) *Player {
	return &Player{ID: id, Name: name, Chips: chips}
}

// Actionable reports whether the player can still act this betting round:
// in the hand, not folded, not all-in (SPEC_FULL.md §3, GLOSSARY).
func (p *Player) Actionable() bool {
	return p.InHand && !p.Folded && !p.AllIn
}

// resetForHand clears per-hand state. Called when a player is dealt in.
func (p *Player) resetForHand() {
	p.InHand = true
	p.Folded = false
	p.AllIn = false
	p.Acted = false
	p.EverActed = false
	p.HoleCards = nil
	p.BetThisRound = 0
	p.TotalContribution = 0
}

// resetForStreet clears per-street betting state.
func (p *Player) resetForStreet() {
	p.BetThisRound = 0
	p.EverActed = false
}

// sitOut marks a player as not participating in the hand about to be dealt
// (used for players with zero chips when a hand starts).
func (p *Player) sitOut() {
	p.InHand = false
	p.Folded = false
	p.AllIn = false
	p.Acted = true
	p.HoleCards = nil
	p.BetThisRound = 0
	p.TotalContribution = 0
}

// fold marks the player folded. folded implies not-in-hand per the data
// model invariant in SPEC_FULL.md §3.
func (p *Player) fold() {
	p.Folded = true
	p.InHand = false
	p.Acted = true
	p.EverActed = true
}

// contribute moves up to amount chips from the player's stack into the pot,
// capping at the player's remaining chips (an under-funded contribution is
// an all-in). It returns the amount actually contributed.
func (p *Player) contribute(amount int) int {
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.BetThisRound += amount
	p.TotalContribution += amount
	if p.Chips == 0 {
		p.AllIn = true
	}
	return amount
}
