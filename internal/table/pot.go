package table

import (
	"sort"

	"github.com/lox/holdem-table/internal/evaluator"
)

// Pot is one side pot: an amount and the ids of every contributor at or
// above this contribution level, folded players included. distributeShowdown
// narrows that set to the contenders still live at showdown.
type Pot struct {
	Amount   int
	Eligible []string
}

// Payout is one row of a showdown distribution: how much one player won,
// for the lastShowdown snapshot (SPEC_FULL.md §4.5).
type Payout struct {
	PlayerID string
	Amount   int
}

// buildSidePots implements SPEC_FULL.md §4.3 step 1-2: collect the distinct
// positive contribution levels from all contributors (folded players
// included — their chips still fund pots they can no longer win) and build
// one pot per level.
func buildSidePots(contributions map[string]int) []Pot {
	levels := distinctPositiveLevels(contributions)

	pots := make([]Pot, 0, len(levels))
	prev := 0
	for _, level := range levels {
		var eligible []string
		for id, c := range contributions {
			if c >= level {
				eligible = append(eligible, id)
			}
		}
		amount := (level - prev) * len(eligible)
		if amount > 0 {
			pots = append(pots, Pot{Amount: amount, Eligible: eligible})
		}
		prev = level
	}
	return pots
}

func distinctPositiveLevels(contributions map[string]int) []int {
	seen := make(map[int]bool)
	var levels []int
	for _, c := range contributions {
		if c > 0 && !seen[c] {
			seen[c] = true
			levels = append(levels, c)
		}
	}
	sort.Ints(levels)
	return levels
}

// distributeShowdown implements SPEC_FULL.md §4.3 steps 3-4: for each pot,
// restrict eligibility to contenders still live at showdown (not folded),
// rank them by hand strength, split evenly, and give the remainder one chip
// at a time starting at the first tied winner in seatOrder (ring order
// starting just after the dealer).
//
// hands maps player id to its evaluated showdown hand. A pot with no
// eligible live contender is skipped, per §4.3 step 3 (this cannot happen
// under normal play).
func distributeShowdown(pots []Pot, hands map[string]evaluator.Hand, seatOrder []string) []Payout {
	totals := make(map[string]int)

	for _, pot := range pots {
		var live []string
		for _, id := range pot.Eligible {
			if _, ok := hands[id]; ok {
				live = append(live, id)
			}
		}
		if len(live) == 0 {
			continue
		}

		winners := bestHandPlayers(live, hands)
		share := pot.Amount / len(winners)
		remainder := pot.Amount % len(winners)

		for _, id := range winners {
			totals[id] += share
		}

		if remainder > 0 {
			ordered := orderBySeatStartingAfterDealer(winners, seatOrder)
			for i := 0; i < remainder; i++ {
				totals[ordered[i%len(ordered)]]++
			}
		}
	}

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return seatIndex(ids[i], seatOrder) < seatIndex(ids[j], seatOrder)
	})

	payouts := make([]Payout, 0, len(ids))
	for _, id := range ids {
		payouts = append(payouts, Payout{PlayerID: id, Amount: totals[id]})
	}
	sort.SliceStable(payouts, func(i, j int) bool { return payouts[i].Amount > payouts[j].Amount })
	return payouts
}

func bestHandPlayers(ids []string, hands map[string]evaluator.Hand) []string {
	best := hands[ids[0]]
	winners := []string{ids[0]}
	for _, id := range ids[1:] {
		h := hands[id]
		switch h.Compare(best) {
		case 1:
			best = h
			winners = []string{id}
		case 0:
			winners = append(winners, id)
		}
	}
	return winners
}

// orderBySeatStartingAfterDealer returns ids sorted in ring order starting
// at the seat immediately after the dealer, per the GLOSSARY's "Ordered
// remainder" definition.
func orderBySeatStartingAfterDealer(ids []string, seatOrder []string) []string {
	dealerIdx := 0 // seatOrder is already rotated so index 0 is just after the dealer
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	n := len(seatOrder)
	var ordered []string
	for i := 0; i < n; i++ {
		id := seatOrder[(dealerIdx+i)%n]
		if idSet[id] {
			ordered = append(ordered, id)
		}
	}
	return ordered
}

func seatIndex(id string, seatOrder []string) int {
	for i, s := range seatOrder {
		if s == id {
			return i
		}
	}
	return len(seatOrder)
}
