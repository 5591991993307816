// Package advisor computes the non-normative strength/draw hint shown to
// the acting player (SPEC_FULL.md §4.6). Its output never influences
// gameplay rules — it is UX metadata only, consumed by the Table Server's
// per-viewer projection and otherwise invisible to the engine.
package advisor

import (
	"fmt"
	"sort"

	"github.com/lox/holdem-table/internal/deck"
	"github.com/lox/holdem-table/internal/evaluator"
)

// Insight is the advisor's output for one viewer at one point in time.
type Insight struct {
	CurrentHand    string   `json:"currentHand"`
	StrengthScore  int      `json:"strengthScore"`
	StrengthLabel  string   `json:"strengthLabel"`
	Draws          []string `json:"draws"`
	Recommendation string   `json:"recommendation"`
}

// Compute returns the advisor output for a viewer holding holeCards with
// community on the board. holeCards must have exactly 2 cards.
func Compute(holeCards []deck.Card, community []deck.Card) *Insight {
	if len(holeCards) != 2 {
		return nil
	}

	if len(community) == 0 {
		return preflopInsight(holeCards)
	}
	return postflopInsight(holeCards, community)
}

func preflopInsight(holeCards []deck.Card) *Insight {
	percentile := preflopPercentileOf(holeCards)
	score := clampScore(1 + int(percentile*99))
	label := strengthLabel(score)
	return &Insight{
		CurrentHand:    describePreflop(holeCards),
		StrengthScore:  score,
		StrengthLabel:  label,
		Draws:          nil,
		Recommendation: recommendation(label, nil),
	}
}

func describePreflop(holeCards []deck.Card) string {
	r1, r2 := holeCards[0].Rank, holeCards[1].Rank
	if r1 == r2 {
		return fmt.Sprintf("Pocket %ss", rankWord(r1))
	}
	suited := "offsuit"
	if holeCards[0].Suit == holeCards[1].Suit {
		suited = "suited"
	}
	if r2 > r1 {
		r1, r2 = r2, r1
	}
	return fmt.Sprintf("%s-%s %s", rankWord(r1), rankWord(r2), suited)
}

func postflopInsight(holeCards []deck.Card, community []deck.Card) *Insight {
	all := append(append([]deck.Card{}, holeCards...), community...)
	hand := evaluator.Evaluate(all)

	score := clampScore(categoryBaseScore(hand.Category) + tiebreakBonus(hand))
	draws := detectDraws(all)
	label := strengthLabel(score)

	return &Insight{
		CurrentHand:    hand.Describe(),
		StrengthScore:  score,
		StrengthLabel:  label,
		Draws:          draws,
		Recommendation: recommendation(label, draws),
	}
}

// categoryBaseScore anchors each category to a score band so the result is
// monotonic in made-hand category, as SPEC_FULL.md §4.6 requires.
func categoryBaseScore(c evaluator.Category) int {
	switch c {
	case evaluator.StraightFlush:
		return 98
	case evaluator.FourOfAKind:
		return 93
	case evaluator.FullHouse:
		return 85
	case evaluator.Flush:
		return 75
	case evaluator.Straight:
		return 68
	case evaluator.ThreeOfAKind:
		return 58
	case evaluator.TwoPair:
		return 48
	case evaluator.OnePair:
		return 30
	default:
		return 10
	}
}

// tiebreakBonus nudges the score within a category by the primary rank,
// keeping the ordering monotonic within a category without crossing into
// the next category's band.
func tiebreakBonus(h evaluator.Hand) int {
	if len(h.Tiebreaks) == 0 {
		return 0
	}
	return h.Tiebreaks[0] / 3 // 2..14 -> 0..4
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 100 {
		return 100
	}
	return score
}

func strengthLabel(score int) string {
	switch {
	case score >= 90:
		return "Monster"
	case score >= 78:
		return "Very Strong"
	case score >= 64:
		return "Strong"
	case score >= 50:
		return "Playable"
	case score >= 36:
		return "Marginal"
	default:
		return "Weak"
	}
}

func recommendation(label string, draws []string) string {
	switch label {
	case "Monster", "Very Strong":
		return "Strong hand — consider raising"
	case "Strong":
		if len(draws) > 0 {
			return "Strong hand with additional outs — betting is reasonable"
		}
		return "Strong hand — betting is reasonable"
	case "Playable":
		if len(draws) > 0 {
			return "Drawing hand — proceed with caution"
		}
		return "Playable hand — proceed carefully"
	case "Marginal":
		if len(draws) > 0 {
			return "Drawing hand — proceed with caution"
		}
		return "Marginal hand — consider folding to pressure"
	default:
		return "Weak hand — consider folding"
	}
}

// detectDraws scans the five rank windows [r, r+4] for a four-to-a-run
// (open-ended or gutshot) and each suit for a four-to-a-suit flush draw.
func detectDraws(cards []deck.Card) []string {
	var draws []string

	var suitCount [4]int
	for _, c := range cards {
		suitCount[int(c.Suit)]++
	}
	for _, n := range suitCount {
		if n == 4 {
			draws = append(draws, "flush draw")
			break
		}
	}

	var present [15]bool
	for _, c := range cards {
		present[int(c.Rank)] = true
	}
	if present[14] {
		present[1] = true // ace plays low for wheel-draw windows
	}

	openEnded, gutshot := false, false
	for low := 1; low <= 10; low++ {
		count, missing := 0, -1
		for r := low; r <= low+4; r++ {
			if present[r] {
				count++
			} else {
				missing = r
			}
		}
		if count != 4 {
			continue
		}
		if missing == low || missing == low+4 {
			openEnded = true
		} else {
			gutshot = true
		}
	}
	switch {
	case openEnded:
		draws = append(draws, "open-ended straight draw")
	case gutshot:
		draws = append(draws, "gutshot straight draw")
	}

	sort.Strings(draws)
	return draws
}

func rankWord(r deck.Rank) string {
	switch r {
	case deck.Ten:
		return "Ten"
	case deck.Jack:
		return "Jack"
	case deck.Queen:
		return "Queen"
	case deck.King:
		return "King"
	case deck.Ace:
		return "Ace"
	default:
		return r.String()
	}
}
