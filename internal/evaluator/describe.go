package evaluator

import "fmt"

// rankName renders a tiebreak rank value (2..14) as a plural-capable word,
// e.g. rankName(12, false) == "Queen", rankName(12, true) == "Queens".
func rankName(rank int, plural bool) string {
	names := map[int]string{
		2: "Two", 3: "Three", 4: "Four", 5: "Five", 6: "Six", 7: "Seven",
		8: "Eight", 9: "Nine", 10: "Ten", 11: "Jack", 12: "Queen", 13: "King", 14: "Ace",
	}
	n, ok := names[rank]
	if !ok {
		return "?"
	}
	if plural {
		if n == "Six" {
			return "Sixes"
		}
		return n + "s"
	}
	return n
}

// Describe renders a human-readable description of the hand, derived
// mechanically from (Category, Tiebreaks) only — never recomputed from raw
// cards — matching the lastShowdown/advisor description contract in
// SPEC_FULL.md §4.2.
func (h Hand) Describe() string {
	t := h.Tiebreaks
	get := func(i int) int { return tiebreakAt(t, i) }

	switch h.Category {
	case StraightFlush:
		if get(0) == 14 {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush (%s high)", rankName(get(0), false))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind (%s)", rankName(get(0), true))
	case FullHouse:
		return fmt.Sprintf("Full House (%s over %s)", rankName(get(0), true), rankName(get(1), true))
	case Flush:
		return fmt.Sprintf("Flush (%s high)", rankName(get(0), false))
	case Straight:
		return fmt.Sprintf("Straight (%s high)", rankName(get(0), false))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind (%s)", rankName(get(0), true))
	case TwoPair:
		return fmt.Sprintf("Two Pair (%s and %s)", rankName(get(0), true), rankName(get(1), true))
	case OnePair:
		return fmt.Sprintf("Pair of %s", rankName(get(0), true))
	default:
		return fmt.Sprintf("High Card (%s)", rankName(get(0), false))
	}
}

func (h Hand) String() string {
	return h.Describe()
}
