package advisor

import (
	"testing"

	"github.com/lox/holdem-table/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards(t *testing.T, codes ...string) []deck.Card {
	t.Helper()
	out := make([]deck.Card, len(codes))
	for i, c := range codes {
		card, err := deck.ParseCard(c)
		require.NoError(t, err)
		out[i] = card
	}
	return out
}

func TestComputeReturnsNilForWrongHoleCardCount(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Compute(nil, nil))
	assert.Nil(t, Compute(cards(t, "AS"), nil))
}

func TestPreflopPocketAcesIsMonster(t *testing.T) {
	t.Parallel()
	insight := Compute(cards(t, "AS", "AH"), nil)
	require.NotNil(t, insight)
	assert.Equal(t, "Monster", insight.StrengthLabel)
	assert.Equal(t, 100, insight.StrengthScore)
}

func TestPreflopWorstHandIsWeak(t *testing.T) {
	t.Parallel()
	insight := Compute(cards(t, "7S", "2H"), nil)
	require.NotNil(t, insight)
	assert.Equal(t, "Weak", insight.StrengthLabel)
}

func TestScoreIsBoundedAndMonotonic(t *testing.T) {
	t.Parallel()

	weak := Compute(cards(t, "2S", "7H"), cards(t, "3D", "9C", "KH"))
	strong := Compute(cards(t, "AS", "AH"), cards(t, "AD", "AC", "KH"))

	require.NotNil(t, weak)
	require.NotNil(t, strong)
	assert.GreaterOrEqual(t, weak.StrengthScore, 1)
	assert.LessOrEqual(t, strong.StrengthScore, 100)
	assert.Greater(t, strong.StrengthScore, weak.StrengthScore)
}

func TestFlushDrawDetected(t *testing.T) {
	t.Parallel()

	insight := Compute(cards(t, "AS", "KS"), cards(t, "2S", "9S", "4D"))
	require.NotNil(t, insight)
	assert.Contains(t, insight.Draws, "flush draw")
}

func TestOpenEndedStraightDrawDetected(t *testing.T) {
	t.Parallel()

	insight := Compute(cards(t, "7H", "8D"), cards(t, "9S", "6C", "2D"))
	require.NotNil(t, insight)
	assert.Contains(t, insight.Draws, "open-ended straight draw")
}

func TestAdvisorNeverPanicsOnSevenCards(t *testing.T) {
	t.Parallel()

	insight := Compute(cards(t, "AS", "KD"), cards(t, "QS", "JH", "TC", "2D", "3C"))
	require.NotNil(t, insight)
	assert.NotEmpty(t, insight.CurrentHand)
}
