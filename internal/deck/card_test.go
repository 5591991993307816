package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardCodeRoundTrip(t *testing.T) {
	t.Parallel()

	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			card := NewCard(suit, rank)
			code := card.Code()
			require.Len(t, code, 2)

			parsed, err := ParseCard(code)
			require.NoError(t, err)
			assert.Equal(t, card, parsed)
		}
	}
}

func TestParseCardRejectsGarbage(t *testing.T) {
	t.Parallel()

	cases := []string{"", "A", "ASS", "1S", "AX", "ZZ"}
	for _, c := range cases {
		_, err := ParseCard(c)
		assert.Error(t, err, "expected error for %q", c)
	}
}

func TestCardJSONRoundTrip(t *testing.T) {
	t.Parallel()

	card := NewCard(Hearts, Queen)
	data, err := json.Marshal(card)
	require.NoError(t, err)
	assert.Equal(t, `"QH"`, string(data))

	var out Card
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, card, out)
}
