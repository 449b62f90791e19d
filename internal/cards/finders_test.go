// internal/cards/finders_test.go
package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hand(pairs ...[2]string) []Card {
	cs := make([]Card, 0, len(pairs))
	for _, p := range pairs {
		var suit Suit
		switch p[1] {
		case "h":
			suit = Hearts
		case "d":
			suit = Diamonds
		case "s":
			suit = Spades
		case "c":
			suit = Clubs
		}
		cs = append(cs, NewCard(suit, p[0]))
	}
	return cs
}

func TestBlackjackValue(t *testing.T) {
	assert.Equal(t, 11, BlackjackValue(NewCard(Spades, "A")))
	assert.Equal(t, 10, BlackjackValue(NewCard(Spades, "K")))
	assert.Equal(t, 10, BlackjackValue(NewCard(Spades, "Q")))
	assert.Equal(t, 10, BlackjackValue(NewCard(Spades, "J")))
	assert.Equal(t, 10, BlackjackValue(NewCard(Spades, "10")))
	assert.Equal(t, 2, BlackjackValue(NewCard(Spades, "2")))
}

func TestBlackjackScore(t *testing.T) {
	cases := []struct {
		name string
		in   []Card
		want int
	}{
		{"no ace", hand([2]string{"10", "h"}, [2]string{"9", "s"}), 19},
		{"single soft ace", hand([2]string{"A", "h"}, [2]string{"K", "s"}), 21},
		{"single hard ace", hand([2]string{"A", "h"}, [2]string{"K", "s"}, [2]string{"5", "d"}), 16},
		{"two aces one soft", hand([2]string{"A", "h"}, [2]string{"A", "s"}, [2]string{"9", "d"}), 21},
		{"two aces hard", hand([2]string{"A", "h"}, [2]string{"A", "s"}, [2]string{"K", "d"}, [2]string{"9", "c"}), 21},
		{"bust", hand([2]string{"10", "h"}, [2]string{"9", "s"}, [2]string{"5", "d"}), 24},
		{"empty", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BlackjackScore(tc.in))
		})
	}
}

// For zero or one Ace the greedy resolution must match the plain sum
// with Ace as 11.
func TestBlackjackScoreSimpleSumProperty(t *testing.T) {
	for _, r1 := range Ranks {
		for _, r2 := range Ranks {
			if r1 == "A" && r2 == "A" {
				continue
			}
			cs := []Card{NewCard(Hearts, r1), NewCard(Spades, r2)}
			want := BlackjackValue(cs[0]) + BlackjackValue(cs[1])
			assert.Equalf(t, want, BlackjackScore(cs), "%s + %s", r1, r2)
		}
	}
}

// Two Aces plus any third card of 9 or less: exactly one Ace counts as 11.
func TestBlackjackScoreDoubleAce(t *testing.T) {
	for _, r := range []string{"2", "3", "4", "5", "6", "7", "8", "9"} {
		third := NewCard(Diamonds, r)
		cs := []Card{NewCard(Hearts, "A"), NewCard(Spades, "A"), third}
		want := 11 + 1 + BlackjackValue(third)
		assert.Equalf(t, want, BlackjackScore(cs), "A,A,%s", r)
	}
	// The canonical case from the table rules: A,A,9 is 21, not 12 or 31.
	assert.Equal(t, 21, BlackjackScore(hand([2]string{"A", "h"}, [2]string{"A", "s"}, [2]string{"9", "d"})))
}

func TestHighCard(t *testing.T) {
	cs := hand([2]string{"9", "h"}, [2]string{"A", "s"}, [2]string{"K", "d"})
	c, ok := HighCard(cs)
	require.True(t, ok)
	assert.Equal(t, "A", c.Rank)

	_, ok = HighCard(nil)
	assert.False(t, ok)
}

func TestPairsAndKinds(t *testing.T) {
	cs := hand(
		[2]string{"K", "h"}, [2]string{"K", "s"}, [2]string{"K", "d"}, [2]string{"K", "c"},
		[2]string{"3", "h"}, [2]string{"3", "s"},
	)
	pairs := Pairs(cs)
	require.Len(t, pairs, 2)
	trips := ThreeOfAKinds(cs)
	require.Len(t, trips, 1)
	assert.Equal(t, "K", trips[0][0].Rank)
	quads := FourOfAKinds(cs)
	require.Len(t, quads, 1)
	assert.Equal(t, "K", quads[0][0].Rank)
}

func TestFullHouse(t *testing.T) {
	cs := hand(
		[2]string{"Q", "h"}, [2]string{"Q", "s"}, [2]string{"Q", "d"},
		[2]string{"7", "h"}, [2]string{"7", "s"},
	)
	fh := FullHouse(cs)
	require.Len(t, fh, 5)
	assert.Equal(t, "Q", fh[0].Rank)
	assert.Equal(t, "7", fh[3].Rank)

	assert.Nil(t, FullHouse(hand([2]string{"Q", "h"}, [2]string{"Q", "s"}, [2]string{"Q", "d"})))
}

func TestFlushStraightAndRoyal(t *testing.T) {
	flush := hand(
		[2]string{"2", "h"}, [2]string{"5", "h"}, [2]string{"9", "h"},
		[2]string{"J", "h"}, [2]string{"K", "h"},
	)
	require.Len(t, Flush(flush), 5)
	assert.Nil(t, Straight(flush))

	straight := hand(
		[2]string{"5", "h"}, [2]string{"6", "s"}, [2]string{"7", "d"},
		[2]string{"8", "c"}, [2]string{"9", "h"},
	)
	require.Len(t, Straight(straight), 5)
	assert.Nil(t, Flush(straight))
	assert.Nil(t, StraightFlush(straight))

	royal := hand(
		[2]string{"10", "s"}, [2]string{"J", "s"}, [2]string{"Q", "s"},
		[2]string{"K", "s"}, [2]string{"A", "s"},
	)
	require.Len(t, StraightFlush(royal), 5)
	require.Len(t, RoyalFlush(royal), 5)

	steel := hand(
		[2]string{"5", "s"}, [2]string{"6", "s"}, [2]string{"7", "s"},
		[2]string{"8", "s"}, [2]string{"9", "s"},
	)
	require.Len(t, StraightFlush(steel), 5)
	assert.Nil(t, RoyalFlush(steel))
}
