// internal/cards/finders.go
//
// Pure hand-evaluation helpers. The poker detectors return the matching
// subset of the input or an empty slice; they are utility functions and
// not part of the blackjack flow.
package cards

// ByRank returns the cards with the given rank, preserving order.
func ByRank(cs []Card, rank string) []Card {
	var out []Card
	for _, c := range cs {
		if c.Rank == rank {
			out = append(out, c)
		}
	}
	return out
}

// BySuit returns the cards with the given suit, preserving order.
func BySuit(cs []Card, suit Suit) []Card {
	var out []Card
	for _, c := range cs {
		if c.Suit == suit {
			out = append(out, c)
		}
	}
	return out
}

// RankCount counts cards of the given rank.
func RankCount(cs []Card, rank string) int {
	return len(ByRank(cs, rank))
}

// SuitCount counts cards of the given suit.
func SuitCount(cs []Card, suit Suit) int {
	return len(BySuit(cs, suit))
}

// HighCard returns the highest card by ordinal value. The second return
// is false for an empty input.
func HighCard(cs []Card) (Card, bool) {
	if len(cs) == 0 {
		return Card{}, false
	}
	best := cs[0]
	for _, c := range cs[1:] {
		if c.Value() > best.Value() {
			best = c
		}
	}
	return best, true
}

// Pairs returns one pair per rank holding at least two cards.
func Pairs(cs []Card) [][]Card {
	var out [][]Card
	for _, rank := range Ranks {
		c := ByRank(cs, rank)
		if len(c) >= 2 {
			out = append(out, []Card{c[0], c[1]})
		}
	}
	return out
}

// ThreeOfAKinds returns one triple per rank holding at least three cards.
func ThreeOfAKinds(cs []Card) [][]Card {
	var out [][]Card
	for _, rank := range Ranks {
		c := ByRank(cs, rank)
		if len(c) >= 3 {
			out = append(out, []Card{c[0], c[1], c[2]})
		}
	}
	return out
}

// FourOfAKinds returns one quad per rank holding at least four cards.
func FourOfAKinds(cs []Card) [][]Card {
	var out [][]Card
	for _, rank := range Ranks {
		c := ByRank(cs, rank)
		if len(c) >= 4 {
			out = append(out, []Card{c[0], c[1], c[2], c[3]})
		}
	}
	return out
}

// FullHouse returns a three-of-a-kind plus a pair of a different rank,
// or nil when no full house exists.
func FullHouse(cs []Card) []Card {
	pairs := Pairs(cs)
	trips := ThreeOfAKinds(cs)
	if len(pairs) >= 2 && len(trips) >= 1 {
		for _, trip := range trips {
			for _, pair := range pairs {
				if pair[0].Rank != trip[0].Rank {
					return append(append([]Card{}, trip...), pair...)
				}
			}
		}
	}
	return nil
}

// Flush returns the first five cards of any suit held five or more times.
func Flush(cs []Card) []Card {
	for _, suit := range Suits {
		c := BySuit(cs, suit)
		if len(c) >= 5 {
			return c[:5]
		}
	}
	return nil
}

// Straight returns five cards of consecutive rank (Ace high only), or nil.
func Straight(cs []Card) []Card {
	for i := 0; i+4 < len(Ranks); i++ {
		run := make([]Card, 0, 5)
		for j := 0; j < 5; j++ {
			c := ByRank(cs, Ranks[i+j])
			if len(c) == 0 {
				run = nil
				break
			}
			run = append(run, c[0])
		}
		if run != nil {
			return run
		}
	}
	return nil
}

// StraightFlush returns a straight within a flush, or nil.
func StraightFlush(cs []Card) []Card {
	if f := Flush(cs); len(f) >= 5 {
		if s := Straight(f); len(s) >= 5 {
			return s
		}
	}
	return nil
}

// RoyalFlush returns an ace-high straight flush, or nil.
func RoyalFlush(cs []Card) []Card {
	if s := StraightFlush(cs); len(s) >= 5 {
		if len(ByRank(s, "A")) >= 1 {
			return s
		}
	}
	return nil
}

// BlackjackValue scores a single card: Ace 11, faces 10, else the
// numeric rank.
func BlackjackValue(c Card) int {
	switch c.Rank {
	case "A":
		return 11
	case "K", "Q", "J":
		return 10
	default:
		return c.Value()
	}
}

// BlackjackScore sums the non-Ace values first, then resolves each Ace
// greedily in hand order: 11 if the running total stays at or under 21,
// else 1. At most one Ace can count as 11 without busting, so the greedy
// pass is exact for the standard rule.
func BlackjackScore(cs []Card) int {
	score := 0
	aces := 0
	for _, c := range cs {
		v := BlackjackValue(c)
		if v == 11 {
			aces++
		} else {
			score += v
		}
	}
	for i := 0; i < aces; i++ {
		if score+11 <= 21 {
			score += 11
		} else {
			score++
		}
	}
	return score
}
