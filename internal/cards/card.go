// internal/cards/card.go
package cards

import (
	"fmt"
	"strconv"
)

// Suit is one of the four standard playing card suits.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Spades   Suit = "spades"
	Clubs    Suit = "clubs"
)

// Suits lists the suits in canonical deck-building order.
var Suits = []Suit{Hearts, Diamonds, Spades, Clubs}

// Ranks lists the ranks in ascending order, Ace high.
var Ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// Card is an immutable playing card. AceHigh only affects ordinal
// comparison (Value/Compare), never blackjack scoring.
type Card struct {
	Suit    Suit
	Rank    string
	AceHigh bool
}

// NewCard builds an ace-high card.
func NewCard(suit Suit, rank string) Card {
	return Card{Suit: suit, Rank: rank, AceHigh: true}
}

// Value returns the card's ordinal value for comparisons.
func (c Card) Value() int {
	switch c.Rank {
	case "A":
		if c.AceHigh {
			return 14
		}
		return 1
	case "J":
		return 11
	case "Q":
		return 12
	case "K":
		return 13
	default:
		v, _ := strconv.Atoi(c.Rank)
		return v
	}
}

// Compare returns <0, 0 or >0 as c ranks below, equal to or above other.
func (c Card) Compare(other Card) int {
	return c.Value() - other.Value()
}

// SuitIcon returns the unicode symbol for the card's suit.
func (c Card) SuitIcon() string {
	switch c.Suit {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Spades:
		return "♠"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// Short renders the compact form shown in table views, e.g. "A♠".
func (c Card) Short() string {
	return c.Rank + c.SuitIcon()
}

// codeRank maps ranks to single characters so codes stay two bytes.
// "10" serializes as "T".
func codeRank(rank string) string {
	if rank == "10" {
		return "T"
	}
	return rank
}

// Code serializes the card to its two-character persistence code:
// rank character followed by the suit initial ("Ah", "Ts", "9c").
func (c Card) Code() string {
	return codeRank(c.Rank) + string(c.Suit[0])
}

// ParseCode is the inverse of Code.
func ParseCode(code string) (Card, error) {
	if len(code) != 2 {
		return Card{}, fmt.Errorf("card code %q: want 2 characters", code)
	}
	rank := string(code[0])
	if rank == "T" {
		rank = "10"
	}
	valid := false
	for _, r := range Ranks {
		if r == rank {
			valid = true
			break
		}
	}
	if !valid {
		return Card{}, fmt.Errorf("card code %q: unknown rank", code)
	}
	for _, s := range Suits {
		if s[0] == code[1] {
			return NewCard(s, rank), nil
		}
	}
	return Card{}, fmt.Errorf("card code %q: unknown suit", code)
}
