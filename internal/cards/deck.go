// internal/cards/deck.go
package cards

import (
	"errors"
	"math/rand"
	"time"
)

// ErrDeckEmpty is returned when a draw is attempted with no cards left in
// the draw pile. Callers are expected to guarantee capacity; hitting this
// is a defect, not a recoverable condition.
var ErrDeckEmpty = errors.New("cards: draw from empty deck")

// Deck holds the authoritative draw and discard sequences plus an ordered
// registry of hands it refills on Deal. Registration order is deal order.
//
// Invariant: after Reset, draw pile ∪ discard pile ∪ attached hands is
// exactly the 52-card standard deck.
type Deck struct {
	draw    []Card
	discard []Card
	hands   []*Hand
	aceHigh bool
	rng     *rand.Rand
}

// NewDeck builds a reset, unshuffled deck seeded from the clock.
func NewDeck() *Deck {
	return NewDeckSeeded(time.Now().UnixNano())
}

// NewDeckSeeded builds a deck with a deterministic shuffle sequence.
func NewDeckSeeded(seed int64) *Deck {
	d := &Deck{
		aceHigh: true,
		rng:     rand.New(rand.NewSource(seed)),
	}
	d.Reset()
	return d
}

// Reset rebuilds the canonical 52-card sequence, suit-major and
// rank-ascending, drops the discard pile and clears every attached hand.
func (d *Deck) Reset() {
	d.draw = d.draw[:0]
	d.discard = d.discard[:0]
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.draw = append(d.draw, Card{Suit: suit, Rank: rank, AceHigh: d.aceHigh})
		}
	}
	for _, h := range d.hands {
		h.Clear()
	}
}

// Shuffle merges the discard pile back into the draw pile, then applies a
// Fisher-Yates permutation from the end.
func (d *Deck) Shuffle() {
	d.draw = append(d.draw, d.discard...)
	d.discard = d.discard[:0]
	for i := len(d.draw) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.draw[i], d.draw[j] = d.draw[j], d.draw[i]
	}
}

// Draw pops one card from the top (end) of the draw pile.
func (d *Deck) Draw() (Card, error) {
	if len(d.draw) == 0 {
		return Card{}, ErrDeckEmpty
	}
	c := d.draw[len(d.draw)-1]
	d.draw = d.draw[:len(d.draw)-1]
	return c, nil
}

// DrawN pops n cards from the top of the draw pile.
func (d *Deck) DrawN(n int) ([]Card, error) {
	if len(d.draw) < n {
		return nil, ErrDeckEmpty
	}
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, _ := d.Draw()
		out = append(out, c)
	}
	return out, nil
}

// Deal gives n cards to every attached hand, one card per hand per pass
// (round-robin in registration order), dealer hand included if attached.
func (d *Deck) Deal(n int) error {
	for i := 0; i < n; i++ {
		for _, h := range d.hands {
			c, err := d.Draw()
			if err != nil {
				return err
			}
			h.Add(c)
		}
	}
	return nil
}

// Stack places cards on top of the draw pile so they are drawn next, in
// the order given (the first argument is the very next draw).
func (d *Deck) Stack(cs ...Card) {
	for i := len(cs) - 1; i >= 0; i-- {
		d.draw = append(d.draw, cs[i])
	}
}

// Discard moves a card onto the discard pile.
func (d *Deck) Discard(c Card) {
	d.discard = append(d.discard, c)
}

// AttachHand registers a hand to be refilled on Deal. Order of
// attachment is the round-robin deal order.
func (d *Deck) AttachHand(h *Hand) {
	d.hands = append(d.hands, h)
}

// DetachHands drops the hand registry without touching hand contents.
func (d *Deck) DetachHands() {
	d.hands = d.hands[:0]
}

// Remaining reports the draw pile size.
func (d *Deck) Remaining() int {
	return len(d.draw)
}

// DiscardSize reports the discard pile size.
func (d *Deck) DiscardSize() int {
	return len(d.discard)
}
