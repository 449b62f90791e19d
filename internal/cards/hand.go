// internal/cards/hand.go
package cards

import "strings"

// Hand is the ordered card sequence held by one seat (player or dealer).
// A Hand owns its cards; the Deck only appends to it on deal.
type Hand struct {
	cards []Card
}

// NewHand returns an empty hand.
func NewHand() *Hand {
	return &Hand{}
}

// Add appends a single card.
func (h *Hand) Add(c Card) {
	h.cards = append(h.cards, c)
}

// AddMany appends cards in order.
func (h *Hand) AddMany(cs []Card) {
	h.cards = append(h.cards, cs...)
}

// Cards returns the hand's cards in deal order. Callers must not mutate
// the returned slice.
func (h *Hand) Cards() []Card {
	return h.cards
}

// Len returns the number of cards held.
func (h *Hand) Len() int {
	return len(h.cards)
}

// Clear empties the hand.
func (h *Hand) Clear() {
	h.cards = h.cards[:0]
}

func (h *Hand) String() string {
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// Short renders the compact comma-separated form, e.g. "A♠, K♦".
func (h *Hand) Short() string {
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.Short()
	}
	return strings.Join(parts, ", ")
}

// Codes serializes every card to its two-character code.
func (h *Hand) Codes() []string {
	codes := make([]string, len(h.cards))
	for i, c := range h.cards {
		codes[i] = c.Code()
	}
	return codes
}

// HandFromCodes rebuilds a hand from persisted card codes.
func HandFromCodes(codes []string) (*Hand, error) {
	h := NewHand()
	for _, code := range codes {
		c, err := ParseCode(code)
		if err != nil {
			return nil, err
		}
		h.Add(c)
	}
	return h, nil
}
