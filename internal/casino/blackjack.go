// internal/casino/blackjack.go
package casino

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/helios-bot/casino/internal/cards"
	"github.com/helios-bot/casino/internal/platform"
)

// KindBlackjack is the registry id for blackjack tables.
const KindBlackjack = "blackjack"

// dealerDelay is the pause between the last player resolving and the
// dealer playing out, so the final hit/stay stays on screen briefly.
var dealerDelay = 2 * time.Second

// Seat statuses and verdicts.
const (
	seatPlaying = "Playing"
	seatStayed  = "Stayed"
	seatBust    = "Bust"

	verdictPending = "pending"
	verdictWin     = "win"
	verdictLoss    = "loss"
	verdictPush    = "push"
)

type seatState struct {
	status   string
	verdict  string
	winnings int64
}

// blackjack plays a standard dealer-stands-on-all-17s round. Hands stay
// attached to the table's shared deck for the duration of the round so
// the 52 cards are conserved across draw pile, discard and hands.
type blackjack struct {
	dealer    *cards.Hand
	hands     map[string]*cards.Hand
	seats     map[string]*seatState
	turnOrder []string
	// currentTurn indexes turnOrder; -1 means all seats resolved.
	currentTurn int
	showDealer  bool
	settled     bool
}

// NewBlackjack is the GameFactory for blackjack.
func NewBlackjack() Game {
	return &blackjack{
		dealer:      cards.NewHand(),
		hands:       make(map[string]*cards.Hand),
		seats:       make(map[string]*seatState),
		currentTurn: -1,
	}
}

func (b *blackjack) Kind() string { return KindBlackjack }
func (b *blackjack) Name() string { return "Blackjack" }
func (b *blackjack) Description() string {
	return "Beat the dealer without going over 21. Dealer stands on 17."
}

// StartPlaying deals two cards to every seat in join order, then two to
// the dealer, and opens the first turn.
func (b *blackjack) StartPlaying(ctx context.Context, t *Table) error {
	b.Cleanup(t)

	t.deck.Reset()
	b.turnOrder = make([]string, 0, len(t.players))
	for _, p := range t.players {
		h := cards.NewHand()
		b.hands[p.UserID] = h
		b.seats[p.UserID] = &seatState{status: seatPlaying, verdict: verdictPending}
		b.turnOrder = append(b.turnOrder, p.UserID)
		t.deck.AttachHand(h)
	}
	t.deck.AttachHand(b.dealer)
	t.deck.Shuffle()
	if err := t.deck.Deal(2); err != nil {
		return fmt.Errorf("blackjack deal: %w", err)
	}
	b.currentTurn = 0
	if t.settings.TurnTime() > 0 {
		t.scheduleRunLocked(t.settings.TurnTime(), true)
	}
	return nil
}

func (b *blackjack) ResolveAction(ctx context.Context, t *Table, actorID, action string) error {
	if b.currentTurn < 0 || b.currentTurn >= len(b.turnOrder) || b.turnOrder[b.currentTurn] != actorID {
		return ErrNotYourTurn
	}
	switch action {
	case "hit":
		return b.hit(t, actorID)
	case "stay":
		b.stay(t, actorID)
		return nil
	default:
		return ErrWrongPhase
	}
}

func (b *blackjack) hit(t *Table, userID string) error {
	card, err := t.deck.Draw()
	if err != nil {
		// A six-seat table cannot exhaust one deck mid-round; treat an
		// empty pile as the seat standing pat.
		logrus.Warnf("blackjack: draw failed for %s: %v", userID, err)
		b.stay(t, userID)
		return nil
	}
	b.hands[userID].Add(card)
	if cards.BlackjackScore(b.hands[userID].Cards()) > 21 {
		seat := b.seats[userID]
		seat.status = seatBust
		seat.verdict = verdictLoss
		b.nextTurn(t)
		return nil
	}
	if t.settings.TurnTime() > 0 {
		t.scheduleRunLocked(t.settings.TurnTime(), true)
	}
	return nil
}

func (b *blackjack) stay(t *Table, userID string) {
	b.seats[userID].status = seatStayed
	b.nextTurn(t)
}

// nextTurn advances the cursor past the seat that just resolved. After
// the last seat a short dealer delay is scheduled instead of a full turn
// timer.
func (b *blackjack) nextTurn(t *Table) {
	b.currentTurn++
	if b.currentTurn >= len(b.turnOrder) {
		b.currentTurn = -1
		t.scheduleRunLocked(dealerDelay, true)
		return
	}
	if t.settings.TurnTime() > 0 {
		t.scheduleRunLocked(t.settings.TurnTime(), true)
	}
}

func (b *blackjack) RoundOver(t *Table) bool {
	return b.currentTurn == -1
}

// ForceProgress stands the seat whose turn timer expired.
func (b *blackjack) ForceProgress(ctx context.Context, t *Table) {
	if b.currentTurn < 0 || b.currentTurn >= len(b.turnOrder) {
		return
	}
	b.stay(t, b.turnOrder[b.currentTurn])
}

// SettleRound plays out the dealer and pays every seat. Busted seats
// lose outright even if the dealer also busts. Idempotent.
func (b *blackjack) SettleRound(ctx context.Context, t *Table) {
	if b.settled {
		return
	}
	b.settled = true
	b.showDealer = true

	for cards.BlackjackScore(b.dealer.Cards()) < 17 {
		card, err := t.deck.Draw()
		if err != nil {
			logrus.Warnf("blackjack: dealer draw failed: %v", err)
			break
		}
		b.dealer.Add(card)
	}
	dealerScore := cards.BlackjackScore(b.dealer.Cards())
	dealerBust := dealerScore > 21

	for _, userID := range b.turnOrder {
		seat := b.seats[userID]
		wager := t.bets[userID]
		switch {
		case seat.status == seatBust:
			seat.verdict = verdictLoss
		case dealerBust:
			seat.verdict = verdictWin
		default:
			score := cards.BlackjackScore(b.hands[userID].Cards())
			switch {
			case score > dealerScore:
				seat.verdict = verdictWin
			case score == dealerScore:
				seat.verdict = verdictPush
			default:
				seat.verdict = verdictLoss
			}
		}
		switch seat.verdict {
		case verdictWin:
			seat.winnings = wager * 2
		case verdictPush:
			seat.winnings = wager
		}
		if seat.winnings > 0 {
			p := t.playerLocked(userID)
			if p == nil {
				continue
			}
			if err := p.Pay(ctx, seat.winnings, true); err != nil {
				logrus.Warnf("blackjack: payout for %s failed to persist: %v", userID, err)
			}
		}
	}
}

func (b *blackjack) Render(t *Table) ([]platform.Embed, []platform.ActionRow, bool) {
	switch t.state {
	case StatePlaying:
		return b.playingView(t)
	case StateEnded:
		return b.endedView(t)
	default:
		return nil, nil, false
	}
}

func (b *blackjack) playingView(t *Table) ([]platform.Embed, []platform.ActionRow, bool) {
	e := platform.Embed{
		Title: "Blackjack",
		Color: colorPlaying,
		Fields: []platform.Field{
			{Name: "Dealer", Value: b.dealerLine()},
		},
	}
	for _, userID := range b.turnOrder {
		e.Fields = append(e.Fields, platform.Field{
			Name:   b.seats[userID].status,
			Value:  b.seatLine(userID),
			Inline: true,
		})
	}
	if b.currentTurn >= 0 && b.currentTurn < len(b.turnOrder) {
		e.Fields = append(e.Fields, platform.Field{
			Name:  "Current Turn",
			Value: Mention(b.turnOrder[b.currentTurn]),
		})
	}
	row := platform.ActionRow{Buttons: []platform.Button{
		{CustomID: CustomIDHit, Label: "Hit", Style: platform.StylePrimary},
		{CustomID: CustomIDStay, Label: "Stay", Style: platform.StyleSecondary},
	}}
	return []platform.Embed{e}, []platform.ActionRow{row}, true
}

func (b *blackjack) endedView(t *Table) ([]platform.Embed, []platform.ActionRow, bool) {
	e := platform.Embed{
		Title: "Blackjack — Results",
		Color: colorEnded,
		Fields: []platform.Field{
			{Name: "Dealer", Value: b.dealerLine()},
		},
	}
	var results []string
	for _, userID := range b.turnOrder {
		seat := b.seats[userID]
		var line string
		switch seat.verdict {
		case verdictWin:
			line = fmt.Sprintf("%s wins %d chips!", Mention(userID), seat.winnings)
		case verdictPush:
			line = fmt.Sprintf("%s pushes and keeps %d chips.", Mention(userID), seat.winnings)
		default:
			line = fmt.Sprintf("%s loses.", Mention(userID))
		}
		results = append(results, line)
		e.Fields = append(e.Fields, platform.Field{
			Name:   seat.status,
			Value:  b.seatLine(userID),
			Inline: true,
		})
	}
	e.Fields = append(e.Fields, platform.Field{Name: "Results", Value: strings.Join(results, "\n")})
	return []platform.Embed{e}, nil, true
}

func (b *blackjack) dealerLine() string {
	cs := b.dealer.Cards()
	if len(cs) == 0 {
		return "No cards."
	}
	if !b.showDealer {
		return cs[0].Short() + " 🂠"
	}
	return fmt.Sprintf("%s (%d)", b.dealer.Short(), cards.BlackjackScore(cs))
}

func (b *blackjack) seatLine(userID string) string {
	h := b.hands[userID]
	return fmt.Sprintf("%s\n%s (%d)", Mention(userID), h.Short(), cards.BlackjackScore(h.Cards()))
}

// Cleanup detaches round hands from the deck and resets seat state.
func (b *blackjack) Cleanup(t *Table) {
	t.deck.DetachHands()
	b.dealer = cards.NewHand()
	b.hands = make(map[string]*cards.Hand)
	b.seats = make(map[string]*seatState)
	b.turnOrder = nil
	b.currentTurn = -1
	b.showDealer = false
	b.settled = false
}
