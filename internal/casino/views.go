// internal/casino/views.go
package casino

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/helios-bot/casino/internal/platform"
)

// Embed accent colors per phase.
const (
	colorLobby     = 0x2ecc71
	colorBetting   = 0xf1c40f
	colorPlaying   = 0x3498db
	colorEnded     = 0x9b59b6
	colorPaused    = 0x95a5a6
	colorCancelled = 0xe74c3c
)

// betSelectMax caps the number of options in the wager dropdown.
const betSelectMax = 25

// Mention formats a platform user mention.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// renderLocked builds the table's public message for its effective
// state. The game may take over rendering entirely (Playing/Ended);
// otherwise the base phase views apply.
func (t *Table) renderLocked() platform.View {
	if t.paused {
		return platform.View{Embeds: []platform.Embed{{
			Title:       t.game.Name() + " Table",
			Description: "This table is moving. Hold tight.",
			Color:       colorPaused,
		}}}
	}

	if embeds, rows, handled := t.game.Render(t); handled {
		return platform.View{Embeds: embeds, Components: rows}
	}

	switch t.state {
	case StateBetting:
		return t.bettingViewLocked()
	case StateCancelled:
		return platform.View{Embeds: []platform.Embed{{
			Title:       t.game.Name() + " Table",
			Description: "The round was cancelled and all bets refunded.",
			Color:       colorCancelled,
		}}}
	default:
		return t.lobbyViewLocked()
	}
}

func (t *Table) lobbyViewLocked() platform.View {
	e := platform.Embed{
		Title:       t.game.Name() + " Table",
		Description: t.game.Description(),
		Color:       colorLobby,
		Footer:      fmt.Sprintf("Bets %d to %d chips", t.settings.MinBet, t.settings.MaxBet),
		Fields: []platform.Field{
			{
				Name:   fmt.Sprintf("Players (%d/%d)", len(t.players), t.settings.MaxPlayers),
				Value:  t.seatListLocked(),
				Inline: false,
			},
		},
	}
	row := platform.ActionRow{Buttons: []platform.Button{
		{CustomID: CustomIDJoin, Label: "Join", Style: platform.StyleSuccess},
		{CustomID: CustomIDLeave, Label: "Leave", Style: platform.StyleDanger},
		{CustomID: CustomIDStart, Label: "Start Now", Style: platform.StylePrimary,
			Disabled: len(t.players) < t.settings.MinPlayers},
	}}
	return platform.View{Embeds: []platform.Embed{e}, Components: []platform.ActionRow{row}}
}

func (t *Table) bettingViewLocked() platform.View {
	e := platform.Embed{
		Title:       t.game.Name() + " Table",
		Description: "Place your bets!",
		Color:       colorBetting,
		Footer:      fmt.Sprintf("Bets %d to %d chips", t.settings.MinBet, t.settings.MaxBet),
		Fields:      []platform.Field{{Name: "Bets", Value: t.betListLocked()}},
	}
	row := platform.ActionRow{Select: &platform.Select{
		CustomID:    CustomIDBet,
		Placeholder: "Choose your wager",
		Options:     betOptions(t.settings.MinBet, t.settings.MaxBet),
	}}
	return platform.View{Embeds: []platform.Embed{e}, Components: []platform.ActionRow{row}}
}

func (t *Table) seatListLocked() string {
	if len(t.players) == 0 {
		return "No one yet."
	}
	lines := make([]string, len(t.players))
	for i, p := range t.players {
		lines[i] = fmt.Sprintf("%s (%d chips)", Mention(p.UserID), p.Balance())
	}
	return strings.Join(lines, "\n")
}

func (t *Table) betListLocked() string {
	lines := make([]string, len(t.players))
	for i, p := range t.players {
		wager := "None"
		if amount, ok := t.bets[p.UserID]; ok {
			wager = strconv.FormatInt(amount, 10) + " chips"
		}
		lines[i] = fmt.Sprintf("%s: %s", Mention(p.UserID), wager)
	}
	if len(lines) == 0 {
		return "No one is seated."
	}
	return strings.Join(lines, "\n")
}

// betOptions spreads up to betSelectMax wager choices evenly across the
// table's limits, always including both endpoints.
func betOptions(minBet, maxBet int64) []platform.SelectOption {
	span := maxBet - minBet
	steps := int64(betSelectMax - 1)
	var values []int64
	if span <= 0 {
		values = []int64{minBet}
	} else if span <= steps {
		for v := minBet; v <= maxBet; v++ {
			values = append(values, v)
		}
	} else {
		for i := int64(0); i < steps; i++ {
			values = append(values, minBet+(span*i)/steps)
		}
		values = append(values, maxBet)
	}
	opts := make([]platform.SelectOption, len(values))
	for i, v := range values {
		s := strconv.FormatInt(v, 10)
		opts[i] = platform.SelectOption{Label: s + " chips", Value: s}
	}
	return opts
}
