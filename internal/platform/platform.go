// internal/platform/platform.go
//
// Boundary types for the chat platform. The casino core renders Views
// and consumes Interactions; it never sees raw platform payloads.
package platform

import "context"

// Field is one titled section inside an Embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is a structured panel within a message.
type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Footer      string  `json:"footer,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

// Button styles understood by the platform adapter.
const (
	StylePrimary   = "primary"
	StyleSuccess   = "success"
	StyleDanger    = "danger"
	StyleSecondary = "secondary"
)

// Button is a clickable action control.
type Button struct {
	CustomID string `json:"customId"`
	Label    string `json:"label"`
	Style    string `json:"style"`
	Disabled bool   `json:"disabled,omitempty"`
}

// SelectOption is one choice in a Select menu.
type SelectOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Select is a single-choice dropdown control.
type Select struct {
	CustomID    string         `json:"customId"`
	Placeholder string         `json:"placeholder,omitempty"`
	Options     []SelectOption `json:"options"`
}

// ActionRow holds either buttons or one select menu.
type ActionRow struct {
	Buttons []Button `json:"buttons,omitempty"`
	Select  *Select  `json:"select,omitempty"`
}

// View is everything the core knows how to say outward: text, structured
// panels and action controls. Ephemeral views are shown only to the
// triggering actor.
type View struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []ActionRow `json:"components,omitempty"`
	Ephemeral  bool        `json:"ephemeral,omitempty"`
}

// MessageRef identifies a message the core owns.
type MessageRef struct {
	ChannelID string `json:"channelId"`
	MessageID string `json:"messageId"`
}

// Interaction kinds.
const (
	KindButton = "button"
	KindSelect = "select"
)

// Interaction is the inbound envelope for a player clicking a control.
type Interaction struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	CustomID  string   `json:"customId"`
	ActorID   string   `json:"actorId"`
	ChannelID string   `json:"channelId"`
	MessageID string   `json:"messageId"`
	Values    []string `json:"selectedValues,omitempty"`
}

// Client is the outward chat-platform surface the core depends on.
type Client interface {
	SendMessage(ctx context.Context, channelID string, v View) (MessageRef, error)
	EditMessage(ctx context.Context, ref MessageRef, v View) error
	UpdateInteractionResponse(ctx context.Context, interactionID string, v View) error
}
