// Package chat defines what the bot needs from a chat transport.
package chat

import "context"

// Option is a selectable menu entry. Data travels back in the selection event.
type Option struct {
	Label string
	Data  string
}

// Replier answers the event it was created for.
type Replier interface {
	SendText(ctx context.Context, text string) error
	SendMenu(ctx context.Context, text string, menu []Option) error
	SendPhoto(ctx context.Context, png []byte, caption string, menu []Option) error
	// Answer acknowledges a menu selection so the client stops showing a pending state.
	Answer(ctx context.Context) error
}

// Document is a file attached to an inbound message.
type Document struct {
	FileName string
	Save     func(ctx context.Context, dst string) error
}

// Handler receives events from the single authorized user, one at a time.
type Handler interface {
	HandleCommand(ctx context.Context, r Replier, name string, args []string)
	HandleDocument(ctx context.Context, r Replier, doc Document)
	HandleSelection(ctx context.Context, r Replier, data string)
}

// CommandInfo describes a command for client-side menus.
type CommandInfo struct {
	Name        string
	Description string
}
