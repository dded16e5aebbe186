// Package token encodes follow-up actions into the opaque strings attached to menu buttons
// and decodes them back when a button is pressed.
package token

import (
	"errors"
	"fmt"
	"strings"

	"magnet-bot/internal/domain"
)

// Separator joins the action name and its arguments.
const Separator = " "

// MaxLen is the largest token a Telegram callback button accepts, in bytes.
const MaxLen = 64

var (
	// ErrEmpty is returned when decoding an empty token.
	ErrEmpty = errors.New("empty token")
	// ErrUnknownAction is returned for an action name outside the known set.
	ErrUnknownAction = errors.New("unknown action")
	// ErrArity is returned when an action receives the wrong number of arguments.
	ErrArity = errors.New("wrong number of arguments")
	// ErrSeparatorInArg is returned when an argument would be split apart on decode.
	ErrSeparatorInArg = errors.New("argument contains separator")
	// ErrEmptyArg is returned for an empty argument, which could not survive a round trip.
	ErrEmptyArg = errors.New("empty argument")
	// ErrTooLong is returned when the encoded token exceeds MaxLen.
	ErrTooLong = errors.New("token too long")
)

// Action is a follow-up step offered by a menu button.
type Action int

const (
	DeleteOptions Action = iota + 1
	PauseOptions
	ResumeOptions
	DeleteTorrent
	PauseTorrent
	ResumeTorrent
)

// Actions lists every defined action.
var Actions = []Action{DeleteOptions, PauseOptions, ResumeOptions, DeleteTorrent, PauseTorrent, ResumeTorrent}

func (a Action) String() string {
	switch a {
	case DeleteOptions:
		return "delete_options"
	case PauseOptions:
		return "pause_options"
	case ResumeOptions:
		return "resume_options"
	case DeleteTorrent:
		return "delete_torrent"
	case PauseTorrent:
		return "pause_torrent"
	case ResumeTorrent:
		return "resume_torrent"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction maps a wire name back to its action.
func ParseAction(name string) (Action, error) {
	for _, a := range Actions {
		if a.String() == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// Arity is the number of arguments the action carries.
func (a Action) Arity() int {
	switch a {
	case DeleteOptions, PauseOptions, ResumeOptions:
		return 0
	case DeleteTorrent, PauseTorrent, ResumeTorrent:
		return 1
	}
	return -1
}

// IsOptions reports whether the action opens a per-torrent menu.
func (a Action) IsOptions() bool {
	return a.Arity() == 0
}

// Paired returns the per-torrent action an options action offers, or the action itself.
func (a Action) Paired() Action {
	switch a {
	case DeleteOptions:
		return DeleteTorrent
	case PauseOptions:
		return PauseTorrent
	case ResumeOptions:
		return ResumeTorrent
	}
	return a
}

// Filter returns the listing an options action draws its menu from.
// Completed torrents can be deleted, active ones paused and downloading ones resumed.
func (a Action) Filter() domain.StatusFilter {
	switch a {
	case DeleteOptions, DeleteTorrent:
		return domain.FilterCompleted
	case PauseOptions, PauseTorrent:
		return domain.FilterResumed
	case ResumeOptions, ResumeTorrent:
		return domain.FilterDownloading
	}
	return ""
}

// Token is a decoded action with its arguments.
type Token struct {
	Action Action
	Args   []string
}

// Encode serializes an action and its arguments.
func Encode(action Action, args ...string) (string, error) {
	arity := action.Arity()
	if arity < 0 {
		return "", fmt.Errorf("%w: %d", ErrUnknownAction, int(action))
	}
	if len(args) != arity {
		return "", fmt.Errorf("%w: %s takes %d, got %d", ErrArity, action, arity, len(args))
	}
	for _, arg := range args {
		if arg == "" {
			return "", fmt.Errorf("%s: %w", action, ErrEmptyArg)
		}
		if strings.Contains(arg, Separator) {
			return "", fmt.Errorf("%s: %w: %q", action, ErrSeparatorInArg, arg)
		}
	}

	encoded := strings.Join(append([]string{action.String()}, args...), Separator)
	if len(encoded) > MaxLen {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLong, len(encoded))
	}
	return encoded, nil
}

// Decode parses a token produced by Encode.
func Decode(s string) (Token, error) {
	if s == "" {
		return Token{}, ErrEmpty
	}

	parts := strings.Split(s, Separator)
	action, err := ParseAction(parts[0])
	if err != nil {
		return Token{}, err
	}

	args := parts[1:]
	if len(args) != action.Arity() {
		return Token{}, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, action, action.Arity(), len(args))
	}
	for _, arg := range args {
		if arg == "" {
			return Token{}, fmt.Errorf("%s: %w", action, ErrEmptyArg)
		}
	}
	return Token{Action: action, Args: args}, nil
}
