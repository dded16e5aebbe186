package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"magnet-bot/internal/chat"
	"magnet-bot/internal/downloader"
	"magnet-bot/internal/metrics"
	"magnet-bot/internal/token"
)

func verb(a token.Action) string {
	switch a {
	case token.DeleteOptions, token.DeleteTorrent:
		return "Delete"
	case token.PauseOptions, token.PauseTorrent:
		return "Pause"
	case token.ResumeOptions, token.ResumeTorrent:
		return "Resume"
	}
	return a.String()
}

func pastTense(a token.Action) string {
	return verb(a) + "d"
}

// HandleSelection acknowledges a menu selection, then runs the action its token names.
func (b *Bot) HandleSelection(ctx context.Context, r chat.Replier, data string) {
	logger := b.requestLogger()
	if err := r.Answer(ctx); err != nil {
		logger.WithError(err).Warn("acknowledge selection")
	}

	tok, err := token.Decode(data)
	if err != nil {
		logger.WithError(err).WithField("token", data).Warn("rejected selection")
		metrics.IncFailure("bad_token")
		b.reply(ctx, logger, r, msgUnknownAction)
		return
	}
	logger = logger.WithField("action", tok.Action.String())
	metrics.IncAction(tok.Action.String())

	switch tok.Action {
	case token.DeleteOptions, token.PauseOptions, token.ResumeOptions:
		b.showOptions(ctx, logger, r, tok.Action)
	case token.DeleteTorrent, token.PauseTorrent, token.ResumeTorrent:
		b.actOnTorrent(ctx, logger.WithField("torrent", tok.Args[0]), r, tok.Action, tok.Args[0])
	default:
		logger.Warn("no handler for action")
		b.reply(ctx, logger, r, msgUnknownAction)
	}
}

// showOptions offers one button per torrent, each carrying the paired per-torrent action.
func (b *Bot) showOptions(ctx context.Context, logger *logrus.Entry, r chat.Replier, action token.Action) {
	torrents, err := b.torrents.List(ctx, action.Filter())
	if err != nil {
		logger.WithError(err).Error("list torrents")
		metrics.IncFailure("list")
		b.reply(ctx, logger, r, msgListFailed)
		return
	}

	paired := action.Paired()
	menu := make([]chat.Option, 0, len(torrents))
	for _, t := range torrents {
		data, err := token.Encode(paired, t.ID)
		if err != nil {
			logger.WithError(err).WithField("torrent", t.ID).Warn("skipping torrent")
			continue
		}
		menu = append(menu, chat.Option{Label: verb(paired) + " " + t.Name, Data: data})
	}

	text := "Select to " + strings.ToLower(verb(paired))
	if err := r.SendMenu(ctx, text, menu); err != nil {
		logger.WithError(err).Error("send menu")
	}
}

func (b *Bot) actOnTorrent(ctx context.Context, logger *logrus.Entry, r chat.Replier, action token.Action, id string) {
	t, err := b.torrents.Get(ctx, id)
	if err == nil {
		switch action {
		case token.DeleteTorrent:
			err = b.torrents.Delete(ctx, id, true)
		case token.PauseTorrent:
			err = b.torrents.Pause(ctx, id)
		case token.ResumeTorrent:
			err = b.torrents.Resume(ctx, id)
		}
	}

	switch {
	case errors.Is(err, downloader.ErrNotFound):
		logger.Info("torrent no longer exists")
		metrics.IncFailure("not_found")
		b.reply(ctx, logger, r, msgNotFound)
	case err != nil:
		logger.WithError(err).Error("torrent action")
		metrics.IncFailure(action.String())
		b.reply(ctx, logger, r, verb(action)+" failed.")
	default:
		logger.Infof("%s %s", strings.ToLower(pastTense(action)), t.Name)
		b.reply(ctx, logger, r, fmt.Sprintf("%s %s", pastTense(action), t.Name))
	}
}
