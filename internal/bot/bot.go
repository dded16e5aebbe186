// Package bot routes chat commands and menu selections to the download client and
// answers with rendered status reports.
package bot

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"magnet-bot/internal/chat"
	"magnet-bot/internal/downloader"
	"magnet-bot/internal/render"
)

type Config struct {
	Torrents   downloader.Client
	Renderer   render.Renderer
	Stylesheet string
	// TempDir receives uploaded .torrent files until they are handed to the client.
	TempDir string
	// FreeSpace reports free bytes on the download volume for report captions; nil disables it.
	FreeSpace func() (uint64, error)
	Logger    *logrus.Logger
}

// Bot holds no state between events; every request reads fresh data from the client.
type Bot struct {
	torrents   downloader.Client
	renderer   render.Renderer
	stylesheet string
	tempDir    string
	freeSpace  func() (uint64, error)
	logger     *logrus.Logger
}

func New(cfg Config) (*Bot, error) {
	if cfg.Torrents == nil {
		return nil, errors.New("torrent client is required")
	}
	if cfg.Renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if cfg.TempDir == "" {
		cfg.TempDir = "temp"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Bot{
		torrents:   cfg.Torrents,
		renderer:   cfg.Renderer,
		stylesheet: cfg.Stylesheet,
		tempDir:    cfg.TempDir,
		freeSpace:  cfg.FreeSpace,
		logger:     cfg.Logger,
	}, nil
}

func (b *Bot) requestLogger() *logrus.Entry {
	return b.logger.WithField("request_id", uuid.NewString())
}

func (b *Bot) reply(ctx context.Context, logger *logrus.Entry, r chat.Replier, text string) {
	if err := r.SendText(ctx, text); err != nil {
		logger.WithError(err).Error("send reply")
	}
}

var _ chat.Handler = (*Bot)(nil)
