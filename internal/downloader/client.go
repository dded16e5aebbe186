package downloader

import (
	"context"
	"errors"

	"magnet-bot/internal/domain"
)

// ErrNotFound is returned when a torrent identifier no longer refers to a known torrent.
var ErrNotFound = errors.New("torrent not found")

// Client is the set of download-client operations the bot relies on.
type Client interface {
	List(ctx context.Context, filter domain.StatusFilter) ([]domain.Torrent, error)
	Get(ctx context.Context, id string) (domain.Torrent, error)
	AddByLink(ctx context.Context, link string) error
	AddByFile(ctx context.Context, path string) error
	Pause(ctx context.Context, id string) error
	Resume(ctx context.Context, id string) error
	Delete(ctx context.Context, id string, deleteFiles bool) error
}
