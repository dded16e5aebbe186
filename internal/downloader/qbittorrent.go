package downloader

import (
	"context"
	"fmt"
	"os"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/sirupsen/logrus"

	"magnet-bot/internal/domain"
)

type QBittorrentConfig struct {
	Host     string
	Username string
	Password string
	Logger   *logrus.Logger
}

// QBittorrent talks to a qBittorrent instance through its Web API.
type QBittorrent struct {
	client *qbt.Client
	logger *logrus.Logger
}

func NewQBittorrent(cfg QBittorrentConfig) *QBittorrent {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &QBittorrent{
		client: qbt.NewClient(qbt.Config{
			Host:     cfg.Host,
			Username: cfg.Username,
			Password: cfg.Password,
		}),
		logger: cfg.Logger,
	}
}

// Login authenticates the Web API session. Call once before use.
func (q *QBittorrent) Login(ctx context.Context) error {
	if err := q.client.LoginCtx(ctx); err != nil {
		return fmt.Errorf("qbittorrent login: %w", err)
	}
	q.logger.Info("connected to qbittorrent")
	return nil
}

func (q *QBittorrent) List(ctx context.Context, filter domain.StatusFilter) ([]domain.Torrent, error) {
	qf, err := qbtFilter(filter)
	if err != nil {
		return nil, err
	}
	torrents, err := q.client.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{Filter: qf})
	if err != nil {
		return nil, fmt.Errorf("list torrents: %w", err)
	}

	records := make([]domain.Torrent, len(torrents))
	for i := range torrents {
		records[i] = toTorrent(torrents[i])
	}
	return records, nil
}

func (q *QBittorrent) Get(ctx context.Context, id string) (domain.Torrent, error) {
	torrents, err := q.client.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{Hashes: []string{id}})
	if err != nil {
		return domain.Torrent{}, fmt.Errorf("get torrent: %w", err)
	}
	if len(torrents) == 0 {
		return domain.Torrent{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return toTorrent(torrents[0]), nil
}

func (q *QBittorrent) AddByLink(ctx context.Context, link string) error {
	if err := q.client.AddTorrentFromUrlCtx(ctx, link, map[string]string{}); err != nil {
		return fmt.Errorf("add torrent from link: %w", err)
	}
	return nil
}

func (q *QBittorrent) AddByFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read torrent file: %w", err)
	}
	if err := q.client.AddTorrentFromMemoryCtx(ctx, data, map[string]string{}); err != nil {
		return fmt.Errorf("add torrent from file: %w", err)
	}
	return nil
}

func (q *QBittorrent) Pause(ctx context.Context, id string) error {
	if err := q.client.PauseCtx(ctx, []string{id}); err != nil {
		return fmt.Errorf("pause torrent: %w", err)
	}
	return nil
}

func (q *QBittorrent) Resume(ctx context.Context, id string) error {
	if err := q.client.ResumeCtx(ctx, []string{id}); err != nil {
		return fmt.Errorf("resume torrent: %w", err)
	}
	return nil
}

func (q *QBittorrent) Delete(ctx context.Context, id string, deleteFiles bool) error {
	if err := q.client.DeleteTorrentsCtx(ctx, []string{id}, deleteFiles); err != nil {
		return fmt.Errorf("delete torrent: %w", err)
	}
	return nil
}

func qbtFilter(filter domain.StatusFilter) (qbt.TorrentFilter, error) {
	switch filter {
	case domain.FilterDownloading:
		return qbt.TorrentFilterDownloading, nil
	case domain.FilterResumed:
		return qbt.TorrentFilterResumed, nil
	case domain.FilterCompleted:
		return qbt.TorrentFilterCompleted, nil
	}
	return "", fmt.Errorf("unsupported status filter %q", filter)
}

func toTorrent(t qbt.Torrent) domain.Torrent {
	return domain.Torrent{
		ID:         t.Hash,
		Name:       t.Name,
		Progress:   float64(t.Progress),
		Downloaded: int64(t.Downloaded),
		AmountLeft: int64(t.AmountLeft),
		ETA:        int64(t.ETA),
		TotalSize:  int64(t.TotalSize),
		Status:     statusFromState(string(t.State)),
	}
}

// statusFromState maps qBittorrent Web API state names onto the normalized set.
func statusFromState(state string) domain.TorrentStatus {
	switch state {
	case "downloading", "metaDL", "forcedMetaDL", "stalledDL", "queuedDL", "forcedDL", "checkingDL", "allocating":
		return domain.TorrentStatusDownloading
	case "uploading", "stalledUP", "queuedUP", "forcedUP", "checkingUP":
		return domain.TorrentStatusSeeding
	case "pausedUP", "stoppedUP":
		return domain.TorrentStatusCompleted
	case "pausedDL", "stoppedDL":
		return domain.TorrentStatusPaused
	}
	return domain.TorrentStatusOther
}

var _ Client = (*QBittorrent)(nil)
