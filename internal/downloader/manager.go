package downloader

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"
	"github.com/sirupsen/logrus"

	"magnet-bot/internal/domain"
	"magnet-bot/internal/units"
)

// Manager runs an in-process torrent client and exposes it through the Client interface.
// It is used when no external qBittorrent instance is configured.
type Manager interface {
	Client
	Start(ctx context.Context) error
	Shutdown()
}

type Config struct {
	DownloadRoot string
	Seed         bool
	TrackerList  []string
	Logger       *logrus.Logger
}

type manager struct {
	cfg    Config
	client *torrent.Client

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	paused  map[metainfo.Hash]struct{}
	samples map[metainfo.Hash]rateSample
}

// rateSample is the last observed completed byte count, used to estimate an ETA.
type rateSample struct {
	bytes int64
	at    time.Time
}

func NewManager(cfg Config) Manager {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if len(cfg.TrackerList) == 0 {
		cfg.TrackerList = defaultTrackers()
	}
	return &manager{
		cfg:     cfg,
		paused:  make(map[metainfo.Hash]struct{}),
		samples: make(map[metainfo.Hash]rateSample),
	}
}

func (m *manager) Start(ctx context.Context) error {
	if err := os.MkdirAll(m.cfg.DownloadRoot, 0o755); err != nil {
		return fmt.Errorf("create download root: %w", err)
	}

	clientConfig := torrent.NewDefaultClientConfig()
	clientConfig.DataDir = m.cfg.DownloadRoot
	clientConfig.NoUpload = false
	clientConfig.Seed = m.cfg.Seed

	client, err := torrent.NewClient(clientConfig)
	if err != nil {
		return fmt.Errorf("create torrent client: %w", err)
	}

	m.client = client
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.cfg.Logger.Infof("embedded torrent client started, data dir: %s", m.cfg.DownloadRoot)
	return nil
}

func (m *manager) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	if m.client != nil {
		m.client.Close()
	}
	m.cfg.Logger.Info("embedded torrent client stopped")
}

func (m *manager) List(ctx context.Context, filter domain.StatusFilter) ([]domain.Torrent, error) {
	if m.client == nil {
		return nil, fmt.Errorf("torrent client not started")
	}

	now := time.Now()
	var records []domain.Torrent
	for _, t := range m.client.Torrents() {
		rec := m.snapshot(t, now)
		if matchesFilter(filter, rec.Status) {
			records = append(records, rec)
		}
	}
	slices.SortFunc(records, func(a, b domain.Torrent) int {
		return strings.Compare(a.Name, b.Name)
	})
	return records, nil
}

func (m *manager) Get(ctx context.Context, id string) (domain.Torrent, error) {
	t, err := m.lookup(id)
	if err != nil {
		return domain.Torrent{}, err
	}
	return m.snapshot(t, time.Now()), nil
}

func (m *manager) AddByLink(ctx context.Context, link string) error {
	if m.client == nil {
		return fmt.Errorf("torrent client not started")
	}

	var (
		t   *torrent.Torrent
		err error
	)
	if strings.HasPrefix(strings.ToLower(link), "magnet:") {
		t, err = m.client.AddMagnet(link)
		if err != nil {
			return fmt.Errorf("add magnet: %w", err)
		}
	} else {
		mi, err := fetchMetaInfo(ctx, link)
		if err != nil {
			return err
		}
		t, err = m.client.AddTorrent(mi)
		if err != nil {
			return fmt.Errorf("add torrent: %w", err)
		}
	}

	m.startDownload(t)
	return nil
}

func (m *manager) AddByFile(ctx context.Context, path string) error {
	if m.client == nil {
		return fmt.Errorf("torrent client not started")
	}
	t, err := m.client.AddTorrentFromFile(path)
	if err != nil {
		return fmt.Errorf("add torrent file: %w", err)
	}
	m.startDownload(t)
	return nil
}

func (m *manager) Pause(ctx context.Context, id string) error {
	t, err := m.lookup(id)
	if err != nil {
		return err
	}
	t.DisallowDataDownload()

	m.mu.Lock()
	m.paused[t.InfoHash()] = struct{}{}
	delete(m.samples, t.InfoHash())
	m.mu.Unlock()
	return nil
}

func (m *manager) Resume(ctx context.Context, id string) error {
	t, err := m.lookup(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.paused, t.InfoHash())
	m.mu.Unlock()

	t.AllowDataDownload()
	if t.Info() != nil {
		t.DownloadAll()
	}
	return nil
}

func (m *manager) Delete(ctx context.Context, id string, deleteFiles bool) error {
	t, err := m.lookup(id)
	if err != nil {
		return err
	}

	var localPath string
	if info := t.Info(); info != nil {
		localPath = filepath.Join(m.cfg.DownloadRoot, info.BestName())
	}
	t.Drop()

	m.mu.Lock()
	delete(m.paused, t.InfoHash())
	delete(m.samples, t.InfoHash())
	m.mu.Unlock()

	if deleteFiles && localPath != "" {
		if err := removeWithinRoot(m.cfg.DownloadRoot, localPath); err != nil {
			return err
		}
	}
	return nil
}

func (m *manager) lookup(id string) (*torrent.Torrent, error) {
	if m.client == nil {
		return nil, fmt.Errorf("torrent client not started")
	}
	var hash metainfo.Hash
	if err := hash.FromHexString(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t, ok := m.client.Torrent(hash)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, nil
}

// startDownload adds trackers and starts fetching data once metadata arrives.
func (m *manager) startDownload(t *torrent.Torrent) {
	for _, tracker := range m.cfg.TrackerList {
		t.AddTrackers([][]string{{tracker}})
	}

	logger := m.cfg.Logger.WithField("torrent", t.InfoHash().HexString())
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		select {
		case <-m.ctx.Done():
			return
		case <-t.GotInfo():
		}
		t.DownloadAll()
		logger.Infof("metadata received for %s", t.Name())
	}()
}

func (m *manager) snapshot(t *torrent.Torrent, now time.Time) domain.Torrent {
	hash := t.InfoHash()
	rec := domain.Torrent{
		ID:         hash.HexString(),
		Name:       t.Name(),
		ETA:        units.InfiniteETA,
		TotalSize:  -1,
		AmountLeft: -1,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, paused := m.paused[hash]

	info := t.Info()
	if info == nil {
		rec.Status = domain.TorrentStatusDownloading
		if paused {
			rec.Status = domain.TorrentStatusPaused
		}
		return rec
	}

	total := info.TotalLength()
	done := t.BytesCompleted()
	missing := t.BytesMissing()
	rec.TotalSize = total
	rec.Downloaded = done
	rec.AmountLeft = missing
	if total > 0 {
		rec.Progress = float64(done) / float64(total)
	}

	switch {
	case missing == 0 && m.cfg.Seed && !paused:
		rec.Status = domain.TorrentStatusSeeding
		rec.ETA = 0
	case missing == 0:
		rec.Status = domain.TorrentStatusCompleted
		rec.ETA = 0
	case paused:
		rec.Status = domain.TorrentStatusPaused
	default:
		rec.Status = domain.TorrentStatusDownloading
		if prev, ok := m.samples[hash]; ok {
			rec.ETA = estimateETA(prev, rateSample{bytes: done, at: now}, missing)
		}
		m.samples[hash] = rateSample{bytes: done, at: now}
	}
	return rec
}

// estimateETA derives seconds remaining from the progress made between two listings.
func estimateETA(prev, cur rateSample, missing int64) int64 {
	elapsed := cur.at.Sub(prev.at).Seconds()
	delta := cur.bytes - prev.bytes
	if elapsed <= 0 || delta <= 0 {
		return units.InfiniteETA
	}
	eta := int64(float64(missing) / (float64(delta) / elapsed))
	if eta >= units.InfiniteETA {
		return units.InfiniteETA
	}
	return eta
}

// matchesFilter mirrors qBittorrent's filters: "downloading" includes paused downloads,
// "resumed" is everything not paused, "completed" is everything fully downloaded.
func matchesFilter(filter domain.StatusFilter, status domain.TorrentStatus) bool {
	switch filter {
	case domain.FilterDownloading:
		return status == domain.TorrentStatusDownloading || status == domain.TorrentStatusPaused
	case domain.FilterResumed:
		return status != domain.TorrentStatusPaused
	case domain.FilterCompleted:
		return status == domain.TorrentStatusCompleted || status == domain.TorrentStatusSeeding
	}
	return false
}

func removeWithinRoot(root, path string) error {
	root = filepath.Clean(root)
	clean := filepath.Clean(path)
	rel, err := filepath.Rel(root, clean)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("refusing to remove %s outside %s", clean, root)
	}
	if err := os.RemoveAll(clean); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove local data %s: %w", clean, err)
	}
	return nil
}

func fetchMetaInfo(ctx context.Context, link string) (*metainfo.MetaInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("build torrent request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch torrent: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch torrent: status %d", resp.StatusCode)
	}
	mi, err := metainfo.Load(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse torrent: %w", err)
	}
	return mi, nil
}

func defaultTrackers() []string {
	return []string{
		"udp://tracker.opentrackr.org:1337/announce",
		"udp://tracker.openbittorrent.com:6969/announce",
		"udp://open.stealth.si:80/announce",
		"udp://exodus.desync.com:6969/announce",
		"http://tracker.opentrackr.org:1337/announce",
		"http://tracker.openbittorrent.com:80/announce",
		"udp://tracker.torrent.eu.org:451/announce",
		"udp://tracker.moeking.me:6969/announce",
	}
}

var _ Manager = (*manager)(nil)
