package downloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magnet-bot/internal/domain"
	"magnet-bot/internal/units"
)

func TestMatchesFilter(t *testing.T) {
	tests := []struct {
		filter domain.StatusFilter
		status domain.TorrentStatus
		want   bool
	}{
		{domain.FilterDownloading, domain.TorrentStatusDownloading, true},
		{domain.FilterDownloading, domain.TorrentStatusPaused, true},
		{domain.FilterDownloading, domain.TorrentStatusCompleted, false},
		{domain.FilterResumed, domain.TorrentStatusDownloading, true},
		{domain.FilterResumed, domain.TorrentStatusSeeding, true},
		{domain.FilterResumed, domain.TorrentStatusPaused, false},
		{domain.FilterCompleted, domain.TorrentStatusCompleted, true},
		{domain.FilterCompleted, domain.TorrentStatusSeeding, true},
		{domain.FilterCompleted, domain.TorrentStatusDownloading, false},
		{"bogus", domain.TorrentStatusDownloading, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesFilter(tt.filter, tt.status), "%s/%s", tt.filter, tt.status)
	}
}

func TestEstimateETA(t *testing.T) {
	start := time.Unix(1000, 0)

	eta := estimateETA(
		rateSample{bytes: 0, at: start},
		rateSample{bytes: 1000, at: start.Add(10 * time.Second)},
		5000,
	)
	assert.Equal(t, int64(50), eta)

	stalled := estimateETA(
		rateSample{bytes: 1000, at: start},
		rateSample{bytes: 1000, at: start.Add(time.Second)},
		5000,
	)
	assert.Equal(t, int64(units.InfiniteETA), stalled)

	sameInstant := estimateETA(rateSample{at: start}, rateSample{bytes: 10, at: start}, 5)
	assert.Equal(t, int64(units.InfiniteETA), sameInstant)
}

func TestRemoveWithinRoot(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "movie")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "sub"), 0o755))

	require.NoError(t, removeWithinRoot(root, target))
	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, removeWithinRoot(root, root))
	assert.Error(t, removeWithinRoot(root, filepath.Join(root, "..", "elsewhere")))
}

func TestManagerRequiresStart(t *testing.T) {
	m := NewManager(Config{DownloadRoot: t.TempDir()})

	_, err := m.List(testContext(t), domain.FilterCompleted)
	assert.Error(t, err)

	_, err = m.Get(testContext(t), testHash)
	assert.Error(t, err)
}
