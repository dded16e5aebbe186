package downloader

import (
	"testing"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magnet-bot/internal/domain"
)

func TestToTorrent(t *testing.T) {
	got := toTorrent(qbt.Torrent{
		Hash:       testHash,
		Name:       "ubuntu.iso",
		Progress:   0.25,
		Downloaded: 1024,
		AmountLeft: 3072,
		ETA:        120,
		TotalSize:  4096,
		State:      qbt.TorrentState("stalledDL"),
	})

	assert.Equal(t, domain.Torrent{
		ID:         testHash,
		Name:       "ubuntu.iso",
		Progress:   0.25,
		Downloaded: 1024,
		AmountLeft: 3072,
		ETA:        120,
		TotalSize:  4096,
		Status:     domain.TorrentStatusDownloading,
	}, got)
}

func TestStatusFromState(t *testing.T) {
	tests := map[string]domain.TorrentStatus{
		"downloading":  domain.TorrentStatusDownloading,
		"metaDL":       domain.TorrentStatusDownloading,
		"uploading":    domain.TorrentStatusSeeding,
		"stalledUP":    domain.TorrentStatusSeeding,
		"pausedUP":     domain.TorrentStatusCompleted,
		"stoppedUP":    domain.TorrentStatusCompleted,
		"pausedDL":     domain.TorrentStatusPaused,
		"stoppedDL":    domain.TorrentStatusPaused,
		"error":        domain.TorrentStatusOther,
		"missingFiles": domain.TorrentStatusOther,
	}

	for state, want := range tests {
		assert.Equal(t, want, statusFromState(state), state)
	}
}

func TestQbtFilter(t *testing.T) {
	f, err := qbtFilter(domain.FilterResumed)
	require.NoError(t, err)
	assert.Equal(t, qbt.TorrentFilterResumed, f)

	f, err = qbtFilter(domain.FilterCompleted)
	require.NoError(t, err)
	assert.Equal(t, qbt.TorrentFilterCompleted, f)

	f, err = qbtFilter(domain.FilterDownloading)
	require.NoError(t, err)
	assert.Equal(t, qbt.TorrentFilterDownloading, f)

	_, err = qbtFilter("paused")
	assert.Error(t, err)
}
