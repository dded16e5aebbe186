package downloader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
)

var (
	// ErrInvalidMagnet is returned for a magnet URI without a usable btih info hash.
	ErrInvalidMagnet = errors.New("invalid magnet link")
	// ErrUnsupportedLink is returned for links that are neither magnets nor http(s) URLs.
	ErrUnsupportedLink = errors.New("unsupported link")
)

// LinkInfo describes a link before it is handed to the download client.
type LinkInfo struct {
	Magnet   bool
	InfoHash string
	Name     string
}

// Label is the best human-readable name for the link.
func (l LinkInfo) Label() string {
	if l.Name != "" {
		return l.Name
	}
	return l.InfoHash
}

// InspectLink validates a magnet URI or a .torrent URL.
func InspectLink(link string) (LinkInfo, error) {
	lower := strings.ToLower(link)
	switch {
	case strings.HasPrefix(lower, "magnet:"):
		m, err := metainfo.ParseMagnetUri(link)
		if err != nil {
			return LinkInfo{}, fmt.Errorf("%w: %v", ErrInvalidMagnet, err)
		}
		return LinkInfo{
			Magnet:   true,
			InfoHash: m.InfoHash.HexString(),
			Name:     m.DisplayName,
		}, nil
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return LinkInfo{Name: link}, nil
	}
	return LinkInfo{}, ErrUnsupportedLink
}

// FileInfo describes a .torrent file on disk.
type FileInfo struct {
	InfoHash  string
	Name      string
	TotalSize int64
}

// InspectFile parses a .torrent file so broken uploads are rejected before reaching the client.
func InspectFile(path string) (FileInfo, error) {
	mi, err := metainfo.LoadFromFile(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("load torrent file: %w", err)
	}
	info, err := mi.UnmarshalInfo()
	if err != nil {
		return FileInfo{}, fmt.Errorf("decode torrent info: %w", err)
	}
	return FileInfo{
		InfoHash:  mi.HashInfoBytes().HexString(),
		Name:      info.BestName(),
		TotalSize: info.TotalLength(),
	}, nil
}
