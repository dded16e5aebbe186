package domain

import "fmt"

// TorrentStatus is the normalized state of a torrent reported by the download client.
type TorrentStatus string

const (
	TorrentStatusDownloading TorrentStatus = "downloading"
	TorrentStatusSeeding     TorrentStatus = "seeding"
	TorrentStatusCompleted   TorrentStatus = "completed"
	TorrentStatusPaused      TorrentStatus = "paused"
	TorrentStatusOther       TorrentStatus = "other"
)

// StatusFilter selects which torrents a listing returns.
type StatusFilter string

const (
	FilterDownloading StatusFilter = "downloading"
	FilterResumed     StatusFilter = "resumed"
	FilterCompleted   StatusFilter = "completed"
)

// ParseStatusFilter validates a filter received from outside the process.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(s); f {
	case FilterDownloading, FilterResumed, FilterCompleted:
		return f, nil
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

// Torrent is a read-only snapshot of a torrent tracked by the download client.
type Torrent struct {
	ID         string
	Name       string
	Progress   float64
	Downloaded int64
	AmountLeft int64
	ETA        int64
	TotalSize  int64
	Status     TorrentStatus
}

// ReportKind picks the status filter and the column layout of a status report.
type ReportKind int

const (
	ReportDownloading ReportKind = iota
	ReportResumed
	ReportCompleted
)

// ReportKinds lists every kind in menu order.
var ReportKinds = []ReportKind{ReportDownloading, ReportResumed, ReportCompleted}

func (k ReportKind) Filter() StatusFilter {
	switch k {
	case ReportDownloading:
		return FilterDownloading
	case ReportResumed:
		return FilterResumed
	case ReportCompleted:
		return FilterCompleted
	}
	panic(fmt.Sprintf("unknown report kind %d", int(k)))
}

func (k ReportKind) String() string {
	return string(k.Filter())
}

// ParseReportKind maps a command name such as "completed" to its report kind.
func ParseReportKind(s string) (ReportKind, error) {
	for _, k := range ReportKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown report kind %q", s)
}
