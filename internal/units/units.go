// Package units renders byte counts, ratios and durations the way status reports show them.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// InfiniteETA is the value qBittorrent reports when a torrent has no usable estimate (100 days).
const InfiniteETA = 8640000

// UnknownETA is shown in place of a duration when the client has no estimate.
const UnknownETA = "∞"

var sizeUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatSize converts a byte count into a binary-prefixed size such as "1.5KB".
// Negative counts are a caller error and panic.
func FormatSize(n int64) string {
	if n < 0 {
		panic(fmt.Sprintf("units: negative size %d", n))
	}
	if n == 0 {
		return "0B"
	}

	v := float64(n)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	if i == 0 {
		return strconv.FormatInt(n, 10) + sizeUnits[0]
	}

	r := Round2(v)
	// 1023.999KB rounds up to 1024.0KB; keep the scaled value below 1024.
	if r >= 1024 && i < len(sizeUnits)-1 {
		r = Round2(r / 1024)
		i++
	}
	return FormatDecimal(r) + sizeUnits[i]
}

// FormatDecimal prints v in its shortest form with at least one fractional digit ("1.0", "953.67").
func FormatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatETA renders an estimate in seconds as H:MM:SS. Negative values and the client's
// infinity sentinel render as UnknownETA.
func FormatETA(seconds int64) string {
	if seconds < 0 || seconds >= InfiniteETA {
		return UnknownETA
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// FormatProgress renders a completion ratio in [0,1] as a percentage rounded to two decimals.
func FormatProgress(ratio float64) string {
	return FormatDecimal(Round2(ratio*100)) + "%"
}
