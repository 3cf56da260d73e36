package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFeedingSurge BookmarkType = "feeding_surge"
	BookmarkStreamPeak   BookmarkType = "stream_peak"
	BookmarkDiskSettled  BookmarkType = "disk_settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `json:"type"`
	Tick        int32        `json:"tick"`
	Description string       `json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in a run from window stats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentStreamPeak  int
	settledCount      int
	streamPeakEmitted bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkFeedingSurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStreamPeak(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkDiskSettled(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.StreamCount > bd.recentStreamPeak {
		bd.recentStreamPeak = stats.StreamCount
	}

	return bookmarks
}

// Reset clears history, used when the scene restarts.
func (bd *BookmarkDetector) Reset() {
	clear(bd.history)
	bd.historyIdx = 0
	bd.historyFull = false
	bd.recentStreamPeak = 0
	bd.settledCount = 0
	bd.streamPeakEmitted = false
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkFeedingSurge fires when consumed mass exceeds twice the rolling average.
func (bd *BookmarkDetector) checkFeedingSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.ConsumedMass
	}
	avg := total / float64(len(history))
	if avg <= 0 {
		return nil
	}

	if stats.ConsumedMass > avg*2.0 && stats.StreamConsumed+stats.DiskConsumed >= 10 {
		return &Bookmark{
			Type:        BookmarkFeedingSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Consumed mass %.3f is %.1fx average (%.3f)", stats.ConsumedMass, stats.ConsumedMass/avg, avg),
		}
	}
	return nil
}

// checkStreamPeak fires once, when the stream has drained 30% below its peak.
func (bd *BookmarkDetector) checkStreamPeak(stats WindowStats) *Bookmark {
	if bd.streamPeakEmitted || bd.recentStreamPeak < 50 {
		return nil
	}

	drop := 1.0 - float64(stats.StreamCount)/float64(bd.recentStreamPeak)
	if drop > 0.30 {
		bd.streamPeakEmitted = true
		return &Bookmark{
			Type:        BookmarkStreamPeak,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stream drained %.0f%% from peak %d to %d", drop*100, bd.recentStreamPeak, stats.StreamCount),
		}
	}
	return nil
}

// checkDiskSettled fires once the disk's median radius holds steady for five windows.
func (bd *BookmarkDetector) checkDiskSettled(stats WindowStats) *Bookmark {
	if stats.DiskCount < 20 {
		bd.settledCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += h.DiskRadiusP50
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := h.DiskRadiusP50 - mean
		variance += d * d
	}
	variance /= 4

	cv2 := 0.0
	if mean > 0 {
		cv2 = variance / (mean * mean)
	}

	if mean > 0 && cv2 < 0.0025 { // CV < 5%
		bd.settledCount++
	} else {
		bd.settledCount = 0
	}

	if bd.settledCount == 5 {
		return &Bookmark{
			Type:        BookmarkDiskSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Disk settled at median radius %.1f with %d particles", mean, stats.DiskCount),
		}
	}
	return nil
}
