package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deskgrid/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Migrated 42 items (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Hook Logging
// =============================================================================

// logHooks writes layout and persistence events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetLayoutHooks(h)
	observability.SetPersistHooks(h)
}

func (h *logHooks) OnPlace(key, mode string, page int, pageOpened bool, err error) {
	if err != nil {
		h.logger.Debug("place failed", "key", key, "mode", mode, "err", err)
		return
	}
	h.logger.Debug("place", "key", key, "mode", mode, "page", page, "page_opened", pageOpened)
}

func (h *logHooks) OnMigrate(items, rows, cols, pageCount int, dur time.Duration, err error) {
	h.logger.Debug("migrate", "items", items, "rows", rows, "columns", cols, "pages", pageCount, "duration", dur, "err", err)
}

func (h *logHooks) OnCompact(removedPages []int, pageCount int) {
	h.logger.Debug("compact", "removed_pages", removedPages, "pages", pageCount)
}

func (h *logHooks) OnRewriteStart(ctx context.Context, items int) {
	h.logger.Debug("rewrite start", "items", items)
}

func (h *logHooks) OnRewriteComplete(ctx context.Context, rows int, dur time.Duration, err error) {
	if err != nil {
		h.logger.Debug("rewrite failed", "rows", rows, "duration", dur, "err", err)
		return
	}
	h.logger.Debug("rewrite complete", "rows", rows, "duration", dur)
}

func (h *logHooks) OnLoad(ctx context.Context, items int, dur time.Duration, err error) {
	h.logger.Debug("load", "items", items, "duration", dur, "err", err)
}

var (
	_ observability.LayoutHooks  = (*logHooks)(nil)
	_ observability.PersistHooks = (*logHooks)(nil)
)
