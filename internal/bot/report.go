package bot

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"magnet-bot/internal/chat"
	"magnet-bot/internal/domain"
	"magnet-bot/internal/metrics"
	"magnet-bot/internal/report"
	"magnet-bot/internal/token"
	"magnet-bot/internal/units"
)

// followUp is the options menu offered under each report.
func followUp(kind domain.ReportKind) token.Action {
	switch kind {
	case domain.ReportDownloading:
		return token.ResumeOptions
	case domain.ReportResumed:
		return token.PauseOptions
	default:
		return token.DeleteOptions
	}
}

func (b *Bot) sendReport(ctx context.Context, logger *logrus.Entry, r chat.Replier, kind domain.ReportKind) {
	logger = logger.WithField("report", kind.String())

	png, err := b.renderReport(ctx, kind)
	if err != nil {
		logger.WithError(err).Error("build report")
		metrics.IncFailure("report")
		b.reply(ctx, logger, r, msgReportFailed)
		return
	}

	action := followUp(kind)
	data, err := token.Encode(action)
	if err != nil {
		logger.WithError(err).Error("encode menu token")
		metrics.IncFailure("report")
		b.reply(ctx, logger, r, msgReportFailed)
		return
	}
	menu := []chat.Option{{Label: verb(action.Paired()) + " options", Data: data}}

	if err := r.SendPhoto(ctx, png, b.caption(logger), menu); err != nil {
		logger.WithError(err).Error("send report")
	}
}

// renderReport runs the list, build, render pipeline for one report.
func (b *Bot) renderReport(ctx context.Context, kind domain.ReportKind) ([]byte, error) {
	records, err := b.torrents.List(ctx, kind.Filter())
	if err != nil {
		return nil, err
	}

	table := report.Build(records, kind)
	markup, err := table.Markup()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	png, err := b.renderer.Render(ctx, markup, b.stylesheet, table.Width, table.Height)
	if err != nil {
		return nil, err
	}
	metrics.ObserveRender(kind.String(), time.Since(started))
	return png, nil
}

// RenderReport produces the image for a report kind without sending it.
func (b *Bot) RenderReport(ctx context.Context, kind domain.ReportKind) ([]byte, error) {
	return b.renderReport(ctx, kind)
}

func (b *Bot) caption(logger *logrus.Entry) string {
	if b.freeSpace == nil {
		return ""
	}
	free, err := b.freeSpace()
	if err != nil {
		logger.WithError(err).Debug("free space unavailable")
		return ""
	}
	if free > math.MaxInt64 {
		free = math.MaxInt64
	}
	return "Free space: " + units.FormatSize(int64(free))
}
