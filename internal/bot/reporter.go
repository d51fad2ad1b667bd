package bot

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/iconidentify/xrelay/internal/config"
	"github.com/iconidentify/xrelay/internal/telegram"
)

// Telegram caps messages at 4096 characters; longer reports go out as
// a document.
const inlineReportLimit = 4000

// Reporter forwards unexpected pipeline failures to the operator chat.
type Reporter struct {
	cfg       config.BotConfig
	messenger telegram.Messenger
	logger    *slog.Logger
}

// NewReporter creates an error reporter.
func NewReporter(cfg config.BotConfig, messenger telegram.Messenger, logger *slog.Logger) *Reporter {
	return &Reporter{
		cfg:       cfg,
		messenger: messenger,
		logger:    logger,
	}
}

// Report logs err and forwards it to the operator. Two categories are
// deliberately suppressed: permission denials (the user blocked the
// bot) and the concurrent-instance conflict.
func (r *Reporter) Report(ctx context.Context, err error, detail string) {
	if err == nil {
		return
	}

	if telegram.IsForbidden(err) {
		return
	}
	if telegram.IsConflict(err) {
		r.logger.Error("telegram requests conflict", "error", err)
		return
	}

	r.logger.Error("unhandled pipeline error", "error", err, "detail", detail)

	if r.cfg.DeveloperID == 0 {
		return
	}

	report := fmt.Sprintf("Error: %v", err)
	if detail != "" {
		report += "\n\n" + detail
	}

	if len(report) > inlineReportLimit {
		sendErr := r.messenger.SendDocument(ctx, r.cfg.DeveloperID,
			"error_report.txt", strings.NewReader(report), "#error_report")
		if sendErr != nil {
			r.logger.Error("failed to send error report", "error", sendErr)
		}
		return
	}

	text := "#error_report\n<pre>" + html.EscapeString(report) + "</pre>"
	if sendErr := r.messenger.SendMessageHTML(ctx, r.cfg.DeveloperID, text); sendErr != nil {
		r.logger.Error("failed to send error report", "error", sendErr)
	}
}
