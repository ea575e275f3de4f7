package notifier

import (
	"log/slog"

	"github.com/oppscout/oppscout/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes admitted opportunities to the given logger as
// structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each opportunity via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each opportunity with company, title, location, score, and
// URL. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(opps []model.Opportunity) error {
	for _, o := range opps {
		args := []any{
			"company", o.Posting.Company,
			"title", o.Posting.Title,
			"location", o.Posting.Location,
			"score", o.Score.Final,
			"url", o.Posting.URL,
		}
		if o.Score.Fallback {
			args = append(args, "score_fallback", true)
		}
		if len(o.Contacts) > 0 {
			args = append(args, "contacts", len(o.Contacts))
		}
		n.logger.Info("new opportunity", args...)
	}
	return nil
}
