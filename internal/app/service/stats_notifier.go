package service

import (
	"context"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
)

type statsRefreshingNotifier struct {
	stats StatsService
	next  EventNotifier
}

// NewStatsRefreshingNotifier drops the cached global stats for every stored
// event and then hands the event to next. next may be nil.
func NewStatsRefreshingNotifier(stats StatsService, next EventNotifier) EventNotifier {
	return &statsRefreshingNotifier{stats: stats, next: next}
}

func (n *statsRefreshingNotifier) Publish(ctx context.Context, event *model.AdEvent) error {
	n.stats.Invalidate(ctx)
	if n.next == nil {
		return nil
	}
	return n.next.Publish(ctx, event)
}
