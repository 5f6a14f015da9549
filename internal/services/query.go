package services

import (
	"github.com/Platypus4356/mailTrackerServer/internal/models"
)

// QueryService answers status lookups from the store's in-memory index.
// It is strictly read-only; unknown or never-opened ids come back as zero
// summaries, never as errors.
type QueryService struct {
	store *EventLogService
}

func NewQueryService(store *EventLogService) *QueryService {
	return &QueryService{store: store}
}

// Status summarizes one email's opens.
func (q *QueryService) Status(emailID string) models.OpenSummary {
	return summarize(q.store.Lookup(emailID))
}

// Opens returns the full event sequence for one email.
func (q *QueryService) Opens(emailID string) []models.OpenEvent {
	return q.store.Lookup(emailID)
}

// BulkStatus summarizes a batch of emails in one call.
func (q *QueryService) BulkStatus(emailIDs []string) map[string]models.OpenSummary {
	out := make(map[string]models.OpenSummary, len(emailIDs))
	for _, id := range emailIDs {
		out[id] = q.Status(id)
	}
	return out
}

// DumpAll returns every indexed event in append order.
func (q *QueryService) DumpAll() []models.OpenEvent {
	return q.store.All()
}

// summarize scans for the extremes instead of trusting slice order, so a
// summary stays correct even if replayed files interleaved timestamps.
func summarize(events []models.OpenEvent) models.OpenSummary {
	sum := models.OpenSummary{OpenCount: len(events)}
	if len(events) == 0 {
		return sum
	}

	sum.Opened = true
	first, last := events[0].ObservedAt, events[0].ObservedAt
	for _, ev := range events[1:] {
		if ev.ObservedAt.Before(first) {
			first = ev.ObservedAt
		}
		if ev.ObservedAt.After(last) {
			last = ev.ObservedAt
		}
	}
	sum.FirstOpened = &first
	sum.LastOpened = &last
	return sum
}
