package querycache

import "log/slog"

// DefaultPromotionCeiling bounds the defensive record-cache warm-up: a
// settle whose cumulative record count exceeds it skips promotion, so an
// unbounded collection never floods the record cache.
const DefaultPromotionCeiling = 100

// promoteLocked opportunistically seeds every record of every loaded
// page into the record-by-id cache, first-writer-wins. It is a pure side
// effect of a successful settle and never alters the query state.
// Callers hold s.mu.
func (s *Store) promoteLocked(q *query) {
	if s.records == nil || len(q.pages) == 0 {
		return
	}

	total := 0
	for _, p := range q.pages {
		total += len(p.Result.Records)
	}
	// The reported collection size counts too: when the transport says
	// the collection is larger than the ceiling, pages loaded so far are
	// a window into an oversized collection and warming is pointless.
	if reported := q.pages[0].Result.TotalValue(); reported > int64(total) {
		total = int(reported)
	}
	if total > s.cfg.PromotionCeiling {
		promotionsSkipped.Inc()
		slog.Debug("Skipped record promotion over ceiling",
			"resource", q.key.Resource,
			"records", total,
			"ceiling", s.cfg.PromotionCeiling,
		)
		return
	}

	seeded := 0
	for _, p := range q.pages {
		for _, rec := range p.Result.Records {
			if s.records.SeedIfAbsent(q.key.Resource, q.key.Meta, rec) {
				seeded++
			}
		}
	}
	if seeded > 0 {
		recordsPromoted.Add(float64(seeded))
	}
}
