package web

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	auditStore "coachdesk/internal/adapters/storage/audit"
	auditDomain "coachdesk/internal/domain/audit"
	"coachdesk/internal/domain/outbox"
)

// queryLimit reads ?limit= within (0, ceiling], falling back to def.
func queryLimit(r *http.Request, def, ceiling int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= ceiling {
		return n
	}
	return def
}

// handleAdminPerf returns request timing stats (GET /api/admin/perf?window=15m).
// PRE: caller is admin
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	window := time.Hour
	if d, err := time.ParseDuration(r.URL.Query().Get("window")); err == nil && d > 0 {
		window = d
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-window), 10))
}

// handleAdminAudit lists audit events, newest first
// (GET /api/admin/audit?category=&actor_id=&resource_id=&limit=).
// PRE: caller is admin
func handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := auditStore.Filter{
		Category:   auditDomain.Category(q.Get("category")),
		ActorID:    q.Get("actor_id"),
		ResourceID: q.Get("resource_id"),
	}
	limit := queryLimit(r, 100, 1000)

	events, err := stores.AuditStore.List(r.Context(), filter, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"limit":  limit,
	})
}

// handleAdminOutbox lists failed outbox entries, or pending ones with ?status=pending.
// PRE: caller is admin
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := queryLimit(r, 50, 100)

	var (
		entries []outbox.Entry
		err     error
	)
	if r.URL.Query().Get("status") == outbox.StatusPending {
		entries, err = stores.OutboxStore.ListPending(ctx, limit)
	} else {
		entries, err = stores.OutboxStore.ListFailed(ctx, limit)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if entries == nil {
		entries = []outbox.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleAdminOutboxRetry attempts one entry now, ignoring its backoff
// (POST /api/admin/outbox/{id}/retry).
// PRE: caller is admin
func handleAdminOutboxRetry(w http.ResponseWriter, r *http.Request) {
	if outboxProcessor == nil {
		writeError(w, http.StatusServiceUnavailable, "outbox worker is not running")
		return
	}
	id := r.PathValue("id")
	err := outboxProcessor.ProcessSingle(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "outbox entry not found")
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	entry, err := stores.OutboxStore.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
