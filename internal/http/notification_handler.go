package http

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/DanielAnoka/EMS-sub000/internal/notify"
	"github.com/go-chi/chi/v5"
)

// NotificationHandler keeps one reconciler per identity for the lifetime
// of the process, so the optimistic overlay survives across requests of
// the same session.
type NotificationHandler struct {
	source notify.Source

	mu          sync.Mutex
	reconcilers map[string]*notify.Reconciler
}

func NewNotificationHandler(source notify.Source) *NotificationHandler {
	return &NotificationHandler{
		source:      source,
		reconcilers: make(map[string]*notify.Reconciler),
	}
}

func (h *NotificationHandler) reconcilerFor(identity string) *notify.Reconciler {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.reconcilers[identity]
	if !ok {
		r = notify.NewReconciler(h.source, identity)
		h.reconcilers[identity] = r
	}
	return r
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	rec := h.reconcilerFor(identityFromContext(r.Context()))

	if err := rec.Refresh(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, "upstream_unavailable", "failed to fetch notifications")
		return
	}

	respondJSON(w, http.StatusOK, rec.Notifications())
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	rec := h.reconcilerFor(identityFromContext(r.Context()))

	// Refresh failures fall back to the last known record set; the count
	// is still derivable locally.
	_ = rec.Refresh(r.Context())

	respondJSON(w, http.StatusOK, map[string]int{"unread_count": rec.UnreadCount()})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_notification_id", "notification id must be a positive integer")
		return
	}

	rec := h.reconcilerFor(identityFromContext(r.Context()))

	// The commit runs in the background; the optimistic state is already
	// visible, so the handler answers immediately.
	rec.MarkRead(id)

	respondJSON(w, http.StatusAccepted, map[string]bool{"read": rec.IsRead(id)})
}
