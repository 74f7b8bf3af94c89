package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/DanielAnoka/EMS-sub000/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Reconciler keeps a session-local read-state overlay over the remotely
// fetched notification list. Marking a notification read updates the
// overlay immediately so the UI reflects it before the remote commit
// resolves; a failed commit rolls the overlay entry back, a successful
// one leaves it in place until a refresh returns the authoritative flag.
//
// Per notification the states are unread, read-pending (commit in
// flight) and read. When a second mark lands while a commit is still in
// flight, only the most recent attempt may roll back its entry, keyed by
// an attempt sequence per notification id.
type Reconciler struct {
	source   Source
	identity string
	sfg      singleflight.Group // Prevents duplicate concurrent fetches

	mu      sync.Mutex
	records []domain.Notification
	overlay map[int64]uint64 // notification id -> latest attempt seq
	seq     uint64
	pending sync.WaitGroup
}

func NewReconciler(source Source, identity string) *Reconciler {
	return &Reconciler{
		source:   source,
		identity: identity,
		overlay:  make(map[int64]uint64),
	}
}

// Refresh replaces the authoritative record set from the remote source.
// Concurrent refreshes collapse into a single fetch. Overlay entries for
// notifications the remote now reports as read are dropped; they have
// been confirmed and the record is authoritative.
func (r *Reconciler) Refresh(ctx context.Context) error {
	v, err, _ := r.sfg.Do(r.identity, func() (interface{}, error) {
		return r.source.Fetch(ctx, r.identity)
	})
	if err != nil {
		return err
	}
	records := v.([]domain.Notification)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = records
	for _, n := range records {
		if n.IsRead == domain.NotificationRead {
			delete(r.overlay, n.ID)
		}
	}
	return nil
}

// commitTimeout bounds the background read-state commit.
const commitTimeout = 5 * time.Second

// MarkRead optimistically marks a notification read and commits the
// change to the remote system in the background. On commit failure the
// overlay entry is removed again, but only if no later mark for the same
// notification superseded this attempt.
func (r *Reconciler) MarkRead(id int64) {
	r.mu.Lock()
	r.seq++
	attempt := r.seq
	r.overlay[id] = attempt
	r.mu.Unlock()

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()

		// Detached from the caller: the commit outlives the request that
		// triggered it.
		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()

		if err := r.source.MarkRead(ctx, id); err != nil {
			log.Printf("notification %d read commit error: %v", id, err)
			r.rollback(id, attempt)
		}
	}()
}

// rollback reverts exactly one overlay entry, and only when the failed
// attempt is still the latest one for that notification.
func (r *Reconciler) rollback(id int64, attempt uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overlay[id] == attempt {
		delete(r.overlay, id)
	}
}

// IsRead reports the locally observed read state: the authoritative flag
// with the overlay applied on top.
func (r *Reconciler) IsRead(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.overlay[id]; ok {
		return true
	}
	for _, n := range r.records {
		if n.ID == id {
			return n.IsRead == domain.NotificationRead
		}
	}
	return false
}

// UnreadCount derives the unread count from the records and the overlay
// on every call; it is never cached so it cannot drift.
func (r *Reconciler) UnreadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.records {
		if n.IsRead == domain.NotificationUnread {
			if _, ok := r.overlay[n.ID]; !ok {
				count++
			}
		}
	}
	return count
}

// Notifications returns the record list with the overlay applied.
func (r *Reconciler) Notifications() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Notification, len(r.records))
	copy(out, r.records)
	for i := range out {
		if _, ok := r.overlay[out[i].ID]; ok {
			out[i].IsRead = domain.NotificationRead
		}
	}
	return out
}

// Wait blocks until all in-flight commits have resolved.
func (r *Reconciler) Wait() {
	r.pending.Wait()
}
