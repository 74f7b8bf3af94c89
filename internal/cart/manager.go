package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/DanielAnoka/EMS-sub000/internal/domain"
	"github.com/DanielAnoka/EMS-sub000/internal/store"
	"github.com/google/uuid"
)

// recordVersion namespaces persisted records. Bump on any incompatible
// change to PersistedCartRecord; old-version keys are orphaned, never
// migrated.
const recordVersion = 1

// GuestIdentity partitions carts of unauthenticated sessions.
const GuestIdentity = "guest"

// KeyFor returns the storage key holding the persisted cart record for
// an identity. An empty identity maps to the guest partition.
func KeyFor(identity string) string {
	if identity == "" {
		identity = GuestIdentity
	}
	return fmt.Sprintf("cart:v%d:%s", recordVersion, identity)
}

// Manager binds the cart state machine to one identity's persisted
// record. It owns the in-memory item list, hydrates it whenever the
// identity changes and writes it back after every mutation. Persistence
// is best effort: a failing store degrades the cart to in-memory only,
// callers never see an error.
type Manager struct {
	mu       sync.Mutex
	store    store.Store
	identity string
	items    []domain.LineItem

	now   func() time.Time
	newID func() string
}

// NewManager creates a manager bound to identity and hydrates it from
// the store. The store is wrapped so that backend failures are swallowed.
func NewManager(st store.Store, identity string) *Manager {
	m := &Manager{
		store:    store.NewBestEffort(st),
		identity: identity,
		now:      time.Now,
		newID:    newItemID,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hydrateLocked(context.Background())
	return m
}

func newItemID() string {
	return uuid.New().String()
}

// SetIdentity rebinds the manager to a new identity. The key is
// recomputed and the new identity's record hydrated synchronously under
// the lock, so a mutation issued right after login can never land under
// the previous identity's key. Carts are never merged across identities.
func (m *Manager) SetIdentity(ctx context.Context, identity string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if identity == m.identity {
		return
	}
	m.identity = identity
	m.hydrateLocked(ctx)
}

// Identity returns the identity the manager is currently bound to.
func (m *Manager) Identity() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// AddToCart adds one unit of charge, incrementing the quantity if the
// charge is already in the cart. The charge fields are frozen as-is.
func (m *Manager) AddToCart(ctx context.Context, charge domain.Charge) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = Reduce(m.items, Add{
		Charge: charge,
		ItemID: m.newID(),
		At:     m.now(),
	})
	m.persistLocked(ctx)
}

// RemoveFromCart drops the line item for chargeID. Unknown ids are a no-op.
func (m *Manager) RemoveFromCart(ctx context.Context, chargeID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = Reduce(m.items, Remove{ChargeID: chargeID})
	m.persistLocked(ctx)
}

// UpdateQuantity sets the quantity for chargeID; zero or negative
// removes the item.
func (m *Manager) UpdateQuantity(ctx context.Context, chargeID int64, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = Reduce(m.items, SetQuantity{ChargeID: chargeID, Quantity: quantity})
	m.persistLocked(ctx)
}

// ClearCart empties the cart.
func (m *Manager) ClearCart(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = Reduce(m.items, Clear{})
	m.persistLocked(ctx)
}

// ItemCount returns the sum of quantities across all line items.
func (m *Manager) ItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, item := range m.items {
		count += item.Quantity
	}
	return count
}

// Snapshot returns a copy of the items in insertion order together with
// the derived total. Total is recomputed on every call and never cached.
func (m *Manager) Snapshot() domain.CartSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]domain.LineItem, len(m.items))
	copy(items, m.items)

	var total int64
	for _, item := range items {
		total += item.Charge.Amount * int64(item.Quantity)
	}

	return domain.CartSnapshot{Items: items, Total: total}
}

// hydrateLocked replaces in-memory state from the current identity's
// persisted record. A missing or malformed record hydrates to empty.
func (m *Manager) hydrateLocked(ctx context.Context) {
	data, _ := m.store.Get(ctx, KeyFor(m.identity))
	if data == nil {
		m.items = Reduce(nil, Hydrate{})
		return
	}

	var record domain.PersistedCartRecord
	if err := json.Unmarshal(data, &record); err != nil {
		m.items = Reduce(nil, Hydrate{})
		return
	}
	m.items = Reduce(nil, Hydrate{Items: record.Items})
}

// persistLocked writes the current state under the key of the identity
// the manager is bound to right now, not the one active when the
// mutation was issued.
func (m *Manager) persistLocked(ctx context.Context) {
	record := domain.PersistedCartRecord{
		Items:     m.items,
		UpdatedAt: m.now(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	_ = m.store.Set(ctx, KeyFor(m.identity), data)
}
