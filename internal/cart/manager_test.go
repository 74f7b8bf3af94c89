package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DanielAnoka/EMS-sub000/internal/domain"
	"github.com/DanielAnoka/EMS-sub000/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every operation, simulating disabled or full storage.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("storage disabled")
}

func (brokenStore) Set(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func (brokenStore) Remove(context.Context, string) error {
	return errors.New("storage disabled")
}

func persistedRecord(t *testing.T, st store.Store, identity string) *domain.PersistedCartRecord {
	t.Helper()

	data, err := st.Get(context.Background(), KeyFor(identity))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	require.NoError(t, err)

	var record domain.PersistedCartRecord
	require.NoError(t, json.Unmarshal(data, &record))
	return &record
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, "cart:v1:7", KeyFor("7"))
	assert.Equal(t, "cart:v1:guest", KeyFor(""))
	assert.Equal(t, "cart:v1:guest", KeyFor(GuestIdentity))
}

func TestManager_AddPersistsRecord(t *testing.T) {
	st := store.NewMemoryStore()
	sut := NewManager(st, "7")

	sut.AddToCart(context.Background(), serviceCharge(9, 12000))
	sut.AddToCart(context.Background(), serviceCharge(9, 12000))

	record := persistedRecord(t, st, "7")
	require.NotNil(t, record)
	require.Len(t, record.Items, 1)
	assert.Equal(t, int64(9), record.Items[0].Charge.ID)
	assert.Equal(t, 2, record.Items[0].Quantity)
	assert.False(t, record.UpdatedAt.IsZero())
}

func TestManager_HydratesPersistedRecord(t *testing.T) {
	st := store.NewMemoryStore()

	record := domain.PersistedCartRecord{
		Items: []domain.LineItem{
			{ID: "a", Charge: serviceCharge(9, 12000), Quantity: 2, AddedAt: time.Now()},
		},
		UpdatedAt: time.Now(),
	}
	data, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, st.Set(context.Background(), KeyFor("7"), data))

	sut := NewManager(st, "7")

	snapshot := sut.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, int64(9), snapshot.Items[0].Charge.ID)
	assert.Equal(t, 2, snapshot.Items[0].Quantity)
}

func TestManager_MalformedRecordHydratesEmpty(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(context.Background(), KeyFor("7"), []byte("{not json")))

	sut := NewManager(st, "7")

	assert.Empty(t, sut.Snapshot().Items)
	assert.Equal(t, 0, sut.ItemCount())
}

func TestManager_TotalDerivation(t *testing.T) {
	sut := NewManager(store.NewMemoryStore(), "7")

	sut.AddToCart(context.Background(), serviceCharge(5, 25000))
	assert.Equal(t, int64(25000), sut.Snapshot().Total)

	sut.UpdateQuantity(context.Background(), 5, 3)
	assert.Equal(t, int64(75000), sut.Snapshot().Total)
	// Recomputing without an intervening action yields the same value
	assert.Equal(t, int64(75000), sut.Snapshot().Total)

	sut.RemoveFromCart(context.Background(), 5)
	assert.Empty(t, sut.Snapshot().Items)
	assert.Equal(t, int64(0), sut.Snapshot().Total)
}

func TestManager_ItemCountSumsQuantities(t *testing.T) {
	sut := NewManager(store.NewMemoryStore(), "7")

	sut.AddToCart(context.Background(), serviceCharge(1, 100))
	sut.AddToCart(context.Background(), serviceCharge(1, 100))
	sut.AddToCart(context.Background(), serviceCharge(2, 200))

	assert.Equal(t, 3, sut.ItemCount())
}

func TestManager_IdentitySwitchHydratesNewIdentity(t *testing.T) {
	st := store.NewMemoryStore()
	sut := NewManager(st, "u1")

	sut.AddToCart(context.Background(), serviceCharge(1, 100))
	require.Equal(t, 1, sut.ItemCount())

	sut.SetIdentity(context.Background(), "u2")

	// u2 has no record: the cart is empty, nothing was merged
	assert.Empty(t, sut.Snapshot().Items)

	// and nothing of u1's cart leaked under u2's key
	assert.Nil(t, persistedRecord(t, st, "u2"))
}

func TestManager_IdentitySwitchBackRestoresCart(t *testing.T) {
	st := store.NewMemoryStore()
	sut := NewManager(st, "u1")

	sut.AddToCart(context.Background(), serviceCharge(1, 100))
	sut.AddToCart(context.Background(), serviceCharge(2, 200))

	sut.SetIdentity(context.Background(), "u2")
	sut.AddToCart(context.Background(), serviceCharge(3, 300))

	sut.SetIdentity(context.Background(), "u1")

	snapshot := sut.Snapshot()
	require.Len(t, snapshot.Items, 2)
	assert.Equal(t, int64(1), snapshot.Items[0].Charge.ID)
	assert.Equal(t, int64(2), snapshot.Items[1].Charge.ID)
}

func TestManager_WriteAfterSwitchUsesNewKey(t *testing.T) {
	st := store.NewMemoryStore()
	sut := NewManager(st, "u1")
	sut.AddToCart(context.Background(), serviceCharge(1, 100))

	sut.SetIdentity(context.Background(), "u2")
	sut.AddToCart(context.Background(), serviceCharge(2, 200))

	u1 := persistedRecord(t, st, "u1")
	require.NotNil(t, u1)
	require.Len(t, u1.Items, 1)
	assert.Equal(t, int64(1), u1.Items[0].Charge.ID)

	u2 := persistedRecord(t, st, "u2")
	require.NotNil(t, u2)
	require.Len(t, u2.Items, 1)
	assert.Equal(t, int64(2), u2.Items[0].Charge.ID)
}

func TestManager_SetIdentitySameIdentityKeepsState(t *testing.T) {
	st := store.NewMemoryStore()
	sut := NewManager(st, "u1")
	sut.AddToCart(context.Background(), serviceCharge(1, 100))

	// A stale record would win over memory if we re-hydrated here
	require.NoError(t, st.Remove(context.Background(), KeyFor("u1")))
	sut.SetIdentity(context.Background(), "u1")

	assert.Equal(t, 1, sut.ItemCount())
}

func TestManager_BrokenStoreDegradesToMemory(t *testing.T) {
	sut := NewManager(brokenStore{}, "u1")

	sut.AddToCart(context.Background(), serviceCharge(5, 25000))
	sut.UpdateQuantity(context.Background(), 5, 3)

	snapshot := sut.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, int64(75000), snapshot.Total)
}

func TestManager_RoundTrip(t *testing.T) {
	st := store.NewMemoryStore()

	first := NewManager(st, "7")
	first.AddToCart(context.Background(), serviceCharge(9, 12000))
	first.AddToCart(context.Background(), serviceCharge(9, 12000))
	first.AddToCart(context.Background(), serviceCharge(4, 800))

	// A later session for the same identity sees the same cart
	second := NewManager(st, "7")
	snapshot := second.Snapshot()
	require.Len(t, snapshot.Items, 2)
	assert.Equal(t, int64(9), snapshot.Items[0].Charge.ID)
	assert.Equal(t, 2, snapshot.Items[0].Quantity)
	assert.Equal(t, int64(4), snapshot.Items[1].Charge.ID)
	assert.Equal(t, 1, snapshot.Items[1].Quantity)
}
