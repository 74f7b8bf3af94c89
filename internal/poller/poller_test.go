package poller

import (
	"context"
	"errors"
	"testing"

	"github.com/DanielAnoka/EMS-sub000/internal/cart"
	"github.com/DanielAnoka/EMS-sub000/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessMessage_RemovesCartRecord(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, cart.KeyFor("7"), []byte(`{"items":[]}`)))

	sut := &Poller{store: st}
	sut.processMessage(ctx, []byte(`{"user_id":"7"}`))

	_, err := st.Get(ctx, cart.KeyFor("7"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProcessMessage_LeavesOtherIdentitiesAlone(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, cart.KeyFor("7"), []byte(`{"items":[]}`)))
	require.NoError(t, st.Set(ctx, cart.KeyFor("8"), []byte(`{"items":[]}`)))

	sut := &Poller{store: st}
	sut.processMessage(ctx, []byte(`{"user_id":"7"}`))

	_, err := st.Get(ctx, cart.KeyFor("8"))
	assert.NoError(t, err)
}

func TestProcessMessage_InvalidPayload(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, cart.KeyFor("7"), []byte(`{"items":[]}`)))

	sut := &Poller{store: st}
	sut.processMessage(ctx, []byte(`not json`))
	sut.processMessage(ctx, []byte(`{"user_id":42}`))
	sut.processMessage(ctx, []byte(`{}`))

	_, err := st.Get(ctx, cart.KeyFor("7"))
	assert.NoError(t, err)
}

func TestProcessMessage_StoreError(t *testing.T) {
	sut := &Poller{store: failingRemover{}}

	// Must not panic; the failure is logged and dropped
	sut.processMessage(context.Background(), []byte(`{"user_id":"7"}`))
}

type failingRemover struct{}

func (failingRemover) Get(context.Context, string) ([]byte, error) {
	return nil, store.ErrNotFound
}

func (failingRemover) Set(context.Context, string, []byte) error {
	return errors.New("backend down")
}

func (failingRemover) Remove(context.Context, string) error {
	return errors.New("backend down")
}
