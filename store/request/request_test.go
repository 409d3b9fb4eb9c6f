package request

import (
	"context"
	"errors"
	"testing"

	"ctoken/core"
	"ctoken/pkg/number"
	"ctoken/store/kv"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(action core.Action) *core.Request {
	return &core.Request{
		ID:     uuid.Must(uuid.NewV4()).String(),
		Action: action,
		Sender: "alice",
		Sent:   number.NewUint(100),
	}
}

func TestAppendAndList(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemory())

	first := newRequest(core.ActionMint)
	second := newRequest(core.ActionRepayBorrow)
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))
	assert.EqualValues(t, 1, first.Seq)
	assert.EqualValues(t, 2, second.Seq)
	assert.False(t, first.CreatedAt.IsZero())

	err := store.Append(ctx, &core.Request{ID: first.ID, Action: core.ActionMint, Sender: "bob"})
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))

	found, err := store.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, core.ActionRepayBorrow, found.Action)
	assert.Equal(t, "100", found.Sent.String())

	all, err := store.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)

	rest, err := store.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, second.ID, rest[0].ID)

	_, err = store.Find(ctx, 3)
	assert.ErrorIs(t, err, core.ErrKeyNotFound)
}

func TestCheckpoint(t *testing.T) {
	ctx := context.Background()
	store := NewCheckpoints(kv.NewOverlay(kv.NewMemory()))

	v, err := store.Checkpoint(ctx, "dispatcher")
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, store.SetCheckpoint(ctx, "dispatcher", 12))
	v, err = store.Checkpoint(ctx, "dispatcher")
	require.NoError(t, err)
	assert.EqualValues(t, 12, v)
}
