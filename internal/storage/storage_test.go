package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	v := []byte("v1")
	require.NoError(t, m.Set(ctx, "k", v))
	v[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got), "stored value is a copy")

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}
