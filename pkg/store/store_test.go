package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))

	value, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", value)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, found, _ = s.Get(ctx, "k")
	assert.False(t, found)
}

func TestPrefixedStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	alice := ForPlayer(inner, "alice")
	bob := ForPlayer(inner, "bob")

	require.NoError(t, alice.Set(ctx, "cyber_runner_login_rewards", `{"a":1}`))
	require.NoError(t, bob.Set(ctx, "cyber_runner_login_rewards", `{"b":1}`))

	raw, found, err := inner.Get(ctx, "player:alice:cyber_runner_login_rewards")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"a":1}`, raw)

	value, _, _ := bob.Get(ctx, "cyber_runner_login_rewards")
	assert.Equal(t, `{"b":1}`, value)

	t.Run("GetMany strips the prefix", func(t *testing.T) {
		values, err := alice.GetMany(ctx, []string{"cyber_runner_login_rewards", "missing"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"cyber_runner_login_rewards": `{"a":1}`}, values)
	})

	t.Run("Delete is scoped", func(t *testing.T) {
		require.NoError(t, alice.Delete(ctx, "cyber_runner_login_rewards"))
		_, found, _ := alice.Get(ctx, "cyber_runner_login_rewards")
		assert.False(t, found)
		_, found, _ = bob.Get(ctx, "cyber_runner_login_rewards")
		assert.True(t, found)
	})
}

func TestGetMany_FallsBackToGet(t *testing.T) {
	ctx := context.Background()
	m := new(MockStore)
	m.On("Get", mock.Anything, "a").Return("1", true, nil)
	m.On("Get", mock.Anything, "b").Return("", false, nil)

	values, err := GetMany(ctx, m, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, values)
	m.AssertExpectations(t)
}

func TestGetMany_PropagatesError(t *testing.T) {
	ctx := context.Background()
	m := new(MockStore)
	m.On("Get", mock.Anything, "a").Return("", false, errors.New("boom"))

	_, err := GetMany(ctx, m, []string{"a"})
	assert.Error(t, err)
}
