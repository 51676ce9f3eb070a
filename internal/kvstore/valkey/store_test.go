package kvvalkey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkpi/kpi-gateway/internal/dbtest/valkeytest"
	"github.com/openkpi/kpi-gateway/internal/kvstore"
)

func TestNewStore(t *testing.T) {
	ctx := t.Context()
	valkeyClient, _, terminate := valkeytest.Start(ctx)
	defer terminate(ctx)

	t.Run("creates store with prefix", func(t *testing.T) {
		store := NewStore(valkeyClient, "test-prefix")

		assert.NotNil(t, store)
		assert.Equal(t, "test-prefix", store.prefix)
		assert.NotNil(t, store.valkey)
	})

	t.Run("trims trailing colon from prefix", func(t *testing.T) {
		store := NewStore(valkeyClient, "test-prefix:")

		assert.NotNil(t, store)
		assert.Equal(t, "test-prefix", store.prefix)
	})

	t.Run("handles empty prefix", func(t *testing.T) {
		store := NewStore(valkeyClient, "")

		assert.NotNil(t, store)
		assert.Empty(t, store.prefix)
	})
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := t.Context()
	valkeyClient, _, terminate := valkeytest.Start(ctx)
	defer terminate(ctx)

	store := NewStore(valkeyClient, "roundtrip")

	t.Run("set then get returns the value", func(t *testing.T) {
		err := store.Set(ctx, "visitor-1", []byte(`{"a":1}`), 0)
		require.NoError(t, err)

		got, err := store.Get(ctx, "visitor-1")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"a":1}`), got)
	})

	t.Run("get of missing key reports ErrKeyNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "absent")

		assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
	})

	t.Run("delete removes the key", func(t *testing.T) {
		err := store.Set(ctx, "visitor-2", []byte("x"), 0)
		require.NoError(t, err)

		err = store.Delete(ctx, "visitor-2")
		require.NoError(t, err)

		_, err = store.Get(ctx, "visitor-2")
		assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
	})

	t.Run("delete of absent key succeeds", func(t *testing.T) {
		err := store.Delete(ctx, "never-set")

		assert.NoError(t, err)
	})

	t.Run("positive ttl expires the key", func(t *testing.T) {
		err := store.Set(ctx, "short-lived", []byte("x"), time.Second)
		require.NoError(t, err)

		_, err = store.Get(ctx, "short-lived")
		require.NoError(t, err)

		time.Sleep(1100 * time.Millisecond)

		_, err = store.Get(ctx, "short-lived")
		assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
	})
}

func TestStoreKey(t *testing.T) {
	ctx := t.Context()
	valkeyClient, _, terminate := valkeytest.Start(ctx)
	defer terminate(ctx)

	t.Run("prefixes keys", func(t *testing.T) {
		store := NewStore(valkeyClient, "prefix")

		assert.Equal(t, "prefix:session:id-1", store.key("session:id-1"))
	})

	t.Run("empty prefix leaves key untouched", func(t *testing.T) {
		store := NewStore(valkeyClient, "")

		assert.Equal(t, "session:id-1", store.key("session:id-1"))
	})
}
