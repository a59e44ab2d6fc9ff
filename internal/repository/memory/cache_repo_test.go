package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRepo_Operations(t *testing.T) {
	// given
	ctx := context.Background()
	c := NewCacheRepo()

	// when
	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "a", []byte("2")))
	require.NoError(t, c.Set(ctx, "b", []byte("3")))

	// then
	has, err := c.Has(ctx, "a")
	require.NoError(t, err)
	assert.True(t, has)

	value, found, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2", string(value), "set overwrites")

	require.NoError(t, c.Delete(ctx, "a", "missing"))
	_, found, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, c.items.ItemCount())
}

func TestCacheRepo_ValuesAreCopied(t *testing.T) {
	// given
	ctx := context.Background()
	c := NewCacheRepo()
	original := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", original))

	// when
	original[0] = 'x'
	got, _, _ := c.Get(ctx, "k")
	got[1] = 'y'

	// then
	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestCacheRepo_ConcurrentAccess(t *testing.T) {
	// given
	ctx := context.Background()
	c := NewCacheRepo()
	var wg sync.WaitGroup

	// when
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			_ = c.Set(ctx, key, []byte("v"))
			_, _, _ = c.Get(ctx, key)
			_ = c.Delete(ctx, key)
		}()
	}
	wg.Wait()

	// then
	assert.LessOrEqual(t, c.items.ItemCount(), 5)
}

func TestCacheRepo_EntriesDoNotExpire(t *testing.T) {
	// given
	ctx := context.Background()
	c := NewCacheRepo()
	require.NoError(t, c.Set(ctx, "k", []byte("v")))

	// when
	_, expiration, found := c.items.GetWithExpiration("k")

	// then
	assert.True(t, found)
	assert.True(t, expiration.IsZero(), "no expiry is set")
}
