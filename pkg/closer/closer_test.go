package closer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser_ClosesInReverseOrder(t *testing.T) {
	// given
	c := NewCloser(0)
	var order []string
	for _, name := range []string{"db", "redis", "http"} {
		c.AddFunc(name, func() { order = append(order, name) })
	}

	// when
	err := c.Close(context.Background())

	// then
	require.NoError(t, err)
	assert.Equal(t, []string{"http", "redis", "db"}, order)
}

func TestCloser_CollectsErrors(t *testing.T) {
	c := NewCloser(0)
	c.Add("kafka", func(context.Context) error { return errors.New("writer closed") })
	c.AddFunc("db", func() {})

	err := c.Close(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka: writer closed")
}

func TestCloser_ForcesRemainingOnTimeout(t *testing.T) {
	// given
	c := NewCloser(time.Second)
	var (
		mu     sync.Mutex
		forced bool
	)
	c.Add("slow-first", func(ctx context.Context) error {
		mu.Lock()
		forced = true
		mu.Unlock()
		return nil
	})
	c.Add("stuck", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// when
	err := c.Close(ctx)

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted after 0/2 resources")
	mu.Lock()
	assert.True(t, forced)
	mu.Unlock()
}

func TestCloser_CloseIsIdempotent(t *testing.T) {
	c := NewCloser(0)
	calls := 0
	c.AddFunc("once", func() { calls++ })

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}
