package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RossFW/atlas-conquest/internal/analytics/view"
)

func newCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Open(context.Background(), "redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestKey(t *testing.T) {
	req := view.NewRequest(view.PageCards).WithFaction("skaal")
	assert.Equal(t, "view:7:"+req.Key(), Key(7, req))
	assert.NotEqual(t, Key(7, req), Key(8, req))
	assert.NotEqual(t, Key(7, req), Key(7, req.WithSearch("wolf")))
}

func TestRedisCache_GetSet(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	req := view.NewRequest(view.PageMeta)

	_, ok, err := c.Get(ctx, 1, req)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, 1, req, []byte(`{"page":"meta"}`)))

	data, ok, err := c.Get(ctx, 1, req)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"page":"meta"}`, string(data))
	assert.Equal(t, time.Minute, mr.TTL(Key(1, req)))

	_, ok, _ = c.Get(ctx, 2, req)
	assert.False(t, ok, "a new dataset version must miss")

	mr.FastForward(2 * time.Minute)
	_, ok, _ = c.Get(ctx, 1, req)
	assert.False(t, ok, "entry should expire")
}

func TestRedisCache_Purge(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	for _, v := range []uint64{1, 2, 3} {
		require.NoError(t, c.Set(ctx, v, view.NewRequest(view.PageCards), []byte("{}")))
		require.NoError(t, c.Set(ctx, v, view.NewRequest(view.PagePlayers), []byte("{}")))
	}
	require.NoError(t, mr.Set("unrelated", "keep"))

	n, err := c.Purge(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, mr.Exists(Key(3, view.NewRequest(view.PageCards))))
	assert.False(t, mr.Exists(Key(1, view.NewRequest(view.PageCards))))
	assert.True(t, mr.Exists("unrelated"))
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = Open(context.Background(), "redis://"+addr, time.Minute)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var c ViewCache = Noop{}
	ctx := context.Background()
	req := view.NewRequest(view.PageHome)

	require.NoError(t, c.Set(ctx, 1, req, []byte("{}")))
	_, ok, err := c.Get(ctx, 1, req)
	assert.NoError(t, err)
	assert.False(t, ok)
}
