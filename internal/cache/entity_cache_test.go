package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type record struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func setupTestCache(t *testing.T) (*EntityCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return NewEntityCache(client, "test", time.Minute, zap.NewNop()), mr
}

// fill stores value the way a read-through miss does.
func fill(ctx context.Context, c *EntityCache, entity string, id int64, value any) {
	version, ok := c.Version(ctx, entity)
	if ok {
		c.SetIfVersion(ctx, entity, id, version, value)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	fill(ctx, c, EntityDepartment, 7, record{ID: 7, Name: "IT"})
	assert.True(t, mr.Exists("test:department:7"))
	assert.Equal(t, time.Minute, mr.TTL("test:department:7"))

	var got record
	require.True(t, c.Get(ctx, EntityDepartment, 7, &got))
	assert.Equal(t, record{ID: 7, Name: "IT"}, got)

	var miss record
	assert.False(t, c.Get(ctx, EntityDepartment, 8, &miss))
}

func TestInvalidate(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	fill(ctx, c, EntityEmployee, 1, record{ID: 1})
	fill(ctx, c, EntityEmployee, 2, record{ID: 2})
	fill(ctx, c, EntityProject, 1, record{ID: 1})

	c.Invalidate(ctx, EntityEmployee, 1)
	assert.False(t, mr.Exists("test:employee:1"))
	assert.True(t, mr.Exists("test:employee:2"))

	c.InvalidateEntity(ctx, EntityEmployee)
	assert.False(t, mr.Exists("test:employee:2"))
	assert.True(t, mr.Exists("test:project:1"))
}

func TestFillAfterInvalidateIsDropped(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	// A reader loads the old row, then a writer commits and invalidates
	// before the reader gets to fill the cache.
	version, ok := c.Version(ctx, EntityEmployee)
	require.True(t, ok)
	c.Invalidate(ctx, EntityEmployee, 4)
	c.SetIfVersion(ctx, EntityEmployee, 4, version, record{ID: 4, Name: "old"})
	assert.False(t, mr.Exists("test:employee:4"))

	// Whole-type invalidation also bumps the version.
	version, ok = c.Version(ctx, EntityEmployee)
	require.True(t, ok)
	c.InvalidateEntity(ctx, EntityEmployee)
	c.SetIfVersion(ctx, EntityEmployee, 4, version, record{ID: 4, Name: "old"})
	assert.False(t, mr.Exists("test:employee:4"))

	// A fresh read fills normally.
	fill(ctx, c, EntityEmployee, 4, record{ID: 4, Name: "new"})
	var got record
	require.True(t, c.Get(ctx, EntityEmployee, 4, &got))
	assert.Equal(t, "new", got.Name)
}

func TestVersionSurvivesInvalidateEntity(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	c.Invalidate(ctx, EntityProject, 1)
	c.InvalidateEntity(ctx, EntityProject)
	assert.True(t, mr.Exists("test:version:project"))

	version, ok := c.Version(ctx, EntityProject)
	require.True(t, ok)
	assert.Equal(t, int64(2), version)

	other, ok := c.Version(ctx, EntityDepartment)
	require.True(t, ok)
	assert.Equal(t, int64(0), other)
}

func TestGetIgnoresCorruptEntries(t *testing.T) {
	c, mr := setupTestCache(t)
	require.NoError(t, mr.Set("test:project:3", "{not json"))

	var got record
	assert.False(t, c.Get(context.Background(), EntityProject, 3, &got))
}

func TestUnavailableRedisIsAMiss(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	c := NewEntityCache(client, "test", time.Minute, zap.NewNop())
	mr.Close()

	var got record
	assert.False(t, c.Get(context.Background(), EntityDepartment, 1, &got))
	assert.NotPanics(t, func() {
		_, ok := c.Version(context.Background(), EntityDepartment)
		assert.False(t, ok)
		c.SetIfVersion(context.Background(), EntityDepartment, 1, 0, record{ID: 1})
		c.Invalidate(context.Background(), EntityDepartment, 1)
	})
}

func TestNilCacheIsDisabled(t *testing.T) {
	c := NewEntityCache(nil, "x", time.Minute, zap.NewNop())
	assert.Nil(t, c)

	var got record
	assert.False(t, c.Get(context.Background(), EntityDepartment, 1, &got))
	assert.NotPanics(t, func() {
		_, ok := c.Version(context.Background(), EntityDepartment)
		assert.False(t, ok)
		c.SetIfVersion(context.Background(), EntityDepartment, 1, 0, record{})
		c.Invalidate(context.Background(), EntityDepartment, 1)
		c.InvalidateEntity(context.Background(), EntityDepartment)
	})
}
