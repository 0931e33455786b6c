package entity

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/proxyviz/internal/core/graphics"
	"github.com/zeusync/proxyviz/internal/core/property"
)

func ids(list []*Entity) []ID {
	out := make([]ID, len(list))
	for i, e := range list {
		out[i] = e.ID()
	}
	return out
}

func TestNewGeneratesUUID(t *testing.T) {
	e := New("")
	_, err := uuid.Parse(string(e.ID()))
	assert.NoError(t, err)

	assert.Equal(t, ID("truck"), New("truck").ID())
}

func TestEntityPredicates(t *testing.T) {
	e := New("a")
	assert.False(t, e.Visualizable())
	e.Proxy = &graphics.ProxyGraphics{}
	assert.False(t, e.Visualizable())
	e.Position = property.NewConstant(mgl64.Vec3{})
	assert.True(t, e.Visualizable())

	now := time.Now()
	assert.True(t, e.IsAvailable(now))
	e.Availability = &property.Interval{Start: now.Add(time.Hour)}
	assert.False(t, e.IsAvailable(now))
}

func TestCollectionBasics(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Add(New("b")))
	require.NoError(t, c.Add(New("a")))
	assert.ErrorIs(t, c.Add(New("a")), ErrDuplicateID)
	assert.ErrorIs(t, c.Add(nil), ErrNilEntity)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []ID{"a", "b"}, ids(c.Entities()))

	_, ok := c.Get("a")
	assert.True(t, ok)
	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
	assert.ErrorIs(t, c.Update("a", func(*Entity) {}), ErrNotFound)
}

func TestFeedBatches(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Add(New("existing")))

	f := c.Attach()
	assert.False(t, f.Pending())

	require.NoError(t, c.Add(New("x")))
	require.NoError(t, c.Add(New("y")))
	assert.True(t, c.Touch("existing"))
	assert.True(t, f.Pending())

	cs := f.Drain()
	assert.Equal(t, []ID{"x", "y"}, ids(cs.Added))
	assert.Equal(t, []ID{"existing"}, ids(cs.Changed))
	assert.Empty(t, cs.Removed)

	assert.True(t, f.Drain().Empty())
}

func TestFeedCoalescing(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Add(New("kept")))
	f := c.Attach()

	// added then removed inside one batch: invisible
	require.NoError(t, c.Add(New("ghost")))
	c.Touch("ghost")
	c.Remove("ghost")

	// removed then re-added: changed
	e, _ := c.Get("kept")
	c.Remove("kept")
	require.NoError(t, c.Add(e))

	// changed then removed: removed only
	require.NoError(t, c.Add(New("gone")))
	f.Drain()
	require.NoError(t, c.Update("gone", func(e *Entity) { e.Name = "renamed" }))
	c.Remove("gone")

	cs := f.Drain()
	assert.Empty(t, cs.Added)
	assert.Empty(t, cs.Changed)
	assert.Equal(t, []ID{"gone"}, ids(cs.Removed))
}

func TestFeedRemoveThenAdd(t *testing.T) {
	c := NewCollection()
	e := New("kept")
	require.NoError(t, c.Add(e))
	f := c.Attach()

	c.Remove("kept")
	require.NoError(t, c.Add(e))

	cs := f.Drain()
	assert.Empty(t, cs.Added)
	assert.Empty(t, cs.Removed)
	assert.Equal(t, []ID{"kept"}, ids(cs.Changed))
}

func TestDetach(t *testing.T) {
	c := NewCollection()
	f := c.Attach()
	require.NoError(t, c.Add(New("a")))

	require.NoError(t, c.Detach(f))
	assert.True(t, f.Detached())
	assert.False(t, f.Pending())
	assert.ErrorIs(t, c.Detach(f), ErrFeedNotActive)

	require.NoError(t, c.Add(New("b")))
	assert.False(t, f.Pending())
}
