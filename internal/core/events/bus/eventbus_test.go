package bus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	mu        sync.Mutex
	delivered int
	lastErr   error
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.delivered += handlers
	o.lastErr = err
}

func TestPublishSubscribe(t *testing.T) {
	b := New()
	var got []any
	sub, err := b.Subscribe("proxy.created", func(e Event) error {
		got = append(got, e.Data())
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, "proxy.created", sub.EventType())

	require.NoError(t, b.Publish(NewEvent("proxy.created", "test", "a", nil)))
	require.NoError(t, b.Publish(NewEvent("proxy.destroyed", "test", "b", nil)))
	assert.Equal(t, []any{"a"}, got)
}

func TestWildcardReceivesEverything(t *testing.T) {
	b := New()
	count := 0
	_, err := b.Subscribe(Wildcard, func(Event) error { count++; return nil })
	require.NoError(t, err)

	require.NoError(t, b.PublishBatch(
		NewEvent("proxy.created", "test", nil, nil),
		NewEvent("proxy.lod_changed", "test", nil, nil),
	))
	assert.Equal(t, 2, count)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	count := 0
	sub, err := b.Subscribe("x", func(Event) error { count++; return nil })
	require.NoError(t, err)

	require.NoError(t, b.Unsubscribe(sub))
	assert.False(t, sub.IsActive())
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Unsubscribe(nil))

	require.NoError(t, b.Publish(NewEvent("x", "test", nil, nil)))
	assert.Equal(t, 0, count)

	_, err = b.Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestPublishJoinsHandlerErrors(t *testing.T) {
	b := New()
	e1, e2 := errors.New("one"), errors.New("two")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.Publish(NewEvent("x", "test", nil, nil))
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)

	err = b.PublishBatch(NewEvent("x", "test", nil, nil), NewEvent("y", "test", nil, nil))
	assert.ErrorIs(t, err, e1)
}

func TestMetricsOnlyWithObserver(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	assert.Equal(t, Metrics{}, b.Metrics())

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	m := b.Metrics()
	assert.EqualValues(t, 1, m.Published)
	assert.EqualValues(t, 1, m.DeliveredHandlers)
	assert.EqualValues(t, 1, m.SubscribersActive)
	assert.Equal(t, 1, obs.delivered)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	assert.EqualValues(t, 1, b.Metrics().Published)
}
