package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/proxyviz/internal/core/events/bus"
	"github.com/zeusync/proxyviz/internal/core/observability/log"
	"github.com/zeusync/proxyviz/internal/core/visualizer"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestSnapshotAndEventStream(t *testing.T) {
	s := New("", nil)
	ts := httptest.NewServer(s)
	defer ts.Close()

	require.NoError(t, s.Publish(Snapshot{
		Frame:    1,
		Stats:    visualizer.Stats{Frames: 1, Tracked: 1},
		Entities: []visualizer.EntityState{{ID: "plane", Materialized: true, Show: true, ActiveIndex: 0, Levels: 3}},
	}))

	conn := dial(t, ts)
	msg := read(t, conn)
	require.Equal(t, MessageSnapshot, msg.Type)
	require.NotNil(t, msg.Snapshot)
	assert.EqualValues(t, 1, msg.Snapshot.Frame)
	assert.Equal(t, "plane", msg.Snapshot.Entities[0].ID)
	assert.Equal(t, 1, s.Clients())

	b := bus.New()
	require.NoError(t, s.Attach(b))
	assert.ErrorIs(t, s.Attach(b), ErrAttached)
	require.NoError(t, b.Publish(bus.NewEvent(visualizer.EventProxyLODChanged, "test",
		visualizer.ProxyEvent{EntityID: "plane", ActiveIndex: 2, Previous: 1}, nil)))
	require.NoError(t, b.Publish(bus.NewEvent("unrelated", "test", 42, nil)))

	msg = read(t, conn)
	require.Equal(t, MessageEvent, msg.Type)
	assert.Equal(t, visualizer.EventProxyLODChanged, msg.Event.Type)
	assert.Equal(t, 2, msg.Event.Proxy.ActiveIndex)

	require.NoError(t, s.Publish(Snapshot{Frame: 2, Events: b.Metrics()}))
	msg = read(t, conn)
	assert.EqualValues(t, 2, msg.Snapshot.Frame)
	assert.EqualValues(t, 2, msg.Snapshot.Events.Published)
	assert.EqualValues(t, 1, msg.Snapshot.Events.SubscribersActive)
}

func TestDetachStopsForwarding(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := New("", log.FromZap(zap.New(core), log.LevelDebug))
	b := bus.New()
	require.NoError(t, s.Attach(b))

	_, err := b.Subscribe("proxy.fail", func(bus.Event) error { return errors.New("boom") })
	require.NoError(t, err)
	assert.Error(t, b.Publish(bus.NewEvent("proxy.fail", "test", nil, nil)))

	entries := logs.FilterMessage("event delivery failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "proxy.fail", entries[0].ContextMap()["event_type"])
	assert.EqualValues(t, 1, b.Metrics().Errors)

	require.NoError(t, s.Detach())
	require.NoError(t, s.Detach())
	assert.Error(t, b.Publish(bus.NewEvent("proxy.fail", "test", nil, nil)))
	assert.Len(t, logs.FilterMessage("event delivery failed").All(), 1)
	assert.EqualValues(t, 1, b.Metrics().Published)

	require.NoError(t, s.Attach(b))
}

func TestSnapshotEndpoint(t *testing.T) {
	s := New("", nil)
	ts := httptest.NewServer(s)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/snapshot")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	require.NoError(t, s.Publish(Snapshot{Frame: 7}))
	res, err = http.Get(ts.URL + "/snapshot")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(body, &msg))
	assert.EqualValues(t, 7, msg.Snapshot.Frame)

	res, err = http.Post(ts.URL+"/snapshot", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)

	res, err = http.Get(ts.URL + "/other")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New("127.0.0.1:0", nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
