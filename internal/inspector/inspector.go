// Package inspector streams visualizer state to debugging clients over
// websocket. Clients receive the latest snapshot on connect and then every
// snapshot and lifecycle event as it is published.
package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeusync/proxyviz/internal/core/events/bus"
	"github.com/zeusync/proxyviz/internal/core/observability/log"
	"github.com/zeusync/proxyviz/internal/core/visualizer"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoSnapshot = errors.New("no snapshot published yet")
	ErrAttached   = errors.New("inspector already attached to an event bus")
)

const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"

	writeTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Snapshot struct {
	Frame    uint64                   `json:"frame"`
	Time     time.Time                `json:"time"`
	Stats    visualizer.Stats         `json:"stats"`
	Events   bus.Metrics              `json:"events"`
	Entities []visualizer.EntityState `json:"entities"`
}

type Event struct {
	Type  string                `json:"type"`
	Proxy visualizer.ProxyEvent `json:"proxy"`
}

// Message is the envelope of everything sent to clients.
type Message struct {
	Type     string    `json:"type"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Event    *Event    `json:"event,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type Server struct {
	addr   string
	logger log.Log

	// mu serializes every write to a connection
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	latest  []byte

	events bus.EventBus
	sub    bus.Subscription
}

func New(addr string, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Server{
		addr:    addr,
		logger:  logger.Named("inspector"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("inspector listening", log.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.closeClients()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ws":
		s.handleWebSocket(w, r)
	case "/snapshot":
		s.handleSnapshot(w, r)
	default:
		http.NotFound(w, r)
	}
}

// Publish stores snap as the latest snapshot and sends it to every client.
func (s *Server) Publish(snap Snapshot) error {
	b, err := json.Marshal(Message{Type: MessageSnapshot, Snapshot: &snap})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = b
	s.broadcast(b)
	return nil
}

// Attach forwards the visualizer lifecycle events of b to the clients and
// registers the server as a delivery observer, which keeps b.Metrics() live
// for snapshots.
func (s *Server) Attach(b bus.EventBus) error {
	if s.events != nil {
		return ErrAttached
	}
	sub, err := b.Subscribe(bus.Wildcard, func(ev bus.Event) error {
		payload, ok := ev.Data().(visualizer.ProxyEvent)
		if !ok {
			return nil
		}
		msg, err := json.Marshal(Message{Type: MessageEvent, Event: &Event{Type: ev.Type(), Proxy: payload}})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.broadcast(msg)
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}
	b.AddObserver(s)
	s.events, s.sub = b, sub
	return nil
}

// Detach undoes Attach. It is a no-op when the server is not attached.
func (s *Server) Detach() error {
	if s.events == nil {
		return nil
	}
	s.events.RemoveObserver(s)
	err := s.sub.Cancel()
	s.events, s.sub = nil, nil
	return err
}

// OnDelivered logs deliveries that had a failing handler.
func (s *Server) OnDelivered(eventType string, handlers int, err error, took time.Duration) {
	if err == nil {
		return
	}
	s.logger.Warn("event delivery failed",
		log.String("event_type", eventType),
		log.Int("handlers", handlers),
		log.Duration("took", took),
		log.Error(err))
}

func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()
	if latest == nil {
		http.Error(w, ErrNoSnapshot.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(latest)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	s.mu.Lock()
	if s.latest != nil {
		if err := s.write(conn, s.latest); err != nil {
			s.mu.Unlock()
			conn.Close()
			return
		}
	}
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("client connected", log.String("remote_addr", conn.RemoteAddr().String()))

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	// clients only listen; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// broadcast must be called with s.mu held.
func (s *Server) broadcast(msg []byte) {
	for conn := range s.clients {
		if err := s.write(conn, msg); err != nil {
			s.logger.Debug("dropping client", log.String("remote_addr", conn.RemoteAddr().String()), log.Error(err))
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *Server) write(conn *websocket.Conn, msg []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, msg)
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeTimeout))
		conn.Close()
		delete(s.clients, conn)
	}
}
