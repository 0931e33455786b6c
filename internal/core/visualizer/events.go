package visualizer

// Lifecycle event types published on the bus after a frame or a change batch.
const (
	EventProxyCreated    = "proxy.created"
	EventProxyDestroyed  = "proxy.destroyed"
	EventProxyLODChanged = "proxy.lod_changed"
)

const eventSource = "visualizer"

// ProxyEvent is the payload of every lifecycle event. Previous is only set for
// EventProxyLODChanged; it is -1 when the proxy had not chosen a level before.
type ProxyEvent struct {
	EntityID    string `json:"entity_id"`
	ActiveIndex int    `json:"active_index"`
	Previous    int    `json:"previous"`
}
