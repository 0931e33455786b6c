// Package entity holds the live entity set a visualizer draws from, and the
// batched change feeds that report its mutations.
package entity

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/proxyviz/internal/core/graphics"
	"github.com/zeusync/proxyviz/internal/core/property"
)

type ID string

// Entity is an identity plus the properties a proxy visualizer reads. A nil
// Position or Proxy means the attribute is undefined.
type Entity struct {
	id   ID
	Name string

	Position     property.Property[mgl64.Vec3]
	Proxy        *graphics.ProxyGraphics
	Availability *property.Interval
}

// New creates an entity. An empty id is replaced with a random UUID.
func New(id string) *Entity {
	if id == "" {
		id = uuid.NewString()
	}
	return &Entity{id: ID(id)}
}

func (e *Entity) ID() ID { return e.id }

// IsAvailable reports whether t lies inside the entity's availability. An
// entity without availability is always available.
func (e *Entity) IsAvailable(t time.Time) bool {
	return e.Availability == nil || e.Availability.Contains(t)
}

// Visualizable reports whether the entity has both a proxy and a position.
func (e *Entity) Visualizable() bool {
	return e.Proxy != nil && e.Position != nil
}
