// Package property evaluates time-sampled attributes. A Property answers
// "what is the value at time t", or reports that it has none.
package property

import (
	"time"
)

type Property[T any] interface {
	Value(t time.Time) (T, bool)
}

// Func adapts a plain function to Property.
type Func[T any] func(t time.Time) (T, bool)

func (f Func[T]) Value(t time.Time) (T, bool) { return f(t) }

// Constant has the same value at every time.
type Constant[T any] struct {
	V T
}

func NewConstant[T any](v T) *Constant[T] { return &Constant[T]{V: v} }

func (c *Constant[T]) Value(time.Time) (T, bool) { return c.V, true }

// Resolve evaluates p at t. A nil property has no value.
func Resolve[T any](p Property[T], t time.Time) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return p.Value(t)
}

// ValueOrDefault evaluates p at t and falls back to def when p is nil or has
// no value.
func ValueOrDefault[T any](p Property[T], t time.Time, def T) T {
	if v, ok := Resolve(p, t); ok {
		return v
	}
	return def
}

// Interval is a closed time range. A zero Start or Stop leaves that side open.
type Interval struct {
	Start time.Time
	Stop  time.Time
}

func (i Interval) Contains(t time.Time) bool {
	if !i.Start.IsZero() && t.Before(i.Start) {
		return false
	}
	if !i.Stop.IsZero() && t.After(i.Stop) {
		return false
	}
	return true
}

// IsEmpty reports whether the interval cannot contain any time.
func (i Interval) IsEmpty() bool {
	return !i.Start.IsZero() && !i.Stop.IsZero() && i.Stop.Before(i.Start)
}
