package property

import "time"

// TimedValue binds a property to the interval where it applies.
type TimedValue[T any] struct {
	Interval Interval
	Data     Property[T]
}

// Intervals picks the first interval containing t and evaluates its data.
// Outside every interval there is no value.
type Intervals[T any] struct {
	entries []TimedValue[T]
}

func NewIntervals[T any](entries ...TimedValue[T]) *Intervals[T] {
	return &Intervals[T]{entries: entries}
}

func (p *Intervals[T]) Add(interval Interval, data Property[T]) {
	p.entries = append(p.entries, TimedValue[T]{Interval: interval, Data: data})
}

func (p *Intervals[T]) Len() int { return len(p.entries) }

func (p *Intervals[T]) Value(t time.Time) (T, bool) {
	for _, e := range p.entries {
		if e.Interval.Contains(t) {
			return Resolve(e.Data, t)
		}
	}
	var zero T
	return zero, false
}
