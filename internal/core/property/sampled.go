package property

import (
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Interpolator blends a towards b by fraction f in [0, 1].
type Interpolator[T any] func(a, b T, f float64) T

func LerpFloat64(a, b float64, f float64) float64 { return a + (b-a)*f }

func LerpVec3(a, b mgl64.Vec3, f float64) mgl64.Vec3 { return a.Add(b.Sub(a).Mul(f)) }

// Step holds the earlier sample until the next one is reached.
func Step[T any](a, _ T, _ float64) T { return a }

// Extrapolation decides what a sampled property returns outside its samples.
type Extrapolation uint8

const (
	ExtrapolateNone Extrapolation = iota
	ExtrapolateHold
)

type Sample[T any] struct {
	Time  time.Time
	Value T
}

// Sampled interpolates between time-ordered samples.
type Sampled[T any] struct {
	samples     []Sample[T]
	interpolate Interpolator[T]

	Forward  Extrapolation
	Backward Extrapolation
}

func NewSampled[T any](interpolate Interpolator[T]) *Sampled[T] {
	if interpolate == nil {
		interpolate = Step[T]
	}
	return &Sampled[T]{interpolate: interpolate}
}

// AddSample inserts a sample, replacing one at the same time.
func (s *Sampled[T]) AddSample(t time.Time, v T) {
	i := sort.Search(len(s.samples), func(i int) bool {
		return !s.samples[i].Time.Before(t)
	})
	if i < len(s.samples) && s.samples[i].Time.Equal(t) {
		s.samples[i].Value = v
		return
	}
	s.samples = append(s.samples, Sample[T]{})
	copy(s.samples[i+1:], s.samples[i:])
	s.samples[i] = Sample[T]{Time: t, Value: v}
}

func (s *Sampled[T]) Len() int { return len(s.samples) }

func (s *Sampled[T]) Value(t time.Time) (T, bool) {
	var zero T
	n := len(s.samples)
	if n == 0 {
		return zero, false
	}

	first, last := s.samples[0], s.samples[n-1]
	if t.Before(first.Time) {
		if s.Backward == ExtrapolateHold {
			return first.Value, true
		}
		return zero, false
	}
	if t.After(last.Time) {
		if s.Forward == ExtrapolateHold {
			return last.Value, true
		}
		return zero, false
	}

	// first sample strictly after t
	j := sort.Search(n, func(i int) bool { return s.samples[i].Time.After(t) })
	if j == n {
		return last.Value, true
	}
	a, b := s.samples[j-1], s.samples[j]
	if a.Time.Equal(t) {
		return a.Value, true
	}
	span := b.Time.Sub(a.Time)
	f := float64(t.Sub(a.Time)) / float64(span)
	return s.interpolate(a.Value, b.Value, f), true
}
