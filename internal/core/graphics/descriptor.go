package graphics

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

var (
	ErrUnknownKind       = errors.New("unknown representation kind")
	ErrMissingAsset      = errors.New("representation asset reference is empty")
	ErrNegativeThreshold = errors.New("representation distance threshold is negative")
)

// Kind names a representation variant.
type Kind uint8

const (
	KindModel Kind = iota + 1
	KindBillboard
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindBillboard:
		return "billboard"
	default:
		return "unknown"
	}
}

// ParseKind maps the declarative type string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "model":
		return KindModel, nil
	case "billboard":
		return KindBillboard, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Descriptor declares one representation of an entity. The variants are
// ModelDescriptor and BillboardDescriptor.
type Descriptor interface {
	Kind() Kind
	// Threshold is the minimum viewer distance at which the representation
	// becomes eligible.
	Threshold() float64
	Asset() string
	Validate() error
}

// ModelDescriptor is a 3D model placed with a full pose.
type ModelDescriptor struct {
	URI              string
	MinimumPixelSize float64
	Scale            float64
	Distance         float64
}

func (d ModelDescriptor) Kind() Kind         { return KindModel }
func (d ModelDescriptor) Threshold() float64 { return d.Distance }
func (d ModelDescriptor) Asset() string      { return d.URI }

func (d ModelDescriptor) Validate() error {
	if d.URI == "" {
		return fmt.Errorf("model: %w", ErrMissingAsset)
	}
	return validateThreshold(d.Distance)
}

// BillboardDescriptor is a flat sprite. Zero Scale means "use the entity
// scale"; a nil Color means "use the entity color".
type BillboardDescriptor struct {
	Image    string
	Scale    float64
	Color    *color.NRGBA
	Rotation float64
	Distance float64
}

func (d BillboardDescriptor) Kind() Kind         { return KindBillboard }
func (d BillboardDescriptor) Threshold() float64 { return d.Distance }
func (d BillboardDescriptor) Asset() string      { return d.Image }

func (d BillboardDescriptor) Validate() error {
	if d.Image == "" {
		return fmt.Errorf("billboard: %w", ErrMissingAsset)
	}
	return validateThreshold(d.Distance)
}

func validateThreshold(d float64) error {
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: %g", ErrNegativeThreshold, d)
	}
	return nil
}
