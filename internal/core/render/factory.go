package render

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/proxyviz/internal/core/entity"
	"github.com/zeusync/proxyviz/internal/core/graphics"
	"github.com/zeusync/proxyviz/internal/core/proxy"
)

var ErrUnsupportedDescriptor = errors.New("unsupported representation descriptor")

// Factory builds representations from descriptors. Model templates are shared
// per asset URI; billboards come from the collection handed in at
// construction.
type Factory struct {
	billboards *BillboardCollection
	templates  map[uint64]*ModelTemplate
}

func NewFactory(billboards *BillboardCollection) *Factory {
	return &Factory{
		billboards: billboards,
		templates:  make(map[uint64]*ModelTemplate),
	}
}

func (f *Factory) Create(owner *entity.Entity, d graphics.Descriptor, init graphics.Appearance) (proxy.Renderable, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	ownerID := ""
	if owner != nil {
		ownerID = string(owner.ID())
	}

	switch desc := d.(type) {
	case graphics.ModelDescriptor:
		return newModel(ownerID, f.template(desc.URI), desc.MinimumPixelSize, desc.Scale), nil
	case graphics.BillboardDescriptor:
		if f.billboards == nil {
			return nil, fmt.Errorf("billboard %q: no billboard collection", desc.Image)
		}
		b, err := f.billboards.Add(BillboardOptions{
			Owner:        ownerID,
			Image:        desc.Image,
			Show:         false,
			Position:     init.Position,
			Rotation:     init.Rotation,
			Scale:        init.Scale,
			Color:        init.Color,
			BaseScale:    desc.Scale,
			BaseRotation: desc.Rotation,
			FixedColor:   desc.Color,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedDescriptor, d)
	}
}

// Templates is the number of distinct model assets seen so far.
func (f *Factory) Templates() int { return len(f.templates) }

func (f *Factory) template(uri string) *ModelTemplate {
	key := xxhash.Sum64String(uri)
	if t, ok := f.templates[key]; ok && t.URI == uri {
		return t
	}
	t := &ModelTemplate{URI: uri, Key: key}
	f.templates[key] = t
	return t
}
