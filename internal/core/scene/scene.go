// Package scene wires the entity collection, the billboard collection, the
// render factory and the proxy visualizer into one frame loop.
package scene

import (
	"errors"
	"fmt"
	"time"

	"github.com/zeusync/proxyviz/internal/core/entity"
	"github.com/zeusync/proxyviz/internal/core/frame"
	"github.com/zeusync/proxyviz/internal/core/observability/log"
	"github.com/zeusync/proxyviz/internal/core/render"
	"github.com/zeusync/proxyviz/internal/core/visualizer"
)

var (
	ErrClosed    = errors.New("scene is closed")
	ErrNilCamera = errors.New("scene needs a camera")
)

// Scene owns every resource it creates. Close tears them down in reverse
// order: proxies first, then the billboard collection they draw from.
type Scene struct {
	Entities *entity.Collection
	Camera   *Camera

	billboards *render.BillboardCollection
	factory    *render.Factory
	visualizer *visualizer.Visualizer
	logger     log.Log

	frame  uint64
	closed bool
}

func New(cfg visualizer.Config, entities *entity.Collection, camera *Camera, logger log.Log, opts ...visualizer.Option) (*Scene, error) {
	if camera == nil {
		return nil, ErrNilCamera
	}
	if logger == nil {
		logger = log.NewNop()
	}
	if entities == nil {
		entities = entity.NewCollection()
	}

	billboards := render.NewBillboardCollection()
	factory := render.NewFactory(billboards)
	vis, err := visualizer.New(cfg, entities, factory, camera, logger, opts...)
	if err != nil {
		_ = billboards.Destroy()
		return nil, fmt.Errorf("create visualizer: %w", err)
	}

	return &Scene{
		Entities:   entities,
		Camera:     camera,
		billboards: billboards,
		factory:    factory,
		visualizer: vis,
		logger:     logger.Named("scene"),
	}, nil
}

// Render produces the draw commands of the frame at t.
func (s *Scene) Render(t time.Time) (*frame.State, error) {
	if s.closed {
		return nil, ErrClosed
	}
	s.frame++
	s.Camera.MoveTo(t)

	if err := s.visualizer.Sync(); err != nil {
		return nil, err
	}
	fs := frame.NewState(s.frame, t, s.Camera.Position())
	s.visualizer.UpdateFrame(fs)
	s.billboards.Update(fs)
	return fs, nil
}

func (s *Scene) Visualizer() *visualizer.Visualizer { return s.visualizer }

func (s *Scene) Billboards() *render.BillboardCollection { return s.billboards }

// ModelTemplates is the number of distinct model assets loaded so far.
func (s *Scene) ModelTemplates() int { return s.factory.Templates() }

func (s *Scene) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	var errs error
	if err := s.visualizer.Destroy(); err != nil {
		errs = errors.Join(errs, err)
	}
	if err := s.billboards.Destroy(); err != nil {
		errs = errors.Join(errs, err)
	}
	s.logger.Info("scene closed", log.Uint64("frames", s.frame))
	return errs
}
