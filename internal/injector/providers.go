package injector

import (
	"fmt"

	"github.com/google/wire"
	"github.com/zeusync/proxyviz/internal/config"
	"github.com/zeusync/proxyviz/internal/core/document"
	"github.com/zeusync/proxyviz/internal/core/entity"
	"github.com/zeusync/proxyviz/internal/core/events/bus"
	"github.com/zeusync/proxyviz/internal/core/geo"
	"github.com/zeusync/proxyviz/internal/core/observability/log"
	"github.com/zeusync/proxyviz/internal/core/scene"
	"github.com/zeusync/proxyviz/internal/core/visualizer"
	"github.com/zeusync/proxyviz/internal/inspector"
)

// App is everything the viewer needs to run. Inspector is nil when disabled.
type App struct {
	Config    config.Config
	Logger    log.Log
	Events    bus.EventBus
	Scene     *scene.Scene
	Inspector *inspector.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideEventBus,
	ProvideEntities,
	ProvideCamera,
	ProvideScene,
	ProvideInspector,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) log.Log {
	return log.New(cfg.LogLevel())
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

// ProvideEntities loads the scene document. Packets that cannot be converted
// are logged and skipped.
func ProvideEntities(cfg config.Config, logger log.Log) (*entity.Collection, error) {
	doc, err := document.Load(cfg.Scene.Path)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", cfg.Scene.Path, err)
	}
	entities := entity.NewCollection()
	if err := doc.Apply(entities, geo.WGS84); err != nil {
		logger.Warn("scene document has invalid packets", log.String("path", cfg.Scene.Path), log.Error(err))
	}
	logger.Info("scene loaded",
		log.String("path", cfg.Scene.Path),
		log.String("name", doc.Name),
		log.Int("entities", entities.Len()))
	return entities, nil
}

func ProvideCamera(cfg config.Config) *scene.Camera {
	return cfg.FlightCamera(geo.WGS84)
}

func ProvideScene(cfg config.Config, entities *entity.Collection, camera *scene.Camera, events bus.EventBus, logger log.Log) (*scene.Scene, error) {
	return scene.New(cfg.VisualizerSettings(), entities, camera, logger, visualizer.WithEventBus(events))
}

func ProvideInspector(cfg config.Config, events bus.EventBus, logger log.Log) (*inspector.Server, error) {
	if !cfg.Inspector.Enabled {
		return nil, nil
	}
	s := inspector.New(cfg.Inspector.Addr, logger)
	if err := s.Attach(events); err != nil {
		return nil, err
	}
	return s, nil
}
