package main

import (
	"context"
	"time"

	"github.com/zeusync/proxyviz/internal/core/observability/log"
	"github.com/zeusync/proxyviz/internal/injector"
	"github.com/zeusync/proxyviz/internal/inspector"
)

// statsEvery is how many frames pass between two progress log lines.
const statsEvery = 100

type loop struct {
	app    *injector.App
	logger log.Log
}

func newLoop(app *injector.App) *loop {
	return &loop{app: app, logger: app.Logger.Named("loop")}
}

// run renders frames at the configured rate until ctx is done or the
// configured frame count is reached.
func (l *loop) run(ctx context.Context) error {
	cfg := l.app.Config
	ticker := time.NewTicker(cfg.FrameInterval())
	defer ticker.Stop()

	l.logger.Info("frame loop started",
		log.Duration("interval", cfg.FrameInterval()),
		log.Int("frames", cfg.Scene.Frames),
		log.Time("start", cfg.Scene.Start))

	for n := uint64(0); cfg.Scene.Frames == 0 || n < uint64(cfg.Scene.Frames); n++ {
		if err := l.frame(n); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func (l *loop) frame(n uint64) error {
	t := l.app.Config.SceneTime(n)
	fs, err := l.app.Scene.Render(t)
	if err != nil {
		return err
	}

	vis := l.app.Scene.Visualizer()
	stats := vis.Stats()
	if n%statsEvery == 0 {
		l.logger.Debug("frame rendered",
			log.Uint64("frame", fs.Number),
			log.Time("scene_time", t),
			log.Int("commands", fs.Commands.Len()),
			log.Int("tracked", stats.Tracked),
			log.Uint64("attribute_writes", stats.AttributeWrites),
			log.Uint64("suppressed_writes", stats.SuppressedWrites))
	}

	if l.app.Inspector != nil {
		return l.app.Inspector.Publish(inspector.Snapshot{
			Frame:    fs.Number,
			Time:     t,
			Stats:    stats,
			Events:   l.app.Events.Metrics(),
			Entities: vis.Snapshot(),
		})
	}
	return nil
}
