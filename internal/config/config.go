// Package config loads the viewer configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"net"
	"os"
	"time"

	"github.com/zeusync/proxyviz/internal/core/geo"
	"github.com/zeusync/proxyviz/internal/core/observability/log"
	"github.com/zeusync/proxyviz/internal/core/scene"
	"github.com/zeusync/proxyviz/internal/core/visualizer"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidFrameRate = errors.New("frame rate must be positive")
	ErrInvalidFrames    = errors.New("frame count must not be negative")
	ErrInvalidTimeScale = errors.New("time scale must be positive")
	ErrMissingScene     = errors.New("scene path is empty")
	ErrInvalidKeyframe  = errors.New("camera keyframe needs [lon, lat, height]")
	ErrInvalidColor     = errors.New("default color needs four components in 0..255")
	ErrInvalidScale     = errors.New("default scale must be positive")
	ErrInvalidAddr      = errors.New("inspector address is invalid")
)

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Scene      SceneConfig      `yaml:"scene"`
	Camera     CameraConfig     `yaml:"camera"`
	Inspector  InspectorConfig  `yaml:"inspector"`
	Visualizer VisualizerConfig `yaml:"visualizer"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SceneConfig drives the frame loop. Scene time starts at Start and advances
// by TimeScale seconds per wall-clock second.
type SceneConfig struct {
	Path      string    `yaml:"path"`
	Start     time.Time `yaml:"start"`
	FrameRate float64   `yaml:"frameRate"`
	Frames    int       `yaml:"frames"`
	TimeScale float64   `yaml:"timeScale"`
}

type CameraConfig struct {
	Keyframes []KeyframeConfig `yaml:"keyframes"`
}

// KeyframeConfig places the camera at Offset after the scene start.
type KeyframeConfig struct {
	Offset  time.Duration `yaml:"offset"`
	Degrees []float64     `yaml:"degrees"`
}

type InspectorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type VisualizerConfig struct {
	DefaultScale float64 `yaml:"defaultScale"`
	DefaultColor []int   `yaml:"defaultColor"`
}

func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Scene: SceneConfig{
			FrameRate: 30,
			TimeScale: 1,
		},
		Inspector: InspectorConfig{Addr: "127.0.0.1:8089"},
		Visualizer: VisualizerConfig{
			DefaultScale: 1,
			DefaultColor: []int{255, 255, 255, 255},
		},
	}
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes r over the defaults and validates the result.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = errors.Join(errs, err)
	}
	if c.Scene.Path == "" {
		errs = errors.Join(errs, ErrMissingScene)
	}
	if c.Scene.FrameRate <= 0 {
		errs = errors.Join(errs, ErrInvalidFrameRate)
	}
	if c.Scene.Frames < 0 {
		errs = errors.Join(errs, ErrInvalidFrames)
	}
	if c.Scene.TimeScale <= 0 {
		errs = errors.Join(errs, ErrInvalidTimeScale)
	}
	for i, k := range c.Camera.Keyframes {
		if len(k.Degrees) != 3 {
			errs = errors.Join(errs, fmt.Errorf("keyframe %d: %w", i, ErrInvalidKeyframe))
		}
	}
	if c.Inspector.Enabled {
		if _, _, err := net.SplitHostPort(c.Inspector.Addr); err != nil {
			errs = errors.Join(errs, fmt.Errorf("%w: %w", ErrInvalidAddr, err))
		}
	}
	if c.Visualizer.DefaultScale <= 0 {
		errs = errors.Join(errs, ErrInvalidScale)
	}
	if _, err := c.Visualizer.color(); err != nil {
		errs = errors.Join(errs, err)
	}
	return errs
}

func (c Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}

// FrameInterval is the wall-clock time between two frames.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.Scene.FrameRate)
}

// SceneTime maps a frame number to scene time.
func (c Config) SceneTime(frame uint64) time.Time {
	elapsed := float64(frame) * float64(c.FrameInterval()) * c.Scene.TimeScale
	return c.Scene.Start.Add(time.Duration(elapsed))
}

func (c Config) VisualizerSettings() visualizer.Config {
	col, err := c.Visualizer.color()
	if err != nil {
		col = visualizer.DefaultConfig().DefaultColor
	}
	return visualizer.Config{
		DefaultColor: col,
		DefaultScale: c.Visualizer.DefaultScale,
	}
}

// FlightCamera builds the camera from the keyframes. Without keyframes the
// camera sits at the earth's center.
func (c Config) FlightCamera(ellipsoid geo.Ellipsoid) *scene.Camera {
	keyframes := make([]scene.Keyframe, 0, len(c.Camera.Keyframes))
	for _, k := range c.Camera.Keyframes {
		if len(k.Degrees) != 3 {
			continue
		}
		keyframes = append(keyframes, scene.Keyframe{
			At:     c.Scene.Start.Add(k.Offset),
			Lon:    k.Degrees[0],
			Lat:    k.Degrees[1],
			Height: k.Degrees[2],
		})
	}
	return scene.NewFlightCamera(ellipsoid, keyframes...)
}

func (v VisualizerConfig) color() (color.NRGBA, error) {
	if len(v.DefaultColor) != 4 {
		return color.NRGBA{}, ErrInvalidColor
	}
	var out [4]uint8
	for i, c := range v.DefaultColor {
		if c < 0 || c > 255 {
			return color.NRGBA{}, ErrInvalidColor
		}
		out[i] = uint8(c)
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: out[3]}, nil
}
