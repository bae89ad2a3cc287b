// Package config loads engine settings from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/light"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/renderer"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

const (
	defaultTitle    = "oxy-scenegraph"
	defaultWidth    = 1280
	defaultHeight   = 720
	defaultTickRate = 60
)

// Config is the file form of the engine, window and backend settings. Zero
// values mean "use the default".
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Render  RenderConfig  `yaml:"render"`
	Window  WindowConfig  `yaml:"window"`
	Backend BackendConfig `yaml:"backend"`
}

// EngineConfig configures the frame pipeline.
type EngineConfig struct {
	Frames      int     `yaml:"frames"`
	CullWorkers int     `yaml:"cull_workers"`
	TickRate    float64 `yaml:"tick_rate"` // negative for uncapped
	Profiling   bool    `yaml:"profiling"`
	PlaneState  string  `yaml:"plane_state"` // "subtree" (default) or "traversal"
}

// RenderConfig selects the render path.
type RenderConfig struct {
	Path       string `yaml:"path"` // only "forward"
	Shadows    bool   `yaml:"shadows"`
	ShadowSize int    `yaml:"shadow_size"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type BackendConfig struct {
	PresentMode     string `yaml:"present_mode"` // "vsync" or "uncapped"
	MSAA            int    `yaml:"msaa"`         // 1 or 4
	SoftwareAdapter bool   `yaml:"software_adapter"`
}

// Default returns a Config with every default filled in.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads and parses the YAML file at path.
//
// Parameters:
//   - path: file to read
//
// Returns:
//   - Config: the parsed configuration with defaults applied
//   - error: if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w (%s)", err, path)
	}
	common.Logger().Debug("config loaded", "path", path)
	return c, nil
}

// Parse decodes YAML, applies defaults and validates the result. Unknown keys
// are rejected.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - Config: the parsed configuration
//   - error: a decode error or one wrapping ErrInvalid
func Parse(data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	c.Engine.Frames = common.Coalesce(c.Engine.Frames, frame.MaxFrames)
	c.Engine.TickRate = common.Coalesce(c.Engine.TickRate, defaultTickRate)
	c.Engine.PlaneState = common.Coalesce(strings.ToLower(c.Engine.PlaneState), "subtree")
	c.Render.Path = common.Coalesce(strings.ToLower(c.Render.Path), "forward")
	c.Render.ShadowSize = common.Coalesce(c.Render.ShadowSize, light.ShadowMapResolution)
	c.Window.Title = common.Coalesce(c.Window.Title, defaultTitle)
	c.Window.Width = common.Coalesce(c.Window.Width, defaultWidth)
	c.Window.Height = common.Coalesce(c.Window.Height, defaultHeight)
	c.Backend.PresentMode = common.Coalesce(strings.ToLower(c.Backend.PresentMode), "vsync")
	c.Backend.MSAA = common.Coalesce(c.Backend.MSAA, int(renderer.MSAA4x))
}

// Validate reports every invalid field, joined, each wrapping ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if c.Engine.Frames < 1 || c.Engine.Frames > frame.MaxFrames {
		bad("engine.frames %d out of range [1,%d]", c.Engine.Frames, frame.MaxFrames)
	}
	if c.Engine.CullWorkers < 0 {
		bad("engine.cull_workers %d is negative", c.Engine.CullWorkers)
	}
	switch c.Engine.PlaneState {
	case "traversal", "subtree":
	default:
		bad("engine.plane_state %q is not traversal or subtree", c.Engine.PlaneState)
	}
	if c.Render.Path != "forward" {
		bad("render.path %q is not supported", c.Render.Path)
	}
	if c.Render.ShadowSize < 0 {
		bad("render.shadow_size %d is negative", c.Render.ShadowSize)
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		bad("window size %dx%d is negative", c.Window.Width, c.Window.Height)
	}
	switch c.Backend.PresentMode {
	case "vsync", "uncapped":
	default:
		bad("backend.present_mode %q is not vsync or uncapped", c.Backend.PresentMode)
	}
	if c.Backend.MSAA != int(renderer.MSAAOff) && c.Backend.MSAA != int(renderer.MSAA4x) {
		bad("backend.msaa %d is not 1 or 4", c.Backend.MSAA)
	}
	return errors.Join(errs...)
}

// PresentMode returns the backend present mode.
func (c Config) PresentMode() renderer.PresentMode {
	if c.Backend.PresentMode == "uncapped" {
		return renderer.PresentModeUncapped
	}
	return renderer.PresentModeVSync
}

// MSAA returns the backend sample count.
func (c Config) MSAA() renderer.MSAASampleCount {
	return renderer.MSAASampleCount(c.Backend.MSAA)
}

// RenderPath builds the configured render path.
//
// Parameters:
//   - options: extra options appended after the configured ones, such as hooks
//
// Returns:
//   - renderer.RenderPath: the path; the engine calls Setup
func (c Config) RenderPath(options ...renderer.ForwardPathBuilderOption) renderer.RenderPath {
	base := []renderer.ForwardPathBuilderOption{renderer.WithShadows(c.Render.Shadows, c.Render.ShadowSize)}
	return renderer.NewForwardPath(append(base, options...)...)
}

// EngineOptions converts the engine and render sections to engine options.
// Collaborators such as the root, camera and backend are left to the caller.
//
// Returns:
//   - []engine.EngineBuilderOption: options for engine.NewEngine
func (c Config) EngineOptions() []engine.EngineBuilderOption {
	tick := c.Engine.TickRate
	if tick < 0 {
		tick = 0
	}
	return []engine.EngineBuilderOption{
		engine.WithFrames(c.Engine.Frames),
		engine.WithCullWorkers(c.Engine.CullWorkers),
		engine.WithTickRate(tick),
		engine.WithProfiling(c.Engine.Profiling),
		engine.WithPlaneStateScope(c.Engine.PlaneState == "subtree"),
		engine.WithRenderPath(c.RenderPath()),
	}
}
