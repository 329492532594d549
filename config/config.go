// Package config holds the settings an application built on framekit starts from. A Config can be read from YAML or TOML,
// with any field left out of the file keeping its default value.
package config

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/solarlune/framekit"
)

// Projection names accepted by CameraConfig.Projection.
const (
	ProjectionPerspective  = "perspective"
	ProjectionOrthographic = "orthographic"
)

// Control scheme names accepted by ControlsConfig.Kind.
const (
	ControlsOrbit = "orbit"
	ControlsFree  = "free"
	ControlsNone  = "none"
)

type WindowConfig struct {
	Title      string `yaml:"title" toml:"title"`
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Resizable  bool   `yaml:"resizable" toml:"resizable"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
	ClearColor string `yaml:"clear_color" toml:"clear_color"` // Hex colour the surface is cleared to each frame.
}

type ViewportConfig struct {
	DensityCap float64 `yaml:"density_cap" toml:"density_cap"` // Upper bound on the pixel density; 1 renders at CSS-pixel size.
}

type CameraConfig struct {
	Projection  string     `yaml:"projection" toml:"projection"`
	FieldOfView float64    `yaml:"fov" toml:"fov"`                   // Vertical, in degrees.
	OrthoHeight float64    `yaml:"ortho_height" toml:"ortho_height"` // Visible world height for orthographic cameras.
	Near        float64    `yaml:"near" toml:"near"`
	Far         float64    `yaml:"far" toml:"far"`
	Position    [3]float64 `yaml:"position" toml:"position"`
}

type ControlsConfig struct {
	Kind         string     `yaml:"kind" toml:"kind"`
	Target       [3]float64 `yaml:"target" toml:"target"`
	Damping      bool       `yaml:"damping" toml:"damping"`
	DampingDecay float64    `yaml:"damping_decay" toml:"damping_decay"`
	MinPolar     float64    `yaml:"min_polar" toml:"min_polar"` // Radians from +Y.
	MaxPolar     float64    `yaml:"max_polar" toml:"max_polar"`
	MinDistance  float64    `yaml:"min_distance" toml:"min_distance"`
	MaxDistance  float64    `yaml:"max_distance" toml:"max_distance"`
	GroundPlane  bool       `yaml:"ground_plane" toml:"ground_plane"`
	MoveSpeed    float64    `yaml:"move_speed" toml:"move_speed"` // Free camera only.
}

type LoopConfig struct {
	FPS int `yaml:"fps" toml:"fps"` // Frame rate for headless runs; the Ebiten host follows the display instead.
}

type AssetsConfig struct {
	Root           string `yaml:"root" toml:"root"`
	MaxTextureSize int    `yaml:"max_texture_size" toml:"max_texture_size"`
	Watch          bool   `yaml:"watch" toml:"watch"`
}

type DebugConfig struct {
	PanelVisible bool   `yaml:"panel_visible" toml:"panel_visible"`
	RemoteAddr   string `yaml:"remote_addr" toml:"remote_addr"` // Address for the remote panel server; empty disables it.
}

// Config is the full set of application settings.
type Config struct {
	Window   WindowConfig   `yaml:"window" toml:"window"`
	Viewport ViewportConfig `yaml:"viewport" toml:"viewport"`
	Camera   CameraConfig   `yaml:"camera" toml:"camera"`
	Controls ControlsConfig `yaml:"controls" toml:"controls"`
	Loop     LoopConfig     `yaml:"loop" toml:"loop"`
	Assets   AssetsConfig   `yaml:"assets" toml:"assets"`
	Debug    DebugConfig    `yaml:"debug" toml:"debug"`
	LogLevel string         `yaml:"log_level" toml:"log_level"`
}

// Default returns the settings of the basic example scene.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "framekit",
			Width:      800,
			Height:     600,
			Resizable:  true,
			ClearColor: "#000000",
		},
		Viewport: ViewportConfig{DensityCap: 2},
		Camera: CameraConfig{
			Projection:  ProjectionPerspective,
			FieldOfView: 75,
			OrthoHeight: 4,
			Near:        0.1,
			Far:         100,
			Position:    [3]float64{0, 0, 3},
		},
		Controls: ControlsConfig{
			Kind:         ControlsOrbit,
			Damping:      true,
			DampingDecay: 5,
			MinPolar:     0.1,
			MaxPolar:     math.Pi / 2,
			MinDistance:  1,
			MaxDistance:  20,
			GroundPlane:  true,
			MoveSpeed:    3,
		},
		Loop:     LoopConfig{FPS: 60},
		Assets:   AssetsConfig{Root: "assets", MaxTextureSize: 2048},
		LogLevel: "info",
	}
}

// Load reads a Config from a .yaml, .yml, or .toml file, over the defaults, and validates it.
func Load(path string) (*Config, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	cfg, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.WithMessagef(err, "config %s", path)
	}

	return cfg, nil

}

// Decode parses a Config from data in the format named by ext (".yaml", ".yml", or ".toml"), over the defaults, and
// validates it.
func Decode(data []byte, ext string) (*Config, error) {
	cfg := Default()
	if err := cfg.Merge(data, ext); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge decodes data in the format named by ext over the settings already in cfg, then validates the result. Settings the
// data leaves out keep their current values.
func (cfg *Config) Merge(data []byte, ext string) error {

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return errors.Wrap(err, "decoding YAML")
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return errors.Wrap(err, "decoding TOML")
		}
	default:
		return errors.Errorf("unsupported config format %q", ext)
	}

	return cfg.Validate()

}

// Validate returns an error describing the first invalid setting found, if any.
func (cfg *Config) Validate() error {

	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		return errors.Errorf("window size must be positive (got %dx%d)", cfg.Window.Width, cfg.Window.Height)
	}

	if _, err := framekit.NewColorFromHexString(cfg.Window.ClearColor); err != nil {
		return errors.Wrap(err, "window clear_color")
	}

	if cfg.Viewport.DensityCap < 1 {
		return errors.Errorf("density cap must be at least 1 (got %v)", cfg.Viewport.DensityCap)
	}

	cam := cfg.Camera
	switch cam.Projection {
	case ProjectionPerspective:
		if cam.FieldOfView <= 0 || cam.FieldOfView >= 180 {
			return errors.Wrapf(framekit.ErrInvalidProjection, "camera fov must be between 0 and 180 degrees (got %v)", cam.FieldOfView)
		}
	case ProjectionOrthographic:
		if cam.OrthoHeight <= 0 {
			return errors.Wrapf(framekit.ErrInvalidProjection, "camera ortho_height must be positive (got %v)", cam.OrthoHeight)
		}
	default:
		return errors.Errorf("unknown camera projection %q", cam.Projection)
	}

	if cam.Near <= 0 || cam.Far <= cam.Near {
		return errors.Wrapf(framekit.ErrInvalidProjection, "camera planes must satisfy 0 < near < far (near %v, far %v)", cam.Near, cam.Far)
	}

	ctrl := cfg.Controls
	switch ctrl.Kind {
	case ControlsOrbit, ControlsFree, ControlsNone:
	default:
		return errors.Errorf("unknown controls kind %q", ctrl.Kind)
	}

	if ctrl.MinPolar < 0 || ctrl.MaxPolar > math.Pi || ctrl.MinPolar > ctrl.MaxPolar {
		return errors.Errorf("polar range must lie within [0, pi] (got [%v, %v])", ctrl.MinPolar, ctrl.MaxPolar)
	}

	if ctrl.MinDistance < 0 || ctrl.MaxDistance < ctrl.MinDistance {
		return errors.Errorf("distance range is invalid (got [%v, %v])", ctrl.MinDistance, ctrl.MaxDistance)
	}

	if ctrl.DampingDecay < 0 {
		return errors.Errorf("damping decay must not be negative (got %v)", ctrl.DampingDecay)
	}

	if cfg.Loop.FPS <= 0 {
		return errors.Errorf("loop fps must be positive (got %d)", cfg.Loop.FPS)
	}

	if cfg.Assets.MaxTextureSize < 0 {
		return errors.Errorf("max texture size must not be negative (got %d)", cfg.Assets.MaxTextureSize)
	}

	if _, err := cfg.Level(); err != nil {
		return err
	}

	return nil

}

// Level returns the configured log level.
func (cfg *Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return logrus.InfoLevel, errors.Wrap(err, "log_level")
	}
	return level, nil
}

// ClearColor returns the configured clear colour, or opaque black if it doesn't parse.
func (cfg *Config) ClearColor() framekit.Color {
	c, err := framekit.NewColorFromHexString(cfg.Window.ClearColor)
	if err != nil {
		return framekit.NewColor(0, 0, 0, 1)
	}
	return c
}

// ViewportState returns the initial viewport for the configured window, at a device scale of 1.
func (cfg *Config) ViewportState() framekit.ViewportState {
	return framekit.ViewportState{
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		DeviceScale: 1,
		DensityCap:  cfg.Viewport.DensityCap,
	}
}

// NewCamera creates the configured camera under the graph's root, placed at the configured position, and returns it.
func (cfg *Config) NewCamera(g *framekit.Graph) (framekit.NodeID, *framekit.Camera, error) {
	if cfg.Camera.Projection == ProjectionOrthographic {
		return cfg.OrthographicCamera(g)
	}
	return cfg.PerspectiveCamera(g)
}

// PerspectiveCamera creates a perspective camera from the camera settings, regardless of the configured projection.
func (cfg *Config) PerspectiveCamera(g *framekit.Graph) (framekit.NodeID, *framekit.Camera, error) {
	cam := cfg.Camera
	id, camera, err := g.NewPerspectiveCamera("Camera", cam.FieldOfView, cfg.ViewportState().Aspect(), cam.Near, cam.Far)
	if err != nil {
		return framekit.NodeID{}, nil, err
	}
	return id, camera, cfg.place(g, id)
}

// OrthographicCamera creates an orthographic camera showing OrthoHeight world units vertically, regardless of the
// configured projection.
func (cfg *Config) OrthographicCamera(g *framekit.Graph) (framekit.NodeID, *framekit.Camera, error) {
	cam := cfg.Camera
	halfH := cam.OrthoHeight / 2
	halfW := halfH * cfg.ViewportState().Aspect()
	id, camera, err := g.NewOrthographicCamera("Camera", -halfW, halfW, halfH, -halfH, cam.Near, cam.Far)
	if err != nil {
		return framekit.NodeID{}, nil, err
	}
	return id, camera, cfg.place(g, id)
}

func (cfg *Config) place(g *framekit.Graph, id framekit.NodeID) error {
	if err := g.AddChild(g.Root(), id); err != nil {
		return err
	}
	return g.SetLocalPosition(id, mgl64.Vec3(cfg.Camera.Position))
}

// OrbitControls creates OrbitControls for the camera Node with the configured limits and damping.
func (cfg *Config) OrbitControls(g *framekit.Graph, cameraNode framekit.NodeID) *framekit.OrbitControls {
	ctrl := cfg.Controls
	oc := framekit.NewOrbitControls(g, cameraNode, mgl64.Vec3(ctrl.Target))
	oc.EnableDamping = ctrl.Damping
	oc.DampingDecay = ctrl.DampingDecay
	oc.MinPolarAngle = ctrl.MinPolar
	oc.MaxPolarAngle = ctrl.MaxPolar
	oc.MinDistance = ctrl.MinDistance
	oc.MaxDistance = ctrl.MaxDistance
	oc.GroundPlane = ctrl.GroundPlane
	return oc
}

// FreeCam creates a FreeCam for the camera Node with the configured move speed.
func (cfg *Config) FreeCam(g *framekit.Graph, cameraNode framekit.NodeID) *framekit.FreeCam {
	fc := framekit.NewFreeCam(g, cameraNode)
	fc.MoveSpeed = cfg.Controls.MoveSpeed
	return fc
}

// NewControls creates the configured control scheme for the camera Node, or returns nil for "none".
func (cfg *Config) NewControls(g *framekit.Graph, cameraNode framekit.NodeID) framekit.Controls {
	switch cfg.Controls.Kind {
	case ControlsOrbit:
		return cfg.OrbitControls(g, cameraNode)
	case ControlsFree:
		return cfg.FreeCam(g, cameraNode)
	}
	return nil
}
