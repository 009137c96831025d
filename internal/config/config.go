package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/Yeicor/flowercard/internal"
	"github.com/Yeicor/flowercard/internal/camera"
	"github.com/Yeicor/flowercard/internal/view"
	"github.com/caarlos0/env/v11"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/mitchellh/reflectwalk"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// BuiltinModel is the model path that builds the flower procedurally instead of loading a file.
const BuiltinModel = "builtin:flower"

// Vec3 is a YAML friendly position.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3) V3() v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Config is the whole card configuration, loaded from YAML and overridden from the environment.
type Config struct {
	Intro  IntroConfig  `yaml:"intro"`
	Camera CameraConfig `yaml:"camera"`
	Orbit  OrbitConfig  `yaml:"orbit"`
	Letter LetterConfig `yaml:"letter"`
	Model  ModelConfig  `yaml:"model"`
	Render RenderConfig `yaml:"render"`
}

type IntroConfig struct {
	Mode  string        `yaml:"mode" env:"FLOWERCARD_INTRO_MODE"` // "timer" or "tap"
	Dwell time.Duration `yaml:"dwell" env:"FLOWERCARD_INTRO_DWELL"`
	Title string        `yaml:"title"`
}

type CameraConfig struct {
	Start   Vec3    `yaml:"start"`
	Target  Vec3    `yaml:"target"`
	Epsilon float64 `yaml:"epsilon"`
	Rate    float64 `yaml:"rate" env:"FLOWERCARD_CAMERA_RATE"`
	FovY    float64 `yaml:"fov_y"` // Degrees
}

// OrbitConfig angles are in degrees.
type OrbitConfig struct {
	Center        Vec3    `yaml:"center"`
	MinPolarAngle float64 `yaml:"min_polar_angle"`
	MaxPolarAngle float64 `yaml:"max_polar_angle"`
	MinDistance   float64 `yaml:"min_distance"`
	MaxDistance   float64 `yaml:"max_distance"`
	PanEnabled    bool    `yaml:"pan_enabled"`
	ZoomEnabled   bool    `yaml:"zoom_enabled" env:"FLOWERCARD_ORBIT_ZOOM"`
	RotateSpeed   float64 `yaml:"rotate_speed"`
	ZoomSpeed     float64 `yaml:"zoom_speed"`
}

type LetterConfig struct {
	Title       string   `yaml:"title"`
	Lines       []string `yaml:"lines"`
	BackEnabled bool     `yaml:"back_enabled" env:"FLOWERCARD_BACK_ENABLED"`
}

type ModelConfig struct {
	Path  string `yaml:"path" env:"FLOWERCARD_MODEL"`
	Watch bool   `yaml:"watch" env:"FLOWERCARD_MODEL_WATCH"`
}

type RenderConfig struct {
	ResInv int `yaml:"res_inv" env:"FLOWERCARD_RES_INV"` // Screen pixels per rendered pixel (per axis)
}

// Default returns the built-in card: a 2.5s intro, the camera approaching from (0, 1.5, 5) to (0, 0.5, 1.5).
func Default() *Config {
	return &Config{
		Intro: IntroConfig{
			Mode:  "timer",
			Dwell: 2500 * time.Millisecond,
			Title: "A little something for you",
		},
		Camera: CameraConfig{
			Start:   Vec3{Y: 1.5, Z: 5},
			Target:  Vec3{Y: 0.5, Z: 1.5},
			Epsilon: 0.01,
			Rate:    0.02,
			FovY:    35,
		},
		Orbit: OrbitConfig{
			MinPolarAngle: 60,
			MaxPolarAngle: 100,
			MinDistance:   0.9,
			MaxDistance:   6,
			ZoomEnabled:   true,
			RotateSpeed:   1,
			ZoomSpeed:     1,
		},
		Letter: LetterConfig{
			Title: "Dear friend,",
			Lines: []string{
				"This flower will never wilt.",
				"Drag to look around it,",
				"and keep it as long as you like.",
			},
			BackEnabled: true,
		},
		Model:  ModelConfig{Path: BuiltinModel},
		Render: RenderConfig{ResInv: 2},
	}
}

// Load reads the YAML file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse card config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides the tagged fields from FLOWERCARD_* environment variables.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks every range the card relies on.
func (c *Config) Validate() error {
	if err := reflectwalk.Walk(c, finiteWalker{}); err != nil {
		return err
	}
	if _, err := c.IntroMode(); err != nil {
		return err
	}
	if c.Intro.Dwell < 0 {
		return fmt.Errorf("%w: intro dwell %s is negative", ErrInvalid, c.Intro.Dwell)
	}
	if c.Camera.Rate <= 0 || c.Camera.Rate >= 1 {
		return fmt.Errorf("%w: camera rate %g outside (0, 1)", ErrInvalid, c.Camera.Rate)
	}
	if c.Camera.Epsilon <= 0 {
		return fmt.Errorf("%w: camera epsilon %g must be positive", ErrInvalid, c.Camera.Epsilon)
	}
	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		return fmt.Errorf("%w: camera fov %g outside (0, 180)", ErrInvalid, c.Camera.FovY)
	}
	o := c.Orbit
	if o.MinPolarAngle < 0 || o.MaxPolarAngle > 180 || o.MinPolarAngle > o.MaxPolarAngle {
		return fmt.Errorf("%w: polar range [%g, %g] must be ordered within [0, 180]", ErrInvalid, o.MinPolarAngle, o.MaxPolarAngle)
	}
	if o.MinDistance <= 0 || o.MinDistance > o.MaxDistance {
		return fmt.Errorf("%w: distance range [%g, %g] must be ordered and positive", ErrInvalid, o.MinDistance, o.MaxDistance)
	}
	if o.PanEnabled {
		return fmt.Errorf("%w: panning is not supported", ErrInvalid)
	}
	if o.RotateSpeed < 0 || o.ZoomSpeed < 0 {
		return fmt.Errorf("%w: orbit speeds must not be negative", ErrInvalid)
	}
	if c.Render.ResInv < 1 || c.Render.ResInv > 64 {
		return fmt.Errorf("%w: res_inv %d outside [1, 64]", ErrInvalid, c.Render.ResInv)
	}
	if strings.TrimSpace(c.Model.Path) == "" {
		return fmt.Errorf("%w: model path is empty", ErrInvalid)
	}
	return nil
}

// IntroMode parses the configured intro trigger.
func (c *Config) IntroMode() (internal.IntroMode, error) {
	switch strings.ToLower(c.Intro.Mode) {
	case "timer", "":
		return internal.IntroTimer, nil
	case "tap":
		return internal.IntroTap, nil
	default:
		return 0, fmt.Errorf("%w: unknown intro mode %q", ErrInvalid, c.Intro.Mode)
	}
}

// View returns the state machine variant.
func (c *Config) View() (view.Config, error) {
	mode, err := c.IntroMode()
	if err != nil {
		return view.Config{}, err
	}
	return view.Config{IntroMode: mode, Dwell: c.Intro.Dwell, BackEnabled: c.Letter.BackEnabled}, nil
}

func (c *Config) CameraTarget() internal.CameraTarget {
	return internal.CameraTarget{Position: c.Camera.Target.V3(), Epsilon: c.Camera.Epsilon, Rate: c.Camera.Rate}
}

func (c *Config) OrbitConstraints() internal.OrbitConstraints {
	return internal.OrbitConstraints{
		Center:        c.Orbit.Center.V3(),
		MinPolarAngle: c.Orbit.MinPolarAngle * math.Pi / 180,
		MaxPolarAngle: c.Orbit.MaxPolarAngle * math.Pi / 180,
		MinDistance:   c.Orbit.MinDistance,
		MaxDistance:   c.Orbit.MaxDistance,
		PanEnabled:    c.Orbit.PanEnabled,
		ZoomEnabled:   c.Orbit.ZoomEnabled,
		RotateSpeed:   c.Orbit.RotateSpeed,
		ZoomSpeed:     c.Orbit.ZoomSpeed,
	}
}

// Animator builds the camera animator, starting from the configured position clamped into the orbit range.
// Every animated step is clamped the same way.
func (c *Config) Animator() *camera.Animator {
	orbit := camera.NewOrbit(c.OrbitConstraints())
	a := camera.NewAnimator(orbit.Clamp(c.Camera.Start.V3()), c.CameraTarget())
	a.Constrain(orbit.Clamp)
	return a
}

// finiteWalker rejects NaN and infinite floats anywhere in the config tree.
type finiteWalker struct{}

func (finiteWalker) Primitive(v reflect.Value) error {
	if v.Kind() != reflect.Float64 && v.Kind() != reflect.Float32 {
		return nil
	}
	if f := v.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: non-finite value %g", ErrInvalid, f)
	}
	return nil
}
