package card

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/Yeicor/flowercard/internal"
	"github.com/Yeicor/flowercard/internal/camera"
	"github.com/Yeicor/flowercard/internal/config"
	"github.com/Yeicor/flowercard/internal/view"
	"github.com/barkimedes/go-deepcopy"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/fogleman/fauxgl"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/subchen/go-trylock/v2"
)

// Snapshot is the read-only state observed by the presentation layer.
type Snapshot = internal.Snapshot

// ViewState is the top-level screen currently shown.
type ViewState = internal.ViewState

const (
	ViewIntro           = internal.ViewIntro
	ViewScene           = internal.ViewScene
	ViewSceneWithLetter = internal.ViewSceneWithLetter
)

// Option configures a Card before it is built.
type Option func(c *Card)

// tryLocker is the subset of go-trylock used here.
type tryLocker interface {
	Lock()
	Unlock()
	RTryLock(ctx context.Context) bool
	RUnlock()
}

// Card is the interactive greeting card: an intro, a flower in a pot that can be orbited and a letter overlay.
type Card struct {
	cfg     *config.Config
	cfgPath string // Reloaded on change when watching (letter text only)
	ctx     context.Context
	cancel  context.CancelFunc

	// Core state, mutated on the ebiten goroutine and observed through Snapshot
	stateLock   sync.RWMutex
	machine     *view.Machine
	orbit       *camera.Orbit
	letterTitle string
	letterLines []string

	// The model, replaced by background loads
	assets      *modelSource
	meshLock    sync.RWMutex
	mesh        *fauxgl.Mesh
	meshVersion int
	loadingLock tryLocker

	// Rendering and input (ebiten goroutine only)
	renderer     *renderer3mesh
	resInv       int
	screenSize   image.Point
	cachedRender *ebiten.Image
	lastRender   renderKey
	pointer      pointerState
	confetti     *confetti
	fonts        *fonts
}

// NewCard builds a card from cfg (config.Default() if nil) and the given options.
func NewCard(cfg *config.Config, opts ...Option) (*Card, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Card{
		cfg:         deepcopy.MustAnything(cfg).(*config.Config),
		loadingLock: trylock.New(),
		assets:      newModelSource(),
		confetti:    newConfetti(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	fnts, err := newFonts()
	if err != nil {
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}
	c.fonts = fnts
	viewCfg, err := c.cfg.View()
	if err != nil {
		return nil, err
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.orbit = camera.NewOrbit(c.cfg.OrbitConstraints())
	c.machine = view.NewMachine(c.ctx, viewCfg, c.cfg.Animator())
	c.machine.OnTransition(c.onTransition)
	c.letterTitle, c.letterLines = c.cfg.Letter.Title, c.cfg.Letter.Lines
	c.resInv = c.cfg.Render.ResInv
	c.renderer = newRenderer3mesh(c.cfg.Camera.FovY)
	return c, nil
}

// Run loads the model, opens the window and blocks until it is closed (or the process is interrupted).
// The intro timer and every other pending transition are cancelled on all exit paths.
func (c *Card) Run() error {
	defer c.Close()
	go c.reloadMesh()
	if c.cfg.Model.Watch {
		stop, err := c.watch()
		if err != nil {
			log.Println("[Card] File watching disabled:", err)
		} else {
			defer stop()
		}
	}
	done := make(chan os.Signal, 1)
	signal.Notify(done, signals()...)
	defer signal.Stop(done)
	go func() {
		select {
		case <-done:
			log.Println("[Card] Interrupted, closing")
			c.Close()
		case <-c.ctx.Done():
		}
	}()
	return ebiten.RunGame(cardEbitenGame{c})
}

// Close tears the card down: no transition happens afterwards and the window closes on its next update.
func (c *Card) Close() {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()
	c.cancel()
	c.machine.Close()
}

// Snapshot returns a deep copy of the observable state.
func (c *Card) Snapshot() *Snapshot {
	c.meshLock.RLock()
	meshReady := c.mesh != nil
	c.meshLock.RUnlock()
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()
	return deepcopy.MustAnything(&internal.Snapshot{
		View:          c.machine.State(),
		IntroMode:     c.machine.Config().IntroMode,
		IntroProgress: c.machine.IntroProgress(),
		LetterVisible: c.machine.LetterVisible(),
		Camera:        c.machine.Animator().State(),
		MeshReady:     meshReady,
		LetterTitle:   c.letterTitle,
		LetterLines:   c.letterLines,
	}).(*internal.Snapshot)
}

func (c *Card) onTransition(from, to internal.ViewState) {
	log.Println("[Card] View", from, "->", to)
	switch to {
	case internal.ViewSceneWithLetter:
		c.confetti.burst(c.screenSize.X, c.screenSize.Y, 120)
	default:
		c.confetti.clear()
	}
}

//-----------------------------------------------------------------------------
// CONFIGURATION
//-----------------------------------------------------------------------------

// OptIntroTap leaves the intro on the first tap/click instead of after a dwell.
func OptIntroTap() Option {
	return func(c *Card) {
		c.cfg.Intro.Mode = "tap"
	}
}

// OptIntroDwell leaves the intro automatically after dwell.
func OptIntroDwell(dwell time.Duration) Option {
	return func(c *Card) {
		c.cfg.Intro.Mode = "timer"
		c.cfg.Intro.Dwell = dwell
	}
}

// OptBackAction enables (or disables) returning to the intro from the scene and the letter.
func OptBackAction(enabled bool) Option {
	return func(c *Card) {
		c.cfg.Letter.BackEnabled = enabled
	}
}

// OptCamApproach sets the camera start, the approach target and its per-frame rate.
func OptCamApproach(start, target v3.Vec, rate, epsilon float64) Option {
	return func(c *Card) {
		c.cfg.Camera.Start = config.Vec3{X: start.X, Y: start.Y, Z: start.Z}
		c.cfg.Camera.Target = config.Vec3{X: target.X, Y: target.Y, Z: target.Z}
		c.cfg.Camera.Rate = rate
		c.cfg.Camera.Epsilon = epsilon
	}
}

// OptOrbit bounds the user rotation (polar angles in degrees, from the up axis) and zoom.
func OptOrbit(minPolar, maxPolar, minDistance, maxDistance float64, zoom bool) Option {
	return func(c *Card) {
		c.cfg.Orbit.MinPolarAngle, c.cfg.Orbit.MaxPolarAngle = minPolar, maxPolar
		c.cfg.Orbit.MinDistance, c.cfg.Orbit.MaxDistance = minDistance, maxDistance
		c.cfg.Orbit.ZoomEnabled = zoom
	}
}

// OptModel selects the model: config.BuiltinModel or the path to an STL/OBJ file.
func OptModel(path string) Option {
	return func(c *Card) {
		c.cfg.Model.Path = path
	}
}

// OptWatch reloads the model file (and the letter from the config file, if any) when they change.
func OptWatch(enabled bool) Option {
	return func(c *Card) {
		c.cfg.Model.Watch = enabled
	}
}

// OptConfigFile remembers where the config was loaded from, to reload the letter while watching.
func OptConfigFile(path string) Option {
	return func(c *Card) {
		c.cfgPath = path
	}
}

// OptResInv sets the number of screen pixels per rendered pixel (higher is faster and blurrier).
func OptResInv(resInv int) Option {
	return func(c *Card) {
		c.cfg.Render.ResInv = resInv
	}
}

// OptLetter replaces the letter text.
func OptLetter(title string, lines ...string) Option {
	return func(c *Card) {
		c.cfg.Letter.Title = title
		c.cfg.Letter.Lines = lines
	}
}
