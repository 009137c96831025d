package view

import (
	"context"
	"time"

	"github.com/Yeicor/flowercard/internal"
	"github.com/Yeicor/flowercard/internal/camera"
)

// Config selects the variant of the card: how the intro is left and whether a back action exists.
type Config struct {
	IntroMode   internal.IntroMode
	Dwell       time.Duration // Only used by internal.IntroTimer
	BackEnabled bool
}

// TransitionFunc observes every ViewState change.
type TransitionFunc func(from, to internal.ViewState)

// Machine is the root of the card: it owns the ViewState and gates the camera animator and the letter overlay.
// It is not safe for concurrent use; it expects a single owner that calls it once per frame.
type Machine struct {
	ctx         context.Context
	cfg         Config
	state       internal.ViewState
	letter      Overlay
	animator    *camera.Animator
	timer       *dwellTimer
	closed      bool
	transitions []TransitionFunc
	layout      Layout
}

// NewMachine starts in the intro with its trigger armed. Cancelling ctx has the same effect as Close.
func NewMachine(ctx context.Context, cfg Config, animator *camera.Animator) *Machine {
	m := &Machine{
		ctx:      ctx,
		cfg:      cfg,
		state:    internal.ViewIntro,
		animator: animator,
	}
	m.timer = newDwellTimer(cfg.Dwell, m.enterScene)
	m.armIntro()
	return m
}

// OnTransition registers f to be called after every state change.
func (m *Machine) OnTransition(f TransitionFunc) {
	m.transitions = append(m.transitions, f)
}

func (m *Machine) State() internal.ViewState {
	return m.state
}

func (m *Machine) Config() Config {
	return m.cfg
}

func (m *Machine) LetterVisible() bool {
	return m.letter.Visible()
}

func (m *Machine) Animator() *camera.Animator {
	return m.animator
}

// IntroProgress is the fraction of the dwell elapsed while the intro timer runs (0 in tap mode).
func (m *Machine) IntroProgress() float64 {
	if m.cfg.IntroMode != internal.IntroTimer {
		return 0
	}
	if m.state != internal.ViewIntro {
		return 1
	}
	return m.timer.progress()
}

// Closed reports whether the machine was torn down, explicitly or through its context.
func (m *Machine) Closed() bool {
	if !m.closed && m.ctx.Err() != nil {
		m.Close()
	}
	return m.closed
}

// Close releases the dwell timer. After Close every transition is a no-op.
func (m *Machine) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.timer.stop()
}

// Tick advances the machine by one frame: the intro timer while in the intro, the camera animator in the scene.
func (m *Machine) Tick(dt time.Duration) {
	if m.Closed() {
		return
	}
	switch {
	case m.state == internal.ViewIntro:
		m.timer.advance(dt)
	case m.state.InScene():
		m.animator.Tick()
	}
}

// Tap leaves the intro when the card is configured to wait for a tap.
func (m *Machine) Tap() bool {
	if m.Closed() || m.state != internal.ViewIntro || m.cfg.IntroMode != internal.IntroTap {
		return false
	}
	m.enterScene()
	return true
}

// OpenLetter shows the letter over the scene. It is a no-op if already open or outside the scene.
func (m *Machine) OpenLetter() bool {
	if m.Closed() || m.state != internal.ViewScene {
		return false
	}
	m.letter.Open()
	m.setState(internal.ViewSceneWithLetter)
	return true
}

// CloseLetter hides the letter. It is a no-op if already closed.
func (m *Machine) CloseLetter() bool {
	if m.Closed() || m.state != internal.ViewSceneWithLetter {
		return false
	}
	m.letter.Close()
	m.setState(internal.ViewScene)
	return true
}

// Back returns to the intro from any scene state, hiding the letter and re-arming the intro trigger.
// The next scene entry restarts the camera approach from its original start.
func (m *Machine) Back() bool {
	if m.Closed() || !m.cfg.BackEnabled || !m.state.InScene() {
		return false
	}
	m.letter.Close()
	m.animator.Stop()
	m.setState(internal.ViewIntro)
	m.armIntro()
	return true
}

// SetLayout updates the rectangles used for pointer hit testing.
func (m *Machine) SetLayout(l Layout) {
	m.layout = l
}

func (m *Machine) Layout() Layout {
	return m.layout
}

// Dispatch delivers a pointer event along its hit-test path, innermost target first, until a handler stops it.
func (m *Machine) Dispatch(ev *PointerEvent) {
	if m.Closed() {
		return
	}
	for _, target := range m.layout.HitTest(ev.Pos, m.state, m.cfg.BackEnabled) {
		if ev.Stopped() {
			return
		}
		ev.delivered = append(ev.delivered, target)
		m.handle(target, ev)
	}
}

func (m *Machine) handle(target Target, ev *PointerEvent) {
	switch target {
	case TargetIntro:
		m.Tap()
		ev.StopPropagation()
	case TargetLetterIcon:
		m.OpenLetter()
		ev.StopPropagation()
	case TargetBackButton:
		m.Back()
		ev.StopPropagation()
	case TargetCloseButton:
		m.CloseLetter()
		ev.StopPropagation()
	case TargetPanel:
		ev.StopPropagation() // The letter content never dismisses itself
	case TargetBackdrop:
		m.CloseLetter()
	}
}

func (m *Machine) armIntro() {
	if m.cfg.IntroMode == internal.IntroTimer {
		m.timer.arm()
	} else {
		m.timer.stop()
	}
}

func (m *Machine) enterScene() {
	if m.Closed() || m.state != internal.ViewIntro {
		return
	}
	m.timer.stop()
	m.animator.Start()
	m.setState(internal.ViewScene)
}

func (m *Machine) setState(to internal.ViewState) {
	from := m.state
	if from == to {
		return
	}
	m.state = to
	for _, f := range m.transitions {
		f(from, to)
	}
}
