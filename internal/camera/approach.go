package camera

import (
	"math"

	"github.com/Yeicor/flowercard/internal"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Approach is a single tick of the approach animation: every axis moves the configured rate of the remaining
// distance towards the target. Once Z is within epsilon of the target the animation stops, and further calls return
// the state unchanged.
func Approach(s internal.CameraState, t internal.CameraTarget) internal.CameraState {
	if !s.IsApproachAnimating {
		return s
	}
	s.Position = v3.Vec{
		X: lerp(s.Position.X, t.Position.X, t.Rate),
		Y: lerp(s.Position.Y, t.Position.Y, t.Rate),
		Z: lerp(s.Position.Z, t.Position.Z, t.Rate),
	}
	if math.Abs(s.Position.Z-t.Position.Z) < t.Epsilon {
		s.IsApproachAnimating = false
	}
	return s
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Animator owns the CameraState and the starting position it is reset to.
type Animator struct {
	start     v3.Vec
	target    internal.CameraTarget
	state     internal.CameraState
	ticks     int                  // Ticks applied since the last Start (including the converging one)
	constrain func(v3.Vec) v3.Vec // Applied after every animated step, nil keeps the raw interpolation
}

// NewAnimator builds an idle animator with the camera at start.
func NewAnimator(start v3.Vec, target internal.CameraTarget) *Animator {
	return &Animator{
		start:  start,
		target: target,
		state:  internal.CameraState{Position: start},
	}
}

// Start moves the camera back to the original starting position and (re)starts the approach.
func (a *Animator) Start() {
	a.state = internal.CameraState{Position: a.start, IsApproachAnimating: true}
	a.ticks = 0
}

// Stop halts the approach, keeping the current position.
func (a *Animator) Stop() {
	a.state.IsApproachAnimating = false
}

// Tick advances the animation by one frame and reports whether the camera moved.
func (a *Animator) Tick() bool {
	if !a.state.IsApproachAnimating {
		return false
	}
	prev := a.state.Position
	a.state = Approach(a.state, a.target)
	if a.constrain != nil {
		if p := a.constrain(a.state.Position); p != a.state.Position {
			// Pinned against the constraint: the target is out of reach from here
			a.state.Position = p
			a.state.IsApproachAnimating = false
		}
	}
	a.ticks++
	return prev != a.state.Position
}

// Constrain keeps every animated position inside f (usually Orbit.Clamp). A step that f has to move
// ends the approach where f left it.
func (a *Animator) Constrain(f func(v3.Vec) v3.Vec) {
	a.constrain = f
}

// SetPosition overrides the current position (orbit input). The animation flag is left untouched.
func (a *Animator) SetPosition(p v3.Vec) {
	a.state.Position = p
}

func (a *Animator) State() internal.CameraState {
	return a.state
}

func (a *Animator) Target() internal.CameraTarget {
	return a.target
}

func (a *Animator) StartPosition() v3.Vec {
	return a.start
}

func (a *Animator) Ticks() int {
	return a.ticks
}
