package internal

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ViewState is the top-level screen currently shown.
type ViewState int

const (
	ViewIntro           ViewState = iota // The intro sequence (initial state)
	ViewScene                            // The 3D scene
	ViewSceneWithLetter                  // The 3D scene with the letter overlay open
)

func (v ViewState) String() string {
	switch v {
	case ViewIntro:
		return "intro"
	case ViewScene:
		return "scene"
	case ViewSceneWithLetter:
		return "scene+letter"
	default:
		return "unknown"
	}
}

// InScene is true for both scene states (with or without the letter).
func (v ViewState) InScene() bool {
	return v == ViewScene || v == ViewSceneWithLetter
}

// IntroMode selects the single trigger armed to leave the intro.
type IntroMode int

const (
	IntroTimer IntroMode = iota // Leave after a fixed dwell duration
	IntroTap                    // Leave on the first tap/click
)

func (m IntroMode) String() string {
	if m == IntroTap {
		return "tap"
	}
	return "timer"
}

// CameraState is owned by the approach animator: read every frame, written while animating.
type CameraState struct {
	Position            v3.Vec
	IsApproachAnimating bool
}

// CameraTarget is the constant configuration of the approach animation.
type CameraTarget struct {
	Position v3.Vec  // Where the camera ends up
	Epsilon  float64 // Convergence tolerance, checked on Z
	Rate     float64 // Fraction of the remaining distance covered on each tick, in (0, 1)
}

// OrbitConstraints bound the user-driven camera rotation and zoom around Center.
// Angles are in radians, the polar angle is measured from the +Y (up) axis.
type OrbitConstraints struct {
	Center                       v3.Vec
	MinPolarAngle, MaxPolarAngle float64
	MinDistance, MaxDistance     float64
	PanEnabled, ZoomEnabled      bool
	RotateSpeed, ZoomSpeed       float64
}

// Snapshot is a read-only copy of everything the presentation layer may observe.
// It has to be exported for deepcopy.
type Snapshot struct {
	View          ViewState
	IntroMode     IntroMode
	IntroProgress float64 // [0, 1] while the dwell timer runs, 0 in tap mode
	LetterVisible bool
	Camera        CameraState
	MeshReady     bool
	LetterTitle   string
	LetterLines   []string
}
