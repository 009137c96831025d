package view

import (
	"image"

	"github.com/Yeicor/flowercard/internal"
)

// Target is an element that can receive pointer events.
type Target int

const (
	TargetNone Target = iota
	TargetIntro
	TargetScene
	TargetLetterIcon
	TargetBackButton
	TargetBackdrop
	TargetPanel
	TargetCloseButton
)

func (t Target) String() string {
	switch t {
	case TargetIntro:
		return "intro"
	case TargetScene:
		return "scene"
	case TargetLetterIcon:
		return "letter-icon"
	case TargetBackButton:
		return "back"
	case TargetBackdrop:
		return "backdrop"
	case TargetPanel:
		return "panel"
	case TargetCloseButton:
		return "close"
	default:
		return "none"
	}
}

// PointerEvent is a click/tap travelling from the innermost target outwards until a handler stops it.
type PointerEvent struct {
	Pos       image.Point
	stopped   bool
	delivered []Target
}

func NewPointerEvent(x, y int) *PointerEvent {
	return &PointerEvent{Pos: image.Pt(x, y)}
}

// StopPropagation prevents the event from reaching the remaining (outer) targets.
func (e *PointerEvent) StopPropagation() {
	e.stopped = true
}

func (e *PointerEvent) Stopped() bool {
	return e.stopped
}

// Delivered lists the targets whose handlers ran, innermost first.
func (e *PointerEvent) Delivered() []Target {
	return e.delivered
}

// Layout holds the screen rectangles of every interactive element, recomputed on resize.
type Layout struct {
	Screen      image.Rectangle
	LetterIcon  image.Rectangle // Bottom-right corner of the scene
	SceneBack   image.Rectangle // Top-left corner of the scene
	Panel       image.Rectangle // The letter, centered
	CloseButton image.Rectangle // Top-right corner of the panel
	PanelBack   image.Rectangle // Bottom-left corner of the panel
}

// NewLayout places every element relative to a w x h screen.
func NewLayout(w, h int) Layout {
	unit := min(w, h) / 10
	if unit < 24 {
		unit = 24
	}
	margin := unit / 3
	panelW, panelH := w*3/5, h*7/10
	panel := image.Rect((w-panelW)/2, (h-panelH)/2, (w+panelW)/2, (h+panelH)/2)
	button := unit * 2 / 3
	return Layout{
		Screen:      image.Rect(0, 0, w, h),
		LetterIcon:  image.Rect(w-margin-unit, h-margin-unit, w-margin, h-margin),
		SceneBack:   image.Rect(margin, margin, margin+unit*2, margin+button),
		Panel:       panel,
		CloseButton: image.Rect(panel.Max.X-margin-button, panel.Min.Y+margin, panel.Max.X-margin, panel.Min.Y+margin+button),
		PanelBack:   image.Rect(panel.Min.X+margin, panel.Max.Y-margin-button, panel.Min.X+margin+unit*2, panel.Max.Y-margin),
	}
}

// HitTest returns the propagation path for a pointer at p, innermost target first.
func (l Layout) HitTest(p image.Point, state internal.ViewState, backEnabled bool) []Target {
	switch state {
	case internal.ViewIntro:
		return []Target{TargetIntro}
	case internal.ViewScene:
		if p.In(l.LetterIcon) {
			return []Target{TargetLetterIcon, TargetScene}
		}
		if backEnabled && p.In(l.SceneBack) {
			return []Target{TargetBackButton, TargetScene}
		}
		return []Target{TargetScene}
	case internal.ViewSceneWithLetter:
		if !p.In(l.Panel) {
			return []Target{TargetBackdrop}
		}
		if p.In(l.CloseButton) {
			return []Target{TargetCloseButton, TargetPanel, TargetBackdrop}
		}
		if backEnabled && p.In(l.PanelBack) {
			return []Target{TargetBackButton, TargetPanel, TargetBackdrop}
		}
		return []Target{TargetPanel, TargetBackdrop}
	}
	return nil
}
