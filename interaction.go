package card

import (
	"image"

	"github.com/Yeicor/flowercard/internal"
	"github.com/Yeicor/flowercard/internal/camera"
	"github.com/Yeicor/flowercard/internal/view"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// dragThreshold is how far (in screen pixels) a press may move and still count as a click.
const dragThreshold = 6

// pointerState tracks the press currently held, either by the mouse or by a single touch.
type pointerState struct {
	active  bool
	touchID ebiten.TouchID
	isTouch bool
	from    image.Point // Where the press started
	last    image.Point // Last known position (touch positions vanish on release)
	moved   bool        // Dragged past dragThreshold: release will not click
}

// onUpdateInputs handles inputs. The caller holds stateLock.
func (c *Card) onUpdateInputs() {
	c.onUpdateKeys()
	c.onUpdatePointer()
	// Zooming
	if _, wheelUpDown := ebiten.Wheel(); wheelUpDown != 0 && c.machine.State() == internal.ViewScene {
		c.applyOrbit(camera.Delta{Zoom: wheelUpDown})
	}
}

func (c *Card) onUpdateKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		c.machine.Tap()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		c.machine.OpenLetter()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		c.machine.CloseLetter()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		c.machine.Back()
	}
	// Replay the camera approach
	if inpututil.IsKeyJustPressed(ebiten.KeyR) && c.machine.State().InScene() {
		c.machine.Animator().Start()
	}
	// Resolution
	if inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) || inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		c.resInv /= 2
		if c.resInv < 1 {
			c.resInv = 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) || inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		c.resInv *= 2
		if c.resInv > 64 {
			c.resInv = 64
		}
	}
}

func (c *Card) onUpdatePointer() {
	p := &c.pointer
	if !p.active {
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			x, y := ebiten.CursorPosition()
			*p = pointerState{active: true, from: image.Pt(x, y), last: image.Pt(x, y)}
		} else if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
			x, y := ebiten.TouchPosition(ids[0])
			*p = pointerState{active: true, isTouch: true, touchID: ids[0], from: image.Pt(x, y), last: image.Pt(x, y)}
		}
		return
	}

	var cur image.Point
	var released bool
	if p.isTouch {
		released = inpututil.IsTouchJustReleased(p.touchID)
		if !released {
			cur = image.Pt(ebiten.TouchPosition(p.touchID))
		}
	} else {
		released = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
		cur = image.Pt(ebiten.CursorPosition())
	}
	if released {
		if !p.moved {
			c.machine.Dispatch(view.NewPointerEvent(p.last.X, p.last.Y))
		}
		p.active = false
		return
	}

	// Rotation (only while the scene is not covered by the letter)
	if d := cur.Sub(p.from); !p.moved && d.X*d.X+d.Y*d.Y > dragThreshold*dragThreshold {
		p.moved = true
	}
	if p.moved && c.machine.State() == internal.ViewScene {
		delta := cur.Sub(p.last)
		if delta != (image.Point{}) {
			c.applyOrbit(camera.Delta{DX: float64(delta.X), DY: float64(delta.Y)})
		}
	}
	p.last = cur
}

func (c *Card) applyOrbit(d camera.Delta) {
	animator := c.machine.Animator()
	animator.SetPosition(c.orbit.Apply(animator.State().Position, d, float64(c.screenSize.Y)))
}
