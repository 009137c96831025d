package card

import (
	"image"
	"time"

	"github.com/Yeicor/flowercard/internal/view"
	"github.com/hajimehoshi/ebiten/v2"
)

// cardEbitenGame hides the private ebiten implementation while behaving like a *Card internally
type cardEbitenGame struct {
	*Card
}

func (c cardEbitenGame) Update() error {
	if c.ctx.Err() != nil {
		return ebiten.Termination
	}
	dt := frameDuration(ebiten.TPS())
	c.stateLock.Lock()
	c.onUpdateInputs()
	c.machine.Tick(dt)
	c.stateLock.Unlock()
	c.confetti.update(dt.Seconds(), c.screenSize.Y)
	return nil
}

func (c cardEbitenGame) Draw(screen *ebiten.Image) {
	snap := c.Snapshot()
	if snap.View.InScene() {
		c.drawScene(screen, snap)
	} else {
		c.drawIntro(screen, snap)
	}
	c.drawUI(screen, snap)
}

func (c cardEbitenGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	newScreenSize := image.Pt(outsideWidth, outsideHeight)
	if c.screenSize != newScreenSize {
		c.screenSize = newScreenSize
		c.stateLock.Lock()
		c.machine.SetLayout(view.NewLayout(outsideWidth, outsideHeight))
		c.stateLock.Unlock()
	}
	return outsideWidth, outsideHeight // Use all available pixels, no re-scaling (the 3D render is scaled by ResInv)
}

// frameDuration is the time advanced by one update at tps. ebiten.SyncWithFPS (-1) counts as 1.
func frameDuration(tps int) time.Duration {
	return time.Second / time.Duration(max(1, tps))
}
