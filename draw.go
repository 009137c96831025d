package card

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/Yeicor/flowercard/internal"
	"github.com/Yeicor/flowercard/internal/view"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	colIntroBackground = color.RGBA{R: 0x2B, G: 0x1B, B: 0x2F, A: 0xFF}
	colText            = color.RGBA{R: 0xFF, G: 0xF4, B: 0xE6, A: 0xFF}
	colInk             = color.RGBA{R: 0x3A, G: 0x2A, B: 0x30, A: 0xFF}
	colAccent          = color.RGBA{R: 0xF2, G: 0x7C, B: 0xA6, A: 0xFF}
	colPaper           = color.RGBA{R: 0xFF, G: 0xF8, B: 0xEE, A: 0xFF}
	colBackdrop        = color.RGBA{A: 0x99}
	colShadow          = color.RGBA{A: 0xB0}
	colHelp            = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xFF}
)

// fonts are the faces used by the card, all from the embedded Go Regular font.
type fonts struct {
	title, body, small *text.GoTextFace
}

func newFonts() (*fonts, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	return &fonts{
		title: &text.GoTextFace{Source: src, Size: 28},
		body:  &text.GoTextFace{Source: src, Size: 18},
		small: &text.GoTextFace{Source: src, Size: 12},
	}, nil
}

func (c *Card) layout() view.Layout {
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()
	return c.machine.Layout()
}

func (c *Card) drawIntro(screen *ebiten.Image, snap *Snapshot) {
	screen.Fill(colIntroBackground)
	w, h := float64(c.screenSize.X), float64(c.screenSize.Y)
	drawText(screen, c.fonts.title, c.cfg.Intro.Title, w/2, h*0.4, colText, text.AlignCenter)
	switch snap.IntroMode {
	case internal.IntroTimer:
		barW, barH := float32(w*0.4), float32(4)
		x, y := float32(w)/2-barW/2, float32(h*0.55)
		vector.DrawFilledRect(screen, x, y, barW, barH, color.RGBA{R: 0x55, G: 0x44, B: 0x5A, A: 0xFF}, false)
		vector.DrawFilledRect(screen, x, y, barW*float32(snap.IntroProgress), barH, colAccent, false)
	case internal.IntroTap:
		drawText(screen, c.fonts.body, "Tap to open", w/2, h*0.55, colAccent, text.AlignCenter)
	}
}

func (c *Card) drawScene(screen *ebiten.Image, snap *Snapshot) {
	c.meshLock.RLock()
	mesh, meshVersion := c.mesh, c.meshVersion
	c.meshLock.RUnlock()
	if mesh == nil {
		screen.Fill(c.renderer.backgroundColor)
	} else {
		size := image.Pt(max(1, c.screenSize.X/c.resInv), max(1, c.screenSize.Y/c.resInv))
		key := renderKey{cam: snap.Camera.Position, size: size, meshVersion: meshVersion}
		if c.cachedRender == nil || key != c.lastRender {
			img := c.renderer.Render(mesh, key.cam, c.cfg.Orbit.Center.V3(), size)
			c.cachedRender = upload(c.cachedRender, img)
			c.lastRender = key
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(c.screenSize.X)/float64(size.X), float64(c.screenSize.Y)/float64(size.Y))
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(c.cachedRender, op)
	}

	l := c.layout()
	backEnabled := c.cfg.Letter.BackEnabled
	drawEnvelope(screen, l.LetterIcon)
	if backEnabled {
		drawButton(screen, c.fonts.small, l.SceneBack, "Back")
	}
	if !snap.LetterVisible {
		return
	}

	// The letter
	vector.DrawFilledRect(screen, 0, 0, float32(c.screenSize.X), float32(c.screenSize.Y), colBackdrop, false)
	p := l.Panel
	fillRect(screen, p.Add(image.Pt(4, 6)), colShadow)
	fillRect(screen, p, colPaper)
	margin := float64(p.Dy()) / 12
	drawText(screen, c.fonts.title, snap.LetterTitle, float64(p.Min.X)+margin, float64(p.Min.Y)+margin, colInk, text.AlignStart)
	body := strings.Join(snap.LetterLines, "\n")
	drawText(screen, c.fonts.body, body, float64(p.Min.X)+margin, float64(p.Min.Y)+margin+c.fonts.title.Size*1.8, colInk, text.AlignStart)
	drawButton(screen, c.fonts.body, l.CloseButton, "×")
	if backEnabled {
		drawButton(screen, c.fonts.small, l.PanelBack, "Back")
	}
	c.confetti.draw(screen)
}

// drawUI draws the status and the controls available in the current view.
func (c *Card) drawUI(screen *ebiten.Image, snap *Snapshot) {
	// Notify when loading
	ctx, cancelFunc := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancelFunc()
	if c.loadingLock.RTryLock(ctx) {
		c.loadingLock.RUnlock()
		if !snap.MeshReady && snap.View.InScene() {
			drawDefaultTextWithShadow(screen, c.fonts.small, "No model (see log)", 5, 5, color.RGBA{R: 255, A: 255})
		}
	} else if snap.View.InScene() {
		drawDefaultTextWithShadow(screen, c.fonts.small, "Loading model...", 5, 5, color.RGBA{R: 255, A: 255})
	}

	var msg string
	switch snap.View {
	case internal.ViewIntro:
		if snap.IntroMode == internal.IntroTap {
			msg = "Open [Click/Enter]"
		}
	case internal.ViewScene:
		msg = fmt.Sprintf("TPS: %0.2f/%d\nResolution: %.2f [+/-]\nRotate [Drag]\nZoom [MouseWheel]\nLetter [L]\nReplay approach [R]",
			ebiten.ActualTPS(), ebiten.TPS(), 1/float64(c.resInv))
		if c.cfg.Letter.BackEnabled {
			msg += "\nBack [Backspace]"
		}
	case internal.ViewSceneWithLetter:
		msg = "Close [Esc/Click outside]"
	}
	if msg == "" {
		return
	}
	_, msgH := text.Measure(msg, c.fonts.small, c.fonts.small.Size*1.3)
	drawDefaultTextWithShadow(screen, c.fonts.small, msg, 5, float64(c.screenSize.Y)-msgH-5, colHelp)
}

func drawDefaultTextWithShadow(screen *ebiten.Image, face *text.GoTextFace, msg string, x, y float64, col color.Color) {
	drawText(screen, face, msg, x+1, y+1, color.RGBA{A: 255}, text.AlignStart)
	drawText(screen, face, msg, x, y, col, text.AlignStart)
}

func drawText(screen *ebiten.Image, face *text.GoTextFace, msg string, x, y float64, col color.Color, align text.Align) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	op.LineSpacing = face.Size * 1.3
	op.PrimaryAlign = align
	text.Draw(screen, msg, face, op)
}

func drawButton(screen *ebiten.Image, face *text.GoTextFace, r image.Rectangle, label string) {
	fillRect(screen, r, colAccent)
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(r.Min.X+r.Max.X)/2, float64(r.Min.Y+r.Max.Y)/2)
	op.ColorScale.ScaleWithColor(colText)
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	text.Draw(screen, label, face, op)
}

// drawEnvelope draws the letter icon inside r.
func drawEnvelope(screen *ebiten.Image, r image.Rectangle) {
	fillRect(screen, r, colPaper)
	x0, y0, x1, y1 := float32(r.Min.X), float32(r.Min.Y), float32(r.Max.X), float32(r.Max.Y)
	vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 2, colAccent, true)
	midX, midY := (x0+x1)/2, y0+(y1-y0)*0.55
	vector.StrokeLine(screen, x0, y0, midX, midY, 2, colAccent, true)
	vector.StrokeLine(screen, x1, y0, midX, midY, 2, colAccent, true)
}

func fillRect(screen *ebiten.Image, r image.Rectangle, col color.Color) {
	vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), col, false)
}
