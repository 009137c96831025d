package card

import (
	"image/color"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	confettiGravity = 420 // px/s²
	confettiDrag    = 0.8 // Fraction of horizontal speed kept per second
)

var confettiColors = []color.RGBA{
	{R: 0xF2, G: 0x7C, B: 0xA6, A: 0xFF},
	{R: 0xF7, G: 0xC9, B: 0x48, A: 0xFF},
	{R: 0x3E, G: 0x9B, B: 0x4F, A: 0xFF},
	{R: 0x5B, G: 0x8D, B: 0xEF, A: 0xFF},
	{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
}

type confettiPiece struct {
	x, y, vx, vy float64
	spin, phase  float64
	size         float64
	col          color.RGBA
}

// confetti is a short celebration shown when the letter opens. It is purely decorative.
type confetti struct {
	lock   sync.Mutex
	rnd    *rand.Rand
	pieces []confettiPiece
}

func newConfetti(seed int64) *confetti {
	return &confetti{rnd: rand.New(rand.NewPCG(uint64(seed), 0x5eed))}
}

// burst throws n pieces upwards from the bottom center of a w×h screen.
func (c *confetti) burst(w, h, n int) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for i := 0; i < n; i++ {
		angle := -math.Pi/2 + (c.rnd.Float64()-0.5)*math.Pi/2 // Upwards, ±45º
		speed := float64(h) * (0.9 + 0.6*c.rnd.Float64())
		c.pieces = append(c.pieces, confettiPiece{
			x:     float64(w)/2 + (c.rnd.Float64()-0.5)*float64(w)/4,
			y:     float64(h),
			vx:    math.Cos(angle) * speed,
			vy:    math.Sin(angle) * speed,
			spin:  4 + 8*c.rnd.Float64(),
			phase: c.rnd.Float64() * 2 * math.Pi,
			size:  4 + 4*c.rnd.Float64(),
			col:   confettiColors[c.rnd.IntN(len(confettiColors))],
		})
	}
}

// update advances every piece by dt seconds and forgets the ones below screenH.
func (c *confetti) update(dt float64, screenH int) {
	c.lock.Lock()
	defer c.lock.Unlock()
	kept := c.pieces[:0]
	drag := math.Pow(confettiDrag, dt)
	for _, p := range c.pieces {
		p.vy += confettiGravity * dt
		p.vx *= drag
		p.x += p.vx * dt
		p.y += p.vy * dt
		p.phase += p.spin * dt
		if p.vy > 0 && p.y > float64(screenH)+p.size {
			continue
		}
		kept = append(kept, p)
	}
	c.pieces = kept
}

func (c *confetti) draw(screen *ebiten.Image) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, p := range c.pieces {
		w := p.size * math.Abs(math.Cos(p.phase)) // Flipping
		vector.DrawFilledRect(screen, float32(p.x-w/2), float32(p.y-p.size/2), float32(math.Max(w, 1)), float32(p.size), p.col, false)
	}
}

func (c *confetti) clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.pieces = nil
}

func (c *confetti) active() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.pieces)
}
