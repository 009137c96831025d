package card

import (
	"image"
	"image/color"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/fogleman/fauxgl"
	"github.com/hajimehoshi/ebiten/v2"
)

// renderKey identifies a render: nothing is re-rendered while it stays the same.
type renderKey struct {
	cam         v3.Vec
	size        image.Point
	meshVersion int
}

// renderer3mesh rasterizes the model on the CPU with fauxgl, from the card camera.
type renderer3mesh struct {
	lastContext     *fauxgl.Context
	fovY            float64 // Degrees
	backgroundColor color.RGBA
	lightDir        v3.Vec
	ambient         float64
}

func newRenderer3mesh(fovY float64) *renderer3mesh {
	return &renderer3mesh{
		fovY:            fovY,
		backgroundColor: color.RGBA{R: 250, G: 232, B: 236, A: 255},
		lightDir:        v3.Vec{X: -0.5, Y: 1, Z: 0.8}.Normalize(),
		ambient:         0.35,
	}
}

// Render draws mesh seen from camPos towards center (Y up) into a new size image.
func (rm *renderer3mesh) Render(mesh *fauxgl.Mesh, camPos, center v3.Vec, size image.Point) *image.NRGBA {
	if rm.lastContext == nil || rm.lastContext.Width != size.X || rm.lastContext.Height != size.Y {
		// Rebuild rendering context only when needed
		rm.lastContext = fauxgl.NewContext(size.X, size.Y)
		rm.lastContext.Cull = fauxgl.CullNone // Both faces are lit
	} else {
		rm.lastContext.ClearDepthBuffer()
	}
	rm.lastContext.ClearColorBufferWith(fauxgl.MakeColor(rm.backgroundColor))

	aspectRatio := float64(size.X) / float64(size.Y)
	maxRay := camPos.Sub(center).Length() + 4 // The model fits well inside a unit sphere
	camMatrix := fauxgl.LookAt(r3mToFauxglVector(camPos), r3mToFauxglVector(center), fauxgl.Vector{Y: 1}).
		Perspective(rm.fovY, aspectRatio, 1e-2, maxRay)
	rm.lastContext.Shader = &r3mLambertShader{Matrix: camMatrix, LightDir: r3mToFauxglVector(rm.lightDir), Ambient: rm.ambient}
	rm.lastContext.DrawMesh(mesh) // This is already multithread, no need to parallelize anymore
	return rm.lastContext.Image().(*image.NRGBA)
}

// upload copies a render into the cached ebiten image, (re)allocating it on size changes.
func upload(cached *ebiten.Image, img *image.NRGBA) *ebiten.Image {
	size := img.Bounds().Size()
	if cached == nil || cached.Bounds().Size() != size {
		if cached != nil {
			cached.Deallocate()
		}
		cached = ebiten.NewImage(size.X, size.Y)
	}
	cached.WritePixels(img.Pix) // The background is opaque: straight and premultiplied alpha match
	return cached
}

func r3mToFauxglVector(v v3.Vec) fauxgl.Vector {
	return fauxgl.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// r3mLambertShader shades the per-vertex colors with one directional light (both faces lit).
type r3mLambertShader struct {
	Matrix   fauxgl.Matrix
	LightDir fauxgl.Vector
	Ambient  float64
}

func (shader *r3mLambertShader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	v.Output = shader.Matrix.MulPositionW(v.Position)
	return v
}

func (shader *r3mLambertShader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	diffuse := math.Abs(v.Normal.Normalize().Dot(shader.LightDir))
	k := shader.Ambient + (1-shader.Ambient)*diffuse
	return fauxgl.Color{R: v.Color.R * k, G: v.Color.G * k, B: v.Color.B * k, A: 1}
}
