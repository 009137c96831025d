package card

import (
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Yeicor/flowercard/internal/config"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/fogleman/fauxgl"
)

func TestBuildFlowerMesh(t *testing.T) {
	src := newModelSource()
	src.builtinCells = 24
	mesh, err := src.Resolve(context.Background(), config.BuiltinModel)
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Triangles) == 0 {
		t.Fatal("empty mesh")
	}
	box := mesh.BoundingBox()
	const eps = 1e-6
	for _, c := range []float64{box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z} {
		if math.Abs(c) > 0.6+eps {
			t.Fatalf("mesh not normalized: %+v", box)
		}
	}
	size := box.Size()
	if size.Y < size.X || size.Y < size.Z {
		t.Fatalf("the flower should stand along Y, size %+v", size)
	}
	colors := map[fauxgl.Color]bool{}
	for _, tri := range mesh.Triangles {
		colors[tri.V1.Color] = true
	}
	if len(colors) < 3 {
		t.Fatalf("expected the parts to keep their colors, got %d colors", len(colors))
	}
}

// writeTetrahedronSTL writes a binary STL file.
func writeTetrahedronSTL(t *testing.T, path string) {
	t.Helper()
	verts := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	faces := [][3]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	write := func(v any) {
		if err := binary.Write(f, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	write([80]byte{})
	write(uint32(len(faces)))
	for _, face := range faces {
		write([3]float32{}) // Normal (recomputed)
		for _, i := range face {
			write(verts[i])
		}
		write(uint16(0))
	}
}

func TestLoadMeshFileSTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetra.stl")
	writeTetrahedronSTL(t, path)
	src := newModelSource()
	mesh, err := src.Resolve(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Triangles) != 4 {
		t.Fatalf("expected 4 triangles, got %d", len(mesh.Triangles))
	}
	if mesh.Triangles[0].V1.Color != src.defaultColor {
		t.Fatal("loaded meshes must get the default color")
	}
}

func TestLoadMeshFileErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "unknown format", path: filepath.Join(dir, "model.ply"), want: errUnknownModelFormat},
		{name: "missing stl", path: filepath.Join(dir, "missing.stl"), want: os.ErrNotExist},
		{name: "missing obj", path: filepath.Join(dir, "missing.OBJ"), want: os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newModelSource().Resolve(context.Background(), tt.path)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRenderer3meshDrawsModel(t *testing.T) {
	src := newModelSource()
	src.builtinCells = 24
	mesh, err := src.Resolve(context.Background(), config.BuiltinModel)
	if err != nil {
		t.Fatal(err)
	}
	rm := newRenderer3mesh(50)
	size := image.Pt(64, 48)
	img := rm.Render(mesh, v3.Vec{Z: 3}, v3.Vec{}, size)
	if img.Bounds().Size() != size {
		t.Fatalf("unexpected render size %v", img.Bounds().Size())
	}
	background := img.NRGBAAt(0, 0)
	if covered := coverage(img, background); covered < 0.02 {
		t.Fatalf("the model covers only %.3f of the render", covered)
	}

	// Camera behind the model: still visible, nothing culled
	img = rm.Render(mesh, v3.Vec{Z: -3}, v3.Vec{}, size)
	if covered := coverage(img, background); covered < 0.02 {
		t.Fatalf("the model covers only %.3f of the render from behind", covered)
	}
}

// coverage is the fraction of pixels that differ from the background.
func coverage(img *image.NRGBA, background color.NRGBA) float64 {
	b := img.Bounds()
	count := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y) != background {
				count++
			}
		}
	}
	return float64(count) / float64(b.Dx()*b.Dy())
}

func BenchmarkRenderer3mesh_Render(b *testing.B) {
	mesh, err := buildFlowerMesh(48)
	if err != nil {
		b.Fatal(err)
	}
	normalizeMesh(mesh)
	rm := newRenderer3mesh(50)
	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		rm.Render(mesh, v3.Vec{Z: 1.5 + float64(n%10)/10}, v3.Vec{}, image.Pt(1920/4, 1080/4))
	}
}
