package card

import (
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/fogleman/fauxgl"
)

// modelPart is a piece of the built-in model, meshed separately to keep its own color.
type modelPart struct {
	name  string
	s     sdf.SDF3 // Z is UP while modelling
	color fauxgl.Color
}

// flowerParts models a flower in a pot, all sizes in the same arbitrary unit.
func flowerParts() ([]modelPart, error) {
	// Pot: a truncated cone with a rim
	pot, err := sdf.Cone3D(0.5, 0.28, 0.38, 0.02)
	if err != nil {
		return nil, err
	}
	rim, err := sdf.Cylinder3D(0.08, 0.41, 0.02)
	if err != nil {
		return nil, err
	}
	rim = sdf.Transform3D(rim, sdf.Translate3d(v3.Vec{Z: 0.25}))
	soil, err := sdf.Cylinder3D(0.06, 0.36, 0)
	if err != nil {
		return nil, err
	}
	soil = sdf.Transform3D(soil, sdf.Translate3d(v3.Vec{Z: 0.28}))

	// Stem and two leaves
	stem, err := sdf.Cylinder3D(0.8, 0.03, 0)
	if err != nil {
		return nil, err
	}
	stem = sdf.Transform3D(stem, sdf.Translate3d(v3.Vec{Z: 0.68}))
	unitSphere, err := sdf.Sphere3D(1)
	if err != nil {
		return nil, err
	}
	leafScale := sdf.Scale3d(v3.Vec{X: 0.16, Y: 0.06, Z: 0.025})
	leafLeft := sdf.Transform3D(unitSphere, sdf.Translate3d(v3.Vec{X: -0.14, Z: 0.6}).Mul(sdf.RotateY(math.Pi/6)).Mul(leafScale))
	leafRight := sdf.Transform3D(unitSphere, sdf.Translate3d(v3.Vec{X: 0.14, Z: 0.75}).Mul(sdf.RotateY(-math.Pi/6)).Mul(leafScale))
	green := sdf.Union3D(stem, leafLeft, leafRight)

	// Blossom: a ring of flattened petals around a yellow center
	const petals = 8
	var petalSdfs []sdf.SDF3
	for i := 0; i < petals; i++ {
		angle := float64(i) * 2 * math.Pi / petals
		m := sdf.Translate3d(v3.Vec{X: 0.17 * math.Cos(angle), Y: 0.17 * math.Sin(angle), Z: 1.12}).
			Mul(sdf.RotateZ(angle)).
			Mul(sdf.Scale3d(v3.Vec{X: 0.12, Y: 0.065, Z: 0.025}))
		petalSdfs = append(petalSdfs, sdf.Transform3D(unitSphere, m))
	}
	center := sdf.Transform3D(unitSphere, sdf.Translate3d(v3.Vec{Z: 1.13}).Mul(sdf.Scale3d(v3.Vec{X: 0.08, Y: 0.08, Z: 0.05})))

	return []modelPart{
		{name: "pot", s: sdf.Union3D(pot, rim), color: fauxgl.HexColor("#C8643C")},
		{name: "soil", s: soil, color: fauxgl.HexColor("#4A3222")},
		{name: "stem", s: green, color: fauxgl.HexColor("#3E9B4F")},
		{name: "petals", s: sdf.Union3D(petalSdfs...), color: fauxgl.HexColor("#F27CA6")},
		{name: "center", s: center, color: fauxgl.HexColor("#F7C948")},
	}, nil
}

// buildFlowerMesh meshes every part with marching cubes (meshCells along the longest side of each part).
func buildFlowerMesh(meshCells int) (*fauxgl.Mesh, error) {
	parts, err := flowerParts()
	if err != nil {
		return nil, err
	}
	var triangles []*fauxgl.Triangle
	for _, part := range parts {
		s := sdf.Transform3D(part.s, sdf.RotateX(-math.Pi/2)) // Z+ UP to Y+ UP
		var meshGenerator render.Render3 = render.NewMarchingCubesUniform(meshCells)
		triChan := make(chan []*render.Triangle3)
		go func() {
			meshGenerator.Render(s, triChan)
			close(triChan)
		}()
		for tris := range triChan {
			for _, tri := range tris {
				triangles = append(triangles, r3mConvertTriangle(tri, part.color))
			}
		}
	}
	mesh := fauxgl.NewTriangleMesh(triangles)
	mesh.SmoothNormalsThreshold(math.Pi / 3)
	return mesh, nil
}

func r3mConvertTriangle(tri *render.Triangle3, col fauxgl.Color) *fauxgl.Triangle {
	normalV := r3mToFauxglVector(tri.Normal())
	return &fauxgl.Triangle{
		V1: fauxgl.Vertex{Position: r3mToFauxglVector(tri.V[0]), Normal: normalV, Color: col},
		V2: fauxgl.Vertex{Position: r3mToFauxglVector(tri.V[1]), Normal: normalV, Color: col},
		V3: fauxgl.Vertex{Position: r3mToFauxglVector(tri.V[2]), Normal: normalV, Color: col},
	}
}
