package camera

import (
	"math"

	"github.com/Yeicor/flowercard/internal"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// polarEps keeps the camera away from the poles, where the up vector degenerates.
const polarEps = 1e-5

// Delta is the raw user input accumulated for one frame.
type Delta struct {
	DX, DY     float64 // Pointer drag in screen pixels
	Zoom       float64 // Wheel steps, positive zooms in
	PanX, PanY float64 // Pan drag in screen pixels (dropped: panning is never enabled)
}

// Orbit filters raw pointer input into a camera position that respects the constraints.
// It keeps no state apart from the constraints themselves.
type Orbit struct {
	c internal.OrbitConstraints
}

func NewOrbit(c internal.OrbitConstraints) *Orbit {
	return &Orbit{c: c}
}

func (o *Orbit) Constraints() internal.OrbitConstraints {
	return o.c
}

// Spherical returns the distance to the center, the polar angle from +Y and the azimuth around Y (0 looks down -Z).
func (o *Orbit) Spherical(pos v3.Vec) (radius, polar, azimuth float64) {
	offset := pos.Sub(o.c.Center)
	radius = offset.Length()
	if radius < 1e-12 {
		return 0, math.Pi / 2, 0
	}
	polar = math.Acos(math.Max(-1, math.Min(1, offset.Y/radius)))
	azimuth = math.Atan2(offset.X, offset.Z)
	return radius, polar, azimuth
}

// Apply rotates (and zooms, if enabled) the camera around the center, then clamps the result.
func (o *Orbit) Apply(pos v3.Vec, d Delta, viewportHeight float64) v3.Vec {
	radius, polar, azimuth := o.Spherical(pos)
	if viewportHeight > 0 {
		azimuth -= 2 * math.Pi * d.DX / viewportHeight * o.c.RotateSpeed
		polar -= 2 * math.Pi * d.DY / viewportHeight * o.c.RotateSpeed
	}
	if o.c.ZoomEnabled && d.Zoom != 0 {
		radius *= math.Pow(0.95, o.c.ZoomSpeed*d.Zoom)
	}
	return o.fromSpherical(o.clamp(radius, polar, azimuth))
}

// Clamp projects any position into the allowed polar and distance ranges. Positions already inside are returned as is.
func (o *Orbit) Clamp(pos v3.Vec) v3.Vec {
	radius, polar, azimuth := o.Spherical(pos)
	r, p, a := o.clamp(radius, polar, azimuth)
	if r == radius && p == polar {
		return pos
	}
	return o.fromSpherical(r, p, a)
}

func (o *Orbit) clamp(radius, polar, azimuth float64) (float64, float64, float64) {
	lo := math.Max(o.c.MinPolarAngle, polarEps)
	hi := math.Min(o.c.MaxPolarAngle, math.Pi-polarEps)
	polar = math.Max(lo, math.Min(hi, polar))
	radius = math.Max(o.c.MinDistance, math.Min(o.c.MaxDistance, radius))
	if azimuth < -math.Pi {
		azimuth += 2 * math.Pi // Wrap around
	} else if azimuth > math.Pi {
		azimuth -= 2 * math.Pi
	}
	return radius, polar, azimuth
}

func (o *Orbit) fromSpherical(radius, polar, azimuth float64) v3.Vec {
	sinPolar := math.Sin(polar)
	return o.c.Center.Add(v3.Vec{
		X: radius * sinPolar * math.Sin(azimuth),
		Y: radius * math.Cos(polar),
		Z: radius * sinPolar * math.Cos(azimuth),
	})
}
