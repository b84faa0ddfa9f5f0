package compositor

import (
	"math"
)

// RGB is a linear color with components in [0, 1].
type RGB struct {
	R, G, B float64
}

func (c RGB) add(o RGB) RGB {
	return RGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

func (c RGB) scale(s float64) RGB {
	return RGB{c.R * s, c.G * s, c.B * s}
}

// mix linearly interpolates from c to o by t.
func (c RGB) mix(o RGB, t float64) RGB {
	return c.scale(1 - t).add(o.scale(t))
}

// Texture samples a color at normalized coordinates (u, v) in [0, 1]².
type Texture interface {
	Sample(u, v float64) RGB
}

// Projector is one active image source: a satellite camera frustum aimed at
// the globe's center plus the disk image it captured.
type Projector struct {
	ViewProj  Mat4
	CameraPos Vec3
	Texture   Texture
}

// NewProjector builds a projector for a camera at pos looking at the origin,
// with a full-disk field of view in degrees. near and far bound the accepted
// depth range.
func NewProjector(pos Vec3, fovDeg, aspect, near, far float64, tex Texture) Projector {
	up := Vec3{Z: 1}
	// Degenerate up vector when the camera sits on the polar axis.
	if math.Abs(pos.Normalize().Z) > 0.999 {
		up = Vec3{Y: 1}
	}

	view := LookAt(pos, Vec3{}, up)
	proj := Perspective(fovDeg, aspect, near, far)
	return Projector{
		ViewProj:  proj.Mul(view),
		CameraPos: pos,
		Texture:   tex,
	}
}

// Params tune the blend. Zero value is not useful; start from DefaultParams.
type Params struct {
	// FacingEpsilon rejects samples whose surface normal is nearly
	// perpendicular to the camera direction. Slightly positive so limb
	// samples with vanishing weight don't flicker.
	FacingEpsilon float64
	// BorderMargin is the fraction of the unit square over which each image
	// edge fades out.
	BorderMargin float64
	// MaxSources bounds how many projectors contribute to one sample.
	MaxSources int
	// LightDir lights the uncovered fallback shading.
	LightDir Vec3
	// BaseColor is the albedo of the uncovered globe.
	BaseColor RGB
}

// DefaultParams returns the tuning used by the rendering adapter.
func DefaultParams() Params {
	return Params{
		FacingEpsilon: 0.05,
		BorderMargin:  0.1,
		MaxSources:    4,
		LightDir:      Vec3{X: 1, Y: 0.4, Z: 0.6}.Normalize(),
		BaseColor:     RGB{R: 0.05, G: 0.12, B: 0.25},
	}
}

// Composite evaluates the blended color at surface point p (world space,
// sphere centered at the origin). Sources past MaxSources are ignored in
// input order. Where no source covers p the result is the base-shaded globe;
// partial coverage blends toward the base rather than toward black, and
// overlapping full-coverage sources average instead of summing.
func Composite(p Vec3, sources []Projector, params Params) RGB {
	n := p.Normalize()

	lambert := math.Max(n.Dot(params.LightDir), 0)
	base := params.BaseColor.scale(lambert)

	if len(sources) > params.MaxSources {
		sources = sources[:params.MaxSources]
	}

	var sumColor RGB
	var sumWeight float64
	for _, src := range sources {
		color, weight, ok := sampleSource(p, n, src, params)
		if !ok {
			continue
		}
		sumColor = sumColor.add(color.scale(weight))
		sumWeight += weight
	}

	if sumWeight <= 0 {
		return base
	}

	avg := sumColor.scale(1 / sumWeight)
	return base.mix(avg, clamp(sumWeight, 0, 1))
}

// sampleSource computes one projector's contribution at p: the sampled color
// and its weight, or ok=false when the source does not cover p.
func sampleSource(p, n Vec3, src Projector, params Params) (RGB, float64, bool) {
	// Back-face / self-occlusion rejection. Ignores horizon curvature,
	// acceptable for a camera at GEO distance.
	toCam := src.CameraPos.Sub(p).Normalize()
	facing := n.Dot(toCam)
	if facing <= params.FacingEpsilon {
		return RGB{}, 0, false
	}

	cx, cy, cz, cw := src.ViewProj.TransformPoint(p)
	if cw <= 0 {
		// Behind the source camera.
		return RGB{}, 0, false
	}

	u := (cx/cw + 1) / 2
	v := (cy/cw + 1) / 2
	depth := (cz/cw + 1) / 2
	if u < 0 || u > 1 || v < 0 || v > 1 || depth < 0 || depth > 1 {
		return RGB{}, 0, false
	}

	fade := edgeFade(u, params.BorderMargin) * edgeFade(v, params.BorderMargin)
	weight := fade * facing
	if weight <= 0 {
		return RGB{}, 0, false
	}

	return src.Texture.Sample(u, v), weight, true
}

// edgeFade ramps from 0 at either edge of the unit interval to 1 past the
// margin, avoiding a hard seam at the image border.
func edgeFade(x, margin float64) float64 {
	return smoothstep(0, margin, x) * smoothstep(0, margin, 1-x)
}
