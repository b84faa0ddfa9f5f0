package frame

import (
	"github.com/gizatt/skybox/internal/compositor"
)

// Default clip planes for a geostationary vantage point, in meters. Near sits
// well above the surface-to-camera minimum and far comfortably past the limb.
const (
	DefaultNearM = 1e6
	DefaultFarM  = 1e8
)

// Projector builds the compositor-side view of this frame: a frustum anchored
// at the propagated position, looking at the Earth's center, textured with the
// frame's image. Frames without a decoded image get a neutral gray disk so the
// geometry still composites.
func (f Frame) Projector(near, far float64) compositor.Projector {
	var tex compositor.Texture
	if f.Image != nil {
		tex = compositor.ImageTexture{Img: f.Image}
	} else {
		tex = compositor.SolidTexture{Color: compositor.RGB{R: 0.5, G: 0.5, B: 0.5}}
	}

	eye := compositor.Vec3{
		X: f.PositionECEF.X,
		Y: f.PositionECEF.Y,
		Z: f.PositionECEF.Z,
	}
	return compositor.NewProjector(eye, f.FieldOfViewDeg, f.Aspect, near, far, tex)
}
