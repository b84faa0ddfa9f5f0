// Package frame joins a resolved image with a propagated satellite position
// into the immutable record consumers project onto the sphere.
package frame

import (
	"image"
	"math"
	"time"

	"github.com/gizatt/skybox/internal/imagery"
	"github.com/gizatt/skybox/internal/propagation"
	"github.com/gizatt/skybox/internal/tle"
	"github.com/gizatt/skybox/internal/transform"
)

// Frame is one satellite's self-consistent current frame: the freshest disk
// image, its capture instant, and the satellite's Earth-fixed position at
// that instant. Read-only after assembly.
type Frame struct {
	SatelliteID    string
	ImageURL       string
	Image          image.Image
	Width          int
	Height         int
	Aspect         float64
	Timestamp      time.Time
	PositionECEF   transform.ECEF
	FieldOfViewDeg float64
}

// Assemble merges one resolved image with one element set. The satellite is
// propagated at the image's capture instant, not at "now", so the geometry
// matches the moment the pixels were captured. A zero timestamp falls back to
// the current instant; propagation errors pass through.
func Assemble(satelliteID string, resolved *imagery.Resolved, entry tle.Entry, fovDeg float64) (Frame, error) {
	ts := resolved.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	pos, err := propagation.PositionECEF(entry, ts)
	if err != nil {
		return Frame{}, err
	}

	width, height := 0, 0
	if resolved.Image != nil {
		bounds := resolved.Image.Bounds()
		width = bounds.Dx()
		height = bounds.Dy()
	}
	aspect := 1.0
	if width > 0 && height > 0 {
		aspect = float64(width) / float64(height)
	}

	return Frame{
		SatelliteID:    satelliteID,
		ImageURL:       resolved.URL,
		Image:          resolved.Image,
		Width:          width,
		Height:         height,
		Aspect:         aspect,
		Timestamp:      ts,
		PositionECEF:   pos,
		FieldOfViewDeg: fovDeg,
	}, nil
}

// earthRadiusM is the WGS84 equatorial radius.
const earthRadiusM = 6378137.0

// ExpectedFieldOfView computes the Earth's angular size in degrees as seen
// from pos. Diagnostic only: the hand-tuned configured constant stays
// authoritative for geometry, and this value is logged beside it so drift
// between the two is visible.
func ExpectedFieldOfView(pos transform.ECEF) float64 {
	d := pos.Magnitude()
	if d <= earthRadiusM {
		return 180.0
	}
	return 2.0 * math.Asin(earthRadiusM/d) * 180.0 / math.Pi
}
