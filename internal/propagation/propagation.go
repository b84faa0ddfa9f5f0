// Package propagation advances a two-line element set to a target instant and
// returns the satellite's Earth-fixed position in meters.
//
// SGP4 library choice: github.com/joshuaferrara/go-satellite. Pure Go (no
// CGO), battle-tested since 2016, explicit TEME output.
//
// Note: Propagate() takes Satellite by value so SGP4 error codes are not
// visible to the caller. Propagation failures are detected by checking the
// output for NaN/Inf and unreasonable position magnitudes.
package propagation

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/gizatt/skybox/internal/tle"
	"github.com/gizatt/skybox/internal/transform"
)

// Error describes a propagation failure for one element set.
type Error struct {
	NORADID int
	Reason  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("propagation failed for NORAD %d: %s", e.NORADID, e.Reason)
}

// PositionECEF propagates the element set to the given instant and returns
// the Earth-fixed position in meters. Degenerate or expired element sets that
// yield no usable position produce an *Error.
func PositionECEF(entry tle.Entry, at time.Time) (transform.ECEF, error) {
	if err := validateLines(entry.Line1, entry.Line2); err != nil {
		return transform.ECEF{}, fmt.Errorf("invalid TLE for NORAD %d: %w", entry.NORADID, err)
	}

	// go-satellite calls log.Fatal on malformed input, which the validation
	// above prevents from reaching.
	sat := satellite.TLEToSat(entry.Line1, entry.Line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return transform.ECEF{}, &Error{
			NORADID: entry.NORADID,
			Reason:  fmt.Sprintf("sgp4 init failed: code=%d %s", sat.Error, sat.ErrorStr),
		}
	}

	at = at.UTC()
	pos, _ := satellite.Propagate(sat, at.Year(), int(at.Month()), at.Day(), at.Hour(), at.Minute(), at.Second())
	if err := checkPosition(entry.NORADID, pos.X, pos.Y, pos.Z); err != nil {
		return transform.ECEF{}, err
	}

	ecef := transform.ECIToECEF(transform.ECI{X: pos.X, Y: pos.Y, Z: pos.Z}, at)
	return ecef, nil
}

// checkPosition rejects propagation output with no usable position data:
// NaN/Inf components or a magnitude outside the plausible orbit band.
func checkPosition(noradID int, x, y, z float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(z) ||
		math.IsInf(x, 0) || math.IsInf(y, 0) || math.IsInf(z, 0) {
		return &Error{NORADID: noradID, Reason: "model returned no position data (NaN/Inf output)"}
	}

	// Position magnitude should be between ~6200km and ~50000km.
	mag := math.Sqrt(x*x + y*y + z*z)
	if mag < 6200.0 || mag > 50000.0 {
		return &Error{
			NORADID: noradID,
			Reason:  fmt.Sprintf("model returned no usable position data (magnitude %.1f km)", mag),
		}
	}
	return nil
}

// validateLines performs basic format validation on TLE lines.
func validateLines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}
