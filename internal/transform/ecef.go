package transform

import (
	"math"
	"time"
)

// ECI represents an inertial satellite position in kilometers, as produced by
// the SGP4 model (TEME frame).
type ECI struct {
	X, Y, Z float64 // km
}

// ECEF represents an Earth-fixed satellite position in meters. +X points at
// 0° longitude / 0° latitude, +Z at the north pole (right-handed).
type ECEF struct {
	X, Y, Z float64 // meters
}

// Magnitude returns the distance from the Earth's center in meters.
func (p ECEF) Magnitude() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// ECIToECEF rotates an inertial position into the Earth-fixed frame at the
// given UTC time and converts kilometers to meters.
func ECIToECEF(eci ECI, t time.Time) ECEF {
	return ECIToECEFWithGMST(eci, GMST(t))
}

// ECIToECEFWithGMST rotates an inertial position about the polar axis by a
// precomputed GMST angle in radians and converts to meters. The rotation
// carries inertial +X into +Y at GMST = π/2, matching the frame convention
// used when the projectors were calibrated.
func ECIToECEFWithGMST(eci ECI, gmst float64) ECEF {
	cosG := math.Cos(gmst)
	sinG := math.Sin(gmst)

	return ECEF{
		X: (eci.X*cosG - eci.Y*sinG) * 1000.0,
		Y: (eci.X*sinG + eci.Y*cosG) * 1000.0,
		Z: eci.Z * 1000.0,
	}
}

// ValidateECEF checks that a position is physically reasonable for an
// Earth-orbiting satellite: finite, and between LEO and a generous bound
// above GEO.
func ValidateECEF(pos ECEF) bool {
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) {
		return false
	}
	if math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) || math.IsInf(pos.Z, 0) {
		return false
	}

	// Earth radius is ~6371 km, GEO is ~42164 km. Allow 6200–50000 km.
	const minRadius = 6200.0 * 1000.0
	const maxRadius = 50000.0 * 1000.0

	mag := pos.Magnitude()
	return mag >= minRadius && mag <= maxRadius
}
