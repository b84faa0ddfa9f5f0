package transform

import (
	"math"
	"testing"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// TestJulianDate verifies the Julian Date calculation against known values.
func TestJulianDate(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected float64
	}{
		{
			name:     "J2000.0 epoch",
			time:     time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			expected: 2451545.0,
		},
		{
			name:     "Unix epoch",
			time:     time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2440587.5,
		},
		{
			// Vallado Example 3-15: April 6, 2004, 07:51:28.386 UTC
			name:     "Vallado example date",
			time:     time.Date(2004, 4, 6, 7, 51, 28, 386009000, time.UTC),
			expected: 2453101.827411875,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JulianDate(tt.time)
			diff := math.Abs(got - tt.expected)
			if diff > 1e-6 {
				t.Errorf("JulianDate(%v) = %.10f, want %.10f (diff=%.2e)", tt.time, got, tt.expected, diff)
			}
		})
	}
}

// TestGMST validates the GMST calculation against the go-satellite library's
// GSTimeFromDate function, which uses the same IAU-82 model.
func TestGMST(t *testing.T) {
	tests := []struct {
		name string
		time time.Time
	}{
		{
			name: "J2000.0 epoch",
			time: time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "Vallado example date",
			time: time.Date(2004, 4, 6, 7, 51, 28, 0, time.UTC), // integer seconds for library compat
		},
		{
			name: "recent date",
			time: time.Date(2025, 8, 12, 23, 10, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			our := GMST(tt.time)
			ref := satellite.GSTimeFromDate(
				tt.time.Year(), int(tt.time.Month()), tt.time.Day(),
				tt.time.Hour(), tt.time.Minute(), tt.time.Second(),
			)

			diff := math.Abs(our - ref)
			// 1e-8 radians ≈ 0.06 arcsec.
			if diff > 1e-8 {
				t.Errorf("GMST(%v) = %.12f rad, go-satellite = %.12f rad (diff=%.2e)", tt.time, our, ref, diff)
			}
		})
	}
}

// TestECIToECEFRotation verifies the GMST rotation and the km→m conversion
// with hand-checkable angles.
func TestECIToECEFRotation(t *testing.T) {
	geo := ECI{X: 42164, Y: 0, Z: 0}

	t.Run("zero GMST is identity", func(t *testing.T) {
		got := ECIToECEFWithGMST(geo, 0)
		want := ECEF{X: 42164000, Y: 0, Z: 0}
		if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 || math.Abs(got.Z-want.Z) > 1e-6 {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("quarter turn carries +X into +Y", func(t *testing.T) {
		got := ECIToECEFWithGMST(geo, math.Pi/2)
		if math.Abs(got.X) > 1e-3 {
			t.Errorf("expected X ≈ 0, got %f", got.X)
		}
		if math.Abs(got.Y-42164000) > 1e-3 {
			t.Errorf("expected Y ≈ 42164000 m, got %f", got.Y)
		}
		if got.Z != 0 {
			t.Errorf("expected Z = 0, got %f", got.Z)
		}
	})

	t.Run("rotation preserves magnitude", func(t *testing.T) {
		for _, gmst := range []float64{0.1, 1.0, 3.0, 5.5} {
			got := ECIToECEFWithGMST(ECI{X: 20000, Y: 30000, Z: 10000}, gmst)
			wantMag := math.Sqrt(20000*20000+30000*30000+10000*10000) * 1000.0
			if math.Abs(got.Magnitude()-wantMag) > 1e-3 {
				t.Errorf("gmst=%f: magnitude %f, want %f", gmst, got.Magnitude(), wantMag)
			}
		}
	})
}

func TestValidateECEF(t *testing.T) {
	tests := []struct {
		name string
		pos  ECEF
		want bool
	}{
		{"GEO position", ECEF{X: 42164000, Y: 0, Z: 0}, true},
		{"LEO position", ECEF{X: 6771000, Y: 0, Z: 0}, true},
		{"below surface", ECEF{X: 1000, Y: 0, Z: 0}, false},
		{"escaped", ECEF{X: 9e8, Y: 0, Z: 0}, false},
		{"NaN", ECEF{X: math.NaN(), Y: 0, Z: 0}, false},
		{"Inf", ECEF{X: math.Inf(1), Y: 0, Z: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateECEF(tt.pos); got != tt.want {
				t.Errorf("ValidateECEF(%+v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}
