// Package utils contains small numeric helpers shared by the planning packages.
package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Square returns n*n. Math.pow( x, 2 ) is slow, this is faster.
func Square(n float64) float64 {
	return n * n
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// FixNegativeAngle maps an angle in radians into [0, 2pi).
func FixNegativeAngle(a float64) float64 {
	angle := math.Mod(a, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

// SplitPositiveAngle maps an angle in radians into (-pi, pi].
func SplitPositiveAngle(a float64) float64 {
	angle := FixNegativeAngle(a)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return angle
}

// AngleBetweenTwoAnglesPositive returns the smallest unsigned difference between two headings in radians.
// The result is always in [0, pi]. The arguments are commutative.
func AngleBetweenTwoAnglesPositive(a1, a2 float64) float64 {
	diff := math.Abs(FixNegativeAngle(a1) - FixNegativeAngle(a2))
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return diff
}

// AngleDiffDeg returns the closest difference from the two given
// angles. The arguments are commutative.
func AngleDiffDeg(a1, a2 float64) float64 {
	return float64(180) - math.Abs(math.Abs(a1-a2)-float64(180))
}

// MaxInt returns the larger of two ints.
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// MinInt returns the smaller of two ints.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
