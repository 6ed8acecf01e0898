// Package units converts OOXML attribute values into the semantic values kept
// on tree nodes and back.
//
// Word measures most lengths in twentieths of a point (twips), font sizes in
// half-points, border widths in eighths of a point and drawing extents in
// EMUs. The tree stores pixels (96 per inch), points and inches.
package units

import (
	"math"
	"strconv"
	"strings"
)

const (
	TwipsPerInch  = 1440
	TwipsPerPoint = 20
	PixelsPerInch = 96
	PointsPerInch = 72
	EMUsPerPixel  = 9525
)

// ParseNumber parses a decimal attribute value. Word occasionally writes
// fractional twips and unit suffixes ("12pt"); suffixes are ignored.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.TrimRight(s, "abcdefghijklmnopqrstuvwxyz%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseInt parses an integer attribute value.
func ParseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Round rounds v to three decimals, keeping converted values stable across
// round trips.
func Round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// TwipsToPixels converts twips to pixels.
func TwipsToPixels(tw float64) float64 {
	return Round(tw / TwipsPerInch * PixelsPerInch)
}

// PixelsToTwips converts pixels back to whole twips.
func PixelsToTwips(px float64) int {
	return int(math.Round(px / PixelsPerInch * TwipsPerInch))
}

// TwipsToInches converts twips to inches.
func TwipsToInches(tw float64) float64 {
	return Round(tw / TwipsPerInch)
}

// InchesToTwips converts inches to whole twips.
func InchesToTwips(in float64) int {
	return int(math.Round(in * TwipsPerInch))
}

// TwipsToPoints converts twips to points.
func TwipsToPoints(tw float64) float64 {
	return Round(tw / TwipsPerPoint)
}

// PointsToTwips converts points to whole twips.
func PointsToTwips(pt float64) int {
	return int(math.Round(pt * TwipsPerPoint))
}

// HalfPointsToPoints converts a w:sz value to points.
func HalfPointsToPoints(hp float64) float64 {
	return Round(hp / 2)
}

// PointsToHalfPoints converts points to a w:sz value.
func PointsToHalfPoints(pt float64) int {
	return int(math.Round(pt * 2))
}

// EighthPointsToPixels converts a border w:sz value to pixels.
func EighthPointsToPixels(ep float64) float64 {
	return Round(ep / 8 / PointsPerInch * PixelsPerInch)
}

// PixelsToEighthPoints converts pixels to a border w:sz value.
func PixelsToEighthPoints(px float64) int {
	return int(math.Round(px / PixelsPerInch * PointsPerInch * 8))
}

// EMUToPixels converts English Metric Units to pixels.
func EMUToPixels(emu float64) float64 {
	return Round(emu / EMUsPerPixel)
}

// PixelsToEMU converts pixels to English Metric Units.
func PixelsToEMU(px float64) int64 {
	return int64(math.Round(px * EMUsPerPixel))
}

// TwipsAttrToPixels parses a twips attribute and converts it to pixels.
func TwipsAttrToPixels(s string) (float64, bool) {
	v, ok := ParseNumber(s)
	if !ok {
		return 0, false
	}
	return TwipsToPixels(v), true
}

// FormatInt renders an integer attribute value.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// FormatFloat renders a float without trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
