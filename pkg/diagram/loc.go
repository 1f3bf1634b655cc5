package diagram

import (
	"math"
	"strconv"
	"strings"
)

// FormatLoc serializes p as "<x> <y>".
func FormatLoc(p Point) string {
	return strconv.FormatFloat(p.X, 'f', -1, 64) + " " + strconv.FormatFloat(p.Y, 'f', -1, 64)
}

// ParseLoc parses a coordinate serialized by FormatLoc.
// It never fails: malformed input yields (0,0).
func ParseLoc(s string) Point {
	fields := strings.Split(strings.TrimSpace(s), " ")
	if len(fields) != 2 {
		return Point{}
	}
	x, errX := strconv.ParseFloat(fields[0], 64)
	y, errY := strconv.ParseFloat(fields[1], 64)
	if errX != nil || errY != nil || !finite(x) || !finite(y) {
		return Point{}
	}
	return Point{X: x, Y: y}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
