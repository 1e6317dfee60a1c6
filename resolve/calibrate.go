package resolve

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// InsufficientControlPointsError reports a pixel/ground-control intersection
// too small (or too degenerate) to fit the affine transform. It is fatal for
// the geometric path only; callers may degrade to the other sources.
type InsufficientControlPointsError struct {
	Got    int
	Need   int
	Reason string
}

func (e *InsufficientControlPointsError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("calibration: %s (%d control points, need %d)", e.Reason, e.Got, e.Need)
	}
	return fmt.Sprintf("calibration: %d usable control points, need %d", e.Got, e.Need)
}

// controlPair is one node with both a pixel observation and known coordinates
type controlPair struct {
	id  string
	px  Point
	lat float64
	lon float64
}

// FitCalibration fits the pixel-to-geographic affine transform from the
// nodes present in both the pixel observations and the ground-control set.
// The two models (lat and lon on [1, x, y]) are fitted independently by
// ordinary least squares through the normal equations, solved with Cramer's
// rule; the same inputs always produce bit-identical coefficients.
//
// Residual great-circle error over the training points is computed and
// attached to the returned model; it is the only quality check on the
// geometric source and callers should log it.
func FitCalibration(pixels map[string]Point, controls []ControlPoint, minPoints int) (*Calibration, error) {
	if minPoints < 3 {
		minPoints = 3
	}

	seen := make(map[string]bool)
	var pairs []controlPair
	for _, cp := range controls {
		px, ok := pixels[cp.NodeID]
		if !ok || seen[cp.NodeID] {
			continue
		}
		seen[cp.NodeID] = true
		pairs = append(pairs, controlPair{id: cp.NodeID, px: px, lat: cp.Lat, lon: cp.Lon})
	}
	// Fixed iteration order keeps the floating-point sums reproducible
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })

	if len(pairs) < minPoints {
		return nil, &InsufficientControlPointsError{Got: len(pairs), Need: minPoints}
	}

	latCoeffs, okLat := solveNormalEquations(pairs, func(p controlPair) float64 { return p.lat })
	lonCoeffs, okLon := solveNormalEquations(pairs, func(p controlPair) float64 { return p.lon })
	if !okLat || !okLon {
		return nil, &InsufficientControlPointsError{
			Got:    len(pairs),
			Need:   minPoints,
			Reason: "control points are collinear",
		}
	}

	cal := &Calibration{
		LatCoeffs:     latCoeffs,
		LonCoeffs:     lonCoeffs,
		ControlPoints: len(pairs),
	}

	var sum float64
	for _, p := range pairs {
		lat, lon := cal.Predict(p.px)
		km := geo.DistanceHaversine(orb.Point{lon, lat}, orb.Point{p.lon, p.lat}) / 1000.0
		sum += km
		if km > cal.MaxErrorKm {
			cal.MaxErrorKm = km
		}
	}
	cal.MeanErrorKm = sum / float64(len(pairs))

	return cal, nil
}

// Predict applies the fitted model to a pixel observation
func (c *Calibration) Predict(p Point) (lat, lon float64) {
	lat = c.LatCoeffs[0] + c.LatCoeffs[1]*p.X + c.LatCoeffs[2]*p.Y
	lon = c.LonCoeffs[0] + c.LonCoeffs[1]*p.X + c.LonCoeffs[2]*p.Y
	return lat, lon
}

// solveNormalEquations fits z = c0 + c1*x + c2*y by least squares.
// The 3x3 normal system is solved with Cramer's rule. Returns ok=false when
// the system is singular (all points collinear in pixel space).
func solveNormalEquations(pairs []controlPair, value func(controlPair) float64) ([3]float64, bool) {
	n := float64(len(pairs))

	var sumX, sumY, sumXX, sumXY, sumYY float64
	var sumZ, sumXZ, sumYZ float64
	for _, p := range pairs {
		x, y, z := p.px.X, p.px.Y, value(p)
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
		sumYY += y * y
		sumZ += z
		sumXZ += x * z
		sumYZ += y * z
	}

	// Coefficient matrix:
	// [ n    sumX  sumY  ] [c0]   [sumZ ]
	// [ sumX sumXX sumXY ] [c1] = [sumXZ]
	// [ sumY sumXY sumYY ] [c2]   [sumYZ]
	det := n*(sumXX*sumYY-sumXY*sumXY) -
		sumX*(sumX*sumYY-sumXY*sumY) +
		sumY*(sumX*sumXY-sumXX*sumY)
	if math.Abs(det) < 1e-10 {
		return [3]float64{}, false
	}

	det0 := sumZ*(sumXX*sumYY-sumXY*sumXY) -
		sumX*(sumXZ*sumYY-sumXY*sumYZ) +
		sumY*(sumXZ*sumXY-sumXX*sumYZ)
	det1 := n*(sumXZ*sumYY-sumXY*sumYZ) -
		sumZ*(sumX*sumYY-sumXY*sumY) +
		sumY*(sumX*sumYZ-sumXZ*sumY)
	det2 := n*(sumXX*sumYZ-sumXZ*sumXY) -
		sumX*(sumX*sumYZ-sumXZ*sumY) +
		sumZ*(sumX*sumXY-sumXX*sumY)

	return [3]float64{det0 / det, det1 / det, det2 / det}, true
}
