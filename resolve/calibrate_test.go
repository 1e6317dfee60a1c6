package resolve

import (
	"errors"
	"math"
	"testing"
)

// syntheticPixels generates pixel observations and matching ground control
// from a known affine model, so the fit can be checked for exact recovery.
func syntheticCalibration() (map[string]Point, []ControlPoint) {
	latOf := func(p Point) float64 { return 36.0 - 0.012*p.Y + 0.0004*p.X }
	lonOf := func(p Point) float64 { return -103.0 + 0.015*p.X + 0.0008*p.Y }

	pixels := map[string]Point{
		"NODE_A": {X: 50, Y: 80},
		"NODE_B": {X: 410, Y: 95},
		"NODE_C": {X: 230, Y: 310},
		"NODE_D": {X: 120, Y: 540},
		"NODE_E": {X: 560, Y: 480},
		"NODE_F": {X: 333, Y: 215},
		"NODE_G": {X: 75, Y: 420},
		"NODE_H": {X: 480, Y: 260},
		"NODE_I": {X: 290, Y: 55},
		"NODE_J": {X: 190, Y: 190},
	}

	var controls []ControlPoint
	for id, px := range pixels {
		controls = append(controls, ControlPoint{NodeID: id, Lat: latOf(px), Lon: lonOf(px)})
	}
	return pixels, controls
}

func TestFitCalibration_RecoversExactModel(t *testing.T) {
	pixels, controls := syntheticCalibration()

	cal, err := FitCalibration(pixels, controls, DefaultMinControlPoints)
	if err != nil {
		t.Fatalf("FitCalibration: %v", err)
	}

	if cal.ControlPoints != 10 {
		t.Errorf("ControlPoints = %d, want 10", cal.ControlPoints)
	}
	// The data is exactly affine, so the residuals are numerical noise
	if cal.MeanErrorKm > 1e-6 {
		t.Errorf("MeanErrorKm = %g, want ~0 for exact affine data", cal.MeanErrorKm)
	}
	if cal.MaxErrorKm > 1e-6 {
		t.Errorf("MaxErrorKm = %g, want ~0 for exact affine data", cal.MaxErrorKm)
	}

	lat, lon := cal.Predict(Point{X: 300, Y: 300})
	wantLat := 36.0 - 0.012*300 + 0.0004*300
	wantLon := -103.0 + 0.015*300 + 0.0008*300
	if math.Abs(lat-wantLat) > 1e-9 || math.Abs(lon-wantLon) > 1e-9 {
		t.Errorf("Predict(300,300) = (%v, %v), want (%v, %v)", lat, lon, wantLat, wantLon)
	}
}

func TestFitCalibration_Deterministic(t *testing.T) {
	pixels, controls := syntheticCalibration()

	first, err := FitCalibration(pixels, controls, DefaultMinControlPoints)
	if err != nil {
		t.Fatal(err)
	}

	// Reversed control order must not perturb a single bit of the fit
	reversed := make([]ControlPoint, len(controls))
	for i, cp := range controls {
		reversed[len(controls)-1-i] = cp
	}
	second, err := FitCalibration(pixels, reversed, DefaultMinControlPoints)
	if err != nil {
		t.Fatal(err)
	}

	if first.LatCoeffs != second.LatCoeffs || first.LonCoeffs != second.LonCoeffs {
		t.Errorf("coefficients depend on control order:\n%v %v\n%v %v",
			first.LatCoeffs, first.LonCoeffs, second.LatCoeffs, second.LonCoeffs)
	}
}

func TestFitCalibration_TooFewPoints(t *testing.T) {
	pixels := map[string]Point{
		"A": {X: 10, Y: 20},
		"B": {X: 30, Y: 40},
	}
	controls := []ControlPoint{
		{NodeID: "A", Lat: 31, Lon: -100},
		{NodeID: "B", Lat: 32, Lon: -101},
		{NodeID: "C", Lat: 33, Lon: -102}, // no pixel observation
	}

	_, err := FitCalibration(pixels, controls, 10)
	var icp *InsufficientControlPointsError
	if !errors.As(err, &icp) {
		t.Fatalf("error = %v, want InsufficientControlPointsError", err)
	}
	if icp.Got != 2 || icp.Need != 10 {
		t.Errorf("got %d/%d, want 2/10", icp.Got, icp.Need)
	}
}

func TestFitCalibration_CollinearPoints(t *testing.T) {
	pixels := make(map[string]Point)
	var controls []ControlPoint
	for i := 0; i < 12; i++ {
		id := string(rune('A' + i))
		pixels[id] = Point{X: float64(i * 10), Y: float64(i * 20)} // all on one line
		controls = append(controls, ControlPoint{NodeID: id, Lat: 30 + float64(i), Lon: -100 - float64(i)})
	}

	_, err := FitCalibration(pixels, controls, 10)
	var icp *InsufficientControlPointsError
	if !errors.As(err, &icp) {
		t.Fatalf("error = %v, want InsufficientControlPointsError for collinear input", err)
	}
	if icp.Reason == "" {
		t.Error("collinear failure should carry a reason")
	}
}

func TestFitCalibration_DuplicateControlsIgnored(t *testing.T) {
	pixels, controls := syntheticCalibration()
	// A second sighting of the same node must not double-weight it
	dup := append([]ControlPoint{}, controls...)
	dup = append(dup, ControlPoint{NodeID: controls[0].NodeID, Lat: 99, Lon: 99})

	clean, err := FitCalibration(pixels, controls, DefaultMinControlPoints)
	if err != nil {
		t.Fatal(err)
	}
	withDup, err := FitCalibration(pixels, dup, DefaultMinControlPoints)
	if err != nil {
		t.Fatal(err)
	}

	if clean.LatCoeffs != withDup.LatCoeffs || clean.ControlPoints != withDup.ControlPoints {
		t.Error("duplicate control point changed the fit")
	}
}
