package resolve

import (
	"math"
	"sort"
)

// roundCoord rounds to 4 decimal places, the resolution the contour-map
// projection can honestly claim (the source image is 600x600 pixels).
func roundCoord(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Project applies the fitted calibration to every pixel observation and
// returns contour-method candidates sorted by node ID. Nodes used for
// calibration get a recomputed coordinate like everyone else: the single
// global model is applied uniformly rather than echoing the ground truth.
func Project(cal *Calibration, pixels map[string]Point) []Candidate {
	candidates := make([]Candidate, 0, len(pixels))
	for id, px := range pixels {
		lat, lon := cal.Predict(px)
		candidates = append(candidates, Candidate{
			NodeID: id,
			Lat:    roundCoord(lat),
			Lon:    roundCoord(lon),
			Method: MethodContour,
		})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].NodeID < candidates[j].NodeID })
	return candidates
}
