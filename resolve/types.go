package resolve

// Point represents a pixel coordinate on a contour-map image
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is an ERCOT resource node (settlement point) from the NP4-160
// Resource_Node_to_Unit mapping. ID is the settlement point name; Substation
// is the raw unit substation name used for registry matching.
type Node struct {
	ID         string `json:"id"`
	Substation string `json:"substation"`
}

// ControlPoint is a settlement point with independently known coordinates,
// taken from the KML contour-map snapshot. Used both to calibrate the
// pixel-to-geographic transform and as a direct coordinate source.
type ControlPoint struct {
	NodeID    string  `json:"nodeId"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	PlantName string  `json:"plantName,omitempty"`
}

// Plant is one EIA Form 860 registry record. Never mutated; a plant can be
// claimed by at most one node during name matching.
type Plant struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Method identifies which source produced a node's coordinates
type Method string

const (
	// MethodContour - pixel position projected through the fitted affine transform
	MethodContour Method = "contour"
	// MethodControl - direct coordinate from the KML snapshot
	MethodControl Method = "control"
	// MethodPrefix - normalized substation name is a prefix of a plant name
	MethodPrefix Method = "prefix"
	// MethodSubstring - normalized substation name occurs inside a plant name
	MethodSubstring Method = "substring"
	// MethodFuzzy - best similarity score at or above the configured cutoff
	MethodFuzzy Method = "fuzzy"
)

// methodPriority orders sources highest-first for the merge step.
// Lower value wins.
var methodPriority = map[Method]int{
	MethodContour:   0,
	MethodControl:   1,
	MethodPrefix:    2,
	MethodSubstring: 3,
	MethodFuzzy:     4,
}

// Candidate is one proposed coordinate for a node from a single source
type Candidate struct {
	NodeID    string  `json:"nodeId"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	PlantName string  `json:"plantName,omitempty"`
	Method    Method  `json:"method"`
	Score     float64 `json:"score,omitempty"` // similarity score, fuzzy matches only
}

// Calibration holds the two fitted linear models mapping pixel space to
// geographic coordinates:
//
//	lat = LatCoeffs[0] + LatCoeffs[1]*x + LatCoeffs[2]*y
//	lon = LonCoeffs[0] + LonCoeffs[1]*x + LonCoeffs[2]*y
//
// Immutable after fitting. MeanErrorKm/MaxErrorKm summarize the great-circle
// residual over the control points used in the fit.
type Calibration struct {
	LatCoeffs     [3]float64 `json:"latCoeffs"`
	LonCoeffs     [3]float64 `json:"lonCoeffs"`
	ControlPoints int        `json:"controlPoints"`
	MeanErrorKm   float64    `json:"meanErrorKm"`
	MaxErrorKm    float64    `json:"maxErrorKm"`
}

// Result is the full outcome of a coordinate resolution run.
// Table is ordered by the node universe order; every node in the universe
// appears in exactly one of Table or Unmatched.
type Result struct {
	Table           []Candidate
	Unmatched       []Node
	UnclaimedPlants []Plant
	Calibration     *Calibration // nil when the geometric path was degraded
	FromCache       bool
}

// MethodCounts tallies matched nodes per source method
func (r *Result) MethodCounts() map[Method]int {
	counts := make(map[Method]int)
	for _, c := range r.Table {
		counts[c.Method]++
	}
	return counts
}

// Lookup returns the candidate for a node ID, if the node was resolved
func (r *Result) Lookup(nodeID string) (Candidate, bool) {
	for _, c := range r.Table {
		if c.NodeID == nodeID {
			return c, true
		}
	}
	return Candidate{}, false
}
