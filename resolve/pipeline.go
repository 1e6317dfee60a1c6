package resolve

import (
	"errors"
	"fmt"
	"log"
)

// BuildCoordinates runs the full resolution pipeline from raw inputs:
// parse contour maps and the KML snapshot, calibrate and project the pixel
// observations, name-match the leftovers against the plant registry, then
// priority-merge everything into one table.
//
// The node universe and plant registry are required; the geometric inputs
// degrade gracefully (a missing page or KML just means fewer geometric
// candidates), except that an unusable calibration follows the configured
// thinCalibration policy.
func BuildCoordinates(cfg *Config) (*Result, error) {
	universe, err := LoadNodeUniverse(cfg.UniversePath)
	if err != nil {
		return nil, fmt.Errorf("loading node universe: %w", err)
	}
	log.Printf("node universe: %d resource nodes", len(universe))

	plants, err := LoadPlantRegistry(cfg.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("loading plant registry: %w", err)
	}
	log.Printf("plant registry: %d plants", len(plants))

	pixels := CombineImageMaps(cfg.Documents)

	var controls []ControlPoint
	if cfg.KMLPath != "" {
		controls, err = ParseKMLFile(cfg.KMLPath)
		if err != nil {
			log.Printf("WARNING: skipping KML source: %v", err)
			controls = nil
		} else {
			log.Printf("KML snapshot: %d control points", len(controls))
		}
	}

	result := &Result{}

	// Geometric source: calibrate on the pixel/KML intersection, then
	// project every pixel observation through the single global model.
	var contour []Candidate
	if len(pixels) > 0 {
		cal, err := FitCalibration(pixels, controls, cfg.MinControlPoints)
		if err != nil {
			var icp *InsufficientControlPointsError
			if errors.As(err, &icp) && cfg.ThinCalibration == ThinCalibrationDegrade {
				log.Printf("WARNING: geometric source dropped: %v", err)
			} else {
				return nil, err
			}
		} else {
			log.Printf("calibration: %d control points, mean error %.1f km, max %.1f km",
				cal.ControlPoints, cal.MeanErrorKm, cal.MaxErrorKm)
			result.Calibration = cal
			contour = Project(cal, pixels)
		}
	}

	// Control source: KML coordinates used directly
	control := controlCandidates(controls)

	// Name matching runs only on nodes the geometric and control sources
	// left unresolved; the merge enforces priority regardless.
	resolved := make(map[string]bool)
	for _, c := range contour {
		resolved[c.NodeID] = true
	}
	for _, c := range control {
		resolved[c.NodeID] = true
	}
	var remaining []Node
	for _, node := range universe {
		if !resolved[node.ID] {
			remaining = append(remaining, node)
		}
	}

	matcher := NewMatcher(plants, cfg.Suffixes, cfg.FuzzyCutoff)
	matched := matcher.Match(remaining)

	result.Table, result.Unmatched = Merge(universe, contour, control, matched)
	result.UnclaimedPlants = UnclaimedPlants(plants, result.Table)

	logSummary(result, len(universe))
	return result, nil
}

// controlCandidates converts KML control points into merge candidates,
// first occurrence per node wins
func controlCandidates(controls []ControlPoint) []Candidate {
	seen := make(map[string]bool, len(controls))
	var out []Candidate
	for _, cp := range controls {
		if seen[cp.NodeID] {
			continue
		}
		seen[cp.NodeID] = true
		out = append(out, Candidate{
			NodeID:    cp.NodeID,
			Lat:       cp.Lat,
			Lon:       cp.Lon,
			PlantName: cp.PlantName,
			Method:    MethodControl,
		})
	}
	return out
}

func logSummary(result *Result, total int) {
	matched := len(result.Table)
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(matched) / float64(total)
	}
	log.Printf("matched %d/%d resource nodes (%.0f%%)", matched, total, pct)
	counts := result.MethodCounts()
	for _, method := range []Method{MethodContour, MethodControl, MethodPrefix, MethodSubstring, MethodFuzzy} {
		if counts[method] > 0 {
			log.Printf("  %s: %d", method, counts[method])
		}
	}
	log.Printf("unmatched nodes: %d, unclaimed plants: %d",
		len(result.Unmatched), len(result.UnclaimedPlants))
}
