package resolve

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// findColumn locates a header column by name, case-insensitive
func findColumn(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// LoadNodeUniverse reads the NP4-160 Resource_Node_to_Unit CSV and returns
// the node universe in file order. A resource node can map to several units;
// the first substation listed wins, matching the upstream mapping's intent
// of one representative substation per node.
func LoadNodeUniverse(path string) ([]Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening node universe %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing node universe %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("node universe %s: no data rows", path)
	}

	nodeCol := findColumn(rows[0], "RESOURCE_NODE")
	subCol := findColumn(rows[0], "UNIT_SUBSTATION")
	if nodeCol == -1 || subCol == -1 {
		return nil, fmt.Errorf("node universe %s: missing RESOURCE_NODE or UNIT_SUBSTATION column", path)
	}

	seen := make(map[string]bool)
	var nodes []Node
	for _, row := range rows[1:] {
		if nodeCol >= len(row) || subCol >= len(row) {
			continue
		}
		id := strings.TrimSpace(row[nodeCol])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		nodes = append(nodes, Node{
			ID:         id,
			Substation: strings.TrimSpace(row[subCol]),
		})
	}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("node universe %s: no resource nodes found", path)
	}
	return nodes, nil
}

// LoadPlantRegistry reads the EIA 860 plant CSV (plant_name, lat, lon).
// Rows with an empty name or unparsable coordinates are skipped; the
// registry is large and a handful of bad rows should not kill a run.
func LoadPlantRegistry(path string) ([]Plant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plant registry %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing plant registry %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("plant registry %s: no data rows", path)
	}

	nameCol := findColumn(rows[0], "plant_name")
	latCol := findColumn(rows[0], "lat")
	lonCol := findColumn(rows[0], "lon")
	if nameCol == -1 || latCol == -1 || lonCol == -1 {
		return nil, fmt.Errorf("plant registry %s: missing plant_name, lat or lon column", path)
	}

	var plants []Plant
	for _, row := range rows[1:] {
		if nameCol >= len(row) || latCol >= len(row) || lonCol >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameCol])
		if name == "" {
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(row[latCol]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(row[lonCol]), 64)
		if errLat != nil || errLon != nil {
			continue
		}
		plants = append(plants, Plant{Name: name, Lat: lat, Lon: lon})
	}

	if len(plants) == 0 {
		return nil, fmt.Errorf("plant registry %s: no usable plants found", path)
	}
	return plants, nil
}
