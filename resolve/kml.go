package resolve

import (
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// plantNamePattern pulls the plant name out of a Placemark description blob
var plantNamePattern = regexp.MustCompile(`Plant Name:</strong><br\s*/?>\s*(.+?)\s*<`)

// kmlPlacemark is the subset of a KML Placemark we care about.
// Coordinates come from the nested Point element as "lon,lat,alt".
type kmlPlacemark struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Coordinates string `xml:"Point>coordinates"`
}

// ParseKML extracts ground-control points from an ERCOT contour-map KML
// snapshot. Placemarks are matched at any nesting depth; entries missing a
// name or coordinates are skipped.
func ParseKML(data []byte) ([]ControlPoint, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	var points []ControlPoint
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Placemark" {
			continue
		}

		var pm kmlPlacemark
		if err := decoder.DecodeElement(&pm, &start); err != nil {
			return nil, fmt.Errorf("parsing KML placemark: %w", err)
		}

		name := strings.TrimSpace(pm.Name)
		coords := strings.TrimSpace(pm.Coordinates)
		if name == "" || coords == "" {
			continue
		}

		parts := strings.Split(coords, ",")
		if len(parts) < 2 {
			continue
		}
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLon != nil || errLat != nil {
			continue
		}

		plant := ""
		desc := strings.ReplaceAll(pm.Description, "\n", " ")
		if m := plantNamePattern.FindStringSubmatch(desc); m != nil {
			plant = strings.TrimSpace(m[1])
		}

		points = append(points, ControlPoint{
			NodeID:    name,
			Lat:       lat,
			Lon:       lon,
			PlantName: plant,
		})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no placemarks with coordinates found in KML")
	}
	return points, nil
}

// ParseKMLFile reads and parses a ground-control KML file
func ParseKMLFile(path string) ([]ControlPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading KML %s: %w", path, err)
	}
	return ParseKML(data)
}
