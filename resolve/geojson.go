package resolve

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// TableToGeoJSON converts a resolved coordinate table into a GeoJSON
// FeatureCollection of points, one per settlement point, with the plant
// name and match method carried as properties. Mapping consumers can drop
// the output straight onto a Texas basemap.
func TableToGeoJSON(table []Candidate) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range table {
		f := geojson.NewFeature(orb.Point{c.Lon, c.Lat})
		f.ID = c.NodeID
		f.Properties["settlementPoint"] = c.NodeID
		f.Properties["method"] = string(c.Method)
		if c.PlantName != "" {
			f.Properties["plantName"] = c.PlantName
		}
		if c.Method == MethodFuzzy {
			f.Properties["score"] = c.Score
		}
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes the resolved table to a GeoJSON file
func WriteGeoJSON(path string, table []Candidate) error {
	data, err := TableToGeoJSON(table).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling GeoJSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing GeoJSON: %w", err)
	}
	return nil
}
