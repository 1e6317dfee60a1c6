package resolve

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// Cache file names inside the store directory. The columns mirror what the
// downstream regression and plotting steps expect.
const (
	TableFile           = "node_coordinates.csv"
	UnmatchedNodesFile  = "unmatched_settlement_points.csv"
	UnclaimedPlantsFile = "unmatched_plants.csv"
)

// Store persists resolution results as CSV artifacts in one directory.
// The cache is a correctness-neutral optimization: load-cached and
// force-rebuild produce the same result from the same inputs, but the cache
// does not track staleness; rebuild after changing any source file.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// TablePath returns the path of the persisted coordinate table
func (s *Store) TablePath() string {
	return filepath.Join(s.dir, TableFile)
}

// Load returns the resolution result. With force false a previously
// persisted table is returned without recomputation; a missing or corrupt
// cache falls back to a rebuild instead of failing the caller. With force
// true the pipeline always runs and the persisted artifacts are replaced.
func (s *Store) Load(cfg *Config, force bool) (*Result, error) {
	if !force {
		result, err := s.readCached()
		if err == nil {
			log.Printf("loaded %d node coordinates from cache", len(result.Table))
			result.FromCache = true
			return result, nil
		}
		if !os.IsNotExist(err) {
			log.Printf("WARNING: cache unusable, rebuilding: %v", err)
		}
	}

	result, err := BuildCoordinates(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Save(result); err != nil {
		return nil, fmt.Errorf("persisting result: %w", err)
	}
	return result, nil
}

// Save writes the three CSV artifacts, each atomically replaced so a crash
// mid-write never leaves a partial file behind.
func (s *Store) Save(result *Result) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tableRows := make([][]string, 0, len(result.Table))
	for _, c := range result.Table {
		tableRows = append(tableRows, []string{
			c.NodeID, formatCoord(c.Lat), formatCoord(c.Lon), c.PlantName, string(c.Method),
		})
	}
	if err := s.writeCSV(TableFile,
		[]string{"settlement_point", "lat", "lon", "plant_name", "match_method"}, tableRows); err != nil {
		return err
	}

	nodeRows := make([][]string, 0, len(result.Unmatched))
	for _, n := range result.Unmatched {
		nodeRows = append(nodeRows, []string{n.ID, n.Substation})
	}
	if err := s.writeCSV(UnmatchedNodesFile,
		[]string{"settlement_point", "substation"}, nodeRows); err != nil {
		return err
	}

	plantRows := make([][]string, 0, len(result.UnclaimedPlants))
	for _, p := range result.UnclaimedPlants {
		plantRows = append(plantRows, []string{p.Name, formatCoord(p.Lat), formatCoord(p.Lon)})
	}
	if err := s.writeCSV(UnclaimedPlantsFile,
		[]string{"plant_name", "lat", "lon"}, plantRows); err != nil {
		return err
	}

	log.Printf("saved %d coordinates, %d unmatched nodes, %d unclaimed plants to %s",
		len(result.Table), len(result.Unmatched), len(result.UnclaimedPlants), s.dir)
	return nil
}

// writeCSV writes a CSV file via a temp file and rename
func (s *Store) writeCSV(name string, header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

// readCached reads all three artifacts back into a Result. Any missing or
// malformed file is an error; the caller falls back to a rebuild.
// Calibration diagnostics are not cached (the model is refit every rebuild),
// so a cached result carries a nil Calibration.
func (s *Store) readCached() (*Result, error) {
	tableRows, err := s.readCSV(TableFile, 5)
	if err != nil {
		return nil, err
	}
	nodeRows, err := s.readCSV(UnmatchedNodesFile, 2)
	if err != nil {
		return nil, err
	}
	plantRows, err := s.readCSV(UnclaimedPlantsFile, 3)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, row := range tableRows {
		lat, errLat := strconv.ParseFloat(row[1], 64)
		lon, errLon := strconv.ParseFloat(row[2], 64)
		if errLat != nil || errLon != nil {
			return nil, fmt.Errorf("cache %s: bad coordinate for %s", TableFile, row[0])
		}
		result.Table = append(result.Table, Candidate{
			NodeID:    row[0],
			Lat:       lat,
			Lon:       lon,
			PlantName: row[3],
			Method:    Method(row[4]),
		})
	}
	for _, row := range nodeRows {
		result.Unmatched = append(result.Unmatched, Node{ID: row[0], Substation: row[1]})
	}
	for _, row := range plantRows {
		lat, errLat := strconv.ParseFloat(row[1], 64)
		lon, errLon := strconv.ParseFloat(row[2], 64)
		if errLat != nil || errLon != nil {
			return nil, fmt.Errorf("cache %s: bad coordinate for %s", UnclaimedPlantsFile, row[0])
		}
		result.UnclaimedPlants = append(result.UnclaimedPlants, Plant{Name: row[0], Lat: lat, Lon: lon})
	}
	return result, nil
}

// readCSV reads a cache file, validates the column count and strips the header
func (s *Store) readCSV(name string, columns int) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cache %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("cache %s: empty file", name)
	}
	for i, row := range rows {
		if len(row) != columns {
			return nil, fmt.Errorf("cache %s: row %d has %d columns, want %d", name, i, len(row), columns)
		}
	}
	return rows[1:], nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
