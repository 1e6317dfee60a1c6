package resolve

// DefaultSuffixes are the substation suffix tokens stripped during name
// normalization. Order matters: each pass checks them in sequence.
var DefaultSuffixes = []string{"ESS", "BESS", "SLR", "SOLAR", "WND", "WIND"}

const (
	// DefaultFuzzyCutoff is the minimum similarity score for a fuzzy match.
	// Looser cutoffs measurably increase false positives (see matcher tests).
	DefaultFuzzyCutoff = 0.7

	// DefaultMinControlPoints is the minimum pixel/KML intersection size for
	// a stable affine fit. Three non-collinear points determine the fit;
	// ten keeps it from chasing noise.
	DefaultMinControlPoints = 10

	// DefaultCacheDir is where the resolved table and residual sets are written
	DefaultCacheDir = "processed_data"
)

// Thin-calibration policies: what to do when the pixel/KML intersection is
// below the minimum.
const (
	// ThinCalibrationFail aborts the run
	ThinCalibrationFail = "fail"
	// ThinCalibrationDegrade drops the geometric source and continues with
	// control points and name matching only
	ThinCalibrationDegrade = "degrade"
)

// Config represents the full configuration file
type Config struct {
	// Documents are contour-map HTML pages in priority order: when a node
	// appears on several pages, the first page listed here wins.
	Documents []string `yaml:"documents"`

	// KMLPath is the ground-control KML snapshot. Optional; without it the
	// geometric path follows the thinCalibration policy.
	KMLPath string `yaml:"kmlPath,omitempty"`

	// UniversePath is the NP4-160 Resource_Node_to_Unit CSV defining the
	// node universe and its order.
	UniversePath string `yaml:"universePath"`

	// RegistryPath is the EIA 860 plant CSV (plant_name, lat, lon)
	RegistryPath string `yaml:"registryPath"`

	// CacheDir holds node_coordinates.csv and the two unmatched CSVs
	CacheDir string `yaml:"cacheDir,omitempty"`

	Suffixes         []string `yaml:"suffixes,omitempty"`
	FuzzyCutoff      float64  `yaml:"fuzzyCutoff,omitempty"`
	MinControlPoints int      `yaml:"minControlPoints,omitempty"`

	// ThinCalibration is "fail" (default) or "degrade"
	ThinCalibration string `yaml:"thinCalibration,omitempty"`

	// MQTT enables announcing rebuilt tables when a broker is configured
	MQTT MQTTConfig `yaml:"mqtt,omitempty"`
}

// MQTTConfig holds MQTT connection settings
type MQTTConfig struct {
	Broker        string `yaml:"broker,omitempty"`
	PublishPrefix string `yaml:"publishPrefix,omitempty"`
	ClientID      string `yaml:"clientId,omitempty"`
	Username      string `yaml:"username,omitempty"`
	Password      string `yaml:"password,omitempty"`
}

// applyDefaults fills unset fields with package defaults
func (c *Config) applyDefaults() {
	if len(c.Suffixes) == 0 {
		c.Suffixes = append([]string(nil), DefaultSuffixes...)
	}
	if c.FuzzyCutoff == 0 {
		c.FuzzyCutoff = DefaultFuzzyCutoff
	}
	if c.MinControlPoints == 0 {
		c.MinControlPoints = DefaultMinControlPoints
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if c.ThinCalibration == "" {
		c.ThinCalibration = ThinCalibrationFail
	}
}
