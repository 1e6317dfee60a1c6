package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ercotgeo/nodemap/resolve"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile  = flag.String("config", "config.yaml", "Path to configuration file")
	rebuild     = flag.Bool("rebuild", false, "Force a full rebuild instead of using the cached table")
	cacheDir    = flag.String("cache-dir", "", "Override the cache directory from the config")
	geojsonFile = flag.String("geojson", "", "Also write the resolved table as GeoJSON to this path")
	publish     = flag.Bool("publish", false, "Publish the result over MQTT (requires mqtt.broker in config)")
	showSample  = flag.Int("show", 0, "Print the first N resolved rows")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("nodemap version: %s\n", Version)
		return
	}

	config, err := resolve.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *cacheDir != "" {
		config.CacheDir = *cacheDir
	}

	store := resolve.NewStore(config.CacheDir)
	result, err := store.Load(config, *rebuild)
	if err != nil {
		log.Fatalf("Error resolving coordinates: %v", err)
	}

	printDiagnostics(result)

	if *showSample > 0 {
		printSample(result, *showSample)
	}

	if *geojsonFile != "" {
		if err := resolve.WriteGeoJSON(*geojsonFile, result.Table); err != nil {
			log.Fatalf("Error writing GeoJSON: %v", err)
		}
		fmt.Printf("Wrote %d features to %s\n", len(result.Table), *geojsonFile)
	}

	if *publish {
		runPublish(config, result)
	}
}

// printDiagnostics reports calibration quality and source coverage.
// The residual error is the only check on the geometric source, so it is
// always printed when a calibration ran.
func printDiagnostics(result *resolve.Result) {
	if cal := result.Calibration; cal != nil {
		fmt.Printf("Calibration: %d control points, mean error %.1f km, max %.1f km\n",
			cal.ControlPoints, cal.MeanErrorKm, cal.MaxErrorKm)
		fmt.Printf("  lat = %.6f + %.6f*x + %.6f*y\n", cal.LatCoeffs[0], cal.LatCoeffs[1], cal.LatCoeffs[2])
		fmt.Printf("  lon = %.6f + %.6f*x + %.6f*y\n", cal.LonCoeffs[0], cal.LonCoeffs[1], cal.LonCoeffs[2])
	} else if !result.FromCache {
		fmt.Println("Calibration: geometric source unavailable")
	}

	fmt.Printf("Resolved %d settlement points (%d unmatched, %d plants unclaimed)\n",
		len(result.Table), len(result.Unmatched), len(result.UnclaimedPlants))
}

func printSample(result *resolve.Result, n int) {
	if n > len(result.Table) {
		n = len(result.Table)
	}
	fmt.Println("\nSample matched nodes:")
	for _, c := range result.Table[:n] {
		fmt.Printf("  %-16s %9.4f %10.4f  %-10s %s\n", c.NodeID, c.Lat, c.Lon, c.Method, c.PlantName)
	}
}

func runPublish(config *resolve.Config, result *resolve.Result) {
	client, err := resolve.ConnectMQTT(config.MQTT)
	if err != nil {
		log.Fatalf("Error connecting to MQTT: %v", err)
	}
	if client == nil {
		log.Fatal("-publish requires mqtt.broker in the config")
	}
	defer client.Disconnect(250)

	publisher := resolve.NewPublisher(client, config.MQTT.PublishPrefix)
	if err := publisher.PublishResult(result); err != nil {
		log.Fatalf("Error publishing result: %v", err)
	}
	fmt.Println("Published result to MQTT")
}
