package resolve

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// areaTagPattern matches the annotated circle shapes on ERCOT contour-map
// pages. Each node is an <area> tag whose title leads with the settlement
// point name, e.g.:
//
//	<area shape="circle" coords="312,405,4" title="SWEETWN2: $42.15">
var areaTagPattern = regexp.MustCompile(
	`<area\s+shape="circle"\s+coords="(\d+),(\d+),\d+"\s+title="([^:]+):`)

// ExtractImageMapNodes extracts node names and pixel coordinates from a
// contour-map HTML document. The first occurrence of a node wins when a page
// repeats it. Pages with no <area> tags yield an empty map, not an error.
func ExtractImageMapNodes(html string) map[string]Point {
	nodes := make(map[string]Point)
	for _, m := range areaTagPattern.FindAllStringSubmatch(html, -1) {
		x, _ := strconv.ParseFloat(m[1], 64)
		y, _ := strconv.ParseFloat(m[2], 64)
		name := strings.TrimSpace(m[3])
		if name == "" {
			continue
		}
		if _, seen := nodes[name]; !seen {
			nodes[name] = Point{X: x, Y: y}
		}
	}
	return nodes
}

// ParseImageMapFile reads and parses a single contour-map HTML document
func ParseImageMapFile(path string) (map[string]Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading contour map %s: %w", path, err)
	}
	return ExtractImageMapNodes(string(data)), nil
}

// CombineImageMaps parses contour-map documents in the given priority order
// and merges their observations. When a node appears on several pages the
// first page listed wins; pages may use slightly different renderings, so
// positions are never averaged. Unreadable documents are skipped with a
// warning rather than aborting the run.
func CombineImageMaps(paths []string) map[string]Point {
	combined := make(map[string]Point)
	parsed := 0
	for _, path := range paths {
		pageNodes, err := ParseImageMapFile(path)
		if err != nil {
			log.Printf("WARNING: skipping contour map %s: %v", path, err)
			continue
		}
		parsed++
		for name, pt := range pageNodes {
			if _, seen := combined[name]; !seen {
				combined[name] = pt
			}
		}
	}
	if len(paths) > 0 {
		log.Printf("contour maps: %d unique nodes from %d of %d pages",
			len(combined), parsed, len(paths))
	}
	return combined
}
