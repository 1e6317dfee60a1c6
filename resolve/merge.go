package resolve

// Merge combines candidate sets into the final table, first-available-source
// wins by fixed priority: contour > control > prefix > substring > fuzzy.
// The table is ordered by the universe order; candidates for nodes outside
// the universe (stale entries on old contour pages) are dropped. Every
// universe node lands in exactly one of the returned table or unmatched set.
// Pure function of its inputs: no randomness, no run-to-run drift.
func Merge(universe []Node, sources ...[]Candidate) (table []Candidate, unmatched []Node) {
	best := make(map[string]Candidate)
	for _, source := range sources {
		for _, c := range source {
			current, ok := best[c.NodeID]
			if !ok || methodPriority[c.Method] < methodPriority[current.Method] {
				best[c.NodeID] = c
			}
		}
	}

	for _, node := range universe {
		if c, ok := best[node.ID]; ok {
			table = append(table, c)
		} else {
			unmatched = append(unmatched, node)
		}
	}
	return table, unmatched
}

// UnclaimedPlants returns the registry records never claimed by any node in
// the merged table, preserving registry order. Claims are keyed by plant
// name: control-source rows carry the plant name from the KML description,
// so a plant resolved that way is not reported as unclaimed.
func UnclaimedPlants(plants []Plant, table []Candidate) []Plant {
	claimed := make(map[string]bool, len(table))
	for _, c := range table {
		if c.PlantName != "" {
			claimed[c.PlantName] = true
		}
	}

	var unclaimed []Plant
	for _, p := range plants {
		if !claimed[p.Name] {
			unclaimed = append(unclaimed, p)
		}
	}
	return unclaimed
}
