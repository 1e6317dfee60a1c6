package resolve

import "testing"

func TestResultMethodCounts(t *testing.T) {
	r := &Result{Table: []Candidate{
		{NodeID: "A", Method: MethodContour},
		{NodeID: "B", Method: MethodContour},
		{NodeID: "C", Method: MethodFuzzy},
	}}

	counts := r.MethodCounts()
	if counts[MethodContour] != 2 || counts[MethodFuzzy] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if counts[MethodPrefix] != 0 {
		t.Errorf("absent method counted: %v", counts)
	}
}

func TestResultLookup(t *testing.T) {
	r := &Result{Table: []Candidate{
		{NodeID: "SWEETWN2", Lat: 32.38, Method: MethodControl},
	}}

	c, ok := r.Lookup("SWEETWN2")
	if !ok || c.Lat != 32.38 {
		t.Errorf("Lookup = %+v, %v", c, ok)
	}
	if _, ok := r.Lookup("ABSENT"); ok {
		t.Error("Lookup found a node not in the table")
	}
}

func TestMethodPriorityTotalOrder(t *testing.T) {
	// Every method has a distinct priority; a gap here would make Merge
	// treat an unknown method as highest priority
	seen := make(map[int]Method)
	for _, m := range []Method{MethodContour, MethodControl, MethodPrefix, MethodSubstring, MethodFuzzy} {
		p, ok := methodPriority[m]
		if !ok {
			t.Errorf("method %q has no priority", m)
			continue
		}
		if prev, dup := seen[p]; dup {
			t.Errorf("methods %q and %q share priority %d", prev, m, p)
		}
		seen[p] = m
	}
}
