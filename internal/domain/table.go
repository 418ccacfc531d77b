package domain

// AnnotatedTable is the unified observation table with every derived label.
// It is rebuilt from the source tables on each render.
type AnnotatedTable struct {
	// Observations is the historical table followed by the near-term table.
	Observations []Observation
	// Classified holds the rows whose seasonal averages are present, in input order.
	Classified []AnnotatedObservation
	Thresholds Thresholds
	Center     Location
	// Dropped counts rows excluded from classification.
	Dropped int
	// Fallback counts rows labeled by the fallback branch.
	Fallback int
}

// BranchCounts tallies classified rows per drought rule branch.
func (t AnnotatedTable) BranchCounts() map[Branch]int {
	out := make(map[Branch]int, 4)
	for _, r := range t.Classified {
		out[r.Branch]++
	}
	return out
}
