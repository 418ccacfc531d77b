package domain

import "fmt"

// Window is a span of years whose rows feed one flow graph.
type Window struct {
	Label string `json:"label"`
	From  int    `json:"from"`
	To    int    `json:"to"`
	// All is set for the all-time window, which ignores From and To.
	All bool `json:"all"`
}

// Contains reports whether year falls inside the window.
func (w Window) Contains(year int) bool {
	return w.All || (year >= w.From && year <= w.To)
}

// AllTime is the window covering every row.
var AllTime = Window{Label: "All years", All: true}

// FlowWindows returns the all-time window followed by 10-year buckets from
// start through the last year present in rows. Buckets without rows are omitted.
func FlowWindows(rows []AnnotatedObservation, start int) []Window {
	windows := []Window{AllTime}
	if len(rows) == 0 {
		return windows
	}

	present := make(map[int]bool)
	maxYear := rows[0].Year
	for _, r := range rows {
		maxYear = max(maxYear, r.Year)
		if r.Year >= start {
			present[DecadeOf(r.Year, start)] = true
		}
	}
	for from := start; from <= maxYear; from += 10 {
		if !present[from] {
			continue
		}
		windows = append(windows, Window{
			Label: fmt.Sprintf("%d-%d", from, from+9),
			From:  from,
			To:    from + 9,
		})
	}
	return windows
}

// FlowNode is a label in the flow diagram.
type FlowNode struct {
	Name string `json:"name"`
	// Kind is "drought" or "region".
	Kind string `json:"kind"`
}

// FlowLink connects a drought node to a region node with a row count.
type FlowLink struct {
	Source int `json:"source"`
	Target int `json:"target"`
	Value  int `json:"value"`
}

// FlowGraph counts rows by (drought level, region) over a window.
type FlowGraph struct {
	Window Window     `json:"window"`
	Nodes  []FlowNode `json:"nodes"`
	Links  []FlowLink `json:"links"`
	Total  int        `json:"total"`
}

// Count returns the weight of the link from level to region, or 0.
func (g FlowGraph) Count(level DroughtLevel, region Region) int {
	for _, l := range g.Links {
		if g.Nodes[l.Source].Name == string(level) && g.Nodes[l.Target].Name == string(region) {
			return l.Value
		}
	}
	return 0
}

// BuildFlow counts rows by (drought level, region) inside w. Each label
// present becomes a node, drought levels first; each nonzero pair becomes a link.
func BuildFlow(rows []AnnotatedObservation, w Window) FlowGraph {
	counts := make(map[DroughtLevel]map[Region]int)
	levelSeen := make(map[DroughtLevel]bool)
	regionSeen := make(map[Region]bool)
	total := 0

	for _, r := range rows {
		if !w.Contains(r.Year) {
			continue
		}
		if counts[r.Drought] == nil {
			counts[r.Drought] = make(map[Region]int)
		}
		counts[r.Drought][r.Region]++
		levelSeen[r.Drought] = true
		regionSeen[r.Region] = true
		total++
	}

	g := FlowGraph{Window: w, Total: total}
	levelNode := make(map[DroughtLevel]int)
	regionNode := make(map[Region]int)
	for _, lvl := range DroughtLevels {
		if levelSeen[lvl] {
			levelNode[lvl] = len(g.Nodes)
			g.Nodes = append(g.Nodes, FlowNode{Name: string(lvl), Kind: "drought"})
		}
	}
	for _, reg := range Regions {
		if regionSeen[reg] {
			regionNode[reg] = len(g.Nodes)
			g.Nodes = append(g.Nodes, FlowNode{Name: string(reg), Kind: "region"})
		}
	}
	for _, lvl := range DroughtLevels {
		for _, reg := range Regions {
			if n := counts[lvl][reg]; n > 0 {
				g.Links = append(g.Links, FlowLink{Source: levelNode[lvl], Target: regionNode[reg], Value: n})
			}
		}
	}
	return g
}
