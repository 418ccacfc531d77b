package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annotated(year int, level DroughtLevel, region Region) AnnotatedObservation {
	return AnnotatedObservation{
		Observation: NewObservation(Location{}, year),
		Drought:     level,
		Region:      region,
	}
}

func TestFlowWindows(t *testing.T) {
	rows := []AnnotatedObservation{
		annotated(1975, LowArid, Northeast),
		annotated(1981, LowArid, Northeast),
		annotated(2003, HighArid, Southwest),
		annotated(2024, MediumArid, Northwest),
	}

	windows := FlowWindows(rows, DefaultDecadeStart)
	labels := make([]string, len(windows))
	for i, w := range windows {
		labels[i] = w.Label
	}
	assert.Equal(t, []string{"All years", "1980-1989", "2000-2009", "2020-2029"}, labels)
	assert.True(t, windows[0].Contains(1975))
	assert.False(t, windows[1].Contains(1975))
	assert.True(t, windows[1].Contains(1989))
	assert.False(t, windows[1].Contains(1990))

	assert.Equal(t, []Window{AllTime}, FlowWindows(nil, DefaultDecadeStart))
}

func TestBuildFlow(t *testing.T) {
	rows := []AnnotatedObservation{
		annotated(1981, HighArid, Southwest),
		annotated(1982, HighArid, Southwest),
		annotated(1983, LowArid, Northeast),
		annotated(1995, MediumArid, Northeast),
	}

	t.Run("all time", func(t *testing.T) {
		g := BuildFlow(rows, AllTime)
		assert.Equal(t, 4, g.Total)
		require.Len(t, g.Nodes, 5)
		assert.Equal(t, []FlowNode{
			{Name: "Low_Arid", Kind: "drought"},
			{Name: "Medium_Arid", Kind: "drought"},
			{Name: "High_Arid", Kind: "drought"},
			{Name: "Northeast", Kind: "region"},
			{Name: "Southwest", Kind: "region"},
		}, g.Nodes)
		assert.Len(t, g.Links, 3)
		assert.Equal(t, 2, g.Count(HighArid, Southwest))
		assert.Equal(t, 1, g.Count(LowArid, Northeast))
		assert.Equal(t, 0, g.Count(LowArid, Southwest))

		sum := 0
		for _, l := range g.Links {
			assert.Positive(t, l.Value)
			assert.Equal(t, "drought", g.Nodes[l.Source].Kind)
			assert.Equal(t, "region", g.Nodes[l.Target].Kind)
			sum += l.Value
		}
		assert.Equal(t, g.Total, sum)
	})

	t.Run("decade window", func(t *testing.T) {
		g := BuildFlow(rows, Window{Label: "1990-1999", From: 1990, To: 1999})
		assert.Equal(t, 1, g.Total)
		assert.Len(t, g.Nodes, 2)
		assert.Equal(t, 1, g.Count(MediumArid, Northeast))
	})

	t.Run("empty window", func(t *testing.T) {
		g := BuildFlow(rows, Window{From: 2040, To: 2049})
		assert.Zero(t, g.Total)
		assert.Empty(t, g.Nodes)
		assert.Empty(t, g.Links)
	})
}
