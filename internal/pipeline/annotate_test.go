package pipeline_test

import (
	"math"
	"testing"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	"github.com/couchcryptid/nabr-climate-report/internal/mockdata"
	"github.com/couchcryptid/nabr-climate-report/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotate_FixedThresholdsExample(t *testing.T) {
	loc := domain.Location{Lon: -110.05, Lat: 37.62}
	row := func(year int) domain.Observation {
		return domain.NewObservation(loc, year).
			With(domain.TSummer, 30).With(domain.TWinter, 10).
			With(domain.PPTSummer, 5).With(domain.PPTWinter, 5)
	}
	th := domain.Thresholds{T33: 15, T66: 25, P33: 10, P66: 20}

	table, err := pipeline.Annotate([]domain.Observation{row(2000)}, []domain.Observation{row(2021)}, domain.DefaultCenter, &th)
	require.NoError(t, err)

	require.Len(t, table.Classified, 2)
	for _, r := range table.Classified {
		assert.InDelta(t, 20.0, r.AvgTemperature, 1e-12)
		assert.InDelta(t, 5.0, r.AvgPrecipitation, 1e-12)
		assert.Equal(t, domain.MediumArid, r.Drought)
		assert.Equal(t, domain.BranchMedium, r.Branch)
		assert.Equal(t, domain.Northwest, r.Region)
	}
	assert.Equal(t, th, table.Thresholds)
}

func TestAnnotate_ConcatenatesWithoutDeduplication(t *testing.T) {
	loc := domain.Location{Lon: -110, Lat: 37.6}
	same := domain.NewObservation(loc, 2020).With(domain.TSummer, 25).With(domain.TWinter, 5).
		With(domain.PPTSummer, 10).With(domain.PPTWinter, 12)

	table, err := pipeline.Annotate([]domain.Observation{same}, []domain.Observation{same}, domain.DefaultCenter, nil)
	require.NoError(t, err)
	assert.Len(t, table.Observations, 2)
	assert.Len(t, table.Classified, 2)
}

func TestAnnotate_DropsRowsWithMissingAverages(t *testing.T) {
	loc := domain.Location{Lon: -110, Lat: 37.6}
	ok := domain.NewObservation(loc, 2000).With(domain.TSummer, 25).With(domain.TWinter, 5).
		With(domain.PPTSummer, 10).With(domain.PPTWinter, 12)
	noTemp := ok.With(domain.TWinter, math.NaN())
	noPrecip := ok.With(domain.PPTSummer, math.NaN())

	table, err := pipeline.Annotate([]domain.Observation{ok, noTemp, noPrecip}, nil, domain.DefaultCenter, nil)
	require.NoError(t, err)
	assert.Len(t, table.Observations, 3)
	assert.Len(t, table.Classified, 1)
	assert.Equal(t, 2, table.Dropped)
}

func TestAnnotate_TotalCoverage(t *testing.T) {
	historic, nearTerm := mockdata.Generate(mockdata.DefaultOptions())
	table, err := pipeline.Annotate(historic, nearTerm, domain.DefaultCenter, nil)
	require.NoError(t, err)

	th := table.Thresholds
	assert.LessOrEqual(t, th.T33, th.T66)
	assert.LessOrEqual(t, th.P33, th.P66)

	fallback := 0
	for _, r := range table.Classified {
		assert.Contains(t, domain.DroughtLevels, r.Drought)
		assert.Contains(t, domain.Regions, r.Region)
		if r.Branch == domain.BranchFallback {
			fallback++
		}
	}
	assert.Equal(t, fallback, table.Fallback)
	assert.Equal(t, len(historic)+len(nearTerm), len(table.Classified)+table.Dropped)

	counts := table.BranchCounts()
	sum := 0
	for _, n := range counts {
		sum += n
	}
	assert.Equal(t, len(table.Classified), sum, "every row hits exactly one branch")
}

func TestAnnotate_Empty(t *testing.T) {
	_, err := pipeline.Annotate(nil, nil, domain.DefaultCenter, nil)
	require.ErrorIs(t, err, domain.ErrNoObservations)
}
