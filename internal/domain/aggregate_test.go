package domain

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_ByLocation(t *testing.T) {
	a := Location{Lon: -110.1, Lat: 37.6}
	b := Location{Lon: -109.9, Lat: 37.5}
	obs := []Observation{
		NewObservation(a, 1980).With(DrySoilDaysSummer, 10).With(Bare, 40),
		NewObservation(b, 1980).With(DrySoilDaysSummer, 30).With(Bare, 20),
		NewObservation(a, 1981).With(DrySoilDaysSummer, 15).With(Bare, math.NaN()),
		NewObservation(b, 1981).With(DrySoilDaysSummer, math.NaN()).With(Bare, 30),
	}

	metrics := append(SumOf(DrySoilDaysSummer), MeanOf(Bare)...)
	groups := Aggregate(obs, ByLocation, metrics)

	require.Len(t, groups, 2)
	assert.Equal(t, a, groups[0].Key.Location)
	assert.Equal(t, 2, groups[0].Rows)
	assert.Equal(t, 25.0, groups[0].Value(DrySoilDaysSummer))
	assert.Equal(t, 40.0, groups[0].Value(Bare), "missing values are excluded from the mean")
	assert.Equal(t, 1, groups[0].Present(Bare))

	assert.Equal(t, b, groups[1].Key.Location)
	assert.Equal(t, 30.0, groups[1].Value(DrySoilDaysSummer))
	assert.Equal(t, 25.0, groups[1].Value(Bare))
}

func TestAggregate_AllMissing(t *testing.T) {
	loc := Location{Lon: 1, Lat: 2}
	obs := []Observation{NewObservation(loc, 2000), NewObservation(loc, 2001)}

	groups := Aggregate(obs, ByLocation, []Metric{{Field: Herb, Op: Mean}, {Field: Shrub, Op: Sum}})
	require.Len(t, groups, 1)
	assert.True(t, IsMissing(groups[0].Value(Herb)))
	assert.Equal(t, 0.0, groups[0].Value(Shrub))
	assert.True(t, IsMissing(groups[0].Value(Litter)), "unrequested fields are missing")
}

func TestAggregate_Groupings(t *testing.T) {
	loc := Location{Lon: -110, Lat: 37}
	other := Location{Lon: -111, Lat: 38}
	obs := []Observation{
		NewObservation(loc, 1985).With(TSummer, 20),
		NewObservation(other, 1985).With(TSummer, 22),
		NewObservation(loc, 1992).With(TSummer, 24),
		NewObservation(loc, 1992).With(TSummer, 26),
	}

	t.Run("location and year", func(t *testing.T) {
		groups := Aggregate(obs, ByLocationYear, MeanOf(TSummer))
		require.Len(t, groups, 3)
		assert.Equal(t, GroupKey{Location: loc, Year: 1992}, groups[2].Key)
		assert.Equal(t, 25.0, groups[2].Value(TSummer))
	})

	t.Run("year", func(t *testing.T) {
		groups := Aggregate(obs, ByYear, MeanOf(TSummer))
		require.Len(t, groups, 2)
		assert.Equal(t, 1985, groups[0].Key.Year)
		assert.Equal(t, 21.0, groups[0].Value(TSummer))
	})

	t.Run("decade", func(t *testing.T) {
		groups := Aggregate(obs, ByDecade, MeanOf(TSummer))
		require.Len(t, groups, 2)
		assert.Equal(t, 1980, groups[0].Key.Year)
		assert.Equal(t, 1990, groups[1].Key.Year)
		assert.Equal(t, 25.0, groups[1].Value(TSummer))
	})
}

func TestDecadeOf(t *testing.T) {
	tests := []struct {
		year, start, want int
	}{
		{1980, 1980, 1980},
		{1989, 1980, 1980},
		{1990, 1980, 1990},
		{2024, 1980, 2020},
		{1979, 1980, 1970},
		{1970, 1980, 1970},
		{1969, 1980, 1960},
		{1985, 1983, 1983},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DecadeOf(tt.year, tt.start), "year %d start %d", tt.year, tt.start)
	}
}

func TestAggregate_PermutationInvariant(t *testing.T) {
	obs := syntheticGrid(4, 3, 1980, 2024)
	metrics := append(SumOf(DrySoilDaysSummer), MeanOf(Bare, VWCSummer, TSummer)...)
	want := byLocation(Aggregate(obs, ByLocation, metrics))

	rng := rand.New(rand.NewPCG(1, 2))
	for range 5 {
		shuffled := make([]Observation, len(obs))
		copy(shuffled, obs)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := byLocation(Aggregate(shuffled, ByLocation, metrics))
		require.Len(t, got, len(want))
		for loc, g := range want {
			for _, m := range metrics {
				assert.InDelta(t, g.Value(m.Field), got[loc].Value(m.Field), 1e-9, "%v %s", loc, m.Field)
			}
		}
	}
}

func TestTopN(t *testing.T) {
	mk := func(lon, v float64) Group {
		return Group{
			Key:    GroupKey{Location: Location{Lon: lon}},
			values: map[Field]float64{DrySoilDaysSummer: v},
		}
	}
	groups := []Group{mk(1, 10), mk(2, 50), mk(3, 30), mk(4, 50), mk(5, math.NaN()), mk(6, 40), mk(7, 5)}

	t.Run("descending with stable ties", func(t *testing.T) {
		top := TopN(groups, DrySoilDaysSummer, Descending, 5)
		require.Len(t, top, 5)
		assert.Equal(t, []float64{2, 4, 6, 3, 1}, lons(top))
	})

	t.Run("ascending puts missing last", func(t *testing.T) {
		top := TopN(groups, DrySoilDaysSummer, Ascending, len(groups))
		assert.Equal(t, []float64{7, 1, 3, 6, 2, 4, 5}, lons(top))
	})

	t.Run("fewer groups than n", func(t *testing.T) {
		top := TopN(groups[:3], DrySoilDaysSummer, Descending, DefaultTopN)
		assert.Len(t, top, 3)
	})

	t.Run("non-positive n", func(t *testing.T) {
		assert.Empty(t, TopN(groups, DrySoilDaysSummer, Descending, 0))
	})

	t.Run("input untouched", func(t *testing.T) {
		_ = TopN(groups, DrySoilDaysSummer, Ascending, 3)
		assert.Equal(t, 1.0, groups[0].Key.Location.Lon)
	})
}

func TestTopN_SortedAndSized(t *testing.T) {
	obs := syntheticGrid(4, 4, 1980, 1999)
	groups := Aggregate(obs, ByLocation, SumOf(DrySoilDaysSummer))
	top := TopN(groups, DrySoilDaysSummer, Descending, DefaultTopN)

	require.Len(t, top, min(DefaultTopN, len(Locations(obs))))
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Value(DrySoilDaysSummer), top[i].Value(DrySoilDaysSummer))
	}
}

func TestYearRange(t *testing.T) {
	_, _, err := YearRange(nil)
	require.ErrorIs(t, err, ErrNoObservations)

	lo, hi, err := YearRange(syntheticGrid(1, 1, 1981, 2024))
	require.NoError(t, err)
	assert.Equal(t, 1981, lo)
	assert.Equal(t, 2024, hi)
}

func TestLocationHelpers(t *testing.T) {
	obs := syntheticGrid(2, 2, 2000, 2002)
	locs := Locations(obs)
	require.Len(t, locs, 4)
	assert.Len(t, FilterLocation(obs, locs[1]), 3)

	assert.Len(t, DefaultCenter.SiteID(), 8)
	assert.Equal(t, DefaultCenter.SiteID(), Location{Lon: -110.0098, Lat: 37.59964}.SiteID())
	assert.InDelta(t, 0.0, DefaultCenter.DistanceKm(DefaultCenter), 1e-9)
	// One hundredth of a degree of latitude is about 1.11 km.
	north := Location{Lon: DefaultCenter.Lon, Lat: DefaultCenter.Lat + 0.01}
	assert.InDelta(t, 1.112, DefaultCenter.DistanceKm(north), 0.01)
}

func byLocation(groups []Group) map[Location]Group {
	out := make(map[Location]Group, len(groups))
	for _, g := range groups {
		out[g.Key.Location] = g
	}
	return out
}

func lons(groups []Group) []float64 {
	out := make([]float64, len(groups))
	for i, g := range groups {
		out[i] = g.Key.Location.Lon
	}
	return out
}
