package mockdata_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/couchcryptid/nabr-climate-report/internal/adapter/csvsource"
	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	"github.com/couchcryptid/nabr-climate-report/internal/mockdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	opts := mockdata.DefaultOptions()
	historic, nearTerm := mockdata.Generate(opts)

	sites := opts.Cols * opts.Rows
	assert.Len(t, historic, sites*(opts.HistoricTo-opts.HistoricFrom+1))
	assert.Len(t, nearTerm, sites*(opts.NearTermTo-opts.NearTermFrom+1))
	assert.Len(t, domain.Locations(historic), sites)
	assert.Equal(t, domain.Locations(historic), domain.Locations(nearTerm), "both tables cover the same sites")

	first, last, err := domain.YearRange(nearTerm)
	require.NoError(t, err)
	assert.Equal(t, 2020, first)
	assert.Equal(t, 2024, last)
}

func TestGenerate_Deterministic(t *testing.T) {
	render := func(seed uint64) string {
		opts := mockdata.DefaultOptions()
		opts.Seed = seed
		historic, _ := mockdata.Generate(opts)
		var buf bytes.Buffer
		require.NoError(t, mockdata.WriteCSV(&buf, historic))
		return buf.String()
	}

	assert.Equal(t, render(7), render(7))
	assert.NotEqual(t, render(7), render(8))
}

func TestWriteCSV_ParsesBack(t *testing.T) {
	opts := mockdata.DefaultOptions()
	opts.MissingRate = 0.2
	historic, _ := mockdata.Generate(opts)

	var buf bytes.Buffer
	require.NoError(t, mockdata.WriteCSV(&buf, historic))

	parsed, err := csvsource.Parse(context.Background(), &buf, csvsource.SourceHistoric)
	require.NoError(t, err)
	require.Len(t, parsed, len(historic))

	missing := 0
	for i, o := range parsed {
		assert.Equal(t, historic[i].Location, o.Location)
		assert.Equal(t, historic[i].Year, o.Year)
		for _, f := range domain.Fields {
			want, got := historic[i].Value(f), o.Value(f)
			if domain.IsMissing(want) {
				assert.True(t, domain.IsMissing(got), "%s stays missing", f)
				missing++
				continue
			}
			assert.InDelta(t, want, got, 1e-4)
		}
	}
	assert.Positive(t, missing, "NA cells survive the round trip")
}
