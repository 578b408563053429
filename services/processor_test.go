package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verasluna/pnct-painel/models"
)

func TestProcessCoercesAndDrops(t *testing.T) {
	rows := []models.TrafficRow{
		{UF: "SP", Latitude: "-23,45", Longitude: "-47,30"},   // both parse
		{UF: "RJ", Latitude: "", Longitude: "-44,44"},         // one missing, kept
		{UF: "MG", Latitude: "sem dado", Longitude: "n/a"},    // both unparseable, dropped
		{UF: "BA", Latitude: "-12.97", Longitude: "-38.50"},   // decimal point accepted
		{UF: "CE", Latitude: "  ", Longitude: ""},             // both blank, dropped
	}

	out, err := Process(rows, true)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "SP", out[0].UF)
	require.NotNil(t, out[0].Lat)
	assert.InDelta(t, -23.45, *out[0].Lat, 1e-9)

	assert.Equal(t, "RJ", out[1].UF)
	assert.Nil(t, out[1].Lat)
	require.NotNil(t, out[1].Lon)
	assert.InDelta(t, -44.44, *out[1].Lon, 1e-9)

	assert.Equal(t, "BA", out[2].UF)
	require.NotNil(t, out[2].Lon)
	assert.InDelta(t, -38.50, *out[2].Lon, 1e-9)
}

func TestProcessIdempotent(t *testing.T) {
	rows := []models.TrafficRow{
		{UF: "SP", Latitude: "-23,45", Longitude: "-47,30"},
		{UF: "RJ", Latitude: "", Longitude: "-44,44"},
		{UF: "MG", Latitude: "x", Longitude: "y"},
	}

	once, err := Process(rows, true)
	require.NoError(t, err)
	twice, err := Process(once, true)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestProcessEmptyTableWarns(t *testing.T) {
	out, err := Process([]models.TrafficRow{}, true)

	var warn *ProcessWarning
	require.ErrorAs(t, err, &warn)
	assert.Empty(t, out)
}

func TestProcessAllBlankCoordinatesDropsEveryRow(t *testing.T) {
	rows := []models.TrafficRow{
		{UF: "SP", Latitude: "", Longitude: ""},
		{UF: "RJ", Latitude: " ", Longitude: ""},
	}

	out, err := Process(rows, true)
	require.NoError(t, err, "columns exist, so this is a drop, not a warning")
	assert.Empty(t, out)
}

func TestProcessNoCoordinateColumnsReturnsInputUnchanged(t *testing.T) {
	rows := []models.TrafficRow{
		{UF: "SP", KM: "10"},
		{UF: "RJ", KM: "250"},
	}

	out, err := Process(rows, false)

	var warn *ProcessWarning
	require.ErrorAs(t, err, &warn)
	assert.Equal(t, rows, out, "fail-open: table comes back as-is")
}
