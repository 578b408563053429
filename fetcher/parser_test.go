package fetcher

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// latin1 re-encodes a UTF-8 string the way DNIT publishes its CSVs.
func latin1(t *testing.T, s string) []byte {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return encoded
}

func TestParseTrafficCSVDecodesLatin1(t *testing.T) {
	content := latin1(t, "BR;UF;KM;MUNICIPIO;LATITUDE;LONGITUDE\n"+
		"116;SP;20;São Paulo;-23,55;-46,63\n"+
		"116;CE;140;Russas;-4,94;-37,97\n")

	rows, hasCoords, err := ParseTrafficCSV(bytes.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, hasCoords)
	assert.Equal(t, "São Paulo", rows[0].Municipio)
	assert.Equal(t, "-23,55", rows[0].Latitude)
	assert.Equal(t, "116", rows[1].BR)
}

func TestParseTrafficCSVSkipsMalformedRows(t *testing.T) {
	content := "br;uf;km;municipio;latitude;longitude\n" +
		"101;SP;10;Itu;-23,45;-47,30\n" +
		"101;RJ;250\n" + // wrong field count, skipped with a warning
		"101;MG;400;Juiz de Fora;-21,76;-43,35\n"

	rows, _, err := ParseTrafficCSV(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "SP", rows[0].UF)
	assert.Equal(t, "MG", rows[1].UF)
}

func TestParseTrafficCSVEmptyInput(t *testing.T) {
	rows, hasCoords, err := ParseTrafficCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.False(t, hasCoords)
}

func TestParseTrafficCSVHeaderOnly(t *testing.T) {
	rows, hasCoords, err := ParseTrafficCSV(strings.NewReader("br;uf;latitude;longitude\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.True(t, hasCoords, "an empty table can still declare the columns")
}

func TestParseTrafficCSVReportsMissingCoordinateColumns(t *testing.T) {
	content := "br;uf;km\n" +
		"101;SP;10\n"

	rows, hasCoords, err := ParseTrafficCSV(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, hasCoords)
}

func TestParseTrafficCSVHeaderAliases(t *testing.T) {
	content := latin1(t, "BR;UF;MUNICÍPIO;LAT;LONG;VOLUME TOTAL\n"+
		"040;MG;Sete Lagoas;-19,46;-44,25;12034\n")

	rows, hasCoords, err := ParseTrafficCSV(bytes.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, hasCoords, "aliased lat/long columns count as coordinate columns")
	assert.Equal(t, "Sete Lagoas", rows[0].Municipio)
	assert.Equal(t, "-19,46", rows[0].Latitude)
	assert.Equal(t, "-44,25", rows[0].Longitude)
	assert.Equal(t, "12034", rows[0].Volume)
}

func TestParseTrafficCSVUnknownColumnsIgnored(t *testing.T) {
	content := "br;uf;latitude;longitude;coluna_nova\n" +
		"101;BA;-12,97;-38,50;qualquer\n"

	rows, _, err := ParseTrafficCSV(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BA", rows[0].UF)
}

func TestNormalizeHeaderStripsBOMAndResolvesAliases(t *testing.T) {
	header := []string{"\uFEFFBR", " UF ", "MUNICÍPIO", "LAT", "LON", "VOLUME TOTAL"}
	normalizeHeader(header)
	assert.Equal(t, []string{"br", "uf", "municipio", "latitude", "longitude", "volume_total"}, header)
}
