package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verasluna/pnct-painel/config"
	"github.com/verasluna/pnct-painel/models"
)

func initTestDB(t *testing.T) {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	}
	require.NoError(t, InitDB(cfg))
	t.Cleanup(CloseDB)
}

func testDataset(year, br int, ufs ...string) *models.Dataset {
	rows := make([]models.TrafficRow, 0, len(ufs))
	for _, uf := range ufs {
		rows = append(rows, models.TrafficRow{BR: "101", UF: uf, Latitude: "-23,45", Longitude: "-47,30"})
	}
	return &models.Dataset{Year: year, BR: br, Rows: rows, FetchedAt: time.Now()}
}

func TestSaveDatasetOverwritesSameKey(t *testing.T) {
	initTestDB(t)

	require.NoError(t, SaveDataset(testDataset(2023, 101, "SP", "RJ")))
	require.NoError(t, SaveDataset(testDataset(2023, 101, "SP", "RJ", "MG")))

	records, err := ListDatasets()
	require.NoError(t, err)
	require.Len(t, records, 1, "second upsert must overwrite, not duplicate")
	assert.Equal(t, 2023, records[0].Year)
	assert.Equal(t, 101, records[0].BR)
	assert.Equal(t, 3, records[0].RowCount)

	history, err := RecentHistory(10)
	require.NoError(t, err)
	assert.Len(t, history, 2, "every upsert appends one history entry")
}

func TestGetDatasetRoundTrip(t *testing.T) {
	initTestDB(t)

	lat := -23.45
	ds := testDataset(2023, 101, "SP")
	ds.Rows[0].Lat = &lat

	require.NoError(t, SaveDataset(ds))

	got, err := GetDataset(2023, 101)
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "SP", got.Rows[0].UF)
	require.NotNil(t, got.Rows[0].Lat)
	assert.Equal(t, lat, *got.Rows[0].Lat)
	assert.False(t, got.FetchedAt.IsZero(), "timestamp comes from the DB default")
	assert.True(t, got.CoordinateColumns)
}

func TestGetDatasetWithoutCoordinateData(t *testing.T) {
	initTestDB(t)

	ds := &models.Dataset{
		Year:      2023,
		BR:        101,
		Rows:      []models.TrafficRow{{BR: "101", UF: "SP", KM: "10"}},
		FetchedAt: time.Now(),
	}
	require.NoError(t, SaveDataset(ds))

	got, err := GetDataset(2023, 101)
	require.NoError(t, err)
	assert.False(t, got.CoordinateColumns, "a stored column-less table stays fail-open on reload")
}

func TestGetDatasetMissingKey(t *testing.T) {
	initTestDB(t)

	_, err := GetDataset(2023, 999)
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestClearAllEmptiesBothTables(t *testing.T) {
	initTestDB(t)

	require.NoError(t, SaveDataset(testDataset(2023, 101, "SP")))
	require.NoError(t, SaveDataset(testDataset(2023, 116, "PR")))

	require.NoError(t, ClearAll())

	records, err := ListDatasets()
	require.NoError(t, err)
	assert.Empty(t, records)

	history, err := RecentHistory(10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRecentHistoryNewestFirst(t *testing.T) {
	initTestDB(t)

	require.NoError(t, SaveDataset(testDataset(2023, 101, "SP")))
	require.NoError(t, SaveDataset(testDataset(2023, 116, "PR")))

	history, err := RecentHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "BR-116 (2023)", history[0].Consulta)
	assert.Equal(t, "BR-101 (2023)", history[1].Consulta)
}

func TestRecentHistoryEmptyLog(t *testing.T) {
	initTestDB(t)

	history, err := RecentHistory(10)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestRecentHistoryLimit(t *testing.T) {
	initTestDB(t)

	for br := 101; br <= 104; br++ {
		require.NoError(t, SaveDataset(testDataset(2023, br, "SP")))
	}

	history, err := RecentHistory(2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "BR-104 (2023)", history[0].Consulta)
}
