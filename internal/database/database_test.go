package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"airport_sim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	db, err := New(filepath.Join(t.TempDir(), "airport_sim.db"))
	require.NoError(t, err)
	require.NotNil(t, db)
	return db
}

func cleanupTestDB(t *testing.T, db *DB) {
	if db != nil {
		assert.NoError(t, db.Close())
	}
}

func TestNew(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	assert.NotNil(t, db)
}

func TestNew_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.FleetRepository().InsertBatch([]*models.Plane{models.NewPlane("G-EUPT")}))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer cleanupTestDB(t, db)

	populated, err := db.FleetRepository().IsTablePopulated()
	require.NoError(t, err)
	assert.True(t, populated)
}

func TestObservations_InsertAndLatest(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.ObservationRepository()
	observedAt := time.Date(2024, 6, 9, 22, 51, 0, 0, time.UTC)

	obs := []*models.Observation{
		{
			Station:    "KJFK",
			ObservedAt: observedAt.Add(-time.Hour),
			Raw:        "KJFK 092151Z 22010KT 10SM FEW250 26/18 A2995",
			WindKnots:  10,
		},
		{
			Station:    "KJFK",
			ObservedAt: observedAt,
			Raw:        "KJFK 092251Z 22015G25KT 3SM +TSRA BKN015CB 24/21 A2990",
			Phenomena:  []string{"+TSRA"},
			WindKnots:  15,
			GustKnots:  25,
			Stormy:     true,
		},
	}
	require.NoError(t, repo.InsertBatch(obs))

	latest, err := repo.Latest("KJFK")
	require.NoError(t, err)
	require.NotNil(t, latest)

	assert.Equal(t, "KJFK", latest.Station)
	assert.True(t, latest.Stormy)
	assert.Equal(t, []string{"+TSRA"}, latest.Phenomena)
	assert.Equal(t, 25, latest.GustKnots)
	assert.True(t, observedAt.Equal(latest.ObservedAt))
}

func TestObservations_LatestUnknownStation(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	latest, err := db.ObservationRepository().Latest("EGLL")
	assert.NoError(t, err)
	assert.Nil(t, latest)
}

func TestObservations_InsertBatch_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	err := db.ObservationRepository().InsertBatch([]*models.Observation{})
	assert.NoError(t, err)
}

func TestObservations_InsertBatch_Duplicates(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.ObservationRepository()
	o := &models.Observation{Station: "EGLL", Raw: "EGLL 091250Z 24008KT 9999 FEW035 18/09 Q1017"}

	// Same report twice is ignored, not an error
	assert.NoError(t, repo.InsertBatch([]*models.Observation{o, o}))

	latest, err := repo.Latest("EGLL")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.ObservedAt.IsZero())
	assert.Empty(t, latest.Phenomena)
}

func TestFleet_InsertAndList(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.FleetRepository()

	populated, err := repo.IsTablePopulated()
	require.NoError(t, err)
	assert.False(t, populated)

	planes := []*models.Plane{
		{ID: "G-EUPT", ICAO24: "400a0b", TypeCode: "A319", Operator: "British Airways", Registration: "G-EUPT"},
		{ID: "D-AIZA", TypeCode: "A320"},
	}
	require.NoError(t, repo.InsertBatch(planes))

	populated, err = repo.IsTablePopulated()
	require.NoError(t, err)
	assert.True(t, populated)

	listed, err := repo.List()
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "D-AIZA", listed[0].ID)
	assert.Equal(t, "", listed[0].ICAO24)
	assert.Equal(t, *planes[0], *listed[1])
}

func TestFleet_LoadFromCSV(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	csvPath := filepath.Join(t.TempDir(), "fleet.csv")
	content := `'registration','icao24','typecode','operator'
'G-EUPT','400A0B','A319','British Airways'
'D-AIZA','3c6581','A320','Lufthansa'
'','','B738','Unknown'
'N123AB','a0b1c2','B738','"Example Air"'
`
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o644))

	repo := db.FleetRepository()
	require.NoError(t, repo.LoadFromCSV(csvPath, 2))

	planes, err := repo.List()
	require.NoError(t, err)
	require.Len(t, planes, 3)

	assert.Equal(t, "D-AIZA", planes[0].ID)
	assert.Equal(t, "G-EUPT", planes[1].ID)
	assert.Equal(t, "400a0b", planes[1].ICAO24)
	assert.Equal(t, "A319", planes[1].TypeCode)
	assert.Equal(t, "N123AB", planes[2].ID)
}

func TestFleet_LoadFromCSV_MissingFile(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	err := db.FleetRepository().LoadFromCSV(filepath.Join(t.TempDir(), "missing.csv"), 10)
	assert.Error(t, err)
}
