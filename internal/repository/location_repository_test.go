package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniarchive/archive-api/internal/models"
)

func TestCreateLocationComputesFullCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLocationRepository(db)

	mock.ExpectExec("INSERT INTO locations").WillReturnResult(sqlmock.NewResult(1, 1))

	loc := &models.Location{ShelfNumber: 5, BayCode: "A", SectionNumber: 2}
	require.NoError(t, repo.Create(context.Background(), loc))
	assert.Equal(t, "5A2", loc.FullCode)
	assert.NotEmpty(t, loc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLocationRecomputesFullCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLocationRepository(db)

	mock.ExpectExec("UPDATE locations SET shelf_number").WillReturnResult(sqlmock.NewResult(0, 1))

	loc := &models.Location{ID: "loc-1", ShelfNumber: 7, BayCode: "B", SectionNumber: 3, FullCode: "5A2"}
	require.NoError(t, repo.Update(context.Background(), loc))
	assert.Equal(t, "7B3", loc.FullCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountLocationRecords(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLocationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM records WHERE location_id = $1")).
		WithArgs("loc-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountRecords(context.Background(), "loc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
