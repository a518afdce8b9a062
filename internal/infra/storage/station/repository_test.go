package station

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func stationRow(id int64, totalSlots, availableSlots int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "latitude", "longitude", "address",
		"charger_type", "connector_type", "power_kw",
		"total_slots", "available_slots", "price_per_kwh", "status",
	}).AddRow(id, "ЭЗС Центральная", 55.75, 37.61, "Тверская 1",
		"DC", "CCS2", 150.0, totalSlots, availableSlots, 18.5, "active")
}

func TestGetByID(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT id, name, latitude, longitude, address, charger_type, connector_type, power_kw, total_slots, available_slots, price_per_kwh, status FROM stations").
		WithArgs(int64(3)).
		WillReturnRows(stationRow(3, 4, 2))

	st, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, int64(3), st.ID)
	assert.Equal(t, 4, st.TotalSlots)
	assert.Equal(t, 2, st.AvailableSlots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT id, name, latitude, longitude, address").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrStationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	repo, mock := newMock(t)

	rows := stationRow(1, 4, 2).AddRow(int64(2), "ЭЗС Северная", 55.85, 37.50, "Ленинградское ш. 10",
		"AC", "Type2", 22.0, 2, 0, 12.0, "active")
	mock.ExpectQuery("SELECT id, name, latitude, longitude, address").
		WillReturnRows(rows)

	stations, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, int64(1), stations[0].ID)
	assert.Equal(t, 0, stations[1].AvailableSlots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustAvailableSlots(t *testing.T) {
	repo, mock := newMock(t)

	// счетчик зажимается в [0, total_slots] на стороне БД
	mock.ExpectExec(`UPDATE stations SET available_slots = GREATEST\(0, LEAST\(total_slots, available_slots \+ \$1\)\) WHERE id = \$2`).
		WithArgs(-1, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AdjustAvailableSlots(context.Background(), 3, -1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustAvailableSlots_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec("UPDATE stations SET available_slots").
		WithArgs(1, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AdjustAvailableSlots(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrStationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
