package booking

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newMock(t)

	start := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 8, 29, 13, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(int64(7), int64(3), start, start.Add(time.Hour), domain.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), createdAt))

	booking, err := repo.Create(context.Background(), &domain.Booking{
		UserID:    7,
		StationID: 3,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    domain.StatusActive,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), booking.ID)
	assert.Equal(t, createdAt, booking.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT id, user_id, station_id, start_time, end_time, status, created_at FROM bookings").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountOverlapping(t *testing.T) {
	repo, mock := newMock(t)

	start := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	// Полуинтервал: start_time < end AND end_time > start
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE .* AND start_time < \$\d AND end_time > \$\d`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountOverlapping(context.Background(), 3, start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUserID_StatusFilter(t *testing.T) {
	repo, mock := newMock(t)

	start := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "station_id", "start_time", "end_time", "status", "created_at"}).
		AddRow(int64(1), int64(7), int64(3), start, start.Add(time.Hour), "active", start.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .* FROM bookings WHERE user_id = \$1 AND status = \$2 ORDER BY start_time DESC`).
		WithArgs(int64(7), domain.StatusActive).
		WillReturnRows(rows)

	status := domain.StatusActive
	bookings, err := repo.GetByUserID(context.Background(), 7, &status)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, int64(1), bookings[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListExpired(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "station_id", "start_time", "end_time", "status", "created_at"}).
		AddRow(int64(5), int64(7), int64(3), now.Add(-2*time.Hour), now.Add(-time.Hour), "active", now.Add(-3*time.Hour))

	mock.ExpectQuery(`SELECT .* FROM bookings WHERE status = \$1 AND end_time < \$2`).
		WithArgs(domain.StatusActive, now).
		WillReturnRows(rows)

	expired, err := repo.ListExpired(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, int64(5), expired[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentCompletedDurations(t *testing.T) {
	repo, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"duration"}).AddRow(30.0).AddRow(45.5)
	mock.ExpectQuery(`SELECT EXTRACT\(EPOCH FROM \(end_time - start_time\)\) / 60`).
		WillReturnRows(rows)

	durations, err := repo.RecentCompletedDurations(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 45.5}, durations)
	assert.NoError(t, mock.ExpectationsWereMet())
}
