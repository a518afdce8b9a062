package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-StationBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-StationBookingService/pkg/ptr"
)

type fakeBookingRepo struct {
	byID       map[int64]*domain.Booking
	byUser     []*domain.Booking
	lastStatus *domain.BookingStatus
	err        error
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.byID[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastStatus = status
	return f.byUser, nil
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func TestService_GetByID(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{
		byID: map[int64]*domain.Booking{
			42: {
				ID:        42,
				UserID:    7,
				StationID: 3,
				StartTime: start,
				EndTime:   start.Add(time.Hour),
				Status:    domain.StatusActive,
			},
		},
	}
	svc := NewService(repo, nopLogger{})

	t.Run("owner gets booking", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), 42, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, "active", resp.Status)
	})

	t.Run("foreign booking is denied", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), 42, 8)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("missing booking", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), 99, 7)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestService_GetUserBookings(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{
		byUser: []*domain.Booking{
			{ID: 1, UserID: 7, StationID: 3, StartTime: start, EndTime: start.Add(time.Hour), Status: domain.StatusActive},
			{ID: 2, UserID: 7, StationID: 3, StartTime: start.Add(2 * time.Hour), EndTime: start.Add(3 * time.Hour), Status: domain.StatusCancelled},
		},
	}
	svc := NewService(repo, nopLogger{})

	t.Run("without filter", func(t *testing.T) {
		resp, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{UserID: 7})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
		assert.Nil(t, repo.lastStatus)
	})

	t.Run("with status filter", func(t *testing.T) {
		resp, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
			UserID: 7,
			Status: ptr.Ptr("active"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
		require.NotNil(t, repo.lastStatus)
		assert.Equal(t, domain.StatusActive, *repo.lastStatus)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
			UserID: 7,
			Status: ptr.Ptr("charging"),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
