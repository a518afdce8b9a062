package cancel_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/booking"
)

type fakeBookingRepo struct {
	booking *domain.Booking
	updated map[int64]domain.BookingStatus
}

func newFakeBookingRepo(b *domain.Booking) *fakeBookingRepo {
	return &fakeBookingRepo{booking: b, updated: make(map[int64]domain.BookingStatus)}
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *f.booking
	return &cp, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	f.updated[id] = status
	return nil
}

type fakeStationRepo struct {
	slotDeltas []int
}

func (f *fakeStationRepo) GetByID(_ context.Context, id int64) (*domain.Station, error) {
	return &domain.Station{ID: id, TotalSlots: 2}, nil
}

func (f *fakeStationRepo) AdjustAvailableSlots(_ context.Context, _ int64, delta int) error {
	f.slotDeltas = append(f.slotDeltas, delta)
	return nil
}

type fakePenaltySvc struct {
	added []domain.PenaltyReason
}

func (f *fakePenaltySvc) AddPoints(_ context.Context, _ int64, _ int, reason domain.PenaltyReason) (*domain.UserPenalty, error) {
	f.added = append(f.added, reason)
	return &domain.UserPenalty{}, nil
}

type fakePromoter struct {
	stations []int64
	promoted []*domain.Booking
}

func (f *fakePromoter) PromoteForStation(_ context.Context, stationID int64, _ bool, _ int) ([]*domain.Booking, error) {
	f.stations = append(f.stations, stationID)
	return f.promoted, nil
}

type passthroughTx struct{}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type recordingNotifier struct {
	titles []string
}

func (r *recordingNotifier) Notify(_ int64, title, _ string) {
	r.titles = append(r.titles, title)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func activeBooking(start time.Time) *domain.Booking {
	return &domain.Booking{
		ID:        1,
		UserID:    7,
		StationID: 3,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    domain.StatusActive,
	}
}

type ucDeps struct {
	bookings *fakeBookingRepo
	stations *fakeStationRepo
	penalty  *fakePenaltySvc
	promoter *fakePromoter
	notifier *recordingNotifier
}

func newTestUseCase(d *ucDeps) *UseCase {
	return NewUseCase(d.bookings, d.stations, d.penalty, d.promoter, passthroughTx{},
		&fixedTime{now: testNow}, d.notifier, nopLogger{})
}

func depsWith(b *domain.Booking) *ucDeps {
	return &ucDeps{
		bookings: newFakeBookingRepo(b),
		stations: &fakeStationRepo{},
		penalty:  &fakePenaltySvc{},
		promoter: &fakePromoter{},
		notifier: &recordingNotifier{},
	}
}

func TestExecute_CancelWithoutPenalty(t *testing.T) {
	deps := depsWith(activeBooking(testNow.Add(time.Hour)))
	uc := newTestUseCase(deps)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 7})
	require.NoError(t, err)

	assert.False(t, resp.PenaltyApplied)
	assert.Equal(t, domain.StatusCancelled, deps.bookings.updated[1])
	assert.Empty(t, deps.penalty.added)

	// Слот возвращён и очередь станции продвинута
	assert.Equal(t, []int{1}, deps.stations.slotDeltas)
	assert.Equal(t, []int64{3}, deps.promoter.stations)
	assert.Equal(t, []string{"Booking Cancelled"}, deps.notifier.titles)
}

func TestExecute_LateCancelAddsPenalty(t *testing.T) {
	// Старт через 5 минут — внутри окна поздней отмены
	deps := depsWith(activeBooking(testNow.Add(5 * time.Minute)))
	uc := newTestUseCase(deps)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 7})
	require.NoError(t, err)

	assert.True(t, resp.PenaltyApplied)
	assert.Equal(t, []domain.PenaltyReason{domain.PenaltyReasonLateCancel}, deps.penalty.added)
	assert.Equal(t, []string{"Booking Cancelled", "Late Cancellation Penalty"}, deps.notifier.titles)
}

func TestExecute_ReportsPromotedUsers(t *testing.T) {
	deps := depsWith(activeBooking(testNow.Add(time.Hour)))
	deps.promoter.promoted = []*domain.Booking{{ID: 10, UserID: 20}}
	uc := newTestUseCase(deps)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.PromotedUsers)
}

func TestExecute_NotOwner(t *testing.T) {
	deps := depsWith(activeBooking(testNow.Add(time.Hour)))
	uc := newTestUseCase(deps)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 99})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, deps.bookings.updated)
	assert.Empty(t, deps.promoter.stations)
}

func TestExecute_NotFound(t *testing.T) {
	deps := depsWith(nil)
	uc := newTestUseCase(deps)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 7})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_NotActive(t *testing.T) {
	b := activeBooking(testNow.Add(time.Hour))
	b.Status = domain.StatusCancelled
	deps := depsWith(b)
	uc := newTestUseCase(deps)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 7})
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestExecute_AlreadyStarted(t *testing.T) {
	deps := depsWith(activeBooking(testNow.Add(-time.Minute)))
	uc := newTestUseCase(deps)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 7})
	assert.ErrorIs(t, err, ErrAlreadyStarted)
	assert.Empty(t, deps.bookings.updated)
	assert.Empty(t, deps.penalty.added)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newTestUseCase(depsWith(nil))

	_, err := uc.Execute(context.Background(), &Request{BookingID: 0, UserID: 7})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
