package waitlist

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	waitlistRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/waitlist"
)

type fakeWaitlistRepo struct {
	entries map[int64]*domain.WaitlistEntry
	nextID  int64
}

func newFakeWaitlistRepo() *fakeWaitlistRepo {
	return &fakeWaitlistRepo{entries: make(map[int64]*domain.WaitlistEntry), nextID: 1}
}

func (f *fakeWaitlistRepo) add(userID, stationID int64, position int, createdAt time.Time) *domain.WaitlistEntry {
	e := &domain.WaitlistEntry{
		ID:        f.nextID,
		UserID:    userID,
		StationID: stationID,
		Position:  position,
		CreatedAt: createdAt,
	}
	f.entries[e.ID] = e
	f.nextID++
	return e
}

func (f *fakeWaitlistRepo) GetByUserAndStation(_ context.Context, userID, stationID int64) (*domain.WaitlistEntry, error) {
	for _, e := range f.entries {
		if e.UserID == userID && e.StationID == stationID {
			return e, nil
		}
	}
	return nil, waitlistRepo.ErrEntryNotFound
}

func (f *fakeWaitlistRepo) ListByStation(_ context.Context, stationID int64) ([]*domain.WaitlistEntry, error) {
	var out []*domain.WaitlistEntry
	for _, e := range f.entries {
		if e.StationID == stationID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeWaitlistRepo) Delete(_ context.Context, id int64) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeWaitlistRepo) UpdatePosition(_ context.Context, id int64, position int) error {
	if e, ok := f.entries[id]; ok {
		e.Position = position
	}
	return nil
}

func (f *fakeWaitlistRepo) MarkNotified(_ context.Context, id int64) error {
	if e, ok := f.entries[id]; ok {
		e.Notified = true
	}
	return nil
}

type fakeBookingRepo struct {
	created     []*domain.Booking
	activeCount int
	durations   []float64
	nextID      int64
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.nextID++
	cp := *b
	cp.ID = f.nextID
	f.created = append(f.created, &cp)
	f.activeCount++
	return &cp, nil
}

func (f *fakeBookingRepo) CountActive(_ context.Context, _ int64) (int, error) {
	return f.activeCount, nil
}

func (f *fakeBookingRepo) RecentCompletedDurations(_ context.Context, _ int64, _ int) ([]float64, error) {
	return f.durations, nil
}

type fakeStationRepo struct {
	station *domain.Station
}

func (f *fakeStationRepo) GetByID(_ context.Context, _ int64) (*domain.Station, error) {
	return f.station, nil
}

func (f *fakeStationRepo) AdjustAvailableSlots(_ context.Context, _ int64, delta int) error {
	f.station.AvailableSlots += delta
	return nil
}

// passthroughTx выполняет функцию без настоящей транзакции
type passthroughTx struct{}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingNotifier struct {
	notified []int64
	titles   []string
}

func (r *recordingNotifier) Notify(userID int64, title, _ string) {
	r.notified = append(r.notified, userID)
	r.titles = append(r.titles, title)
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestService(wl *fakeWaitlistRepo, br *fakeBookingRepo, sr *fakeStationRepo, n Notifier, now time.Time) *Service {
	return NewService(wl, br, sr, passthroughTx{}, n, nopLogger{}).
		WithTimeProvider(&fixedTime{now: now})
}

func TestPromoteForStation_FIFOOrderAndRenumber(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	wl := newFakeWaitlistRepo()
	wl.add(10, 1, 1, now.Add(-3*time.Hour))
	wl.add(20, 1, 2, now.Add(-2*time.Hour))
	wl.add(30, 1, 3, now.Add(-time.Hour))

	br := &fakeBookingRepo{activeCount: 2}
	sr := &fakeStationRepo{station: &domain.Station{ID: 1, Name: "Central", TotalSlots: 3, AvailableSlots: 1}}
	notifier := &recordingNotifier{}
	svc := newTestService(wl, br, sr, notifier, now)

	promoted, err := svc.PromoteForStation(context.Background(), 1, true, 0)
	require.NoError(t, err)

	// Один свободный слот — продвигается только голова очереди,
	// новая голова получает heads-up
	require.Len(t, promoted, 1)
	assert.Equal(t, int64(10), promoted[0].UserID)
	assert.Equal(t, []int64{10, 20}, notifier.notified)
	assert.Equal(t, []string{"Slot Available", "Next in Line"}, notifier.titles)

	// Продвинутому выдано свежее короткое окно
	assert.Equal(t, now.Add(domain.PromotionLeadTime), promoted[0].StartTime)
	assert.Equal(t, domain.PromotionSessionDuration, promoted[0].Duration())

	// Оставшиеся перенумерованы плотно 1..N
	remaining, _ := wl.ListByStation(context.Background(), 1)
	require.Len(t, remaining, 2)
	assert.Equal(t, int64(20), remaining[0].UserID)
	assert.Equal(t, 1, remaining[0].Position)
	assert.True(t, remaining[0].Notified)
	assert.False(t, remaining[1].Notified)
	assert.Equal(t, int64(30), remaining[1].UserID)
	assert.Equal(t, 2, remaining[1].Position)

	// Денормализованный счетчик уменьшен
	assert.Equal(t, 0, sr.station.AvailableSlots)
}

func TestPromoteForStation_PromotesUpToFreeSlots(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	wl := newFakeWaitlistRepo()
	wl.add(10, 1, 1, now.Add(-3*time.Hour))
	wl.add(20, 1, 2, now.Add(-2*time.Hour))
	wl.add(30, 1, 3, now.Add(-time.Hour))

	br := &fakeBookingRepo{activeCount: 0}
	sr := &fakeStationRepo{station: &domain.Station{ID: 1, TotalSlots: 2, AvailableSlots: 2}}
	svc := newTestService(wl, br, sr, &recordingNotifier{}, now)

	promoted, err := svc.PromoteForStation(context.Background(), 1, false, 0)
	require.NoError(t, err)

	require.Len(t, promoted, 2)
	assert.Equal(t, int64(10), promoted[0].UserID)
	assert.Equal(t, int64(20), promoted[1].UserID)

	remaining, _ := wl.ListByStation(context.Background(), 1)
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(30), remaining[0].UserID)
	assert.Equal(t, 1, remaining[0].Position)

	// notify=false — heads-up не отправляется и флаг не ставится
	assert.False(t, remaining[0].Notified)
}

func TestPromoteForStation_NoFreeSlots(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	wl := newFakeWaitlistRepo()
	wl.add(10, 1, 1, now.Add(-time.Hour))

	br := &fakeBookingRepo{activeCount: 2}
	sr := &fakeStationRepo{station: &domain.Station{ID: 1, TotalSlots: 2, AvailableSlots: 0}}
	notifier := &recordingNotifier{}
	svc := newTestService(wl, br, sr, notifier, now)

	promoted, err := svc.PromoteForStation(context.Background(), 1, true, 0)
	require.NoError(t, err)
	assert.Empty(t, promoted)
	assert.Empty(t, notifier.notified)
	assert.Len(t, wl.entries, 1)
}

func TestPromoteForStation_MaxPromoteCapsPromotion(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	wl := newFakeWaitlistRepo()
	wl.add(10, 1, 1, now.Add(-2*time.Hour))
	wl.add(20, 1, 2, now.Add(-time.Hour))

	br := &fakeBookingRepo{activeCount: 0}
	sr := &fakeStationRepo{station: &domain.Station{ID: 1, TotalSlots: 4, AvailableSlots: 4}}
	svc := newTestService(wl, br, sr, &recordingNotifier{}, now)

	promoted, err := svc.PromoteForStation(context.Background(), 1, false, 1)
	require.NoError(t, err)
	require.Len(t, promoted, 1)
	assert.Equal(t, int64(10), promoted[0].UserID)
}

func TestPromoteForStation_HeadsUpSentOnce(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	wl := newFakeWaitlistRepo()
	wl.add(10, 1, 1, now.Add(-2*time.Hour))
	head := wl.add(20, 1, 2, now.Add(-time.Hour))
	head.Notified = true

	br := &fakeBookingRepo{activeCount: 1}
	sr := &fakeStationRepo{station: &domain.Station{ID: 1, Name: "Central", TotalSlots: 2, AvailableSlots: 1}}
	notifier := &recordingNotifier{}
	svc := newTestService(wl, br, sr, notifier, now)

	promoted, err := svc.PromoteForStation(context.Background(), 1, true, 0)
	require.NoError(t, err)
	require.Len(t, promoted, 1)

	// Уже уведомлённая голова не получает повторный heads-up
	assert.Equal(t, []int64{10}, notifier.notified)
	assert.Equal(t, []string{"Slot Available"}, notifier.titles)
}

func TestReorder_CompactsPositions(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	wl := newFakeWaitlistRepo()
	wl.add(10, 1, 2, now.Add(-3*time.Hour))
	wl.add(20, 1, 5, now.Add(-2*time.Hour))
	wl.add(30, 1, 9, now.Add(-time.Hour))

	sr := &fakeStationRepo{station: &domain.Station{ID: 1, TotalSlots: 2}}
	svc := newTestService(wl, &fakeBookingRepo{}, sr, &recordingNotifier{}, now)

	require.NoError(t, svc.Reorder(context.Background(), 1))

	entries, _ := wl.ListByStation(context.Background(), 1)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Position)
	}
}

func TestGetInfo_EstimateFromRecentDurations(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	wl := newFakeWaitlistRepo()
	wl.add(10, 1, 3, now.Add(-time.Hour))

	br := &fakeBookingRepo{durations: []float64{20, 40, 60}}
	sr := &fakeStationRepo{station: &domain.Station{ID: 1}}
	svc := newTestService(wl, br, sr, &recordingNotifier{}, now)

	info, err := svc.GetInfo(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Position)
	// position 3 * avg(20,40,60)=40 => 120
	assert.Equal(t, 120, info.EstimatedWaitMinutes)
}

func TestGetInfo_DefaultDurationWithoutHistory(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	wl := newFakeWaitlistRepo()
	wl.add(10, 1, 2, now.Add(-time.Hour))

	br := &fakeBookingRepo{}
	sr := &fakeStationRepo{station: &domain.Station{ID: 1}}
	svc := newTestService(wl, br, sr, &recordingNotifier{}, now)

	info, err := svc.GetInfo(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 2*domain.DefaultAvgDurationMinutes, info.EstimatedWaitMinutes)
}

func TestGetInfo_NotQueued(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	svc := newTestService(newFakeWaitlistRepo(), &fakeBookingRepo{}, &fakeStationRepo{station: &domain.Station{}}, &recordingNotifier{}, now)

	_, err := svc.GetInfo(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrNotQueued)
}
