package penalty

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	penaltyRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/penalty"
)

type fakePenaltyRepo struct {
	records map[int64]*domain.UserPenalty
}

func newFakePenaltyRepo() *fakePenaltyRepo {
	return &fakePenaltyRepo{records: make(map[int64]*domain.UserPenalty)}
}

func (f *fakePenaltyRepo) GetByUserID(_ context.Context, userID int64) (*domain.UserPenalty, error) {
	p, ok := f.records[userID]
	if !ok {
		return nil, penaltyRepo.ErrPenaltyNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePenaltyRepo) Upsert(_ context.Context, p *domain.UserPenalty) error {
	cp := *p
	f.records[p.UserID] = &cp
	return nil
}

func (f *fakePenaltyRepo) Reset(_ context.Context, userID int64) error {
	if _, ok := f.records[userID]; !ok {
		return penaltyRepo.ErrPenaltyNotFound
	}
	delete(f.records, userID)
	return nil
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestAddPoints_AccumulatesWithoutBlock(t *testing.T) {
	repo := newFakePenaltyRepo()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, nopLogger{}).WithTimeProvider(&fixedTime{now: now})

	pen, err := svc.AddPoints(context.Background(), 1, 1, domain.PenaltyReasonLateCancel)
	require.NoError(t, err)
	assert.Equal(t, 1, pen.PenaltyPoints)
	assert.Equal(t, 1, pen.LateCancelCount)
	assert.Nil(t, pen.BlockedUntil)

	pen, err = svc.AddPoints(context.Background(), 1, 1, domain.PenaltyReasonNoShow)
	require.NoError(t, err)
	assert.Equal(t, 2, pen.PenaltyPoints)
	assert.Equal(t, 1, pen.NoShowCount)
	assert.Nil(t, pen.BlockedUntil)
}

func TestAddPoints_ShortBlockAtThreePoints(t *testing.T) {
	repo := newFakePenaltyRepo()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, nopLogger{}).WithTimeProvider(&fixedTime{now: now})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.AddPoints(ctx, 7, 1, domain.PenaltyReasonNoShow)
		require.NoError(t, err)
	}

	pen, err := repo.GetByUserID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, pen.BlockedUntil)
	assert.Equal(t, now.Add(domain.BlockDurationShort), *pen.BlockedUntil)
}

func TestAddPoints_LongBlockAtFivePoints(t *testing.T) {
	repo := newFakePenaltyRepo()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, nopLogger{}).WithTimeProvider(&fixedTime{now: now})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.AddPoints(ctx, 7, 1, domain.PenaltyReasonNoShow)
		require.NoError(t, err)
	}

	pen, err := repo.GetByUserID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, pen.BlockedUntil)
	assert.Equal(t, now.Add(domain.BlockDurationLong), *pen.BlockedUntil)
}

func TestAddPoints_ViolationPastThresholdExtendsBlock(t *testing.T) {
	repo := newFakePenaltyRepo()
	clock := &fixedTime{now: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)}
	svc := NewService(repo, nopLogger{}).WithTimeProvider(clock)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.AddPoints(ctx, 7, 1, domain.PenaltyReasonNoShow)
		require.NoError(t, err)
	}

	// Четвёртое нарушение днём позже продлевает блокировку от нового времени
	clock.now = clock.now.Add(24 * time.Hour)
	pen, err := svc.AddPoints(ctx, 7, 1, domain.PenaltyReasonNoShow)
	require.NoError(t, err)
	require.NotNil(t, pen.BlockedUntil)
	assert.Equal(t, clock.now.Add(domain.BlockDurationShort), *pen.BlockedUntil)
}

func TestAddPoints_RejectsNonPositivePoints(t *testing.T) {
	svc := NewService(newFakePenaltyRepo(), nopLogger{})

	_, err := svc.AddPoints(context.Background(), 1, 0, domain.PenaltyReasonNoShow)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCheckBlocked(t *testing.T) {
	repo := newFakePenaltyRepo()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, nopLogger{}).WithTimeProvider(&fixedTime{now: now})

	ctx := context.Background()

	// Нет записи — нет блокировки
	blocked, until, err := svc.CheckBlocked(ctx, 42)
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.Nil(t, until)

	// Активная блокировка
	active := now.Add(time.Hour)
	repo.records[42] = &domain.UserPenalty{UserID: 42, PenaltyPoints: 3, BlockedUntil: &active}
	blocked, until, err = svc.CheckBlocked(ctx, 42)
	require.NoError(t, err)
	assert.True(t, blocked)
	require.NotNil(t, until)
	assert.Equal(t, active, *until)

	// Истекшая блокировка: очки остаются, но вход разрешён
	expired := now.Add(-time.Hour)
	repo.records[42].BlockedUntil = &expired
	blocked, until, err = svc.CheckBlocked(ctx, 42)
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.Nil(t, until)
}

func TestReset(t *testing.T) {
	repo := newFakePenaltyRepo()
	svc := NewService(repo, nopLogger{})

	ctx := context.Background()
	assert.ErrorIs(t, svc.Reset(ctx, 1), ErrPenaltyNotFound)

	repo.records[1] = &domain.UserPenalty{UserID: 1, PenaltyPoints: 4}
	require.NoError(t, svc.Reset(ctx, 1))

	_, _, err := svc.CheckBlocked(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, repo.records)
}
