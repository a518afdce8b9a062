package penalty

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	"github.com/m04kA/SMC-StationBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-StationBookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы со штрафами пользователей
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория штрафов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByUserID получает запись штрафов пользователя
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*domain.UserPenalty, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"user_id", "penalty_points", "no_show_count", "late_cancel_count", "blocked_until", "updated_at",
	).
		From("user_penalties").
		Where(squirrel.Eq{"user_id": userID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.UserPenalty
	var updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.UserID,
		&p.PenaltyPoints,
		&p.NoShowCount,
		&p.LateCancelCount,
		&p.BlockedUntil,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPenaltyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - scan penalty: %v", ErrScanRow, err)
	}

	p.UpdatedAt = updatedAt.Time
	return &p, nil
}

// Upsert сохраняет запись штрафов, создавая её при первом нарушении
func (r *Repository) Upsert(ctx context.Context, p *domain.UserPenalty) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("user_penalties").
		Columns("user_id", "penalty_points", "no_show_count", "late_cancel_count", "blocked_until").
		Values(p.UserID, p.PenaltyPoints, p.NoShowCount, p.LateCancelCount, p.BlockedUntil).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET " +
			"penalty_points = EXCLUDED.penalty_points, " +
			"no_show_count = EXCLUDED.no_show_count, " +
			"late_cancel_count = EXCLUDED.late_cancel_count, " +
			"blocked_until = EXCLUDED.blocked_until, " +
			"updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Upsert - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}
	return nil
}

// Reset обнуляет штрафы пользователя (административная операция)
func (r *Repository) Reset(ctx context.Context, userID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("user_penalties").
		Set("penalty_points", 0).
		Set("no_show_count", 0).
		Set("late_cancel_count", 0).
		Set("blocked_until", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reset - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Reset - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reset - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrPenaltyNotFound
	}
	return nil
}
