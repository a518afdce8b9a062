package devicetoken

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	"github.com/m04kA/SMC-StationBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-StationBookingService/pkg/psqlbuilder"
)

// Repository репозиторий push-подписок устройств
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория подписок
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create регистрирует подписку устройства. Повторная регистрация того же
// endpoint обновляет ключи (устройство могло перевыпустить подписку).
func (r *Repository) Create(ctx context.Context, sub *domain.DeviceSubscription) (*domain.DeviceSubscription, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("device_subscriptions").
		Columns("user_id", "endpoint", "p256dh", "auth").
		Values(sub.UserID, sub.Endpoint, sub.P256DH, sub.Auth).
		Suffix("ON CONFLICT (endpoint) DO UPDATE SET " +
			"user_id = EXCLUDED.user_id, " +
			"p256dh = EXCLUDED.p256dh, " +
			"auth = EXCLUDED.auth " +
			"RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&sub.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	sub.CreatedAt = createdAt.Time
	return sub, nil
}

// ListByUserID возвращает все подписки пользователя
func (r *Repository) ListByUserID(ctx context.Context, userID int64) ([]*domain.DeviceSubscription, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id", "user_id", "endpoint", "p256dh", "auth", "created_at",
	).
		From("device_subscriptions").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	subs := make([]*domain.DeviceSubscription, 0)
	for rows.Next() {
		var sub domain.DeviceSubscription
		var createdAt sql.NullTime
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256DH, &sub.Auth, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: ListByUserID - scan row: %v", ErrScanRow, err)
		}
		sub.CreatedAt = createdAt.Time
		subs = append(subs, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByUserID - rows error: %v", ErrScanRow, err)
	}

	return subs, nil
}

// DeleteByEndpoint удаляет протухшую подписку (push-сервис ответил 410 Gone)
func (r *Repository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("device_subscriptions").
		Where(squirrel.Eq{"endpoint": endpoint}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteByEndpoint - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: DeleteByEndpoint - execute delete: %v", ErrExecQuery, err)
	}
	return nil
}
