package waitlist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	"github.com/m04kA/SMC-StationBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-StationBookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с очередью ожидания
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория очереди
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create добавляет пользователя в хвост очереди станции.
// Позиция вычисляется на стороне БД как MAX(position)+1.
// Уникальный индекс (user_id, station_id) гарантирует не более одной записи
// на пару пользователь-станция.
func (r *Repository) Create(ctx context.Context, userID, stationID int64) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("waitlist_entries").
		Columns("user_id", "station_id", "position").
		Values(userID, stationID, squirrel.Expr(
			"(SELECT COALESCE(MAX(position), 0) + 1 FROM waitlist_entries WHERE station_id = ?)", stationID,
		)).
		Suffix("RETURNING id, position, notified, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	entry := &domain.WaitlistEntry{UserID: userID, StationID: stationID}
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&entry.ID, &entry.Position, &entry.Notified, &entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyQueued
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return entry, nil
}

// GetByUserAndStation получает запись пользователя в очереди станции
func (r *Repository) GetByUserAndStation(ctx context.Context, userID, stationID int64) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id", "user_id", "station_id", "position", "notified", "created_at",
	).
		From("waitlist_entries").
		Where(squirrel.Eq{"user_id": userID, "station_id": stationID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserAndStation - build select query: %v", ErrBuildQuery, err)
	}

	var entry domain.WaitlistEntry
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&entry.ID, &entry.UserID, &entry.StationID, &entry.Position, &entry.Notified, &entry.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserAndStation - scan entry: %v", ErrScanRow, err)
	}

	return &entry, nil
}

// ListByStation возвращает очередь станции в порядке FIFO (по created_at).
// Порядок продвижения определяется временем создания, не полем position.
func (r *Repository) ListByStation(ctx context.Context, stationID int64) ([]*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id", "user_id", "station_id", "position", "notified", "created_at",
	).
		From("waitlist_entries").
		Where(squirrel.Eq{"station_id": stationID}).
		OrderBy("created_at ASC", "id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByStation - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByStation - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// Delete удаляет запись из очереди (при promotion или отказе пользователя)
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("waitlist_entries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// UpdatePosition обновляет display-значение позиции записи
func (r *Repository) UpdatePosition(ctx context.Context, id int64, position int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("waitlist_entries").
		Set("position", position).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdatePosition - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpdatePosition - execute update: %v", ErrExecQuery, err)
	}
	return nil
}

// MarkNotified помечает запись как уведомлённую о скором освобождении слота
func (r *Repository) MarkNotified(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("waitlist_entries").
		Set("notified", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkNotified - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkNotified - execute update: %v", ErrExecQuery, err)
	}
	return nil
}

// scanEntries сканирует результаты запроса в слайс записей очереди
func (r *Repository) scanEntries(rows *sql.Rows) ([]*domain.WaitlistEntry, error) {
	entries := make([]*domain.WaitlistEntry, 0)

	for rows.Next() {
		var entry domain.WaitlistEntry
		err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.StationID, &entry.Position, &entry.Notified, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanEntries - scan row: %v", ErrScanRow, err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanEntries - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}
