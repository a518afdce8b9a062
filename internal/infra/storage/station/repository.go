package station

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	"github.com/m04kA/SMC-StationBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-StationBookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы со станциями (slot ledger)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория станций
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает станцию по ID.
// Внутри транзакции блокирует строку станции (FOR UPDATE) — это точка
// сериализации всех операций над слотами одной станции: две конкурентные
// брони или бронь + promotion не могут пройти проверку ёмкости одновременно.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Station, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id", "name", "latitude", "longitude", "address",
		"charger_type", "connector_type", "power_kw",
		"total_slots", "available_slots", "price_per_kwh", "status",
	).
		From("stations").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var st domain.Station
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&st.ID,
		&st.Name,
		&st.Latitude,
		&st.Longitude,
		&st.Address,
		&st.ChargerType,
		&st.ConnectorType,
		&st.PowerKW,
		&st.TotalSlots,
		&st.AvailableSlots,
		&st.PricePerKWh,
		&st.Status,
	)
	if err == sql.ErrNoRows {
		return nil, ErrStationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan station: %v", ErrScanRow, err)
	}

	return &st, nil
}

// List возвращает все станции
func (r *Repository) List(ctx context.Context) ([]*domain.Station, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id", "name", "latitude", "longitude", "address",
		"charger_type", "connector_type", "power_kw",
		"total_slots", "available_slots", "price_per_kwh", "status",
	).
		From("stations").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	stations := make([]*domain.Station, 0)
	for rows.Next() {
		var st domain.Station
		err := rows.Scan(
			&st.ID,
			&st.Name,
			&st.Latitude,
			&st.Longitude,
			&st.Address,
			&st.ChargerType,
			&st.ConnectorType,
			&st.PowerKW,
			&st.TotalSlots,
			&st.AvailableSlots,
			&st.PricePerKWh,
			&st.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		stations = append(stations, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return stations, nil
}

// AdjustAvailableSlots изменяет денормализованный счетчик свободных слотов
// на delta, с ограничением диапазона [0, total_slots] на стороне БД
func (r *Repository) AdjustAvailableSlots(ctx context.Context, id int64, delta int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("stations").
		Set("available_slots", squirrel.Expr(
			"GREATEST(0, LEAST(total_slots, available_slots + ?))", delta,
		)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AdjustAvailableSlots - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AdjustAvailableSlots - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: AdjustAvailableSlots - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrStationNotFound
	}
	return nil
}
