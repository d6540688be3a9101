package area

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	"github.com/m04kA/SMC-AmenityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AmenityService/pkg/psqlbuilder"
)

// areaColumns колонки таблицы common_areas в порядке сканирования
var areaColumns = []string{
	"id",
	"condo_id",
	"name",
	"capacity",
	"opens_at",
	"closes_at",
	"min_duration_minutes",
	"max_duration_minutes",
	"min_notice_minutes",
	"max_advance_days",
	"blackout_weekdays",
	"monthly_quota_per_unit",
	"auto_approve",
	"auto_confirm",
	"cancel_cutoff_minutes",
	"active",
	"created_at",
	"updated_at",
}

// Repository репозиторий общих зон кондоминиума
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория общих зон
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую общую зону
func (r *Repository) Create(ctx context.Context, area *domain.CommonArea) (*domain.CommonArea, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("common_areas").
		Columns(
			"condo_id",
			"name",
			"capacity",
			"opens_at",
			"closes_at",
			"min_duration_minutes",
			"max_duration_minutes",
			"min_notice_minutes",
			"max_advance_days",
			"blackout_weekdays",
			"monthly_quota_per_unit",
			"auto_approve",
			"auto_confirm",
			"cancel_cutoff_minutes",
			"active",
		).
		Values(
			area.CondoID,
			area.Name,
			area.Capacity,
			area.OpensAt,
			area.ClosesAt,
			area.MinDurationMinutes,
			area.MaxDurationMinutes,
			area.MinNoticeMinutes,
			area.MaxAdvanceDays,
			weekdaysToArray(area.BlackoutWeekdays),
			area.MonthlyQuotaPerUnit,
			area.AutoApprove,
			area.AutoConfirm,
			area.CancelCutoffMinutes,
			area.Active,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&area.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	area.CreatedAt = createdAt.Time
	area.UpdatedAt = updatedAt.Time

	return area, nil
}

// GetByID получает общую зону по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.CommonArea, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(areaColumns...).
		From("common_areas").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	area, err := scanArea(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAreaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan area: %w", ErrScanRow, err)
	}

	return area, nil
}

// ListByCondo получает общие зоны кондоминиума
// По умолчанию только активные; includeInactive добавляет деактивированные
func (r *Repository) ListByCondo(ctx context.Context, condoID int64, includeInactive bool) ([]*domain.CommonArea, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(areaColumns...).
		From("common_areas").
		Where(squirrel.Eq{"condo_id": condoID}).
		OrderBy("name ASC")

	if !includeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCondo - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCondo - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	areas := make([]*domain.CommonArea, 0)
	for rows.Next() {
		area, err := scanArea(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByCondo - scan row: %w", ErrScanRow, err)
		}
		areas = append(areas, area)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByCondo - rows error: %w", ErrScanRow, err)
	}

	return areas, nil
}

// Update обновляет правила общей зоны
// Изменение правил не затрагивает существующие бронирования
func (r *Repository) Update(ctx context.Context, area *domain.CommonArea) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("common_areas").
		Set("name", area.Name).
		Set("capacity", area.Capacity).
		Set("opens_at", area.OpensAt).
		Set("closes_at", area.ClosesAt).
		Set("min_duration_minutes", area.MinDurationMinutes).
		Set("max_duration_minutes", area.MaxDurationMinutes).
		Set("min_notice_minutes", area.MinNoticeMinutes).
		Set("max_advance_days", area.MaxAdvanceDays).
		Set("blackout_weekdays", weekdaysToArray(area.BlackoutWeekdays)).
		Set("monthly_quota_per_unit", area.MonthlyQuotaPerUnit).
		Set("auto_approve", area.AutoApprove).
		Set("auto_confirm", area.AutoConfirm).
		Set("cancel_cutoff_minutes", area.CancelCutoffMinutes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": area.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAreaNotFound
	}

	return nil
}

// SetActive включает или выключает общую зону (soft-деактивация)
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("common_areas").
		Set("active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetActive - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetActive - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetActive - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAreaNotFound
	}

	return nil
}

// scanner общий интерфейс *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanArea сканирует строку в domain.CommonArea
func scanArea(row scanner) (*domain.CommonArea, error) {
	var area domain.CommonArea
	var blackouts pq.Int64Array
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&area.ID,
		&area.CondoID,
		&area.Name,
		&area.Capacity,
		&area.OpensAt,
		&area.ClosesAt,
		&area.MinDurationMinutes,
		&area.MaxDurationMinutes,
		&area.MinNoticeMinutes,
		&area.MaxAdvanceDays,
		&blackouts,
		&area.MonthlyQuotaPerUnit,
		&area.AutoApprove,
		&area.AutoConfirm,
		&area.CancelCutoffMinutes,
		&area.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	area.BlackoutWeekdays = arrayToWeekdays(blackouts)
	area.CreatedAt = createdAt.Time
	area.UpdatedAt = updatedAt.Time

	return &area, nil
}

// weekdaysToArray конвертирует дни недели в pq-массив для колонки integer[]
func weekdaysToArray(weekdays []time.Weekday) pq.Int64Array {
	arr := make(pq.Int64Array, len(weekdays))
	for i, w := range weekdays {
		arr[i] = int64(w)
	}
	return arr
}

func arrayToWeekdays(arr pq.Int64Array) []time.Weekday {
	weekdays := make([]time.Weekday, len(arr))
	for i, v := range arr {
		weekdays[i] = time.Weekday(v)
	}
	return weekdays
}
