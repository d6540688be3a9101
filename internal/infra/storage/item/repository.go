package item

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	"github.com/m04kA/SMC-AmenityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AmenityService/pkg/psqlbuilder"
)

// itemColumns колонки таблицы calendar_items в порядке сканирования
var itemColumns = []string{
	"id",
	"area_id",
	"condo_id",
	"unit_id",
	"user_id",
	"kind",
	"status",
	"starts_at",
	"ends_at",
	"cancellation_reason",
	"rejection_reason",
	"block_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей календаря (бронирования и блоки обслуживания)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей календаря
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись календаря
func (r *Repository) Create(ctx context.Context, item *domain.CalendarItem) (*domain.CalendarItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("calendar_items").
		Columns(
			"area_id",
			"condo_id",
			"unit_id",
			"user_id",
			"kind",
			"status",
			"starts_at",
			"ends_at",
			"block_reason",
		).
		Values(
			item.AreaID,
			item.CondoID,
			item.UnitID,
			item.UserID,
			item.Kind,
			item.Status,
			item.StartsAt,
			item.EndsAt,
			item.BlockReason,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&item.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	item.CreatedAt = createdAt.Time
	item.UpdatedAt = updatedAt.Time

	return item, nil
}

// GetByID получает запись календаря по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.CalendarItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(itemColumns...).
		From("calendar_items").
		Where(squirrel.Eq{"id": id})

	// Внутри транзакции запись блокируется на время смены статуса
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	item, err := scanItem(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan item: %w", ErrScanRow, err)
	}

	return item, nil
}

// ListOccupyingInRange получает записи объекта, занимающие время в интервале [from, to)
// Используется проверкой пересечений; внутри транзакции строки блокируются (FOR UPDATE),
// чтобы конкурирующая заявка дождалась исхода текущей
func (r *Repository) ListOccupyingInRange(ctx context.Context, areaID int64, from, to time.Time) ([]*domain.CalendarItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(itemColumns...).
		From("calendar_items").
		Where(squirrel.Eq{"area_id": areaID}).
		Where(squirrel.Eq{"status": occupyingStatusStrings()}).
		Where(squirrel.Lt{"starts_at": to}).
		Where(squirrel.Gt{"ends_at": from}).
		OrderBy("starts_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupyingInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupyingInRange - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListWithFilter получает записи кондоминиума с гибкой фильтрацией
// From/To задают пересечение с периодом, не вхождение
func (r *Repository) ListWithFilter(ctx context.Context, filter domain.CondoItemsFilter) ([]*domain.CalendarItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(itemColumns...).
		From("calendar_items").
		Where(squirrel.Eq{"condo_id": filter.CondoID})

	if filter.AreaID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"area_id": *filter.AreaID})
	}
	if filter.UnitID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"unit_id": *filter.UnitID})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"ends_at": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"starts_at": *filter.To})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		terminalStatusStrings := make([]string, len(domain.TerminalStatuses))
		for i, s := range domain.TerminalStatuses {
			terminalStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": terminalStatusStrings})
	}

	query, args, err := selectBuilder.OrderBy("starts_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListByUnit получает бронирования квартиры (история "мои бронирования")
func (r *Repository) ListByUnit(ctx context.Context, condoID, unitID int64, status *domain.ItemStatus) ([]*domain.CalendarItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(itemColumns...).
		From("calendar_items").
		Where(squirrel.Eq{"condo_id": condoID}).
		Where(squirrel.Eq{"unit_id": unitID}).
		OrderBy("starts_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUnit - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUnit - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// CountOccupyingByUnit считает активные бронирования квартиры на объекте,
// начинающиеся в интервале [from, to) — подсчёт квоты
func (r *Repository) CountOccupyingByUnit(ctx context.Context, areaID, unitID int64, from, to time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("calendar_items").
		Where(squirrel.Eq{"area_id": areaID}).
		Where(squirrel.Eq{"unit_id": unitID}).
		Where(squirrel.Eq{"kind": domain.KindReservation}).
		Where(squirrel.Eq{"status": occupyingStatusStrings()}).
		Where(squirrel.GtOrEq{"starts_at": from}).
		Where(squirrel.Lt{"starts_at": to}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountOccupyingByUnit - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountOccupyingByUnit - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// ListExpiredConfirmed получает подтверждённые бронирования, время которых прошло
// Используется фоновым завершением
func (r *Repository) ListExpiredConfirmed(ctx context.Context, now time.Time, limit uint64) ([]*domain.CalendarItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(itemColumns...).
		From("calendar_items").
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.LtOrEq{"ends_at": now}).
		OrderBy("ends_at ASC").
		Limit(limit).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredConfirmed - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredConfirmed - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListFutureOccupying получает будущие активные записи объекта
// Используется при деактивации объекта: без force их наличие запрещает деактивацию
func (r *Repository) ListFutureOccupying(ctx context.Context, areaID int64, after time.Time) ([]*domain.CalendarItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(itemColumns...).
		From("calendar_items").
		Where(squirrel.Eq{"area_id": areaID}).
		Where(squirrel.Eq{"status": occupyingStatusStrings()}).
		Where(squirrel.Gt{"ends_at": after}).
		OrderBy("starts_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListFutureOccupying - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListFutureOccupying - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// UpdateStatus обновляет статус записи календаря
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.ItemStatus) error {
	return r.execUpdate(ctx, "UpdateStatus", psqlbuilder.Update("calendar_items").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// Reject помечает заявку отклонённой с указанием причины
func (r *Repository) Reject(ctx context.Context, id int64, reason string) error {
	return r.execUpdate(ctx, "Reject", psqlbuilder.Update("calendar_items").
		Set("status", domain.StatusRejected).
		Set("rejection_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// Cancel отменяет запись календаря с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string) error {
	return r.execUpdate(ctx, "Cancel", psqlbuilder.Update("calendar_items").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

func (r *Repository) execUpdate(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrItemNotFound
	}

	return nil
}

// scanner общий интерфейс *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row scanner) (*domain.CalendarItem, error) {
	var item domain.CalendarItem
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.AreaID,
		&item.CondoID,
		&item.UnitID,
		&item.UserID,
		&item.Kind,
		&item.Status,
		&item.StartsAt,
		&item.EndsAt,
		&item.CancellationReason,
		&item.RejectionReason,
		&item.BlockReason,
		&item.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.CreatedAt = createdAt.Time
	item.UpdatedAt = updatedAt.Time

	return &item, nil
}

func scanItems(rows *sql.Rows) ([]*domain.CalendarItem, error) {
	items := make([]*domain.CalendarItem, 0)

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanItems - scan row: %w", ErrScanRow, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanItems - rows error: %w", ErrScanRow, err)
	}

	return items, nil
}

func occupyingStatusStrings() []string {
	statuses := make([]string, len(domain.OccupyingStatuses))
	for i, s := range domain.OccupyingStatuses {
		statuses[i] = string(s)
	}
	return statuses
}
