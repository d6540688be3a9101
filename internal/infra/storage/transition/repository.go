package transition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	"github.com/m04kA/SMC-AmenityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AmenityService/pkg/psqlbuilder"
)

var (
	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("transition.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("transition.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("transition.repository: failed to scan row")
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий истории переходов статусов
// История пишется на каждый переход и никогда не изменяется
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория переходов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create записывает переход статуса
func (r *Repository) Create(ctx context.Context, t *domain.ItemTransition) (*domain.ItemTransition, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("item_transitions").
		Columns(
			"item_id",
			"from_status",
			"to_status",
			"actor_user_id",
			"actor_role",
			"reason",
		).
		Values(
			t.ItemID,
			t.FromStatus,
			t.ToStatus,
			t.ActorUserID,
			t.ActorRole,
			t.Reason,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&t.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	t.CreatedAt = createdAt.Time

	return t, nil
}

// ListByItem получает историю переходов записи календаря в хронологическом порядке
func (r *Repository) ListByItem(ctx context.Context, itemID int64) ([]*domain.ItemTransition, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"item_id",
		"from_status",
		"to_status",
		"actor_user_id",
		"actor_role",
		"reason",
		"created_at",
	).
		From("item_transitions").
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByItem - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByItem - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	transitions := make([]*domain.ItemTransition, 0)
	for rows.Next() {
		var t domain.ItemTransition
		var createdAt sql.NullTime

		err := rows.Scan(
			&t.ID,
			&t.ItemID,
			&t.FromStatus,
			&t.ToStatus,
			&t.ActorUserID,
			&t.ActorRole,
			&t.Reason,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByItem - scan row: %w", ErrScanRow, err)
		}

		t.CreatedAt = createdAt.Time
		transitions = append(transitions, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByItem - rows error: %w", ErrScanRow, err)
	}

	return transitions, nil
}
