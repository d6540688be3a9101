package items

import (
	"context"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// ItemRepository интерфейс репозитория записей календаря
type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.CalendarItem, error)
	ListByUnit(ctx context.Context, condoID, unitID int64, status *domain.ItemStatus) ([]*domain.CalendarItem, error)
	ListWithFilter(ctx context.Context, filter domain.CondoItemsFilter) ([]*domain.CalendarItem, error)
}

// TransitionRepository интерфейс репозитория истории переходов
type TransitionRepository interface {
	ListByItem(ctx context.Context, itemID int64) ([]*domain.ItemTransition, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
