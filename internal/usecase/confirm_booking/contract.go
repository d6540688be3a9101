package confirm_booking

import (
	"context"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// ItemRepository интерфейс репозитория записей календаря
type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.CalendarItem, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ItemStatus) error
}

// TransitionRepository интерфейс репозитория истории переходов
type TransitionRepository interface {
	Create(ctx context.Context, t *domain.ItemTransition) (*domain.ItemTransition, error)
}

// Scheduler интерфейс сериализации операций по объекту
type Scheduler interface {
	Execute(ctx context.Context, areaID int64, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
