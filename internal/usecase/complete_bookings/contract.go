package complete_bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// ItemRepository интерфейс репозитория записей календаря
type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.CalendarItem, error)
	ListExpiredConfirmed(ctx context.Context, now time.Time, limit uint64) ([]*domain.CalendarItem, error)
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

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
