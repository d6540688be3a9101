package cancel_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	"github.com/m04kA/SMC-AmenityService/internal/integrations/notifyservice"
)

// ItemRepository интерфейс репозитория записей календаря
type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.CalendarItem, error)
	Cancel(ctx context.Context, id int64, reason *string) error
}

// AreaRepository интерфейс репозитория общих зон
type AreaRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.CommonArea, error)
}

// TransitionRepository интерфейс репозитория истории переходов
type TransitionRepository interface {
	Create(ctx context.Context, t *domain.ItemTransition) (*domain.ItemTransition, error)
}

// Scheduler интерфейс сериализации операций по объекту
type Scheduler interface {
	Execute(ctx context.Context, areaID int64, fn func(ctx context.Context) error) error
}

// NotifyClient интерфейс клиента уведомлений
type NotifyClient interface {
	Notify(ctx context.Context, recipient notifyservice.RecipientSelector, event, message string) error
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
