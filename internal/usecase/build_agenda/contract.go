package build_agenda

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// ItemRepository интерфейс репозитория записей календаря
type ItemRepository interface {
	ListWithFilter(ctx context.Context, filter domain.CondoItemsFilter) ([]*domain.CalendarItem, error)
}

// AreaRepository интерфейс репозитория общих зон
type AreaRepository interface {
	ListByCondo(ctx context.Context, condoID int64, includeInactive bool) ([]*domain.CommonArea, error)
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
