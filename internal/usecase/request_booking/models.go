package request_booking

import (
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	Actor    domain.Identity // Аутентифицированный житель
	AreaID   int64           // ID общей зоны
	StartsAt time.Time       // Начало интервала
	EndsAt   time.Time       // Конец интервала (полуоткрытый [StartsAt, EndsAt))
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID       int64
	AreaID   int64
	CondoID  int64
	UnitID   int64
	UserID   int64
	Status   string
	StartsAt time.Time
	EndsAt   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// fromDomainItem конвертирует запись календаря в response
func fromDomainItem(item *domain.CalendarItem) *Response {
	resp := &Response{
		ID:        item.ID,
		AreaID:    item.AreaID,
		CondoID:   item.CondoID,
		Status:    string(item.Status),
		StartsAt:  item.StartsAt,
		EndsAt:    item.EndsAt,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if item.UnitID != nil {
		resp.UnitID = *item.UnitID
	}
	if item.UserID != nil {
		resp.UserID = *item.UserID
	}
	return resp
}
