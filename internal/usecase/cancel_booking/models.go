package cancel_booking

import (
	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// Request модель запроса на отмену бронирования
type Request struct {
	ItemID int64
	Actor  domain.Identity

	// Обоснование отмены; обязательно для управляющего после срока отмены
	Justification *string
}

// Response модель ответа с итоговым статусом
type Response struct {
	ID     int64
	Status string
}
