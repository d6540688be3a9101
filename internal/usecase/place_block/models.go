package place_block

import (
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// Request модель запроса на установку блока обслуживания
type Request struct {
	AreaID   int64
	StartsAt time.Time
	EndsAt   time.Time
	Reason   string
	Actor    domain.Identity

	// Force разрешает каскадную отмену пересекающихся бронирований
	Force bool
}

// Response модель ответа: созданный блок и отменённые бронирования
type Response struct {
	ID               int64
	Status           string
	CancelledItemIDs []int64
}
