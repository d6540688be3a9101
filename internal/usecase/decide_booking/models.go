package decide_booking

import (
	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// Decision решение управляющего по заявке
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Request модель запроса на решение по заявке
type Request struct {
	ItemID   int64
	Decision Decision
	Reason   *string // Обязателен при отклонении
	Actor    domain.Identity
}

// Response модель ответа с итоговым статусом
type Response struct {
	ID     int64
	Status string
}
