package request_booking

import (
	"fmt"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// validateRequest валидирует входные данные запроса
// Правила объекта проверяются позже, внутри критической секции планировщика
func validateRequest(req *Request) error {
	if req.AreaID <= 0 {
		return fmt.Errorf("%w: areaID must be positive", ErrInvalidInput)
	}

	if req.Actor.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.Actor.CondoID <= 0 {
		return fmt.Errorf("%w: condoID must be positive", ErrInvalidInput)
	}

	// Бронирование всегда привязано к квартире
	if req.Actor.UnitID == nil || *req.Actor.UnitID <= 0 {
		return fmt.Errorf("%w: unitID is required for booking", ErrInvalidInput)
	}

	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return fmt.Errorf("%w: startsAt and endsAt are required", ErrInvalidInput)
	}

	if !req.StartsAt.Before(req.EndsAt) {
		return fmt.Errorf("%w: startsAt must be before endsAt", ErrInvalidInput)
	}

	// Право на создание заявки
	if err := domain.CheckTransition(req.Actor.Role, domain.StatusCreated, domain.StatusPending); err != nil {
		return err
	}

	return nil
}
