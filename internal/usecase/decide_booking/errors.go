package decide_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("decide_booking: invalid input data")

	// ErrItemNotFound возвращается, когда заявка не найдена
	ErrItemNotFound = errors.New("decide_booking: booking not found")

	// ErrNotReservation возвращается при попытке решения по блоку обслуживания
	ErrNotReservation = errors.New("decide_booking: item is not a reservation")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на решение
	ErrAccessDenied = errors.New("decide_booking: access denied")

	// ErrReasonRequired возвращается при отклонении без указания причины
	ErrReasonRequired = errors.New("decide_booking: rejection reason is required")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("decide_booking: internal error")
)
