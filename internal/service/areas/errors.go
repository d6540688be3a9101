package areas

import "errors"

var (
	// ErrAreaNotFound возвращается, когда объект не найден
	ErrAreaNotFound = errors.New("area not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrHasFutureBookings возвращается при отключении объекта с будущими
	// бронированиями без force
	ErrHasFutureBookings = errors.New("area has future bookings")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
