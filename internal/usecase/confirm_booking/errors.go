package confirm_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("confirm_booking: invalid input data")

	// ErrItemNotFound возвращается, когда бронирование не найдено
	ErrItemNotFound = errors.New("confirm_booking: booking not found")

	// ErrAccessDenied возвращается, когда бронирование принадлежит другому жителю
	ErrAccessDenied = errors.New("confirm_booking: access denied")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("confirm_booking: internal error")
)
