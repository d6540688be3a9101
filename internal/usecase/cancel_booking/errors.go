package cancel_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_booking: invalid input data")

	// ErrItemNotFound возвращается, когда бронирование не найдено
	ErrItemNotFound = errors.New("cancel_booking: booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на отмену
	ErrAccessDenied = errors.New("cancel_booking: access denied")

	// ErrPastCutoff возвращается, когда житель пытается отменить подтверждённое
	// бронирование позже разрешённого срока; отменить может только управляющий
	ErrPastCutoff = errors.New("cancel_booking: cancellation window has closed")

	// ErrJustificationRequired возвращается, когда управляющий отменяет
	// подтверждённое бронирование после срока без обоснования
	ErrJustificationRequired = errors.New("cancel_booking: justification is required")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_booking: internal error")
)
