package request_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("request_booking: invalid input data")

	// ErrAreaNotFound возвращается, когда общая зона не найдена
	ErrAreaNotFound = errors.New("request_booking: area not found")

	// ErrWrongCondo возвращается, когда зона принадлежит другому кондоминиуму
	ErrWrongCondo = errors.New("request_booking: area belongs to another condominium")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("request_booking: internal error")
)
