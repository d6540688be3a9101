package lift_block

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("lift_block: invalid input data")

	// ErrItemNotFound возвращается, когда блок не найден
	ErrItemNotFound = errors.New("lift_block: block not found")

	// ErrNotBlock возвращается, когда запись не является блоком обслуживания
	ErrNotBlock = errors.New("lift_block: item is not a maintenance block")

	// ErrAccessDenied возвращается, когда блок принадлежит другому кондоминиуму
	ErrAccessDenied = errors.New("lift_block: access denied")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("lift_block: internal error")
)
