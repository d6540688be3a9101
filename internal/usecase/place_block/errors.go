package place_block

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("place_block: invalid input data")

	// ErrAreaNotFound возвращается, когда объект не найден
	ErrAreaNotFound = errors.New("place_block: area not found")

	// ErrWrongCondo возвращается, когда объект не принадлежит кондоминиуму управляющего
	ErrWrongCondo = errors.New("place_block: area belongs to another condo")

	// ErrBlockOverlap возвращается, когда интервал пересекается с другим
	// активным блоком обслуживания; force на блоки не распространяется
	ErrBlockOverlap = errors.New("place_block: overlaps an active maintenance block")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("place_block: internal error")
)
