package domain

import (
	"time"

	"github.com/m04kA/SMC-AmenityService/pkg/types"
)

// CommonArea общая зона кондоминиума, доступная для бронирования
// Правила использования задаются управляющим и применяются только к новым заявкам:
// изменение правил не затрагивает уже созданные бронирования
type CommonArea struct {
	ID      int64
	CondoID int64
	Name    string

	Capacity int

	OpensAt  types.TimeString
	ClosesAt types.TimeString

	MinDurationMinutes int
	MaxDurationMinutes int

	// Минимальное время до начала бронирования (например, не позднее чем за 2 часа)
	MinNoticeMinutes int
	// Максимальный горизонт бронирования в днях; 0 = без ограничения
	MaxAdvanceDays int

	// Дни недели, в которые объект недоступен для бронирования
	BlackoutWeekdays []time.Weekday

	// Лимит активных бронирований на квартиру в календарном месяце; 0 = без ограничения
	MonthlyQuotaPerUnit int

	// Политика жизненного цикла
	AutoApprove bool
	AutoConfirm bool
	// За сколько минут до начала житель ещё может сам отменить подтверждённое бронирование
	CancelCutoffMinutes int

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBlackedOut возвращает true, если день недели закрыт для бронирования
func (a *CommonArea) IsBlackedOut(weekday time.Weekday) bool {
	for _, w := range a.BlackoutWeekdays {
		if w == weekday {
			return true
		}
	}
	return false
}

// HasAdvanceLimit возвращает true, если задан горизонт бронирования
func (a *CommonArea) HasAdvanceLimit() bool {
	return a.MaxAdvanceDays > 0
}

// HasQuota возвращает true, если задан лимит бронирований на квартиру
func (a *CommonArea) HasQuota() bool {
	return a.MonthlyQuotaPerUnit > 0
}

// InitialReservationStatus статус, с которым создается новое бронирование
// согласно политике объекта
func (a *CommonArea) InitialReservationStatus() ItemStatus {
	if !a.AutoApprove {
		return StatusPending
	}
	if a.AutoConfirm {
		return StatusConfirmed
	}
	return StatusApproved
}
