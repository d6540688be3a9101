package domain

import "time"

// ItemKind тип записи календаря
type ItemKind string

const (
	KindReservation      ItemKind = "reservation"
	KindMaintenanceBlock ItemKind = "maintenance_block"
)

// ItemStatus статус записи календаря
// Бронирования проходят жизненный цикл pending → approved → confirmed → completed,
// блоки обслуживания живут в паре active → closed
type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusApproved  ItemStatus = "approved"
	StatusConfirmed ItemStatus = "confirmed"
	StatusCompleted ItemStatus = "completed"
	StatusRejected  ItemStatus = "rejected"
	StatusCancelled ItemStatus = "cancelled"

	StatusBlockActive ItemStatus = "active"
	StatusBlockClosed ItemStatus = "closed"
)

// CalendarItem запись календаря объекта: бронирование или блок обслуживания
// Занимает полуоткрытый интервал [StartsAt, EndsAt); записи никогда не удаляются физически
type CalendarItem struct {
	ID      int64
	AreaID  int64
	CondoID int64

	// Нулевые для блоков обслуживания (их создает управляющий от имени системы)
	UnitID *int64
	UserID *int64

	Kind     ItemKind
	Status   ItemStatus
	StartsAt time.Time
	EndsAt   time.Time

	CancellationReason *string
	RejectionReason    *string
	BlockReason        *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesCalendar возвращает true, если запись занимает время в календаре
// Только такие записи участвуют в проверке пересечений
func (i *CalendarItem) OccupiesCalendar() bool {
	switch i.Status {
	case StatusPending, StatusApproved, StatusConfirmed, StatusBlockActive:
		return true
	default:
		return false
	}
}

// IsTerminal возвращает true, если статус конечный
func (i *CalendarItem) IsTerminal() bool {
	switch i.Status {
	case StatusCompleted, StatusRejected, StatusCancelled, StatusBlockClosed:
		return true
	default:
		return false
	}
}

// IsOwnedBy возвращает true, если бронирование принадлежит пользователю
func (i *CalendarItem) IsOwnedBy(userID int64) bool {
	return i.UserID != nil && *i.UserID == userID
}

// CondoItemsFilter фильтр записей календаря кондоминиума
type CondoItemsFilter struct {
	CondoID         int64       // Обязательный параметр
	AreaID          *int64      // Фильтр по объекту (опционально)
	UnitID          *int64      // Фильтр по квартире (опционально)
	From            *time.Time  // Начало периода (пересечение, опционально)
	To              *time.Time  // Конец периода (пересечение, опционально)
	Status          *ItemStatus // Фильтр по статусу (опционально)
	IncludeInactive bool        // Включать ли записи в конечных статусах
}
