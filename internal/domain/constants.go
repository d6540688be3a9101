package domain

// Значения по умолчанию для правил объекта
const (
	DefaultMinDurationMinutes  = 30
	DefaultMaxDurationMinutes  = 240
	DefaultMinNoticeMinutes    = 120
	DefaultMaxAdvanceDays      = 90
	DefaultCancelCutoffMinutes = 24 * 60
)

// Границы валидации правил объекта
const (
	MinDurationLimitMinutes = 15
	MaxDurationLimitMinutes = 24 * 60
	MaxNoticeLimitMinutes   = 30 * 24 * 60
	MaxAdvanceLimitDays     = 365
	MaxNameLength           = 200
	MaxReasonLength         = 500
)

// Форматы даты и времени
const (
	TimeFormat  = "15:04"      // HH:MM
	DateFormat  = "2006-01-02" // YYYY-MM-DD
	MonthFormat = "2006-01"    // YYYY-MM
)

// OccupyingStatuses статусы, занимающие время в календаре
// Используются для фильтрации при проверке пересечений и подсчёте квоты
var OccupyingStatuses = []ItemStatus{
	StatusPending,
	StatusApproved,
	StatusConfirmed,
	StatusBlockActive,
}

// TerminalStatuses конечные статусы записей календаря
var TerminalStatuses = []ItemStatus{
	StatusCompleted,
	StatusRejected,
	StatusCancelled,
	StatusBlockClosed,
}
