package build_agenda

import (
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// Occupancy индикатор занятости дня
type Occupancy string

const (
	// OccupancyAvailable день полностью свободен
	OccupancyAvailable Occupancy = "available"
	// OccupancyPartial часть рабочего окна занята
	OccupancyPartial Occupancy = "partial"
	// OccupancyFull рабочие окна всех объектов в выборке заняты целиком
	OccupancyFull Occupancy = "full"
)

// Request модель запроса повестки за месяц
type Request struct {
	CondoID int64
	Month   string // YYYY-MM
	Actor   domain.Identity

	// Необязательные фильтры
	AreaID          *int64
	IncludeInactive bool // Включать записи в конечных статусах (история)
}

// AgendaEntry одна запись повестки: бронирование или блок обслуживания
// Личность заявителя раскрывается управляющему и самому заявителю
type AgendaEntry struct {
	ItemID   int64
	AreaID   int64
	AreaName string
	Kind     string
	Status   string
	StartsAt time.Time
	EndsAt   time.Time

	UnitID *int64
	UserID *int64
}

// DaySummary занятость одного дня месяца
type DaySummary struct {
	Day       int // День месяца, 1..31
	Occupancy Occupancy
}

// Response повестка месяца: записи в хронологическом порядке и сводка по дням
type Response struct {
	Month   string
	Entries []AgendaEntry
	Days    []DaySummary
}
