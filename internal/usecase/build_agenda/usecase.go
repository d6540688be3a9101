package build_agenda

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// UseCase use case построения повестки месяца
// Только чтение: повестка проецирует снимок календаря и никогда его не меняет
// Допустимо отставание на несколько секунд, поэтому ответы кэшируются
type UseCase struct {
	itemRepo ItemRepository
	areaRepo AreaRepository
	cache    *agendaCache
	logger   Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	itemRepo ItemRepository,
	areaRepo AreaRepository,
	cacheTTL time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		itemRepo: itemRepo,
		areaRepo: areaRepo,
		cache:    newAgendaCache(cacheTTL, 0, nil),
		logger:   logger,
	}
}

// InvalidateArea сбрасывает кэшированные повестки объекта
// Вызывается планировщиком после каждой зафиксированной записи
func (uc *UseCase) InvalidateArea(areaID int64) {
	uc.cache.InvalidateArea(areaID)
}

// InvalidateAll сбрасывает весь кэш повесток (изменение правил объекта)
func (uc *UseCase) InvalidateAll() {
	uc.cache.InvalidateAll()
}

// Execute выполняет use case построения повестки
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	monthStart, err := parseMonth(req.Month)
	if err != nil {
		return nil, err
	}
	if req.CondoID <= 0 {
		return nil, fmt.Errorf("%w: condoID must be positive", ErrInvalidInput)
	}
	if req.AreaID != nil && *req.AreaID <= 0 {
		return nil, fmt.Errorf("%w: areaID must be positive", ErrInvalidInput)
	}

	// 2. Кэш: ключ включает роль и пользователя, ответы различаются по видимости
	key := buildCacheKey(req)
	if cached, ok := uc.cache.Get(key); ok {
		return cached, nil
	}

	monthEnd := monthStart.AddDate(0, 1, 0)

	// 3. Объекты кондоминиума: имена и рабочие окна для сводки по дням
	areas, err := uc.areaRepo.ListByCondo(ctx, req.CondoID, true)
	if err != nil {
		uc.logger.Error("BuildAgenda: failed to list areas for condo=%d: %v", req.CondoID, err)
		return nil, fmt.Errorf("%w: failed to list areas: %w", ErrInternal, err)
	}

	areaNames := make(map[int64]string, len(areas))
	for _, a := range areas {
		areaNames[a.ID] = a.Name
	}

	// 4. Записи, пересекающие месяц
	items, err := uc.itemRepo.ListWithFilter(ctx, domain.CondoItemsFilter{
		CondoID:         req.CondoID,
		AreaID:          req.AreaID,
		From:            &monthStart,
		To:              &monthEnd,
		IncludeInactive: req.IncludeInactive,
	})
	if err != nil {
		uc.logger.Error("BuildAgenda: failed to list items for condo=%d: %v", req.CondoID, err)
		return nil, fmt.Errorf("%w: failed to list items: %w", ErrInternal, err)
	}

	scoped := scopeAreas(areas, req.AreaID)

	resp := &Response{
		Month:   req.Month,
		Entries: uc.buildEntries(items, areaNames, req.Actor),
		Days:    buildDaySummaries(monthStart, monthEnd, items, scoped),
	}

	// Кэш помечается всем охватом повестки: запись любого из этих объектов
	// делает её устаревшей, даже если сейчас он показан свободным
	scopedIDs := make([]int64, 0, len(scoped))
	for _, a := range scoped {
		scopedIDs = append(scopedIDs, a.ID)
	}
	uc.cache.Store(key, resp, scopedIDs)
	return resp, nil
}

// buildEntries проецирует записи календаря в повестку
// Личность заявителя видят управляющий и сам заявитель; остальным
// запись показывается обезличенной
func (uc *UseCase) buildEntries(items []*domain.CalendarItem, areaNames map[int64]string, actor domain.Identity) []AgendaEntry {
	entries := make([]AgendaEntry, 0, len(items))

	for _, item := range items {
		entry := AgendaEntry{
			ItemID:   item.ID,
			AreaID:   item.AreaID,
			AreaName: areaNames[item.AreaID],
			Kind:     string(item.Kind),
			Status:   string(item.Status),
			StartsAt: item.StartsAt,
			EndsAt:   item.EndsAt,
		}

		if actor.IsManager() || item.IsOwnedBy(actor.UserID) {
			entry.UnitID = item.UnitID
			entry.UserID = item.UserID
		}

		entries = append(entries, entry)
	}

	return entries
}

// scopeAreas оставляет активные объекты, участвующие в сводке занятости
func scopeAreas(areas []*domain.CommonArea, areaID *int64) []*domain.CommonArea {
	scoped := make([]*domain.CommonArea, 0, len(areas))
	for _, a := range areas {
		if !a.Active {
			continue
		}
		if areaID != nil && a.ID != *areaID {
			continue
		}
		scoped = append(scoped, a)
	}
	return scoped
}

// buildDaySummaries считает занятость каждого дня месяца
// День свободен, если ни одна занимающая запись его не касается; занят
// целиком, если рабочие окна всех объектов выборки покрыты без просветов
func buildDaySummaries(monthStart, monthEnd time.Time, items []*domain.CalendarItem, areas []*domain.CommonArea) []DaySummary {
	// Только занимающие записи, сгруппированные по объекту
	occupying := make(map[int64][]*domain.CalendarItem)
	for _, item := range items {
		if item.OccupiesCalendar() {
			occupying[item.AreaID] = append(occupying[item.AreaID], item)
		}
	}

	var days []DaySummary
	for dayStart := monthStart; dayStart.Before(monthEnd); dayStart = dayStart.AddDate(0, 0, 1) {
		days = append(days, DaySummary{
			Day:       dayStart.Day(),
			Occupancy: dayOccupancy(dayStart, occupying, areas),
		})
	}
	return days
}

func dayOccupancy(dayStart time.Time, occupying map[int64][]*domain.CalendarItem, areas []*domain.CommonArea) Occupancy {
	anyBusy := false
	allFull := len(areas) > 0

	for _, area := range areas {
		opensMin, err := area.OpensAt.Minutes()
		if err != nil {
			continue
		}
		closesMin, err := area.ClosesAt.Minutes()
		if err != nil || closesMin <= opensMin {
			continue
		}

		windowStart := dayStart.Add(time.Duration(opensMin) * time.Minute)
		windowEnd := dayStart.Add(time.Duration(closesMin) * time.Minute)

		busy := busyMinutes(occupying[area.ID], windowStart, windowEnd)
		if busy > 0 {
			anyBusy = true
		}
		if busy < windowEnd.Sub(windowStart) {
			allFull = false
		}
	}

	switch {
	case !anyBusy:
		return OccupancyAvailable
	case allFull:
		return OccupancyFull
	default:
		return OccupancyPartial
	}
}

// busyMinutes считает суммарную занятость рабочего окна с учетом пересечений
// Интервалы обрезаются до окна и сливаются, двойной счёт исключен
func busyMinutes(items []*domain.CalendarItem, windowStart, windowEnd time.Time) time.Duration {
	type interval struct {
		start, end time.Time
	}

	clipped := make([]interval, 0, len(items))
	for _, item := range items {
		start, end := item.StartsAt, item.EndsAt
		if start.Before(windowStart) {
			start = windowStart
		}
		if end.After(windowEnd) {
			end = windowEnd
		}
		if start.Before(end) {
			clipped = append(clipped, interval{start, end})
		}
	}

	if len(clipped) == 0 {
		return 0
	}

	sort.Slice(clipped, func(i, j int) bool {
		return clipped[i].start.Before(clipped[j].start)
	})

	var total time.Duration
	current := clipped[0]
	for _, iv := range clipped[1:] {
		if iv.start.After(current.end) {
			total += current.end.Sub(current.start)
			current = iv
			continue
		}
		if iv.end.After(current.end) {
			current.end = iv.end
		}
	}
	total += current.end.Sub(current.start)

	return total
}

// parseMonth разбирает месяц в формате YYYY-MM
func parseMonth(month string) (time.Time, error) {
	t, err := time.Parse(domain.MonthFormat, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month must be in YYYY-MM format", ErrInvalidInput)
	}
	return t, nil
}
