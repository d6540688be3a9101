package domain

import "time"

// Overlaps проверяет пересечение двух полуоткрытых интервалов [s1, e1) и [s2, e2)
// Интервалы, соприкасающиеся границами (один заканчивается ровно там, где
// начинается другой), пересечением НЕ считаются
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// TimeRange занятый интервал времени
// Используется в ответах о конфликтах: раскрывает только время, но не личность
// заявителя пересекающейся записи
type TimeRange struct {
	StartsAt time.Time
	EndsAt   time.Time
}

// FindConflicts возвращает записи, пересекающиеся с интервалом [startsAt, endsAt)
// Учитываются только записи, занимающие время в календаре; запись с excludeID
// пропускается (для перепроверки при редактировании самой записи)
func FindConflicts(items []*CalendarItem, startsAt, endsAt time.Time, excludeID int64) []*CalendarItem {
	conflicts := make([]*CalendarItem, 0)

	for _, item := range items {
		if item.ID == excludeID {
			continue
		}
		if !item.OccupiesCalendar() {
			continue
		}
		if Overlaps(item.StartsAt, item.EndsAt, startsAt, endsAt) {
			conflicts = append(conflicts, item)
		}
	}

	return conflicts
}

// ConflictRanges проецирует конфликтующие записи в список занятых интервалов
func ConflictRanges(conflicts []*CalendarItem) []TimeRange {
	ranges := make([]TimeRange, len(conflicts))
	for i, item := range conflicts {
		ranges[i] = TimeRange{StartsAt: item.StartsAt, EndsAt: item.EndsAt}
	}
	return ranges
}
