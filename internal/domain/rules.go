package domain

import "time"

// ValidateReservationRules проверяет кандидата на бронирование против правил объекта.
// activeUnitCount — количество активных бронирований квартиры на объекте в
// календарном месяце начала (для квоты). Возвращает RuleError с кодом
// нарушенного правила; правила проверяются в фиксированном порядке, возвращается
// первое нарушение.
//
// Правила применяются только к бронированиям. Блоки обслуживания создаются
// управляющим и ограничены лишь проверкой пересечений.
func ValidateReservationRules(area *CommonArea, startsAt, endsAt, now time.Time, activeUnitCount int) error {
	if !area.Active {
		return NewRuleError(RuleAreaInactive, "area %q is not available for booking", area.Name)
	}

	// Длительность в границах [min, max]
	duration := int(endsAt.Sub(startsAt).Minutes())
	if duration < area.MinDurationMinutes {
		return NewRuleError(RuleDuration, "duration %dm is below minimum %dm", duration, area.MinDurationMinutes)
	}
	if area.MaxDurationMinutes > 0 && duration > area.MaxDurationMinutes {
		return NewRuleError(RuleDuration, "duration %dm exceeds maximum %dm", duration, area.MaxDurationMinutes)
	}

	// Интервал внутри часов работы объекта в день начала
	if err := validateOpeningHours(area, startsAt, endsAt); err != nil {
		return err
	}

	// Минимальное время до начала
	if area.MinNoticeMinutes > 0 {
		earliest := now.Add(time.Duration(area.MinNoticeMinutes) * time.Minute)
		if startsAt.Before(earliest) {
			return NewRuleError(RuleAdvanceNotice, "must book at least %dm in advance", area.MinNoticeMinutes)
		}
	} else if startsAt.Before(now) {
		return NewRuleError(RuleAdvanceNotice, "cannot book in the past")
	}

	// Горизонт бронирования
	if area.HasAdvanceLimit() {
		latest := now.AddDate(0, 0, area.MaxAdvanceDays)
		if startsAt.After(latest) {
			return NewRuleError(RuleMaxAdvance, "can only book up to %d days in advance", area.MaxAdvanceDays)
		}
	}

	// Закрытые дни недели
	if area.IsBlackedOut(startsAt.Weekday()) {
		return NewRuleError(RuleBlackout, "area is closed on %s", startsAt.Weekday())
	}

	// Квота на квартиру в календарном месяце
	if area.HasQuota() && activeUnitCount >= area.MonthlyQuotaPerUnit {
		return NewRuleError(RuleQuota, "unit already holds %d of %d bookings this month",
			activeUnitCount, area.MonthlyQuotaPerUnit)
	}

	return nil
}

// validateOpeningHours проверяет, что интервал лежит внутри часов работы
// Бронирование не может переходить через полночь
func validateOpeningHours(area *CommonArea, startsAt, endsAt time.Time) error {
	opens, err := area.OpensAt.At(startsAt)
	if err != nil {
		return NewRuleError(RuleOpeningHours, "area has invalid opening time %q", area.OpensAt)
	}

	var closes time.Time
	if area.ClosesAt == "24:00" {
		// Полночь следующего дня
		closes = time.Date(startsAt.Year(), startsAt.Month(), startsAt.Day(), 0, 0, 0, 0, startsAt.Location()).AddDate(0, 0, 1)
	} else {
		closes, err = area.ClosesAt.At(startsAt)
		if err != nil {
			return NewRuleError(RuleOpeningHours, "area has invalid closing time %q", area.ClosesAt)
		}
	}

	if startsAt.Before(opens) || endsAt.After(closes) {
		return NewRuleError(RuleOpeningHours, "booking must fit within opening hours %s-%s",
			area.OpensAt, area.ClosesAt)
	}

	return nil
}

// QuotaPeriod границы календарного месяца, в котором начинается бронирование
// Квота считается по бронированиям, начинающимся в этом интервале
func QuotaPeriod(startsAt time.Time) (time.Time, time.Time) {
	from := time.Date(startsAt.Year(), startsAt.Month(), 1, 0, 0, 0, 0, startsAt.Location())
	return from, from.AddDate(0, 1, 0)
}
