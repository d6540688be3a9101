package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRuleViolation возвращается при нарушении правила использования объекта
	// Конкретное правило доступно через RuleError
	ErrRuleViolation = errors.New("domain: booking rule violation")

	// ErrConflict возвращается при пересечении с существующей записью календаря
	// Занятые интервалы доступны через ConflictError
	ErrConflict = errors.New("domain: time range conflict")
)

// Rule код нарушенного правила
// Передается клиенту, чтобы тот мог объяснить пользователю причину отказа
type Rule string

const (
	RuleAreaInactive  Rule = "AreaInactive"
	RuleOpeningHours  Rule = "OpeningHours"
	RuleDuration      Rule = "Duration"
	RuleAdvanceNotice Rule = "AdvanceNotice"
	RuleMaxAdvance    Rule = "MaxAdvance"
	RuleBlackout      Rule = "Blackout"
	RuleQuota         Rule = "Quota"
)

// RuleError нарушение конкретного правила использования объекта
type RuleError struct {
	Rule   Rule
	Detail string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule violation [%s]: %s", e.Rule, e.Detail)
}

// Unwrap позволяет распознавать RuleError через errors.Is(err, ErrRuleViolation)
func (e *RuleError) Unwrap() error {
	return ErrRuleViolation
}

// NewRuleError создает ошибку нарушения правила
func NewRuleError(rule Rule, format string, v ...interface{}) *RuleError {
	return &RuleError{Rule: rule, Detail: fmt.Sprintf(format, v...)}
}

// ConflictError пересечение с существующими записями календаря
// Содержит только занятые интервалы — личность заявителей не раскрывается
type ConflictError struct {
	Ranges []TimeRange
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time range conflicts with %d existing calendar item(s)", len(e.Ranges))
}

// Unwrap позволяет распознавать ConflictError через errors.Is(err, ErrConflict)
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError создает ошибку конфликта из найденных пересечений
func NewConflictError(conflicts []*CalendarItem) *ConflictError {
	return &ConflictError{Ranges: ConflictRanges(conflicts)}
}
