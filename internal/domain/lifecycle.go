package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrIllegalTransition возвращается при недопустимом переходе статуса
	ErrIllegalTransition = errors.New("domain: illegal status transition")

	// ErrActorNotAllowed возвращается, когда роль не вправе выполнить переход
	ErrActorNotAllowed = errors.New("domain: actor is not allowed to perform this transition")
)

// transitionKey переход статуса
type transitionKey struct {
	From ItemStatus
	To   ItemStatus
}

// StatusCreated псевдостатус "до создания" для записи перехода создания
const StatusCreated ItemStatus = ""

// transitionPolicy таблица (переход → допустимые роли)
// Единственное место, где закреплены и граф переходов, и права на них
var transitionPolicy = map[transitionKey][]Role{
	// Создание
	{StatusCreated, StatusPending}:     {RoleResident, RoleManager},
	{StatusCreated, StatusBlockActive}: {RoleManager},

	// Решение по заявке: управляющий, либо система при политике auto_approve
	{StatusPending, StatusApproved}: {RoleManager, RoleSystem},
	{StatusPending, StatusRejected}: {RoleManager},

	// Подтверждение одобренного бронирования
	{StatusApproved, StatusConfirmed}: {RoleResident, RoleManager, RoleSystem},

	// Отмена до завершения
	{StatusPending, StatusCancelled}:   {RoleResident, RoleManager},
	{StatusApproved, StatusCancelled}:  {RoleResident, RoleManager},
	{StatusConfirmed, StatusCancelled}: {RoleResident, RoleManager},

	// Завершение наступает только по прошествии времени окончания
	{StatusConfirmed, StatusCompleted}: {RoleSystem},

	// Жизненный цикл блока обслуживания
	{StatusBlockActive, StatusBlockClosed}: {RoleManager},
}

// CheckTransition проверяет допустимость перехода from → to для роли
// Возвращает ErrIllegalTransition для несуществующего перехода и
// ErrActorNotAllowed, когда переход существует, но роль не вправе его выполнить
func CheckTransition(role Role, from, to ItemStatus) error {
	roles, ok := transitionPolicy[transitionKey{From: from, To: to}]
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, statusLabel(from), to)
	}

	for _, r := range roles {
		if r == role {
			return nil
		}
	}
	return fmt.Errorf("%w: role=%s, transition=%s -> %s", ErrActorNotAllowed, role, statusLabel(from), to)
}

func statusLabel(s ItemStatus) string {
	if s == StatusCreated {
		return "(created)"
	}
	return string(s)
}

// ItemTransition запись перехода статуса для истории и разбора споров
type ItemTransition struct {
	ID     int64
	ItemID int64

	FromStatus ItemStatus
	ToStatus   ItemStatus

	// Нулевой для системных переходов
	ActorUserID *int64
	ActorRole   Role

	Reason *string

	CreatedAt time.Time
}
