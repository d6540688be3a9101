package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		name  string
		role  domain.Role
		from  domain.ItemStatus
		to    domain.ItemStatus
		errIs error
	}{
		// Создание
		{name: "resident creates pending", role: domain.RoleResident, from: domain.StatusCreated, to: domain.StatusPending},
		{name: "manager creates pending", role: domain.RoleManager, from: domain.StatusCreated, to: domain.StatusPending},
		{name: "manager places block", role: domain.RoleManager, from: domain.StatusCreated, to: domain.StatusBlockActive},
		{name: "resident cannot place block", role: domain.RoleResident, from: domain.StatusCreated, to: domain.StatusBlockActive, errIs: domain.ErrActorNotAllowed},

		// Решение по заявке
		{name: "manager approves", role: domain.RoleManager, from: domain.StatusPending, to: domain.StatusApproved},
		{name: "system auto-approves", role: domain.RoleSystem, from: domain.StatusPending, to: domain.StatusApproved},
		{name: "resident cannot approve", role: domain.RoleResident, from: domain.StatusPending, to: domain.StatusApproved, errIs: domain.ErrActorNotAllowed},
		{name: "manager rejects", role: domain.RoleManager, from: domain.StatusPending, to: domain.StatusRejected},
		{name: "system cannot reject", role: domain.RoleSystem, from: domain.StatusPending, to: domain.StatusRejected, errIs: domain.ErrActorNotAllowed},

		// Подтверждение
		{name: "resident confirms", role: domain.RoleResident, from: domain.StatusApproved, to: domain.StatusConfirmed},
		{name: "system auto-confirms", role: domain.RoleSystem, from: domain.StatusApproved, to: domain.StatusConfirmed},

		// Отмена
		{name: "resident cancels pending", role: domain.RoleResident, from: domain.StatusPending, to: domain.StatusCancelled},
		{name: "resident cancels confirmed", role: domain.RoleResident, from: domain.StatusConfirmed, to: domain.StatusCancelled},
		{name: "manager cancels approved", role: domain.RoleManager, from: domain.StatusApproved, to: domain.StatusCancelled},
		{name: "system cannot cancel", role: domain.RoleSystem, from: domain.StatusConfirmed, to: domain.StatusCancelled, errIs: domain.ErrActorNotAllowed},

		// Завершение
		{name: "system completes confirmed", role: domain.RoleSystem, from: domain.StatusConfirmed, to: domain.StatusCompleted},
		{name: "manager cannot complete", role: domain.RoleManager, from: domain.StatusConfirmed, to: domain.StatusCompleted, errIs: domain.ErrActorNotAllowed},

		// Блоки обслуживания
		{name: "manager closes block", role: domain.RoleManager, from: domain.StatusBlockActive, to: domain.StatusBlockClosed},
		{name: "resident cannot close block", role: domain.RoleResident, from: domain.StatusBlockActive, to: domain.StatusBlockClosed, errIs: domain.ErrActorNotAllowed},

		// Несуществующие переходы
		{name: "cannot skip approval", role: domain.RoleManager, from: domain.StatusPending, to: domain.StatusConfirmed, errIs: domain.ErrIllegalTransition},
		{name: "cannot resurrect cancelled", role: domain.RoleManager, from: domain.StatusCancelled, to: domain.StatusConfirmed, errIs: domain.ErrIllegalTransition},
		{name: "cannot complete pending", role: domain.RoleSystem, from: domain.StatusPending, to: domain.StatusCompleted, errIs: domain.ErrIllegalTransition},
		{name: "cannot reopen completed", role: domain.RoleManager, from: domain.StatusCompleted, to: domain.StatusConfirmed, errIs: domain.ErrIllegalTransition},
		{name: "cannot reopen closed block", role: domain.RoleManager, from: domain.StatusBlockClosed, to: domain.StatusBlockActive, errIs: domain.ErrIllegalTransition},
		{name: "block cannot become reservation", role: domain.RoleManager, from: domain.StatusBlockActive, to: domain.StatusCancelled, errIs: domain.ErrIllegalTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := domain.CheckTransition(tc.role, tc.from, tc.to)
			if tc.errIs == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.errIs)
		})
	}
}

func TestItemStatusHelpers(t *testing.T) {
	occupying := map[domain.ItemStatus]bool{
		domain.StatusPending:     true,
		domain.StatusApproved:    true,
		domain.StatusConfirmed:   true,
		domain.StatusBlockActive: true,
	}

	all := []domain.ItemStatus{
		domain.StatusPending, domain.StatusApproved, domain.StatusConfirmed,
		domain.StatusCompleted, domain.StatusRejected, domain.StatusCancelled,
		domain.StatusBlockActive, domain.StatusBlockClosed,
	}

	for _, status := range all {
		item := &domain.CalendarItem{Status: status}
		assert.Equal(t, occupying[status], item.OccupiesCalendar(), "status %s", status)
		assert.Equal(t, !occupying[status], item.IsTerminal(), "status %s", status)
	}
}

func TestItemIsOwnedBy(t *testing.T) {
	userID := int64(42)

	item := &domain.CalendarItem{UserID: &userID}
	assert.True(t, item.IsOwnedBy(42))
	assert.False(t, item.IsOwnedBy(43))

	block := &domain.CalendarItem{}
	assert.False(t, block.IsOwnedBy(42))
}
