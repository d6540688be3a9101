package areas

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	areaStorage "github.com/m04kA/SMC-AmenityService/internal/infra/storage/area"
	"github.com/m04kA/SMC-AmenityService/internal/integrations/notifyservice"
)

// --- Фейки зависимостей ---

type fakeAreaRepo struct {
	mu    sync.Mutex
	areas map[int64]*domain.CommonArea
}

func (r *fakeAreaRepo) Create(_ context.Context, area *domain.CommonArea) (*domain.CommonArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	area.ID = int64(len(r.areas) + 1)
	stored := *area
	r.areas[area.ID] = &stored
	return area, nil
}

func (r *fakeAreaRepo) GetByID(_ context.Context, id int64) (*domain.CommonArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	area, ok := r.areas[id]
	if !ok {
		return nil, areaStorage.ErrAreaNotFound
	}
	copied := *area
	return &copied, nil
}

func (r *fakeAreaRepo) ListByCondo(_ context.Context, condoID int64, includeInactive bool) ([]*domain.CommonArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.CommonArea
	for _, area := range r.areas {
		if area.CondoID != condoID {
			continue
		}
		if !area.Active && !includeInactive {
			continue
		}
		copied := *area
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeAreaRepo) Update(_ context.Context, area *domain.CommonArea) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.areas[area.ID]; !ok {
		return areaStorage.ErrAreaNotFound
	}
	stored := *area
	r.areas[area.ID] = &stored
	return nil
}

func (r *fakeAreaRepo) SetActive(_ context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	area, ok := r.areas[id]
	if !ok {
		return areaStorage.ErrAreaNotFound
	}
	area.Active = active
	return nil
}

type fakeItemRepo struct {
	mu    sync.Mutex
	items map[int64]*domain.CalendarItem
}

func (r *fakeItemRepo) ListFutureOccupying(_ context.Context, areaID int64, after time.Time) ([]*domain.CalendarItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.CalendarItem
	for _, item := range r.items {
		if item.AreaID != areaID || !item.OccupiesCalendar() || !item.EndsAt.After(after) {
			continue
		}
		copied := *item
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeItemRepo) Cancel(_ context.Context, id int64, reason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[id]
	item.Status = domain.StatusCancelled
	item.CancellationReason = reason
	return nil
}

func (r *fakeItemRepo) snapshot() map[int64]*domain.CalendarItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make(map[int64]*domain.CalendarItem, len(r.items))
	for id, item := range r.items {
		c := *item
		copied[id] = &c
	}
	return copied
}

func (r *fakeItemRepo) restore(items map[int64]*domain.CalendarItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = items
}

type fakeTransitionRepo struct {
	mu          sync.Mutex
	transitions []*domain.ItemTransition
}

func (r *fakeTransitionRepo) Create(_ context.Context, t *domain.ItemTransition) (*domain.ItemTransition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *t
	stored.ID = int64(len(r.transitions) + 1)
	r.transitions = append(r.transitions, &stored)
	return &stored, nil
}

type passthroughScheduler struct{}

func (passthroughScheduler) Execute(ctx context.Context, _ int64, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Планировщик, воспроизводящий повтор сериализуемой транзакции:
// первая попытка откатывается, вторая выполняется заново с исходным состоянием
type retryingScheduler struct {
	items *fakeItemRepo
}

func (s retryingScheduler) Execute(ctx context.Context, _ int64, fn func(ctx context.Context) error) error {
	snapshot := s.items.snapshot()
	if err := fn(ctx); err != nil {
		return err
	}
	s.items.restore(snapshot)
	return fn(ctx)
}

type fakeNotifyClient struct {
	mu    sync.Mutex
	calls []string
}

func (c *fakeNotifyClient) Notify(_ context.Context, _ notifyservice.RecipientSelector, event, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, event)
	return nil
}

type fixedTimeProvider struct{ now time.Time }

func (p fixedTimeProvider) Now() time.Time { return p.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- Обвязка ---

var deactivateNow = time.Date(2026, time.September, 10, 12, 0, 0, 0, time.UTC)

func newDeactivateFixture(sched Scheduler, areas *fakeAreaRepo, items *fakeItemRepo) (*Service, *fakeTransitionRepo, *fakeNotifyClient) {
	transitions := &fakeTransitionRepo{}
	notify := &fakeNotifyClient{}
	svc := NewService(areas, items, transitions, sched, notify, nopLogger{})
	svc.timeProvider = fixedTimeProvider{now: deactivateNow}
	return svc, transitions, notify
}

func poolArea() *fakeAreaRepo {
	return &fakeAreaRepo{areas: map[int64]*domain.CommonArea{
		1: {ID: 1, CondoID: 100, Name: "Pool", Active: true},
	}}
}

func futureReservation(id int64, hoursAhead int) *domain.CalendarItem {
	unitID := int64(7)
	userID := int64(42)
	return &domain.CalendarItem{
		ID: id, AreaID: 1, CondoID: 100,
		UnitID: &unitID, UserID: &userID,
		Kind: domain.KindReservation, Status: domain.StatusConfirmed,
		StartsAt: deactivateNow.Add(time.Duration(hoursAhead) * time.Hour),
		EndsAt:   deactivateNow.Add(time.Duration(hoursAhead+1) * time.Hour),
	}
}

func manager() domain.Identity {
	return domain.Identity{UserID: 1, CondoID: 100, Role: domain.RoleManager}
}

// --- Тесты ---

func TestDeactivateRefusesFutureBookingsWithoutForce(t *testing.T) {
	areas := poolArea()
	items := &fakeItemRepo{items: map[int64]*domain.CalendarItem{
		10: futureReservation(10, 2),
	}}
	svc, _, _ := newDeactivateFixture(passthroughScheduler{}, areas, items)

	err := svc.Deactivate(context.Background(), manager(), 1, false)
	require.ErrorIs(t, err, ErrHasFutureBookings)

	assert.True(t, areas.areas[1].Active)
	assert.Equal(t, domain.StatusConfirmed, items.items[10].Status)
}

func TestDeactivateForceCascadesCancellation(t *testing.T) {
	areas := poolArea()
	items := &fakeItemRepo{items: map[int64]*domain.CalendarItem{
		10: futureReservation(10, 2),
		11: futureReservation(11, 5),
	}}
	svc, transitions, notify := newDeactivateFixture(passthroughScheduler{}, areas, items)

	err := svc.Deactivate(context.Background(), manager(), 1, true)
	require.NoError(t, err)

	assert.False(t, areas.areas[1].Active)
	assert.Equal(t, domain.StatusCancelled, items.items[10].Status)
	assert.Equal(t, domain.StatusCancelled, items.items[11].Status)
	assert.Len(t, transitions.transitions, 2)
	assert.Equal(t, []string{
		notifyservice.EventBookingCancelled,
		notifyservice.EventBookingCancelled,
	}, notify.calls)
}

func TestDeactivateNotDuplicatedOnRetry(t *testing.T) {
	areas := poolArea()
	items := &fakeItemRepo{items: map[int64]*domain.CalendarItem{
		10: futureReservation(10, 2),
	}}
	svc, _, notify := newDeactivateFixture(retryingScheduler{items: items}, areas, items)

	err := svc.Deactivate(context.Background(), manager(), 1, true)
	require.NoError(t, err)

	// Транзакция выполнилась дважды, но заявитель уведомлен один раз
	assert.Equal(t, []string{notifyservice.EventBookingCancelled}, notify.calls)
}

func TestDeactivateAccessControl(t *testing.T) {
	areas := poolArea()
	items := &fakeItemRepo{items: map[int64]*domain.CalendarItem{}}
	svc, _, _ := newDeactivateFixture(passthroughScheduler{}, areas, items)

	t.Run("resident denied", func(t *testing.T) {
		unitID := int64(7)
		resident := domain.Identity{UserID: 42, UnitID: &unitID, CondoID: 100, Role: domain.RoleResident}
		err := svc.Deactivate(context.Background(), resident, 1, false)
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("manager of another condo", func(t *testing.T) {
		other := domain.Identity{UserID: 2, CondoID: 200, Role: domain.RoleManager}
		err := svc.Deactivate(context.Background(), other, 1, false)
		require.ErrorIs(t, err, ErrAreaNotFound)
	})
}
