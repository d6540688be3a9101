package place_block

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	areaStorage "github.com/m04kA/SMC-AmenityService/internal/infra/storage/area"
	itemStorage "github.com/m04kA/SMC-AmenityService/internal/infra/storage/item"
	"github.com/m04kA/SMC-AmenityService/internal/integrations/notifyservice"
)

// --- Фейки зависимостей ---

type fakeItemRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*domain.CalendarItem
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[int64]*domain.CalendarItem)}
}

func (r *fakeItemRepo) put(item *domain.CalendarItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID > r.nextID {
		r.nextID = item.ID
	}
	r.items[item.ID] = item
}

func (r *fakeItemRepo) Create(_ context.Context, item *domain.CalendarItem) (*domain.CalendarItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	stored := *item
	r.items[item.ID] = &stored
	return item, nil
}

func (r *fakeItemRepo) ListOccupyingInRange(_ context.Context, areaID int64, from, to time.Time) ([]*domain.CalendarItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.CalendarItem
	for _, item := range r.items {
		if item.AreaID != areaID || !item.OccupiesCalendar() {
			continue
		}
		if domain.Overlaps(item.StartsAt, item.EndsAt, from, to) {
			copied := *item
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeItemRepo) Cancel(_ context.Context, id int64, reason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return itemStorage.ErrItemNotFound
	}
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

type fakeAreaRepo struct {
	areas map[int64]*domain.CommonArea
}

func (r *fakeAreaRepo) GetByID(_ context.Context, id int64) (*domain.CommonArea, error) {
	area, ok := r.areas[id]
	if !ok {
		return nil, areaStorage.ErrAreaNotFound
	}
	copied := *area
	return &copied, nil
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

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- Обвязка ---

var blockFrom = time.Date(2026, time.September, 15, 10, 0, 0, 0, time.UTC)

func newFixture() (*UseCase, *fakeItemRepo, *fakeTransitionRepo, *fakeNotifyClient) {
	items := newFakeItemRepo()
	areas := &fakeAreaRepo{areas: map[int64]*domain.CommonArea{
		1: {ID: 1, CondoID: 100, Name: "Pool", Active: true},
	}}
	transitions := &fakeTransitionRepo{}
	notify := &fakeNotifyClient{}
	uc := NewUseCase(items, areas, transitions, passthroughScheduler{}, notify, nopLogger{})
	return uc, items, transitions, notify
}

func managerRequest(force bool) *Request {
	return &Request{
		AreaID:   1,
		StartsAt: blockFrom,
		EndsAt:   blockFrom.Add(4 * time.Hour),
		Reason:   "чистка бассейна",
		Actor:    domain.Identity{UserID: 1, CondoID: 100, Role: domain.RoleManager},
		Force:    force,
	}
}

func reservationAt(id int64, startsAt, endsAt time.Time) *domain.CalendarItem {
	unitID := int64(7)
	userID := int64(42)
	return &domain.CalendarItem{
		ID: id, AreaID: 1, CondoID: 100,
		UnitID: &unitID, UserID: &userID,
		Kind: domain.KindReservation, Status: domain.StatusConfirmed,
		StartsAt: startsAt, EndsAt: endsAt,
	}
}

// --- Тесты ---

func TestPlaceBlockOnFreeRange(t *testing.T) {
	uc, items, transitions, notify := newFixture()

	resp, err := uc.Execute(context.Background(), managerRequest(false))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusBlockActive), resp.Status)
	assert.Empty(t, resp.CancelledItemIDs)

	block := items.items[resp.ID]
	require.NotNil(t, block)
	assert.Equal(t, domain.KindMaintenanceBlock, block.Kind)
	assert.Nil(t, block.UnitID)
	assert.Nil(t, block.UserID)

	require.Len(t, transitions.transitions, 1)
	assert.Equal(t, domain.StatusBlockActive, transitions.transitions[0].ToStatus)

	// Жители кондоминиума узнают о закрытии объекта
	require.Len(t, notify.calls, 1)
	assert.Equal(t, notifyservice.EventBlockPlaced, notify.calls[0])
}

func TestPlaceBlockConflictWithoutForce(t *testing.T) {
	uc, items, _, _ := newFixture()
	items.put(reservationAt(10, blockFrom.Add(time.Hour), blockFrom.Add(2*time.Hour)))

	_, err := uc.Execute(context.Background(), managerRequest(false))
	require.ErrorIs(t, err, domain.ErrConflict)

	var conflictErr *domain.ConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Ranges, 1)

	// Бронирование не тронуто
	assert.Equal(t, domain.StatusConfirmed, items.items[10].Status)
}

func TestPlaceBlockForceCascadesCancellation(t *testing.T) {
	uc, items, transitions, notify := newFixture()
	items.put(reservationAt(10, blockFrom.Add(time.Hour), blockFrom.Add(2*time.Hour)))
	items.put(reservationAt(11, blockFrom.Add(2*time.Hour), blockFrom.Add(3*time.Hour)))
	// Соседнее бронирование, не пересекающееся с блоком
	items.put(reservationAt(12, blockFrom.Add(4*time.Hour), blockFrom.Add(5*time.Hour)))

	resp, err := uc.Execute(context.Background(), managerRequest(true))
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{10, 11}, resp.CancelledItemIDs)
	assert.Equal(t, domain.StatusCancelled, items.items[10].Status)
	assert.Equal(t, domain.StatusCancelled, items.items[11].Status)
	assert.Equal(t, domain.StatusConfirmed, items.items[12].Status)

	require.NotNil(t, items.items[10].CancellationReason)
	assert.Contains(t, *items.items[10].CancellationReason, "maintenance block")

	// По переходу на каждую отмену + создание блока
	assert.Len(t, transitions.transitions, 3)

	// Каждый владелец уведомлен об отмене, затем кондоминиум о блоке
	assert.Equal(t, []string{
		notifyservice.EventBookingCancelled,
		notifyservice.EventBookingCancelled,
		notifyservice.EventBlockPlaced,
	}, notify.calls)
}

func TestPlaceBlockForceNotDuplicatedOnRetry(t *testing.T) {
	items := newFakeItemRepo()
	areas := &fakeAreaRepo{areas: map[int64]*domain.CommonArea{
		1: {ID: 1, CondoID: 100, Name: "Pool", Active: true},
	}}
	transitions := &fakeTransitionRepo{}
	notify := &fakeNotifyClient{}
	uc := NewUseCase(items, areas, transitions, retryingScheduler{items: items}, notify, nopLogger{})

	items.put(reservationAt(10, blockFrom.Add(time.Hour), blockFrom.Add(2*time.Hour)))

	resp, err := uc.Execute(context.Background(), managerRequest(true))
	require.NoError(t, err)

	// Транзакция выполнилась дважды, но отмена засчитана один раз
	assert.Equal(t, []int64{10}, resp.CancelledItemIDs)
	assert.Equal(t, []string{
		notifyservice.EventBookingCancelled,
		notifyservice.EventBlockPlaced,
	}, notify.calls)
}

func TestPlaceBlockNeverCancelsAnotherBlock(t *testing.T) {
	uc, items, _, _ := newFixture()

	reason := "покраска"
	items.put(&domain.CalendarItem{
		ID: 20, AreaID: 1, CondoID: 100,
		Kind: domain.KindMaintenanceBlock, Status: domain.StatusBlockActive,
		StartsAt: blockFrom.Add(time.Hour), EndsAt: blockFrom.Add(2 * time.Hour),
		BlockReason: &reason,
	})

	for _, force := range []bool{false, true} {
		_, err := uc.Execute(context.Background(), managerRequest(force))
		require.ErrorIs(t, err, ErrBlockOverlap, "force=%v", force)
	}

	assert.Equal(t, domain.StatusBlockActive, items.items[20].Status)
}

func TestPlaceBlockValidation(t *testing.T) {
	uc, _, _, _ := newFixture()

	t.Run("resident cannot place block", func(t *testing.T) {
		req := managerRequest(false)
		unitID := int64(7)
		req.Actor = domain.Identity{UserID: 42, UnitID: &unitID, CondoID: 100, Role: domain.RoleResident}
		_, err := uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, domain.ErrActorNotAllowed)
	})

	t.Run("reason is required", func(t *testing.T) {
		req := managerRequest(false)
		req.Reason = "  "
		_, err := uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("wrong condo", func(t *testing.T) {
		req := managerRequest(false)
		req.Actor.CondoID = 200
		_, err := uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, ErrWrongCondo)
	})

	t.Run("unknown area", func(t *testing.T) {
		req := managerRequest(false)
		req.AreaID = 999
		_, err := uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, ErrAreaNotFound)
	})
}
