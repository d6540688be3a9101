package request_booking

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
	"github.com/m04kA/SMC-AmenityService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-AmenityService/pkg/resourcelock"
)

// --- Фейки зависимостей ---

type fakeItemRepo struct {
	mu     sync.Mutex
	nextID int64
	items  []*domain.CalendarItem
}

func (r *fakeItemRepo) Create(_ context.Context, item *domain.CalendarItem) (*domain.CalendarItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	stored := *item
	r.items = append(r.items, &stored)
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

func (r *fakeItemRepo) CountOccupyingByUnit(_ context.Context, areaID, unitID int64, from, to time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, item := range r.items {
		if item.AreaID != areaID || item.Kind != domain.KindReservation || !item.OccupiesCalendar() {
			continue
		}
		if item.UnitID == nil || *item.UnitID != unitID {
			continue
		}
		if !item.StartsAt.Before(from) && item.StartsAt.Before(to) {
			count++
		}
	}
	return count, nil
}

type fakeAreaRepo struct {
	mu    sync.Mutex
	areas map[int64]*domain.CommonArea
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

func (r *fakeTransitionRepo) byItem(itemID int64) []*domain.ItemTransition {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.ItemTransition
	for _, t := range r.transitions {
		if t.ItemID == itemID {
			result = append(result, t)
		}
	}
	return result
}

// lockScheduler сериализация по объекту без БД
type lockScheduler struct {
	locks *resourcelock.KeyedLock
}

func newLockScheduler() *lockScheduler {
	return &lockScheduler{locks: resourcelock.New()}
}

func (s *lockScheduler) Execute(ctx context.Context, areaID int64, fn func(ctx context.Context) error) error {
	release, err := s.locks.Acquire(ctx, areaID)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

type fakeNotifyClient struct {
	mu    sync.Mutex
	calls []notifyCall
}

type notifyCall struct {
	recipient notifyservice.RecipientSelector
	event     string
}

func (c *fakeNotifyClient) Notify(_ context.Context, recipient notifyservice.RecipientSelector, event, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, notifyCall{recipient: recipient, event: event})
	return nil
}

type fixedTime struct{ now time.Time }

func (p *fixedTime) Now() time.Time { return p.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- Обвязка ---

type fixture struct {
	uc          *UseCase
	items       *fakeItemRepo
	areas       *fakeAreaRepo
	transitions *fakeTransitionRepo
	notify      *fakeNotifyClient
	now         time.Time
}

func newFixture(t *testing.T, area *domain.CommonArea) *fixture {
	t.Helper()

	f := &fixture{
		items:       &fakeItemRepo{},
		areas:       &fakeAreaRepo{areas: map[int64]*domain.CommonArea{area.ID: area}},
		transitions: &fakeTransitionRepo{},
		notify:      &fakeNotifyClient{},
		now:         time.Date(2026, time.September, 10, 9, 0, 0, 0, time.UTC),
	}

	f.uc = NewUseCase(f.items, f.areas, f.transitions, newLockScheduler(), f.notify, nopLogger{})
	f.uc.timeProvider = &fixedTime{now: f.now}
	return f
}

func gymArea() *domain.CommonArea {
	return &domain.CommonArea{
		ID:                  1,
		CondoID:             100,
		Name:                "Gym",
		Capacity:            1,
		OpensAt:             "08:00",
		ClosesAt:            "22:00",
		MinDurationMinutes:  30,
		MaxDurationMinutes:  240,
		MinNoticeMinutes:    60,
		MaxAdvanceDays:      30,
		MonthlyQuotaPerUnit: 2,
		Active:              true,
	}
}

func residentRequest(startsAt, endsAt time.Time) *Request {
	unitID := int64(7)
	return &Request{
		Actor: domain.Identity{
			UserID:  42,
			UnitID:  &unitID,
			CondoID: 100,
			Role:    domain.RoleResident,
		},
		AreaID:   1,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}
}

// --- Тесты ---

func TestExecuteCreatesPendingBooking(t *testing.T) {
	f := newFixture(t, gymArea())

	resp, err := f.uc.Execute(context.Background(), residentRequest(
		f.now.Add(2*time.Hour), f.now.Add(3*time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, int64(1), resp.AreaID)
	assert.Equal(t, int64(7), resp.UnitID)
	assert.Equal(t, int64(42), resp.UserID)

	// Переход создания записан
	history := f.transitions.byItem(resp.ID)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusCreated, history[0].FromStatus)
	assert.Equal(t, domain.StatusPending, history[0].ToStatus)

	// Управляющие уведомлены о новой заявке
	require.Len(t, f.notify.calls, 1)
	assert.Equal(t, notifyservice.EventBookingRequested, f.notify.calls[0].event)
	assert.True(t, f.notify.calls[0].recipient.CondoManagers)
}

func TestExecuteAutoApprovePolicy(t *testing.T) {
	area := gymArea()
	area.AutoApprove = true
	area.AutoConfirm = true
	f := newFixture(t, area)

	resp, err := f.uc.Execute(context.Background(), residentRequest(
		f.now.Add(2*time.Hour), f.now.Add(3*time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)

	// Создание + два системных авто-перехода
	history := f.transitions.byItem(resp.ID)
	require.Len(t, history, 3)
	assert.Equal(t, domain.StatusPending, history[0].ToStatus)
	assert.Equal(t, domain.StatusApproved, history[1].ToStatus)
	assert.Equal(t, domain.RoleSystem, history[1].ActorRole)
	assert.Equal(t, domain.StatusConfirmed, history[2].ToStatus)

	// Уведомлен заявитель, а не управляющие
	require.Len(t, f.notify.calls, 1)
	assert.Equal(t, notifyservice.EventBookingApproved, f.notify.calls[0].event)
	assert.False(t, f.notify.calls[0].recipient.CondoManagers)
}

func TestExecuteConflictReturnsBusyRanges(t *testing.T) {
	f := newFixture(t, gymArea())

	first := residentRequest(f.now.Add(2*time.Hour), f.now.Add(4*time.Hour))
	_, err := f.uc.Execute(context.Background(), first)
	require.NoError(t, err)

	second := residentRequest(f.now.Add(3*time.Hour), f.now.Add(5*time.Hour))
	second.Actor.UserID = 43
	unit := int64(8)
	second.Actor.UnitID = &unit

	_, err = f.uc.Execute(context.Background(), second)
	require.ErrorIs(t, err, domain.ErrConflict)

	var conflictErr *domain.ConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Ranges, 1)
	assert.Equal(t, first.StartsAt, conflictErr.Ranges[0].StartsAt)
	assert.Equal(t, first.EndsAt, conflictErr.Ranges[0].EndsAt)
}

func TestExecuteAdjacentBookingsDoNotConflict(t *testing.T) {
	f := newFixture(t, gymArea())

	_, err := f.uc.Execute(context.Background(), residentRequest(
		f.now.Add(2*time.Hour), f.now.Add(3*time.Hour)))
	require.NoError(t, err)

	// Начало ровно в момент окончания предыдущего
	_, err = f.uc.Execute(context.Background(), residentRequest(
		f.now.Add(3*time.Hour), f.now.Add(4*time.Hour)))
	require.NoError(t, err)
}

func TestExecuteQuotaEnforced(t *testing.T) {
	f := newFixture(t, gymArea()) // квота 2 на квартиру в месяц

	for i := 0; i < 2; i++ {
		offset := time.Duration(i*2+2) * time.Hour
		_, err := f.uc.Execute(context.Background(), residentRequest(
			f.now.Add(offset), f.now.Add(offset+time.Hour)))
		require.NoError(t, err)
	}

	_, err := f.uc.Execute(context.Background(), residentRequest(
		f.now.Add(8*time.Hour), f.now.Add(9*time.Hour)))
	require.ErrorIs(t, err, domain.ErrRuleViolation)

	var ruleErr *domain.RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, domain.RuleQuota, ruleErr.Rule)
}

func TestExecuteValidation(t *testing.T) {
	f := newFixture(t, gymArea())

	t.Run("area not found", func(t *testing.T) {
		req := residentRequest(f.now.Add(2*time.Hour), f.now.Add(3*time.Hour))
		req.AreaID = 999
		_, err := f.uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, ErrAreaNotFound)
	})

	t.Run("wrong condo", func(t *testing.T) {
		req := residentRequest(f.now.Add(2*time.Hour), f.now.Add(3*time.Hour))
		req.Actor.CondoID = 200
		_, err := f.uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, ErrWrongCondo)
	})

	t.Run("missing unit", func(t *testing.T) {
		req := residentRequest(f.now.Add(2*time.Hour), f.now.Add(3*time.Hour))
		req.Actor.UnitID = nil
		_, err := f.uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("inverted range", func(t *testing.T) {
		req := residentRequest(f.now.Add(3*time.Hour), f.now.Add(2*time.Hour))
		_, err := f.uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

// Из N одновременных заявок на одно время успешной становится ровно одна
func TestExecuteConcurrentRequestsOneWinner(t *testing.T) {
	area := gymArea()
	area.MonthlyQuotaPerUnit = 0
	f := newFixture(t, area)

	const workers = 10

	startsAt := f.now.Add(2 * time.Hour)
	endsAt := f.now.Add(3 * time.Hour)

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := residentRequest(startsAt, endsAt)
			req.Actor.UserID = int64(100 + n)
			unit := int64(10 + n)
			req.Actor.UnitID = &unit
			_, err := f.uc.Execute(context.Background(), req)
			results <- err
		}(i)
	}

	wg.Wait()
	close(results)

	succeeded, conflicted := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicted)
}
