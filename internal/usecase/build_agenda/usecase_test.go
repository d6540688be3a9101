package build_agenda

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// --- Фейки зависимостей ---

type fakeItemRepo struct {
	mu    sync.Mutex
	items []*domain.CalendarItem
	calls int
}

func (r *fakeItemRepo) ListWithFilter(_ context.Context, filter domain.CondoItemsFilter) ([]*domain.CalendarItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	var result []*domain.CalendarItem
	for _, item := range r.items {
		if item.CondoID != filter.CondoID {
			continue
		}
		if filter.AreaID != nil && item.AreaID != *filter.AreaID {
			continue
		}
		if !filter.IncludeInactive && item.IsTerminal() {
			continue
		}
		if filter.From != nil && filter.To != nil &&
			!domain.Overlaps(item.StartsAt, item.EndsAt, *filter.From, *filter.To) {
			continue
		}
		copied := *item
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeItemRepo) add(item *domain.CalendarItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
}

type fakeAreaRepo struct {
	areas []*domain.CommonArea
}

func (r *fakeAreaRepo) ListByCondo(_ context.Context, condoID int64, includeInactive bool) ([]*domain.CommonArea, error) {
	var result []*domain.CommonArea
	for _, a := range r.areas {
		if a.CondoID != condoID {
			continue
		}
		if !includeInactive && !a.Active {
			continue
		}
		copied := *a
		result = append(result, &copied)
	}
	return result, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- Обвязка ---

func day(d, hour, min int) time.Time {
	return time.Date(2026, time.September, d, hour, min, 0, 0, time.UTC)
}

func reservation(id, areaID int64, startsAt, endsAt time.Time) *domain.CalendarItem {
	unitID := int64(7)
	userID := int64(42)
	return &domain.CalendarItem{
		ID: id, AreaID: areaID, CondoID: 100,
		UnitID: &unitID, UserID: &userID,
		Kind: domain.KindReservation, Status: domain.StatusConfirmed,
		StartsAt: startsAt, EndsAt: endsAt,
	}
}

func maintenanceBlock(id, areaID int64, startsAt, endsAt time.Time) *domain.CalendarItem {
	reason := "обслуживание"
	return &domain.CalendarItem{
		ID: id, AreaID: areaID, CondoID: 100,
		Kind: domain.KindMaintenanceBlock, Status: domain.StatusBlockActive,
		StartsAt: startsAt, EndsAt: endsAt,
		BlockReason: &reason,
	}
}

func newFixture(areas ...*domain.CommonArea) (*UseCase, *fakeItemRepo) {
	items := &fakeItemRepo{}
	uc := NewUseCase(items, &fakeAreaRepo{areas: areas}, time.Minute, nopLogger{})
	return uc, items
}

func residentReq() *Request {
	unitID := int64(7)
	return &Request{
		CondoID: 100,
		Month:   "2026-09",
		Actor:   domain.Identity{UserID: 42, UnitID: &unitID, CondoID: 100, Role: domain.RoleResident},
	}
}

func poolArea() *domain.CommonArea {
	return &domain.CommonArea{
		ID: 1, CondoID: 100, Name: "Pool",
		OpensAt: "08:00", ClosesAt: "22:00",
		Active: true,
	}
}

// --- Тесты ---

func TestAgendaDayOccupancy(t *testing.T) {
	uc, items := newFixture(poolArea())

	// День 10: бронирование днем и блок вечером — частичная занятость
	items.add(reservation(1, 1, day(10, 14, 0), day(10, 16, 0)))
	items.add(maintenanceBlock(2, 1, day(10, 16, 0), day(10, 18, 0)))
	// День 12: занято всё рабочее окно 08:00-22:00
	items.add(maintenanceBlock(3, 1, day(12, 8, 0), day(12, 22, 0)))

	resp, err := uc.Execute(context.Background(), residentReq())
	require.NoError(t, err)

	assert.Equal(t, "2026-09", resp.Month)
	require.Len(t, resp.Days, 30)

	byDay := make(map[int]Occupancy)
	for _, d := range resp.Days {
		byDay[d.Day] = d.Occupancy
	}

	assert.Equal(t, OccupancyPartial, byDay[10])
	assert.Equal(t, OccupancyAvailable, byDay[11])
	assert.Equal(t, OccupancyFull, byDay[12])
}

func TestAgendaFullRequiresAllAreas(t *testing.T) {
	gym := &domain.CommonArea{
		ID: 2, CondoID: 100, Name: "Gym",
		OpensAt: "08:00", ClosesAt: "22:00",
		Active: true,
	}
	uc, items := newFixture(poolArea(), gym)

	// Бассейн закрыт на весь день, зал свободен — день лишь частично занят
	items.add(maintenanceBlock(1, 1, day(5, 8, 0), day(5, 22, 0)))

	resp, err := uc.Execute(context.Background(), residentReq())
	require.NoError(t, err)

	for _, d := range resp.Days {
		if d.Day == 5 {
			assert.Equal(t, OccupancyPartial, d.Occupancy)
		}
	}
}

func TestAgendaOverlappingIntervalsNotDoubleCounted(t *testing.T) {
	uc, items := newFixture(poolArea())

	// Два пересекающихся занимающих интервала покрывают 08:00-22:00 только вместе с третьим
	items.add(maintenanceBlock(1, 1, day(3, 8, 0), day(3, 15, 0)))
	items.add(maintenanceBlock(2, 1, day(3, 12, 0), day(3, 18, 0)))

	resp, err := uc.Execute(context.Background(), residentReq())
	require.NoError(t, err)

	for _, d := range resp.Days {
		if d.Day == 3 {
			// 08:00-18:00 занято, 18:00-22:00 свободно
			assert.Equal(t, OccupancyPartial, d.Occupancy)
		}
	}
}

func TestAgendaIdentityVisibility(t *testing.T) {
	uc, items := newFixture(poolArea())
	items.add(reservation(1, 1, day(10, 14, 0), day(10, 16, 0))) // пользователь 42, квартира 7

	t.Run("owner sees own identity", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), residentReq())
		require.NoError(t, err)
		require.Len(t, resp.Entries, 1)
		require.NotNil(t, resp.Entries[0].UserID)
		assert.Equal(t, int64(42), *resp.Entries[0].UserID)
	})

	t.Run("other resident sees anonymous entry", func(t *testing.T) {
		req := residentReq()
		req.Actor.UserID = 99
		unitID := int64(9)
		req.Actor.UnitID = &unitID

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, resp.Entries, 1)
		assert.Nil(t, resp.Entries[0].UserID)
		assert.Nil(t, resp.Entries[0].UnitID)
		// Время и статус при этом видны
		assert.Equal(t, day(10, 14, 0), resp.Entries[0].StartsAt)
	})

	t.Run("manager sees identity", func(t *testing.T) {
		req := residentReq()
		req.Actor = domain.Identity{UserID: 1, CondoID: 100, Role: domain.RoleManager}

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, resp.Entries, 1)
		require.NotNil(t, resp.Entries[0].UnitID)
		assert.Equal(t, int64(7), *resp.Entries[0].UnitID)
	})
}

func TestAgendaCaching(t *testing.T) {
	uc, items := newFixture(poolArea())
	items.add(reservation(1, 1, day(10, 14, 0), day(10, 16, 0)))

	_, err := uc.Execute(context.Background(), residentReq())
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), residentReq())
	require.NoError(t, err)

	// Второй запрос обслужен из кэша
	assert.Equal(t, 1, items.calls)

	t.Run("different actor misses cache", func(t *testing.T) {
		req := residentReq()
		req.Actor.UserID = 99
		_, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 2, items.calls)
	})

	t.Run("committed write invalidates area", func(t *testing.T) {
		before := items.calls
		uc.InvalidateArea(1)
		_, err := uc.Execute(context.Background(), residentReq())
		require.NoError(t, err)
		assert.Equal(t, before+1, items.calls)
	})

	t.Run("rule change clears everything", func(t *testing.T) {
		before := items.calls
		uc.InvalidateAll()
		_, err := uc.Execute(context.Background(), residentReq())
		require.NoError(t, err)
		assert.Equal(t, before+1, items.calls)
	})
}

func TestAgendaCacheExpiry(t *testing.T) {
	current := day(1, 12, 0)
	cache := newAgendaCache(10*time.Second, 0, func() time.Time { return current })

	cache.Store("k", &Response{Month: "2026-09"}, []int64{1})

	_, ok := cache.Get("k")
	assert.True(t, ok)

	current = current.Add(11 * time.Second)
	_, ok = cache.Get("k")
	assert.False(t, ok)
}

func TestAgendaInvalidateAreaByScope(t *testing.T) {
	cache := newAgendaCache(time.Minute, 0, nil)

	// Повестка кондоминиума охватывает оба объекта, но записи есть только у второго
	cache.Store("condo", &Response{
		Month:   "2026-09",
		Entries: []AgendaEntry{{ItemID: 1, AreaID: 2}},
	}, []int64{1, 2})
	// Повестка, суженная до другого объекта
	cache.Store("scoped", &Response{Month: "2026-09"}, []int64{2})
	// Повестка без единого помеченного объекта: месяц был пуст на момент сборки
	cache.Store("empty", &Response{Month: "2026-09"}, nil)

	cache.InvalidateArea(1)

	_, ok := cache.Get("condo")
	assert.False(t, ok, "agenda covering the area must not survive even without its entries")

	_, ok = cache.Get("scoped")
	assert.True(t, ok, "agenda scoped to an unrelated area survives")

	_, ok = cache.Get("empty")
	assert.False(t, ok, "unmarked agenda could have shown the area as free")
}

// Зафиксированная запись одного объекта делает устаревшей повестку всего
// кондоминиума, даже если до этого объект в ней не упоминался
func TestAgendaCommittedWriteRefreshesCondoAgenda(t *testing.T) {
	gym := &domain.CommonArea{
		ID: 2, CondoID: 100, Name: "Gym",
		OpensAt: "08:00", ClosesAt: "22:00",
		Active: true,
	}
	uc, items := newFixture(poolArea(), gym)
	items.add(reservation(1, 1, day(10, 14, 0), day(10, 16, 0)))

	resp, err := uc.Execute(context.Background(), residentReq())
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)

	// Фиксация бронирования зала: планировщик дергает InvalidateArea
	items.add(reservation(2, 2, day(11, 10, 0), day(11, 12, 0)))
	uc.InvalidateArea(2)

	resp, err = uc.Execute(context.Background(), residentReq())
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)

	byDay := make(map[int]Occupancy)
	for _, d := range resp.Days {
		byDay[d.Day] = d.Occupancy
	}
	assert.Equal(t, OccupancyPartial, byDay[11])
}

func TestAgendaValidation(t *testing.T) {
	uc, _ := newFixture(poolArea())

	t.Run("bad month format", func(t *testing.T) {
		req := residentReq()
		req.Month = "september"
		_, err := uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing condo", func(t *testing.T) {
		req := residentReq()
		req.CondoID = 0
		_, err := uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}
