package build_agenda

import (
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-AmenityService/pkg/ptr"
)

// agendaCache хранит недавно собранные повестки, чтобы не перечитывать
// календарь на каждый запрос месяца. Записи живут недолго и дополнительно
// инвалидируются по объекту при любой зафиксированной записи в его календарь
type agendaCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]agendaCacheEntry
}

type agendaCacheEntry struct {
	response  *Response
	areaIDs   map[int64]struct{}
	expiresAt time.Time
}

func newAgendaCache(ttl time.Duration, maxEntries int, now func() time.Time) *agendaCache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if now == nil {
		now = time.Now
	}
	return &agendaCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]agendaCacheEntry),
	}
}

func (c *agendaCache) Get(key string) (*Response, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.response, true
}

// Store кладет повестку под ключ; scopedAreaIDs — объекты, по которым
// считалась сводка занятости. Записи кэша помечаются объединением этого
// набора и объектов из записей повестки: новая запись любого из них
// делает повестку устаревшей, даже если раньше он был в ней не виден
func (c *agendaCache) Store(key string, resp *Response, scopedAreaIDs []int64) {
	areaIDs := make(map[int64]struct{}, len(scopedAreaIDs))
	for _, id := range scopedAreaIDs {
		areaIDs[id] = struct{}{}
	}
	for _, e := range resp.Entries {
		areaIDs[e.AreaID] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = agendaCacheEntry{
		response:  resp,
		areaIDs:   areaIDs,
		expiresAt: c.now().Add(c.ttl),
	}
}

// InvalidateArea удаляет все повестки, в чей охват попадает объект
func (c *agendaCache) InvalidateArea(areaID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if _, ok := entry.areaIDs[areaID]; ok {
			delete(c.entries, key)
			continue
		}
		// Повестка без единого помеченного объекта могла показать его свободным
		if len(entry.areaIDs) == 0 {
			delete(c.entries, key)
		}
	}
}

// InvalidateAll полностью очищает кэш (смена правил объекта)
func (c *agendaCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]agendaCacheEntry)
	c.mu.Unlock()
}

func (c *agendaCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *agendaCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

// buildCacheKey собирает ключ из всех параметров, влияющих на ответ
// Роль и пользователь входят в ключ: житель и управляющий видят разные поля
func buildCacheKey(req *Request) string {
	return fmt.Sprintf("%d|%s|%d|%v|%v|%d|%s",
		req.CondoID, req.Month, ptr.Deref(req.AreaID), req.IncludeInactive,
		req.Actor.IsManager(), req.Actor.UserID, req.Actor.Role)
}
