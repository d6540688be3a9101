// Package resourcelock предоставляет in-process взаимное исключение по ключу ресурса.
// Операции над разными ключами выполняются параллельно, над одним ключом — строго
// по очереди в порядке поступления.
package resourcelock

import (
	"context"
	"sync"
)

// KeyedLock набор мьютексов, создаваемых лениво по ключу
// Ожидание захвата прерывается через контекст (отмена или таймаут)
type KeyedLock struct {
	mu    sync.Mutex
	locks map[int64]*lockState
}

type lockState struct {
	held    bool
	waiters []chan struct{}
}

// New создает пустой KeyedLock
func New() *KeyedLock {
	return &KeyedLock{locks: make(map[int64]*lockState)}
}

// Acquire захватывает блокировку по ключу и возвращает функцию освобождения.
// Если блокировка занята, очередь ожидания обслуживается в порядке FIFO.
// При отмене контекста до захвата возвращается ctx.Err(), блокировка не удерживается.
func (l *KeyedLock) Acquire(ctx context.Context, key int64) (func(), error) {
	l.mu.Lock()

	state, ok := l.locks[key]
	if !ok {
		state = &lockState{}
		l.locks[key] = state
	}

	if !state.held {
		state.held = true
		l.mu.Unlock()
		return func() { l.release(key) }, nil
	}

	// Блокировка занята — встаем в очередь
	ready := make(chan struct{})
	state.waiters = append(state.waiters, ready)
	l.mu.Unlock()

	select {
	case <-ready:
		return func() { l.release(key) }, nil
	case <-ctx.Done():
		// Возможна гонка: нас могли успеть разбудить до отмены.
		// Если нас уже нет в очереди — блокировка наша, её нужно вернуть.
		l.mu.Lock()
		if l.removeWaiterLocked(key, ready) {
			l.mu.Unlock()
			return nil, ctx.Err()
		}
		l.releaseLocked(key)
		l.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (l *KeyedLock) release(key int64) {
	l.mu.Lock()
	l.releaseLocked(key)
	l.mu.Unlock()
}

// releaseLocked передает блокировку первому ожидающему или освобождает её
func (l *KeyedLock) releaseLocked(key int64) {
	state, ok := l.locks[key]
	if !ok {
		return
	}

	if len(state.waiters) > 0 {
		next := state.waiters[0]
		state.waiters = state.waiters[1:]
		close(next)
		return
	}

	state.held = false
	delete(l.locks, key)
}

// removeWaiterLocked удаляет ожидающего из очереди; false, если его там уже нет
func (l *KeyedLock) removeWaiterLocked(key int64, ready chan struct{}) bool {
	state, ok := l.locks[key]
	if !ok {
		return false
	}
	for i, w := range state.waiters {
		if w == ready {
			state.waiters = append(state.waiters[:i], state.waiters[i+1:]...)
			return true
		}
	}
	return false
}
