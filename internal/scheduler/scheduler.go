// Package scheduler делает связку "проверить конфликт — записать" атомарной
// для каждого объекта. Операции над разными объектами идут параллельно,
// над одним объектом — строго по очереди: из двух одновременных заявок на
// пересекающееся время вторая увидит запись, созданную первой.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AmenityService/pkg/resourcelock"
	"github.com/m04kA/SMC-AmenityService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-AmenityService/pkg/txmanager"
)

var (
	// ErrSchedulingTimeout возвращается, когда очередь к объекту не освободилась
	// за отведенное время; операция безопасна для повтора
	ErrSchedulingTimeout = errors.New("scheduler: timed out waiting for resource")

	// ErrPersistence возвращается, когда запись в хранилище не удалась
	// Изменения откачены целиком, операция безопасна для повтора
	ErrPersistence = errors.New("scheduler: persistence failure")
)

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Scheduler сериализует операции по идентификатору объекта
// Двухуровневая защита: in-process очередь на объект + сериализуемая транзакция
// с блокировкой строк (FOR UPDATE) в репозиториях
type Scheduler struct {
	locks       *resourcelock.KeyedLock
	txManager   TransactionManager
	lockTimeout time.Duration
	logger      Logger
	onCommit    func(areaID int64)
}

// New создает Scheduler с указанным таймаутом ожидания очереди
func New(txManager TransactionManager, lockTimeout time.Duration, logger Logger) *Scheduler {
	return &Scheduler{
		locks:       resourcelock.New(),
		txManager:   txManager,
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// SetOnCommit регистрирует хук, вызываемый после успешной фиксации секции
// Используется для инвалидации кэша повестки по объекту
func (s *Scheduler) SetOnCommit(fn func(areaID int64)) {
	s.onCommit = fn
}

// Execute выполняет fn с эксклюзивным доступом к календарю объекта areaID
// fn выполняется внутри сериализуемой транзакции; при любой ошибке изменения
// откатываются, а очередь освобождается в любом исходе
func (s *Scheduler) Execute(ctx context.Context, areaID int64, fn func(ctx context.Context) error) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	release, err := s.locks.Acquire(lockCtx, areaID)
	if err != nil {
		// Отмена вызывающей стороной до входа в критическую секцию
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("Scheduler: lock wait timed out for area=%d after %s", areaID, s.lockTimeout)
		return fmt.Errorf("%w: area=%d", ErrSchedulingTimeout, areaID)
	}
	defer release()

	// Последняя безопасная точка отмены перед записью
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.txManager.DoSerializable(ctx, fn); err != nil {
		if isPersistenceFailure(err) {
			s.logger.Error("Scheduler: persistence failure for area=%d: %v", areaID, err)
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return err
	}

	if s.onCommit != nil {
		s.onCommit(areaID)
	}

	return nil
}

// isPersistenceFailure отличает отказ хранилища от бизнес-ошибки,
// которую транзакционный слой просто пробросил наружу
func isPersistenceFailure(err error) bool {
	return errors.Is(err, txmanager.ErrTxFailed) || errors.Is(err, simpletxmanager.ErrTxFailed)
}
