package complete_bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	itemRepo "github.com/m04kA/SMC-AmenityService/internal/infra/storage/item"
)

const sweepBatchSize = 100

// ErrInternal возвращается при внутренних ошибках usecase
var ErrInternal = errors.New("complete_bookings: internal error")

// UseCase фоновый процесс завершения бронирований: подтверждённые записи,
// чьё время окончания прошло, переводятся в completed системным переходом
// Каждая запись обрабатывается отдельно под сериализацией своего объекта,
// чтобы не конкурировать с пользовательскими операциями
type UseCase struct {
	itemRepo       ItemRepository
	transitionRepo TransitionRepository
	sched          Scheduler
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	itemRepo ItemRepository,
	transitionRepo TransitionRepository,
	sched Scheduler,
	logger Logger,
) *UseCase {
	return &UseCase{
		itemRepo:       itemRepo,
		transitionRepo: transitionRepo,
		sched:          sched,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Run запускает периодический обход до отмены контекста
func (uc *UseCase) Run(ctx context.Context, interval time.Duration) {
	uc.logger.Info("CompleteBookings: sweep started, interval=%s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("CompleteBookings: sweep stopped")
			return
		case <-ticker.C:
			if n, err := uc.Sweep(ctx); err != nil {
				uc.logger.Error("CompleteBookings: sweep failed: %v", err)
			} else if n > 0 {
				uc.logger.Info("CompleteBookings: completed %d booking(s)", n)
			}
		}
	}
}

// Sweep выполняет один проход: находит просроченные подтверждённые
// бронирования и завершает каждое; возвращает число завершённых
func (uc *UseCase) Sweep(ctx context.Context) (int, error) {
	now := uc.timeProvider.Now()

	expired, err := uc.itemRepo.ListExpiredConfirmed(ctx, now, sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to list expired bookings: %w", ErrInternal, err)
	}

	completed := 0
	for _, item := range expired {
		if err := uc.completeOne(ctx, item.ID, item.AreaID); err != nil {
			// Одна неудачная запись не останавливает проход
			uc.logger.Warn("CompleteBookings: failed to complete item id=%d: %v", item.ID, err)
			continue
		}
		completed++
	}

	return completed, nil
}

// completeOne завершает одно бронирование под сериализацией его объекта
func (uc *UseCase) completeOne(ctx context.Context, itemID, areaID int64) error {
	return uc.sched.Execute(ctx, areaID, func(txCtx context.Context) error {
		// Перечитываем под блокировкой: запись могли успеть отменить
		item, err := uc.itemRepo.GetByID(txCtx, itemID)
		if err != nil {
			if errors.Is(err, itemRepo.ErrItemNotFound) {
				return nil
			}
			return fmt.Errorf("%w: failed to get item: %w", ErrInternal, err)
		}

		if item.Status != domain.StatusConfirmed {
			return nil
		}

		if err := domain.CheckTransition(domain.RoleSystem, item.Status, domain.StatusCompleted); err != nil {
			return err
		}

		if err := uc.itemRepo.UpdateStatus(txCtx, item.ID, domain.StatusCompleted); err != nil {
			return fmt.Errorf("%w: repository error: %w", ErrInternal, err)
		}

		t := &domain.ItemTransition{
			ItemID:     item.ID,
			FromStatus: domain.StatusConfirmed,
			ToStatus:   domain.StatusCompleted,
			ActorRole:  domain.RoleSystem,
		}
		if _, err := uc.transitionRepo.Create(txCtx, t); err != nil {
			return fmt.Errorf("%w: failed to record transition: %w", ErrInternal, err)
		}

		return nil
	})
}
