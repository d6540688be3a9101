package confirm_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	itemRepo "github.com/m04kA/SMC-AmenityService/internal/infra/storage/item"
)

// Request модель запроса на подтверждение одобренного бронирования
type Request struct {
	ItemID int64
	Actor  domain.Identity
}

// Response модель ответа с итоговым статусом
type Response struct {
	ID     int64
	Status string
}

// UseCase use case явного подтверждения бронирования жителем
// Для объектов с политикой auto_confirm этот шаг выполняется системой
// автоматически при одобрении
type UseCase struct {
	itemRepo       ItemRepository
	transitionRepo TransitionRepository
	sched          Scheduler
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
		logger:         logger,
	}
}

// Execute выполняет use case подтверждения бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ConfirmBooking: item=%d, user=%d", req.ItemID, req.Actor.UserID)

	if req.ItemID <= 0 {
		return nil, fmt.Errorf("%w: itemID must be positive", ErrInvalidInput)
	}

	// Предварительное чтение: нужен area_id для сериализации
	peek, err := uc.getItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	var result *domain.CalendarItem

	err = uc.sched.Execute(ctx, peek.AreaID, func(txCtx context.Context) error {
		item, err := uc.getItem(txCtx, req.ItemID)
		if err != nil {
			return err
		}

		// Житель подтверждает только своё бронирование; управляющий — любое в своём кондоминиуме
		if item.CondoID != req.Actor.CondoID {
			return ErrAccessDenied
		}
		if !req.Actor.IsManager() && !item.IsOwnedBy(req.Actor.UserID) {
			uc.logger.Warn("ConfirmBooking: user=%d does not own item id=%d", req.Actor.UserID, item.ID)
			return ErrAccessDenied
		}

		if err := domain.CheckTransition(req.Actor.Role, item.Status, domain.StatusConfirmed); err != nil {
			uc.logger.Warn("ConfirmBooking: rejected by policy: %v", err)
			return err
		}

		if err := uc.itemRepo.UpdateStatus(txCtx, item.ID, domain.StatusConfirmed); err != nil {
			if errors.Is(err, itemRepo.ErrItemNotFound) {
				return ErrItemNotFound
			}
			uc.logger.Error("ConfirmBooking: repository error for item id=%d: %v", item.ID, err)
			return fmt.Errorf("%w: repository error: %w", ErrInternal, err)
		}

		t := &domain.ItemTransition{
			ItemID:      item.ID,
			FromStatus:  item.Status,
			ToStatus:    domain.StatusConfirmed,
			ActorUserID: &req.Actor.UserID,
			ActorRole:   req.Actor.Role,
		}
		if _, err := uc.transitionRepo.Create(txCtx, t); err != nil {
			uc.logger.Error("ConfirmBooking: failed to record transition: %v", err)
			return fmt.Errorf("%w: failed to record transition: %w", ErrInternal, err)
		}

		item.Status = domain.StatusConfirmed
		result = item
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("ConfirmBooking: item id=%d confirmed", result.ID)
	return &Response{ID: result.ID, Status: string(result.Status)}, nil
}

func (uc *UseCase) getItem(ctx context.Context, id int64) (*domain.CalendarItem, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, itemRepo.ErrItemNotFound) {
			uc.logger.Warn("ConfirmBooking: item id=%d not found", id)
			return nil, ErrItemNotFound
		}
		uc.logger.Error("ConfirmBooking: failed to get item id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get item: %w", ErrInternal, err)
	}
	return item, nil
}
