package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	areaRepo "github.com/m04kA/SMC-AmenityService/internal/infra/storage/area"
	itemRepo "github.com/m04kA/SMC-AmenityService/internal/infra/storage/item"
	"github.com/m04kA/SMC-AmenityService/internal/integrations/notifyservice"
)

// UseCase use case отмены бронирования жителем или управляющим
type UseCase struct {
	itemRepo       ItemRepository
	areaRepo       AreaRepository
	transitionRepo TransitionRepository
	sched          Scheduler
	notifyClient   NotifyClient
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	itemRepo ItemRepository,
	areaRepo AreaRepository,
	transitionRepo TransitionRepository,
	sched Scheduler,
	notifyClient NotifyClient,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		itemRepo:       itemRepo,
		areaRepo:       areaRepo,
		transitionRepo: transitionRepo,
		sched:          sched,
		notifyClient:   notifyClient,
		timeProvider:   timeProvider,
		logger:         logger,
	}
}

// Execute выполняет use case отмены бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: item=%d, user=%d", req.ItemID, req.Actor.UserID)

	// 1. Валидация входных данных
	if req.ItemID <= 0 {
		return nil, fmt.Errorf("%w: itemID must be positive", ErrInvalidInput)
	}
	if req.Justification != nil && strings.TrimSpace(*req.Justification) == "" {
		return nil, fmt.Errorf("%w: justification must not be blank", ErrInvalidInput)
	}

	// 2. Предварительное чтение: нужен area_id для сериализации
	peek, err := uc.getItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now()

	var result *domain.CalendarItem

	// 3. Секция сериализации по объекту: перечитываем запись под блокировкой
	err = uc.sched.Execute(ctx, peek.AreaID, func(txCtx context.Context) error {
		item, err := uc.getItem(txCtx, req.ItemID)
		if err != nil {
			return err
		}

		if item.CondoID != req.Actor.CondoID {
			return ErrAccessDenied
		}
		if !req.Actor.IsManager() && !item.IsOwnedBy(req.Actor.UserID) {
			uc.logger.Warn("CancelBooking: user=%d does not own item id=%d", req.Actor.UserID, item.ID)
			return ErrAccessDenied
		}

		if err := domain.CheckTransition(req.Actor.Role, item.Status, domain.StatusCancelled); err != nil {
			uc.logger.Warn("CancelBooking: rejected by policy: %v", err)
			return err
		}

		// Срок отмены действует только для подтверждённых бронирований
		if item.Status == domain.StatusConfirmed {
			if err := uc.checkCutoff(txCtx, item, req, now); err != nil {
				return err
			}
		}

		if err := uc.itemRepo.Cancel(txCtx, item.ID, req.Justification); err != nil {
			if errors.Is(err, itemRepo.ErrItemNotFound) {
				return ErrItemNotFound
			}
			uc.logger.Error("CancelBooking: repository error for item id=%d: %v", item.ID, err)
			return fmt.Errorf("%w: repository error: %w", ErrInternal, err)
		}

		t := &domain.ItemTransition{
			ItemID:      item.ID,
			FromStatus:  item.Status,
			ToStatus:    domain.StatusCancelled,
			ActorUserID: &req.Actor.UserID,
			ActorRole:   req.Actor.Role,
			Reason:      req.Justification,
		}
		if _, err := uc.transitionRepo.Create(txCtx, t); err != nil {
			uc.logger.Error("CancelBooking: failed to record transition: %v", err)
			return fmt.Errorf("%w: failed to record transition: %w", ErrInternal, err)
		}

		item.Status = domain.StatusCancelled
		result = item
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CancelBooking: item id=%d cancelled", result.ID)

	// 4. Уведомляем заявителя, если отменял не он сам
	if req.Actor.IsManager() && !result.IsOwnedBy(req.Actor.UserID) {
		if err := uc.notifyClient.Notify(ctx, notifyservice.RecipientSelector{
			CondoID: result.CondoID,
			UserID:  result.UserID,
			UnitID:  result.UnitID,
		}, notifyservice.EventBookingCancelled, "Ваше бронирование отменено управляющим"); err != nil {
			uc.logger.Warn("CancelBooking: failed to notify for item id=%d: %v", result.ID, err)
		}
	}

	return &Response{ID: result.ID, Status: string(result.Status)}, nil
}

// checkCutoff проверяет срок отмены подтверждённого бронирования:
// житель после срока отменить не может, управляющий обязан указать обоснование
func (uc *UseCase) checkCutoff(ctx context.Context, item *domain.CalendarItem, req *Request, now time.Time) error {
	area, err := uc.areaRepo.GetByID(ctx, item.AreaID)
	if err != nil {
		if errors.Is(err, areaRepo.ErrAreaNotFound) {
			uc.logger.Error("CancelBooking: area id=%d not found for item id=%d", item.AreaID, item.ID)
			return fmt.Errorf("%w: area not found", ErrInternal)
		}
		uc.logger.Error("CancelBooking: failed to get area id=%d: %v", item.AreaID, err)
		return fmt.Errorf("%w: failed to get area: %w", ErrInternal, err)
	}

	if area.CancelCutoffMinutes <= 0 {
		return nil
	}

	cutoff := item.StartsAt.Add(-time.Duration(area.CancelCutoffMinutes) * time.Minute)
	if now.Before(cutoff) {
		return nil
	}

	if !req.Actor.IsManager() {
		uc.logger.Warn("CancelBooking: cutoff passed for item id=%d (cutoff=%s)", item.ID, cutoff.Format(time.RFC3339))
		return ErrPastCutoff
	}
	if req.Justification == nil {
		return ErrJustificationRequired
	}
	return nil
}

func (uc *UseCase) getItem(ctx context.Context, id int64) (*domain.CalendarItem, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, itemRepo.ErrItemNotFound) {
			uc.logger.Warn("CancelBooking: item id=%d not found", id)
			return nil, ErrItemNotFound
		}
		uc.logger.Error("CancelBooking: failed to get item id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get item: %w", ErrInternal, err)
	}
	return item, nil
}
