package place_block

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	areaRepo "github.com/m04kA/SMC-AmenityService/internal/infra/storage/area"
	"github.com/m04kA/SMC-AmenityService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-AmenityService/pkg/ptr"
)

// UseCase use case установки блока обслуживания управляющим
// Без force пересечение с активными бронированиями возвращает конфликт;
// с force пересекающиеся бронирования каскадно отменяются в той же
// транзакции, что и создание блока, с уведомлением заявителей
type UseCase struct {
	itemRepo       ItemRepository
	areaRepo       AreaRepository
	transitionRepo TransitionRepository
	sched          Scheduler
	notifyClient   NotifyClient
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	itemRepo ItemRepository,
	areaRepo AreaRepository,
	transitionRepo TransitionRepository,
	sched Scheduler,
	notifyClient NotifyClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		itemRepo:       itemRepo,
		areaRepo:       areaRepo,
		transitionRepo: transitionRepo,
		sched:          sched,
		notifyClient:   notifyClient,
		logger:         logger,
	}
}

// Execute выполняет use case установки блока
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("PlaceBlock: area=%d, range=%s..%s, force=%v, user=%d",
		req.AreaID, req.StartsAt.Format("2006-01-02 15:04"), req.EndsAt.Format("2006-01-02 15:04"),
		req.Force, req.Actor.UserID)

	// 1. Валидация входных данных и права на установку блока
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("PlaceBlock: validation failed: %v", err)
		return nil, err
	}

	var result *domain.CalendarItem
	var cancelled []*domain.CalendarItem

	// 2. Секция сериализации по объекту
	err := uc.sched.Execute(ctx, req.AreaID, func(txCtx context.Context) error {
		// Транзакция может быть повторена при конфликте сериализации:
		// накопленное прошлой попыткой сбрасывается
		cancelled = nil

		area, err := uc.areaRepo.GetByID(txCtx, req.AreaID)
		if err != nil {
			if errors.Is(err, areaRepo.ErrAreaNotFound) {
				uc.logger.Warn("PlaceBlock: area id=%d not found", req.AreaID)
				return ErrAreaNotFound
			}
			uc.logger.Error("PlaceBlock: failed to get area id=%d: %v", req.AreaID, err)
			return fmt.Errorf("%w: failed to get area: %w", ErrInternal, err)
		}

		if area.CondoID != req.Actor.CondoID {
			return ErrWrongCondo
		}

		// 2.1. Пересечения с занимающими записями (строки блокируются FOR UPDATE)
		existing, err := uc.itemRepo.ListOccupyingInRange(txCtx, req.AreaID, req.StartsAt, req.EndsAt)
		if err != nil {
			uc.logger.Error("PlaceBlock: failed to list occupying items: %v", err)
			return fmt.Errorf("%w: failed to list occupying items: %w", ErrInternal, err)
		}

		overlapping := domain.FindConflicts(existing, req.StartsAt, req.EndsAt, 0)

		// Пересечение с другим активным блоком конфликтно всегда
		for _, it := range overlapping {
			if it.Kind == domain.KindMaintenanceBlock {
				uc.logger.Warn("PlaceBlock: range overlaps active block id=%d on area=%d", it.ID, req.AreaID)
				return ErrBlockOverlap
			}
		}

		if len(overlapping) > 0 && !req.Force {
			uc.logger.Warn("PlaceBlock: range conflicts with %d reservation(s) on area=%d", len(overlapping), req.AreaID)
			return domain.NewConflictError(overlapping)
		}

		// 2.2. Каскадная отмена пересекающихся бронирований
		for _, it := range overlapping {
			if err := uc.cancelReservation(txCtx, it, req); err != nil {
				return err
			}
			cancelled = append(cancelled, it)
		}

		// 2.3. Создаем блок; к квартире и пользователю он не привязан
		block := &domain.CalendarItem{
			AreaID:      req.AreaID,
			CondoID:     area.CondoID,
			Kind:        domain.KindMaintenanceBlock,
			Status:      domain.StatusBlockActive,
			StartsAt:    req.StartsAt,
			EndsAt:      req.EndsAt,
			BlockReason: &req.Reason,
		}

		created, err := uc.itemRepo.Create(txCtx, block)
		if err != nil {
			uc.logger.Error("PlaceBlock: failed to create block: %v", err)
			return fmt.Errorf("%w: failed to create block: %w", ErrInternal, err)
		}

		t := &domain.ItemTransition{
			ItemID:      created.ID,
			FromStatus:  domain.StatusCreated,
			ToStatus:    domain.StatusBlockActive,
			ActorUserID: &req.Actor.UserID,
			ActorRole:   req.Actor.Role,
			Reason:      &req.Reason,
		}
		if _, err := uc.transitionRepo.Create(txCtx, t); err != nil {
			uc.logger.Error("PlaceBlock: failed to record transition: %v", err)
			return fmt.Errorf("%w: failed to record transition: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("PlaceBlock: block id=%d placed on area=%d, cancelled %d reservation(s)",
		result.ID, result.AreaID, len(cancelled))

	// 3. Уведомления вне критической секции
	uc.notify(ctx, result, cancelled)

	resp := &Response{ID: result.ID, Status: string(result.Status)}
	for _, it := range cancelled {
		resp.CancelledItemIDs = append(resp.CancelledItemIDs, it.ID)
	}
	return resp, nil
}

// cancelReservation отменяет одно бронирование в рамках каскада
func (uc *UseCase) cancelReservation(ctx context.Context, item *domain.CalendarItem, req *Request) error {
	if err := domain.CheckTransition(req.Actor.Role, item.Status, domain.StatusCancelled); err != nil {
		uc.logger.Error("PlaceBlock: cascade cancel of item id=%d rejected by policy: %v", item.ID, err)
		return fmt.Errorf("%w: cascade cancel: %w", ErrInternal, err)
	}

	reason := ptr.Ptr(fmt.Sprintf("maintenance block: %s", req.Reason))
	if err := uc.itemRepo.Cancel(ctx, item.ID, reason); err != nil {
		uc.logger.Error("PlaceBlock: failed to cancel item id=%d: %v", item.ID, err)
		return fmt.Errorf("%w: failed to cancel item: %w", ErrInternal, err)
	}

	t := &domain.ItemTransition{
		ItemID:      item.ID,
		FromStatus:  item.Status,
		ToStatus:    domain.StatusCancelled,
		ActorUserID: &req.Actor.UserID,
		ActorRole:   req.Actor.Role,
		Reason:      reason,
	}
	if _, err := uc.transitionRepo.Create(ctx, t); err != nil {
		uc.logger.Error("PlaceBlock: failed to record cascade transition: %v", err)
		return fmt.Errorf("%w: failed to record transition: %w", ErrInternal, err)
	}

	item.Status = domain.StatusCancelled
	return nil
}

func (uc *UseCase) notify(ctx context.Context, block *domain.CalendarItem, cancelled []*domain.CalendarItem) {
	for _, it := range cancelled {
		message := fmt.Sprintf("Ваше бронирование на %s отменено: объект закрыт на обслуживание",
			it.StartsAt.Format("02.01.2006 15:04"))
		if err := uc.notifyClient.Notify(ctx, notifyservice.RecipientSelector{
			CondoID: it.CondoID,
			UserID:  it.UserID,
			UnitID:  it.UnitID,
		}, notifyservice.EventBookingCancelled, message); err != nil {
			uc.logger.Warn("PlaceBlock: failed to notify owner of item id=%d: %v", it.ID, err)
		}
	}

	if err := uc.notifyClient.Notify(ctx, notifyservice.RecipientSelector{
		CondoID: block.CondoID,
	}, notifyservice.EventBlockPlaced,
		fmt.Sprintf("Объект закрыт на обслуживание с %s по %s",
			block.StartsAt.Format("02.01.2006 15:04"), block.EndsAt.Format("02.01.2006 15:04"))); err != nil {
		uc.logger.Warn("PlaceBlock: failed to broadcast block id=%d: %v", block.ID, err)
	}
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AreaID <= 0 {
		return fmt.Errorf("%w: areaID must be positive", ErrInvalidInput)
	}
	if req.Actor.UserID <= 0 || req.Actor.CondoID <= 0 {
		return fmt.Errorf("%w: actor identity is incomplete", ErrInvalidInput)
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return fmt.Errorf("%w: startsAt and endsAt are required", ErrInvalidInput)
	}
	if !req.StartsAt.Before(req.EndsAt) {
		return fmt.Errorf("%w: startsAt must be before endsAt", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	// Право на установку блока: только управляющий
	return domain.CheckTransition(req.Actor.Role, domain.StatusCreated, domain.StatusBlockActive)
}
