package decide_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	itemRepo "github.com/m04kA/SMC-AmenityService/internal/infra/storage/item"
	"github.com/m04kA/SMC-AmenityService/internal/integrations/notifyservice"
)

// UseCase use case решения управляющего по заявке (одобрить / отклонить)
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

// Execute выполняет use case решения по заявке
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("DecideBooking: item=%d, decision=%s, user=%d", req.ItemID, req.Decision, req.Actor.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("DecideBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Предварительное чтение: нужен area_id для сериализации
	peek, err := uc.getItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	var result *domain.CalendarItem
	var notifyEvent, notifyMessage string

	// 3. Решение — под сериализацией по объекту
	err = uc.sched.Execute(ctx, peek.AreaID, func(txCtx context.Context) error {
		// 3.1. Перечитываем заявку под блокировкой: статус мог измениться
		item, err := uc.getItem(txCtx, req.ItemID)
		if err != nil {
			return err
		}

		if item.Kind != domain.KindReservation {
			return ErrNotReservation
		}

		if item.CondoID != req.Actor.CondoID {
			uc.logger.Warn("DecideBooking: item id=%d belongs to condo=%d, actor condo=%d",
				item.ID, item.CondoID, req.Actor.CondoID)
			return ErrAccessDenied
		}

		switch req.Decision {
		case DecisionApprove:
			result, notifyEvent, notifyMessage, err = uc.approve(txCtx, item, req)
		case DecisionReject:
			result, notifyEvent, notifyMessage, err = uc.reject(txCtx, item, req)
		}
		return err
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("DecideBooking: item id=%d -> status=%s", result.ID, result.Status)

	// 4. Уведомляем заявителя; отказ доставки не откатывает решение
	if err := uc.notifyClient.Notify(ctx, notifyservice.RecipientSelector{
		CondoID: result.CondoID,
		UserID:  result.UserID,
		UnitID:  result.UnitID,
	}, notifyEvent, notifyMessage); err != nil {
		uc.logger.Warn("DecideBooking: failed to notify for item id=%d: %v", result.ID, err)
	}

	return &Response{ID: result.ID, Status: string(result.Status)}, nil
}

// approve переводит заявку pending → approved (и далее в confirmed при auto_confirm)
func (uc *UseCase) approve(ctx context.Context, item *domain.CalendarItem, req *Request) (*domain.CalendarItem, string, string, error) {
	if err := domain.CheckTransition(req.Actor.Role, item.Status, domain.StatusApproved); err != nil {
		uc.logger.Warn("DecideBooking: approve rejected by policy: %v", err)
		return nil, "", "", err
	}

	target := domain.StatusApproved

	// Политика объекта может схлопывать одобрение в подтверждение
	area, err := uc.areaRepo.GetByID(ctx, item.AreaID)
	if err != nil {
		uc.logger.Error("DecideBooking: failed to get area id=%d: %v", item.AreaID, err)
		return nil, "", "", fmt.Errorf("%w: failed to get area: %w", ErrInternal, err)
	}
	if area.AutoConfirm {
		target = domain.StatusConfirmed
	}

	if err := uc.itemRepo.UpdateStatus(ctx, item.ID, domain.StatusApproved); err != nil {
		return nil, "", "", uc.wrapRepoErr("approve", err)
	}
	if err := uc.recordTransition(ctx, item.ID, item.Status, domain.StatusApproved, req, nil); err != nil {
		return nil, "", "", err
	}

	if target == domain.StatusConfirmed {
		if err := uc.itemRepo.UpdateStatus(ctx, item.ID, domain.StatusConfirmed); err != nil {
			return nil, "", "", uc.wrapRepoErr("auto-confirm", err)
		}
		systemReq := &Request{Actor: domain.Identity{Role: domain.RoleSystem}}
		reason := "auto-confirm policy"
		if err := uc.recordTransition(ctx, item.ID, domain.StatusApproved, domain.StatusConfirmed, systemReq, &reason); err != nil {
			return nil, "", "", err
		}
	}

	item.Status = target
	return item, notifyservice.EventBookingApproved, "Ваша заявка на бронирование одобрена", nil
}

// reject переводит заявку pending → rejected с обязательной причиной
func (uc *UseCase) reject(ctx context.Context, item *domain.CalendarItem, req *Request) (*domain.CalendarItem, string, string, error) {
	if err := domain.CheckTransition(req.Actor.Role, item.Status, domain.StatusRejected); err != nil {
		uc.logger.Warn("DecideBooking: reject rejected by policy: %v", err)
		return nil, "", "", err
	}

	if err := uc.itemRepo.Reject(ctx, item.ID, *req.Reason); err != nil {
		return nil, "", "", uc.wrapRepoErr("reject", err)
	}
	if err := uc.recordTransition(ctx, item.ID, item.Status, domain.StatusRejected, req, req.Reason); err != nil {
		return nil, "", "", err
	}

	item.Status = domain.StatusRejected
	item.RejectionReason = req.Reason
	return item, notifyservice.EventBookingRejected,
		fmt.Sprintf("Ваша заявка отклонена: %s", *req.Reason), nil
}

func (uc *UseCase) getItem(ctx context.Context, id int64) (*domain.CalendarItem, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, itemRepo.ErrItemNotFound) {
			uc.logger.Warn("DecideBooking: item id=%d not found", id)
			return nil, ErrItemNotFound
		}
		uc.logger.Error("DecideBooking: failed to get item id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get item: %w", ErrInternal, err)
	}
	return item, nil
}

func (uc *UseCase) recordTransition(ctx context.Context, itemID int64, from, to domain.ItemStatus, req *Request, reason *string) error {
	t := &domain.ItemTransition{
		ItemID:     itemID,
		FromStatus: from,
		ToStatus:   to,
		ActorRole:  req.Actor.Role,
		Reason:     reason,
	}
	if req.Actor.UserID > 0 {
		t.ActorUserID = &req.Actor.UserID
	}

	if _, err := uc.transitionRepo.Create(ctx, t); err != nil {
		uc.logger.Error("DecideBooking: failed to record transition: %v", err)
		return fmt.Errorf("%w: failed to record transition: %w", ErrInternal, err)
	}
	return nil
}

func (uc *UseCase) wrapRepoErr(op string, err error) error {
	if errors.Is(err, itemRepo.ErrItemNotFound) {
		return ErrItemNotFound
	}
	uc.logger.Error("DecideBooking: %s - repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ItemID <= 0 {
		return fmt.Errorf("%w: itemID must be positive", ErrInvalidInput)
	}

	if req.Decision != DecisionApprove && req.Decision != DecisionReject {
		return fmt.Errorf("%w: unknown decision %q", ErrInvalidInput, req.Decision)
	}

	if !req.Actor.IsManager() {
		return ErrAccessDenied
	}

	if req.Decision == DecisionReject {
		if req.Reason == nil || strings.TrimSpace(*req.Reason) == "" {
			return ErrReasonRequired
		}
		if len(*req.Reason) > domain.MaxReasonLength {
			return fmt.Errorf("%w: reason is too long", ErrInvalidInput)
		}
	}

	return nil
}
