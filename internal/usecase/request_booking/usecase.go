package request_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	areaRepo "github.com/m04kA/SMC-AmenityService/internal/infra/storage/area"
	"github.com/m04kA/SMC-AmenityService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-AmenityService/pkg/ptr"
)

// UseCase use case создания заявки на бронирование
// Связка "проверить правила и пересечения — записать" выполняется под
// сериализацией планировщика: из двух одновременных заявок на пересекающееся
// время успешной будет ровно одна
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
	logger Logger,
) *UseCase {
	return &UseCase{
		itemRepo:       itemRepo,
		areaRepo:       areaRepo,
		transitionRepo: transitionRepo,
		sched:          sched,
		notifyClient:   notifyClient,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RequestBooking: user=%d, unit=%v, area=%d, range=%s..%s",
		req.Actor.UserID, ptr.Deref(req.Actor.UnitID), req.AreaID,
		req.StartsAt.Format("2006-01-02 15:04"), req.EndsAt.Format("2006-01-02 15:04"))

	// 1. Валидация входных данных и права на создание заявки
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RequestBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var result *domain.CalendarItem
	var area *domain.CommonArea

	// 3. Всё остальное — под сериализацией по объекту
	err := uc.sched.Execute(ctx, req.AreaID, func(txCtx context.Context) error {
		// 3.1. Загружаем объект внутри критической секции: правила читаются
		// атомарно с проверкой пересечений
		var err error
		area, err = uc.areaRepo.GetByID(txCtx, req.AreaID)
		if err != nil {
			if errors.Is(err, areaRepo.ErrAreaNotFound) {
				uc.logger.Warn("RequestBooking: area id=%d not found", req.AreaID)
				return ErrAreaNotFound
			}
			uc.logger.Error("RequestBooking: failed to get area id=%d: %v", req.AreaID, err)
			return fmt.Errorf("%w: failed to get area: %w", ErrInternal, err)
		}

		if area.CondoID != req.Actor.CondoID {
			uc.logger.Warn("RequestBooking: area id=%d belongs to condo=%d, actor condo=%d",
				req.AreaID, area.CondoID, req.Actor.CondoID)
			return ErrWrongCondo
		}

		// 3.2. Квота квартиры за календарный месяц начала бронирования
		quotaUsed := 0
		if area.HasQuota() {
			periodFrom, periodTo := domain.QuotaPeriod(req.StartsAt)
			quotaUsed, err = uc.itemRepo.CountOccupyingByUnit(txCtx, req.AreaID, *req.Actor.UnitID, periodFrom, periodTo)
			if err != nil {
				uc.logger.Error("RequestBooking: failed to count unit quota: %v", err)
				return fmt.Errorf("%w: failed to count unit quota: %w", ErrInternal, err)
			}
		}

		// 3.3. Правила объекта; возвращается первое нарушенное правило
		if err := domain.ValidateReservationRules(area, req.StartsAt, req.EndsAt, now, quotaUsed); err != nil {
			uc.logger.Warn("RequestBooking: rule violation: %v", err)
			return err
		}

		// 3.4. Пересечения с существующими записями (строки блокируются FOR UPDATE)
		existing, err := uc.itemRepo.ListOccupyingInRange(txCtx, req.AreaID, req.StartsAt, req.EndsAt)
		if err != nil {
			uc.logger.Error("RequestBooking: failed to list occupying items: %v", err)
			return fmt.Errorf("%w: failed to list occupying items: %w", ErrInternal, err)
		}

		if conflicts := domain.FindConflicts(existing, req.StartsAt, req.EndsAt, 0); len(conflicts) > 0 {
			uc.logger.Warn("RequestBooking: range conflicts with %d item(s) on area=%d", len(conflicts), req.AreaID)
			return domain.NewConflictError(conflicts)
		}

		// 3.5. Создаем бронирование со статусом согласно политике объекта
		item := &domain.CalendarItem{
			AreaID:   req.AreaID,
			CondoID:  area.CondoID,
			UnitID:   req.Actor.UnitID,
			UserID:   &req.Actor.UserID,
			Kind:     domain.KindReservation,
			Status:   area.InitialReservationStatus(),
			StartsAt: req.StartsAt,
			EndsAt:   req.EndsAt,
		}

		created, err := uc.itemRepo.Create(txCtx, item)
		if err != nil {
			uc.logger.Error("RequestBooking: failed to create item: %v", err)
			return fmt.Errorf("%w: failed to create item: %w", ErrInternal, err)
		}

		// 3.6. История переходов: создание + авто-переходы политики
		if err := uc.recordTransitions(txCtx, created, req.Actor); err != nil {
			return err
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("RequestBooking: created booking id=%d status=%s", result.ID, result.Status)

	// 4. Уведомления вне критической секции; отказ доставки не откатывает решение
	uc.notify(ctx, result, area)

	return fromDomainItem(result), nil
}

// recordTransitions пишет переход создания и, при авто-политике, системные переходы
func (uc *UseCase) recordTransitions(ctx context.Context, item *domain.CalendarItem, actor domain.Identity) error {
	steps := []domain.ItemTransition{
		{
			ItemID:      item.ID,
			FromStatus:  domain.StatusCreated,
			ToStatus:    domain.StatusPending,
			ActorUserID: &actor.UserID,
			ActorRole:   actor.Role,
		},
	}

	if item.Status == domain.StatusApproved || item.Status == domain.StatusConfirmed {
		steps = append(steps, domain.ItemTransition{
			ItemID:     item.ID,
			FromStatus: domain.StatusPending,
			ToStatus:   domain.StatusApproved,
			ActorRole:  domain.RoleSystem,
			Reason:     ptr.Ptr("auto-approval policy"),
		})
	}

	if item.Status == domain.StatusConfirmed {
		steps = append(steps, domain.ItemTransition{
			ItemID:     item.ID,
			FromStatus: domain.StatusApproved,
			ToStatus:   domain.StatusConfirmed,
			ActorRole:  domain.RoleSystem,
			Reason:     ptr.Ptr("auto-confirm policy"),
		})
	}

	for i := range steps {
		if _, err := uc.transitionRepo.Create(ctx, &steps[i]); err != nil {
			uc.logger.Error("RequestBooking: failed to record transition: %v", err)
			return fmt.Errorf("%w: failed to record transition: %w", ErrInternal, err)
		}
	}

	return nil
}

func (uc *UseCase) notify(ctx context.Context, item *domain.CalendarItem, area *domain.CommonArea) {
	var event, message string
	recipient := notifyservice.RecipientSelector{CondoID: item.CondoID}

	if item.Status == domain.StatusPending {
		// Заявка ждет решения управляющих
		event = notifyservice.EventBookingRequested
		message = fmt.Sprintf("Новая заявка на бронирование %q", area.Name)
		recipient.CondoManagers = true
	} else {
		event = notifyservice.EventBookingApproved
		message = fmt.Sprintf("Бронирование %q подтверждено автоматически", area.Name)
		recipient.UserID = item.UserID
		recipient.UnitID = item.UnitID
	}

	if err := uc.notifyClient.Notify(ctx, recipient, event, message); err != nil {
		uc.logger.Warn("RequestBooking: failed to notify for booking id=%d: %v", item.ID, err)
	}
}
