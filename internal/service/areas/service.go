package areas

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	areaRepo "github.com/m04kA/SMC-AmenityService/internal/infra/storage/area"
	"github.com/m04kA/SMC-AmenityService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-AmenityService/internal/service/areas/models"
	"github.com/m04kA/SMC-AmenityService/pkg/ptr"
)

// AgendaInvalidator сбрасывает кэш повестки после изменения правил объекта
type AgendaInvalidator interface {
	InvalidateAll()
}

// Service сервис управления объектами (общими зонами) кондоминиума
// Изменение правил не затрагивает уже созданные бронирования: новые правила
// применяются только к последующим заявкам
type Service struct {
	areaRepo       AreaRepository
	itemRepo       ItemRepository
	transitionRepo TransitionRepository
	sched          Scheduler
	notifyClient   NotifyClient
	timeProvider   TimeProvider
	invalidator    AgendaInvalidator
	logger         Logger
}

// NewService создает новый экземпляр сервиса объектов
func NewService(
	areaRepo AreaRepository,
	itemRepo ItemRepository,
	transitionRepo TransitionRepository,
	sched Scheduler,
	notifyClient NotifyClient,
	logger Logger,
) *Service {
	return &Service{
		areaRepo:       areaRepo,
		itemRepo:       itemRepo,
		transitionRepo: transitionRepo,
		sched:          sched,
		notifyClient:   notifyClient,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// SetAgendaInvalidator подключает сброс кэша повестки при изменении правил
func (s *Service) SetAgendaInvalidator(inv AgendaInvalidator) {
	s.invalidator = inv
}

// Create создает новый объект
// Доступно только управляющему кондоминиума
func (s *Service) Create(ctx context.Context, actor domain.Identity, req *models.CreateAreaRequest) (*models.AreaResponse, error) {
	s.logger.Info("Create: creating area %q for condo=%d by user=%d", req.Name, actor.CondoID, actor.UserID)

	if !actor.IsManager() {
		s.logger.Warn("Create: user=%d is not a manager of condo=%d", actor.UserID, actor.CondoID)
		return nil, ErrAccessDenied
	}

	area := req.ToDomainArea(actor.CondoID)
	if err := s.validateArea(area); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	created, err := s.areaRepo.Create(ctx, area)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created area id=%d", created.ID)
	return models.FromDomainArea(created), nil
}

// GetByID получает объект по ID
// Доступен всем пользователям кондоминиума
func (s *Service) GetByID(ctx context.Context, actor domain.Identity, id int64) (*models.AreaResponse, error) {
	area, err := s.getArea(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if area.CondoID != actor.CondoID {
		return nil, ErrAreaNotFound
	}

	return models.FromDomainArea(area), nil
}

// ListByCondo получает объекты кондоминиума
// Отключенные объекты видит только управляющий
func (s *Service) ListByCondo(ctx context.Context, actor domain.Identity, includeInactive bool) (*models.AreaListResponse, error) {
	if includeInactive && !actor.IsManager() {
		includeInactive = false
	}

	areas, err := s.areaRepo.ListByCondo(ctx, actor.CondoID, includeInactive)
	if err != nil {
		s.logger.Error("ListByCondo: repository error for condo=%d: %v", actor.CondoID, err)
		return nil, fmt.Errorf("%w: ListByCondo - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainAreaList(areas), nil
}

// Update обновляет правила объекта
// Доступно только управляющему; частичное обновление - применяются только
// переданные поля. Существующие бронирования не пересматриваются
func (s *Service) Update(ctx context.Context, actor domain.Identity, id int64, req *models.UpdateAreaRequest) (*models.AreaResponse, error) {
	s.logger.Info("Update: updating area id=%d by user=%d", id, actor.UserID)

	if !actor.IsManager() {
		return nil, ErrAccessDenied
	}

	area, err := s.getArea(ctx, "Update", id)
	if err != nil {
		return nil, err
	}
	if area.CondoID != actor.CondoID {
		return nil, ErrAreaNotFound
	}

	req.ApplyToArea(area)
	if err := s.validateArea(area); err != nil {
		s.logger.Warn("Update: validation failed for area id=%d: %v", id, err)
		return nil, err
	}

	if err := s.areaRepo.Update(ctx, area); err != nil {
		if errors.Is(err, areaRepo.ErrAreaNotFound) {
			return nil, ErrAreaNotFound
		}
		s.logger.Error("Update: repository error for area id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateAll()
	}

	s.logger.Info("Update: successfully updated area id=%d", id)
	return models.FromDomainArea(area), nil
}

// Deactivate отключает объект для новых бронирований
// Без force отказывает, если у объекта остались будущие бронирования;
// с force они каскадно отменяются с уведомлением заявителей
func (s *Service) Deactivate(ctx context.Context, actor domain.Identity, id int64, force bool) error {
	s.logger.Info("Deactivate: area id=%d by user=%d, force=%v", id, actor.UserID, force)

	if !actor.IsManager() {
		return ErrAccessDenied
	}

	area, err := s.getArea(ctx, "Deactivate", id)
	if err != nil {
		return err
	}
	if area.CondoID != actor.CondoID {
		return ErrAreaNotFound
	}

	var cancelled []*domain.CalendarItem

	err = s.sched.Execute(ctx, id, func(txCtx context.Context) error {
		// Транзакция может быть повторена при конфликте сериализации:
		// накопленное прошлой попыткой сбрасывается
		cancelled = nil

		future, err := s.itemRepo.ListFutureOccupying(txCtx, id, s.timeProvider.Now())
		if err != nil {
			s.logger.Error("Deactivate: failed to list future items for area id=%d: %v", id, err)
			return fmt.Errorf("%w: failed to list future items: %w", ErrInternal, err)
		}

		reservations := make([]*domain.CalendarItem, 0, len(future))
		for _, it := range future {
			if it.Kind == domain.KindReservation {
				reservations = append(reservations, it)
			}
		}

		if len(reservations) > 0 && !force {
			s.logger.Warn("Deactivate: area id=%d has %d future booking(s)", id, len(reservations))
			return ErrHasFutureBookings
		}

		reason := ptr.Ptr(fmt.Sprintf("area %q deactivated", area.Name))
		for _, it := range reservations {
			if err := s.itemRepo.Cancel(txCtx, it.ID, reason); err != nil {
				s.logger.Error("Deactivate: failed to cancel item id=%d: %v", it.ID, err)
				return fmt.Errorf("%w: failed to cancel item: %w", ErrInternal, err)
			}

			t := &domain.ItemTransition{
				ItemID:      it.ID,
				FromStatus:  it.Status,
				ToStatus:    domain.StatusCancelled,
				ActorUserID: &actor.UserID,
				ActorRole:   actor.Role,
				Reason:      reason,
			}
			if _, err := s.transitionRepo.Create(txCtx, t); err != nil {
				s.logger.Error("Deactivate: failed to record transition for item id=%d: %v", it.ID, err)
				return fmt.Errorf("%w: failed to record transition: %w", ErrInternal, err)
			}

			cancelled = append(cancelled, it)
		}

		if err := s.areaRepo.SetActive(txCtx, id, false); err != nil {
			if errors.Is(err, areaRepo.ErrAreaNotFound) {
				return ErrAreaNotFound
			}
			s.logger.Error("Deactivate: repository error for area id=%d: %v", id, err)
			return fmt.Errorf("%w: Deactivate - repository error: %w", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateAll()
	}

	// Уведомления вне критической секции
	for _, it := range cancelled {
		if err := s.notifyClient.Notify(ctx, notifyservice.RecipientSelector{
			CondoID: it.CondoID,
			UserID:  it.UserID,
			UnitID:  it.UnitID,
		}, notifyservice.EventBookingCancelled,
			fmt.Sprintf("Ваше бронирование отменено: объект %q больше недоступен", area.Name)); err != nil {
			s.logger.Warn("Deactivate: failed to notify owner of item id=%d: %v", it.ID, err)
		}
	}

	s.logger.Info("Deactivate: area id=%d deactivated, cancelled %d booking(s)", id, len(cancelled))
	return nil
}

func (s *Service) getArea(ctx context.Context, op string, id int64) (*domain.CommonArea, error) {
	area, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, areaRepo.ErrAreaNotFound) {
			s.logger.Warn("%s: area id=%d not found", op, id)
			return nil, ErrAreaNotFound
		}
		s.logger.Error("%s: repository error for area id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return area, nil
}

// validateArea проверяет правила объекта на допустимость
func (s *Service) validateArea(area *domain.CommonArea) error {
	if strings.TrimSpace(area.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(area.Name) > domain.MaxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, domain.MaxNameLength)
	}
	if area.Capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", ErrInvalidInput)
	}

	if err := area.OpensAt.Validate(); err != nil {
		return fmt.Errorf("%w: opensAt: %v", ErrInvalidInput, err)
	}
	if err := area.ClosesAt.Validate(); err != nil {
		return fmt.Errorf("%w: closesAt: %v", ErrInvalidInput, err)
	}
	if !area.OpensAt.IsBefore(area.ClosesAt) {
		return fmt.Errorf("%w: opensAt must be before closesAt", ErrInvalidInput)
	}

	if area.MinDurationMinutes < domain.MinDurationLimitMinutes {
		return fmt.Errorf("%w: minDurationMinutes must be at least %d", ErrInvalidInput, domain.MinDurationLimitMinutes)
	}
	if area.MaxDurationMinutes > domain.MaxDurationLimitMinutes {
		return fmt.Errorf("%w: maxDurationMinutes must be at most %d", ErrInvalidInput, domain.MaxDurationLimitMinutes)
	}
	if area.MinDurationMinutes > area.MaxDurationMinutes {
		return fmt.Errorf("%w: minDurationMinutes must not exceed maxDurationMinutes", ErrInvalidInput)
	}

	if area.MinNoticeMinutes < 0 || area.MinNoticeMinutes > domain.MaxNoticeLimitMinutes {
		return fmt.Errorf("%w: minNoticeMinutes must be between 0 and %d", ErrInvalidInput, domain.MaxNoticeLimitMinutes)
	}
	if area.MaxAdvanceDays < 0 || area.MaxAdvanceDays > domain.MaxAdvanceLimitDays {
		return fmt.Errorf("%w: maxAdvanceDays must be between 0 and %d", ErrInvalidInput, domain.MaxAdvanceLimitDays)
	}

	for _, d := range area.BlackoutWeekdays {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: blackout weekday must be between 0 and 6", ErrInvalidInput)
		}
	}
	if len(area.BlackoutWeekdays) == 7 {
		return fmt.Errorf("%w: blackout weekdays must not cover the whole week", ErrInvalidInput)
	}

	if area.MonthlyQuotaPerUnit < 0 {
		return fmt.Errorf("%w: monthlyQuotaPerUnit must not be negative", ErrInvalidInput)
	}
	if area.CancelCutoffMinutes < 0 {
		return fmt.Errorf("%w: cancelCutoffMinutes must not be negative", ErrInvalidInput)
	}

	return nil
}
