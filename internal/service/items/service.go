package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	itemRepo "github.com/m04kA/SMC-AmenityService/internal/infra/storage/item"
	"github.com/m04kA/SMC-AmenityService/internal/service/items/models"
)

// Service сервис чтения записей календаря
// Только чтение: записи меняются исключительно через use case-ы жизненного цикла
type Service struct {
	itemRepo       ItemRepository
	transitionRepo TransitionRepository
	logger         Logger
}

// NewService создает новый экземпляр сервиса записей календаря
func NewService(
	itemRepo ItemRepository,
	transitionRepo TransitionRepository,
	logger Logger,
) *Service {
	return &Service{
		itemRepo:       itemRepo,
		transitionRepo: transitionRepo,
		logger:         logger,
	}
}

// GetByID получает запись календаря с историей переходов
// Житель видит только свои бронирования, управляющий - любые записи кондоминиума
func (s *Service) GetByID(ctx context.Context, actor domain.Identity, id int64) (*models.ItemWithHistoryResponse, error) {
	s.logger.Info("GetByID: fetching item id=%d for user=%d", id, actor.UserID)

	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, itemRepo.ErrItemNotFound) {
			s.logger.Warn("GetByID: item id=%d not found", id)
			return nil, ErrItemNotFound
		}
		s.logger.Error("GetByID: repository error for item id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %w", ErrInternal, err)
	}

	if item.CondoID != actor.CondoID {
		return nil, ErrItemNotFound
	}
	if !actor.IsManager() && !item.IsOwnedBy(actor.UserID) {
		s.logger.Warn("GetByID: access denied for user=%d to item id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	transitions, err := s.transitionRepo.ListByItem(ctx, id)
	if err != nil {
		s.logger.Error("GetByID: failed to load history for item id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - failed to load history: %w", ErrInternal, err)
	}

	return &models.ItemWithHistoryResponse{
		ItemResponse: *models.FromDomainItem(item),
		History:      models.FromDomainTransitions(transitions),
	}, nil
}

// GetUnitItems получает историю бронирований квартиры
// Житель видит только свою квартиру, управляющий - любую в своём кондоминиуме
func (s *Service) GetUnitItems(ctx context.Context, actor domain.Identity, req *models.GetUnitItemsRequest) (*models.ItemListResponse, error) {
	s.logger.Info("GetUnitItems: fetching items for unit=%d by user=%d", req.UnitID, actor.UserID)

	if req.UnitID <= 0 {
		return nil, fmt.Errorf("%w: unitID must be positive", ErrInvalidInput)
	}
	if !actor.IsManager() && (actor.UnitID == nil || *actor.UnitID != req.UnitID) {
		s.logger.Warn("GetUnitItems: access denied for user=%d to unit=%d", actor.UserID, req.UnitID)
		return nil, ErrAccessDenied
	}

	var status *domain.ItemStatus
	if req.Status != nil {
		parsed, err := models.ToDomainItemStatus(*req.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = &parsed
	}

	items, err := s.itemRepo.ListByUnit(ctx, actor.CondoID, req.UnitID, status)
	if err != nil {
		s.logger.Error("GetUnitItems: repository error for unit=%d: %v", req.UnitID, err)
		return nil, fmt.Errorf("%w: GetUnitItems - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetUnitItems: fetched %d item(s) for unit=%d", len(items), req.UnitID)
	return models.FromDomainItemList(items), nil
}

// GetCondoItems получает записи календаря кондоминиума с гибкой фильтрацией
// Доступно только управляющему
func (s *Service) GetCondoItems(ctx context.Context, actor domain.Identity, req *models.GetCondoItemsRequest) (*models.ItemListResponse, error) {
	s.logger.Info("GetCondoItems: fetching items for condo=%d by user=%d", actor.CondoID, actor.UserID)

	if !actor.IsManager() {
		s.logger.Warn("GetCondoItems: user=%d is not a manager of condo=%d", actor.UserID, actor.CondoID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter(actor.CondoID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	items, err := s.itemRepo.ListWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetCondoItems: repository error for condo=%d: %v", actor.CondoID, err)
		return nil, fmt.Errorf("%w: GetCondoItems - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetCondoItems: fetched %d item(s) for condo=%d", len(items), actor.CondoID)
	return models.FromDomainItemList(items), nil
}
