package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid calendar item status")
)

// Request модели

// GetUnitItemsRequest запрос истории бронирований квартиры
type GetUnitItemsRequest struct {
	UnitID int64   `json:"unitId"`
	Status *string `json:"status,omitempty"`
}

// GetCondoItemsRequest запрос записей календаря кондоминиума
type GetCondoItemsRequest struct {
	AreaID          *int64     `json:"areaId,omitempty"`          // Фильтр по объекту (опционально)
	UnitID          *int64     `json:"unitId,omitempty"`          // Фильтр по квартире (опционально)
	From            *time.Time `json:"from,omitempty"`            // Начало периода (опционально)
	To              *time.Time `json:"to,omitempty"`              // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить записи в конечных статусах
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetCondoItemsRequest) ToDomainFilter(condoID int64) (domain.CondoItemsFilter, error) {
	filter := domain.CondoItemsFilter{
		CondoID:         condoID,
		AreaID:          r.AreaID,
		UnitID:          r.UnitID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainItemStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ItemResponse ответ с данными записи календаря
type ItemResponse struct {
	ID      int64 `json:"id"`
	AreaID  int64 `json:"areaId"`
	CondoID int64 `json:"condoId"`

	UnitID *int64 `json:"unitId,omitempty"`
	UserID *int64 `json:"userId,omitempty"`

	Kind     string    `json:"kind"`
	Status   string    `json:"status"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	RejectionReason    *string    `json:"rejectionReason,omitempty"`
	BlockReason        *string    `json:"blockReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TransitionResponse ответ с одним переходом жизненного цикла
type TransitionResponse struct {
	FromStatus  string    `json:"fromStatus,omitempty"`
	ToStatus    string    `json:"toStatus"`
	ActorUserID *int64    `json:"actorUserId,omitempty"`
	ActorRole   string    `json:"actorRole"`
	Reason      *string   `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ItemWithHistoryResponse запись календаря с историей переходов
type ItemWithHistoryResponse struct {
	ItemResponse
	History []TransitionResponse `json:"history"`
}

// ItemListResponse ответ со списком записей
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
}

// Методы конвертации

// FromDomainItem конвертирует domain модель в DTO
func FromDomainItem(i *domain.CalendarItem) *ItemResponse {
	if i == nil {
		return nil
	}

	return &ItemResponse{
		ID:                 i.ID,
		AreaID:             i.AreaID,
		CondoID:            i.CondoID,
		UnitID:             i.UnitID,
		UserID:             i.UserID,
		Kind:               string(i.Kind),
		Status:             string(i.Status),
		StartsAt:           i.StartsAt,
		EndsAt:             i.EndsAt,
		CancellationReason: i.CancellationReason,
		RejectionReason:    i.RejectionReason,
		BlockReason:        i.BlockReason,
		CancelledAt:        i.CancelledAt,
		CreatedAt:          i.CreatedAt,
		UpdatedAt:          i.UpdatedAt,
	}
}

// FromDomainItemList конвертирует список domain моделей в DTO
func FromDomainItemList(items []*domain.CalendarItem) *ItemListResponse {
	resp := &ItemListResponse{Items: make([]ItemResponse, 0, len(items))}
	for _, i := range items {
		resp.Items = append(resp.Items, *FromDomainItem(i))
	}
	return resp
}

// FromDomainTransitions конвертирует историю переходов в DTO
func FromDomainTransitions(transitions []*domain.ItemTransition) []TransitionResponse {
	out := make([]TransitionResponse, 0, len(transitions))
	for _, t := range transitions {
		out = append(out, TransitionResponse{
			FromStatus:  string(t.FromStatus),
			ToStatus:    string(t.ToStatus),
			ActorUserID: t.ActorUserID,
			ActorRole:   string(t.ActorRole),
			Reason:      t.Reason,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out
}

// ToDomainItemStatus конвертирует строку статуса в domain тип
func ToDomainItemStatus(status string) (domain.ItemStatus, error) {
	s := domain.ItemStatus(status)
	switch s {
	case domain.StatusPending, domain.StatusApproved, domain.StatusConfirmed,
		domain.StatusCompleted, domain.StatusRejected, domain.StatusCancelled,
		domain.StatusBlockActive, domain.StatusBlockClosed:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}
