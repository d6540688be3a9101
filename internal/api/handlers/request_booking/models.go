package request_booking

import (
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	requestBooking "github.com/m04kA/SMC-AmenityService/internal/usecase/request_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	AreaID   int64  `json:"areaId"`
	StartsAt string `json:"startsAt"` // RFC3339
	EndsAt   string `json:"endsAt"`   // RFC3339
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID       int64  `json:"id"`
	AreaID   int64  `json:"areaId"`
	CondoID  int64  `json:"condoId"`
	UnitID   int64  `json:"unitId"`
	UserID   int64  `json:"userId"`
	Status   string `json:"status"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(actor domain.Identity) (*requestBooking.Request, error) {
	startsAt, err := time.Parse(time.RFC3339, r.StartsAt)
	if err != nil {
		return nil, err
	}
	endsAt, err := time.Parse(time.RFC3339, r.EndsAt)
	if err != nil {
		return nil, err
	}

	return &requestBooking.Request{
		Actor:    actor,
		AreaID:   r.AreaID,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *requestBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:        resp.ID,
		AreaID:    resp.AreaID,
		CondoID:   resp.CondoID,
		UnitID:    resp.UnitID,
		UserID:    resp.UserID,
		Status:    resp.Status,
		StartsAt:  resp.StartsAt.Format(time.RFC3339),
		EndsAt:    resp.EndsAt.Format(time.RFC3339),
		CreatedAt: resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: resp.UpdatedAt.Format(time.RFC3339),
	}
}
