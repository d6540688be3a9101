package decide_booking

import (
	decideBooking "github.com/m04kA/SMC-AmenityService/internal/usecase/decide_booking"
)

// DecideBookingRequest HTTP request model
type DecideBookingRequest struct {
	Decision string  `json:"decision"` // approve | reject
	Reason   *string `json:"reason,omitempty"`
}

// DecideBookingResponse HTTP response model
type DecideBookingResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *decideBooking.Response) *DecideBookingResponse {
	return &DecideBookingResponse{
		ID:     resp.ID,
		Status: resp.Status,
	}
}
