package cancel_booking

import (
	cancelBooking "github.com/m04kA/SMC-AmenityService/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Justification *string `json:"justification,omitempty"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		ID:     resp.ID,
		Status: resp.Status,
	}
}
