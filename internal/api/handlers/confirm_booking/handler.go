package confirm_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/scheduler"
	confirmBooking "github.com/m04kA/SMC-AmenityService/internal/usecase/confirm_booking"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingIdentity  = "отсутствует личность пользователя"
	msgNotFound         = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgSchedulerBusy    = "объект занят другой операцией, повторите запрос"
)

// ConfirmBookingResponse HTTP response model
type ConfirmBookingResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type Handler struct {
	useCase ConfirmBookingUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/confirm - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &confirmBooking.Request{
		ItemID: bookingID,
		Actor:  actor,
	})
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("POST /bookings/{id}/confirm - Rejected: booking_id=%d, error=%v", bookingID, err)
			return
		}

		switch {
		case errors.Is(err, confirmBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, confirmBooking.ErrItemNotFound):
			h.logger.Warn("POST /bookings/{id}/confirm - Not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, confirmBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/confirm - Access denied: booking_id=%d, user_id=%d",
				bookingID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, scheduler.ErrSchedulingTimeout):
			handlers.RespondServiceUnavailable(w, msgSchedulerBusy)

		default:
			h.logger.Error("POST /bookings/{id}/confirm - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/confirm - Confirmed: booking_id=%d, user_id=%d", result.ID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, &ConfirmBookingResponse{ID: result.ID, Status: result.Status})
}
