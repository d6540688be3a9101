package cancel_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/scheduler"
	cancelBooking "github.com/m04kA/SMC-AmenityService/internal/usecase/cancel_booking"
)

const (
	msgInvalidBookingID    = "некорректный ID бронирования"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingIdentity     = "отсутствует личность пользователя"
	msgNotFound            = "бронирование не найдено"
	msgForbidden           = "доступ запрещен"
	msgPastCutoff          = "срок самостоятельной отмены истёк, обратитесь к управляющему"
	msgJustificationNeeded = "отмена после истечения срока требует обоснования"
	msgSchedulerBusy       = "объект занят другой операцией, повторите запрос"
)

type Handler struct {
	useCase CancelBookingUseCase
	logger  Logger
}

func NewHandler(useCase CancelBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/cancel - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Тело опционально: обоснование нужно только управляющему после срока отмены
	var req CancelBookingRequest
	if r.ContentLength > 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("POST /bookings/{id}/cancel - Invalid request body: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	result, err := h.useCase.Execute(r.Context(), &cancelBooking.Request{
		ItemID:        bookingID,
		Actor:         actor,
		Justification: req.Justification,
	})
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("POST /bookings/{id}/cancel - Rejected: booking_id=%d, error=%v", bookingID, err)
			return
		}

		switch {
		case errors.Is(err, cancelBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, cancelBooking.ErrItemNotFound):
			h.logger.Warn("POST /bookings/{id}/cancel - Not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, cancelBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/cancel - Access denied: booking_id=%d, user_id=%d",
				bookingID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, cancelBooking.ErrPastCutoff):
			h.logger.Warn("POST /bookings/{id}/cancel - Past cutoff: booking_id=%d, user_id=%d",
				bookingID, actor.UserID)
			handlers.RespondForbidden(w, msgPastCutoff)

		case errors.Is(err, cancelBooking.ErrJustificationRequired):
			h.logger.Warn("POST /bookings/{id}/cancel - Missing justification: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgJustificationNeeded)

		case errors.Is(err, scheduler.ErrSchedulingTimeout):
			handlers.RespondServiceUnavailable(w, msgSchedulerBusy)

		default:
			h.logger.Error("POST /bookings/{id}/cancel - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/cancel - Cancelled: booking_id=%d, user_id=%d", result.ID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
