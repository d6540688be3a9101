package decide_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/scheduler"
	decideBooking "github.com/m04kA/SMC-AmenityService/internal/usecase/decide_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingIdentity    = "отсутствует личность пользователя"
	msgNotFound           = "заявка не найдена"
	msgForbidden          = "решение по заявке принимает управляющий"
	msgReasonRequired     = "при отклонении заявки требуется причина"
	msgSchedulerBusy      = "объект занят другой операцией, повторите запрос"
)

type Handler struct {
	useCase DecideBookingUseCase
	logger  Logger
}

func NewHandler(useCase DecideBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/decision
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/decision - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req DecideBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/decision - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &decideBooking.Request{
		ItemID:   bookingID,
		Decision: decideBooking.Decision(req.Decision),
		Reason:   req.Reason,
		Actor:    actor,
	})
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("POST /bookings/{id}/decision - Rejected: booking_id=%d, error=%v", bookingID, err)
			return
		}

		switch {
		case errors.Is(err, decideBooking.ErrReasonRequired):
			h.logger.Warn("POST /bookings/{id}/decision - Missing reason: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgReasonRequired)

		case errors.Is(err, decideBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/decision - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, decideBooking.ErrItemNotFound), errors.Is(err, decideBooking.ErrNotReservation):
			h.logger.Warn("POST /bookings/{id}/decision - Not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, decideBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/decision - Access denied: booking_id=%d, user_id=%d",
				bookingID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, scheduler.ErrSchedulingTimeout):
			h.logger.Warn("POST /bookings/{id}/decision - Scheduling timeout: booking_id=%d", bookingID)
			handlers.RespondServiceUnavailable(w, msgSchedulerBusy)

		default:
			h.logger.Error("POST /bookings/{id}/decision - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/decision - Decision applied: booking_id=%d, status=%s, user_id=%d",
		result.ID, result.Status, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
