package request_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/scheduler"
	requestBooking "github.com/m04kA/SMC-AmenityService/internal/usecase/request_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTimeRange   = "некорректный формат времени, ожидается RFC3339"
	msgMissingIdentity    = "отсутствует личность пользователя"
	msgAreaNotFound       = "объект не найден"
	msgSchedulerBusy      = "объект занят другой операцией, повторите запрос"
)

type Handler struct {
	useCase RequestBookingUseCase
	logger  Logger
}

func NewHandler(useCase RequestBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing identity")
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actor)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse time range: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTimeRange)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("POST /bookings - Rejected: user_id=%d, area_id=%d, error=%v",
				actor.UserID, req.AreaID, err)
			return
		}

		switch {
		case errors.Is(err, requestBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, requestBooking.ErrAreaNotFound), errors.Is(err, requestBooking.ErrWrongCondo):
			h.logger.Warn("POST /bookings - Area not found: area_id=%d, user_id=%d", req.AreaID, actor.UserID)
			handlers.RespondNotFound(w, msgAreaNotFound)

		case errors.Is(err, scheduler.ErrSchedulingTimeout):
			h.logger.Warn("POST /bookings - Scheduling timeout: area_id=%d", req.AreaID)
			handlers.RespondServiceUnavailable(w, msgSchedulerBusy)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, area_id=%d, error=%v",
				actor.UserID, req.AreaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created: booking_id=%d, user_id=%d, area_id=%d, status=%s",
		result.ID, actor.UserID, req.AreaID, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
