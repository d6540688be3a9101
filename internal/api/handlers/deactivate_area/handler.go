package deactivate_area

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/scheduler"
	"github.com/m04kA/SMC-AmenityService/internal/service/areas"
)

const (
	msgInvalidAreaID     = "некорректный ID объекта"
	msgMissingIdentity   = "отсутствует личность пользователя"
	msgNotFound          = "объект не найден"
	msgForbidden         = "отключение объектов доступно только управляющему"
	msgHasFutureBookings = "у объекта есть будущие бронирования; повторите с force=true для каскадной отмены"
	msgSchedulerBusy     = "объект занят другой операцией, повторите запрос"
)

type Handler struct {
	service AreaService
	logger  Logger
}

func NewHandler(service AreaService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/areas/{areaId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	areaID, err := strconv.ParseInt(mux.Vars(r)["areaId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /areas/{id} - Invalid area ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAreaID)
		return
	}

	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		force, err = strconv.ParseBool(v)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidAreaID)
			return
		}
	}

	if err := h.service.Deactivate(r.Context(), actor, areaID, force); err != nil {
		switch {
		case errors.Is(err, areas.ErrAreaNotFound):
			h.logger.Warn("DELETE /areas/{id} - Not found: area_id=%d", areaID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, areas.ErrAccessDenied):
			h.logger.Warn("DELETE /areas/{id} - Access denied: area_id=%d, user_id=%d", areaID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, areas.ErrHasFutureBookings):
			h.logger.Warn("DELETE /areas/{id} - Has future bookings: area_id=%d", areaID)
			handlers.RespondError(w, http.StatusConflict, msgHasFutureBookings)

		case errors.Is(err, scheduler.ErrSchedulingTimeout):
			handlers.RespondServiceUnavailable(w, msgSchedulerBusy)

		default:
			h.logger.Error("DELETE /areas/{id} - Failed: area_id=%d, error=%v", areaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /areas/{id} - Area deactivated: area_id=%d, force=%v, user_id=%d",
		areaID, force, actor.UserID)
	w.WriteHeader(http.StatusNoContent)
}
