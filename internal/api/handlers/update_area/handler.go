package update_area

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/service/areas"
	"github.com/m04kA/SMC-AmenityService/internal/service/areas/models"
)

const (
	msgInvalidAreaID      = "некорректный ID объекта"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingIdentity    = "отсутствует личность пользователя"
	msgNotFound           = "объект не найден"
	msgForbidden          = "изменение объектов доступно только управляющему"
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

// Handle PATCH /api/v1/areas/{areaId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	areaID, err := strconv.ParseInt(mux.Vars(r)["areaId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /areas/{id} - Invalid area ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAreaID)
		return
	}

	var req models.UpdateAreaRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /areas/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), actor, areaID, &req)
	if err != nil {
		switch {
		case errors.Is(err, areas.ErrInvalidInput):
			h.logger.Warn("PATCH /areas/{id} - Invalid input: area_id=%d, error=%v", areaID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, areas.ErrAreaNotFound):
			h.logger.Warn("PATCH /areas/{id} - Not found: area_id=%d", areaID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, areas.ErrAccessDenied):
			h.logger.Warn("PATCH /areas/{id} - Access denied: area_id=%d, user_id=%d", areaID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("PATCH /areas/{id} - Failed: area_id=%d, error=%v", areaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /areas/{id} - Area updated: area_id=%d, user_id=%d", result.ID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
