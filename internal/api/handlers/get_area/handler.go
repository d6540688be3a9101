package get_area

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/service/areas"
)

const (
	msgInvalidAreaID   = "некорректный ID объекта"
	msgMissingIdentity = "отсутствует личность пользователя"
	msgNotFound        = "объект не найден"
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

// Handle GET /api/v1/areas/{areaId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	areaID, err := strconv.ParseInt(mux.Vars(r)["areaId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /areas/{id} - Invalid area ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAreaID)
		return
	}

	result, err := h.service.GetByID(r.Context(), actor, areaID)
	if err != nil {
		switch {
		case errors.Is(err, areas.ErrAreaNotFound):
			h.logger.Warn("GET /areas/{id} - Not found: area_id=%d", areaID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /areas/{id} - Failed: area_id=%d, error=%v", areaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
