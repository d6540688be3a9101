package get_unit_items

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/service/items"
	"github.com/m04kA/SMC-AmenityService/internal/service/items/models"
)

const (
	msgInvalidUnitID   = "некорректный ID квартиры"
	msgInvalidStatus   = "некорректный статус"
	msgMissingIdentity = "отсутствует личность пользователя"
	msgForbidden       = "доступ запрещен"
)

type Handler struct {
	service ItemService
	logger  Logger
}

func NewHandler(service ItemService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/units/{unitId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	unitID, err := strconv.ParseInt(mux.Vars(r)["unitId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /units/{id}/bookings - Invalid unit ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUnitID)
		return
	}

	req := &models.GetUnitItemsRequest{UnitID: unitID}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetUnitItems(r.Context(), actor, req)
	if err != nil {
		switch {
		case errors.Is(err, items.ErrInvalidInput):
			h.logger.Warn("GET /units/{id}/bookings - Invalid input: unit_id=%d, error=%v", unitID, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, items.ErrAccessDenied):
			h.logger.Warn("GET /units/{id}/bookings - Access denied: unit_id=%d, user_id=%d", unitID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /units/{id}/bookings - Failed: unit_id=%d, error=%v", unitID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
