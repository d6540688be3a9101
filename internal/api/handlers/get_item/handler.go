package get_item

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/service/items"
)

const (
	msgInvalidItemID   = "некорректный ID записи"
	msgMissingIdentity = "отсутствует личность пользователя"
	msgNotFound        = "запись не найдена"
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

// Handle GET /api/v1/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	itemID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /bookings/{id} - Invalid item ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidItemID)
		return
	}

	item, err := h.service.GetByID(r.Context(), actor, itemID)
	if err != nil {
		switch {
		case errors.Is(err, items.ErrItemNotFound):
			h.logger.Warn("GET /bookings/{id} - Not found: item_id=%d", itemID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, items.ErrAccessDenied):
			h.logger.Warn("GET /bookings/{id} - Access denied: item_id=%d, user_id=%d", itemID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /bookings/{id} - Failed: item_id=%d, error=%v", itemID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, item)
}
