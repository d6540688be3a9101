package create_area

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/service/areas"
	"github.com/m04kA/SMC-AmenityService/internal/service/areas/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingIdentity    = "отсутствует личность пользователя"
	msgForbidden          = "создание объектов доступно только управляющему"
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

// Handle POST /api/v1/areas
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	var req models.CreateAreaRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /areas - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, areas.ErrInvalidInput):
			h.logger.Warn("POST /areas - Invalid input: condo_id=%d, error=%v", actor.CondoID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, areas.ErrAccessDenied):
			h.logger.Warn("POST /areas - Access denied: user_id=%d", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /areas - Failed: condo_id=%d, error=%v", actor.CondoID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /areas - Area created: area_id=%d, condo_id=%d", result.ID, actor.CondoID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
