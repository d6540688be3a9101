package list_areas

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
)

const (
	msgInvalidQuery    = "некорректные параметры запроса"
	msgMissingIdentity = "отсутствует личность пользователя"
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

// Handle GET /api/v1/areas
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	includeInactive := false
	if v := r.URL.Query().Get("includeInactive"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidQuery)
			return
		}
		includeInactive = parsed
	}

	result, err := h.service.ListByCondo(r.Context(), actor, includeInactive)
	if err != nil {
		h.logger.Error("GET /areas - Failed: condo_id=%d, error=%v", actor.CondoID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
