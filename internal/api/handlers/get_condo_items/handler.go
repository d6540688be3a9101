package get_condo_items

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/service/items"
	"github.com/m04kA/SMC-AmenityService/internal/service/items/models"
)

const (
	msgInvalidQuery    = "некорректные параметры запроса"
	msgMissingIdentity = "отсутствует личность пользователя"
	msgForbidden       = "список записей кондоминиума доступен только управляющему"
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

// Handle GET /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	req, err := parseQuery(r)
	if err != nil {
		h.logger.Warn("GET /bookings - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.service.GetCondoItems(r.Context(), actor, req)
	if err != nil {
		switch {
		case errors.Is(err, items.ErrInvalidInput):
			h.logger.Warn("GET /bookings - Invalid input: condo_id=%d, error=%v", actor.CondoID, err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		case errors.Is(err, items.ErrAccessDenied):
			h.logger.Warn("GET /bookings - Access denied: user_id=%d", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /bookings - Failed: condo_id=%d, error=%v", actor.CondoID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// parseQuery разбирает необязательные фильтры списка
func parseQuery(r *http.Request) (*models.GetCondoItemsRequest, error) {
	req := &models.GetCondoItemsRequest{}
	q := r.URL.Query()

	if v := q.Get("areaId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		req.AreaID = &id
	}
	if v := q.Get("unitId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		req.UnitID = &id
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		req.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		req.To = &t
	}
	if v := q.Get("status"); v != "" {
		req.Status = &v
	}
	if v := q.Get("includeInactive"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		req.IncludeInactive = include
	}

	return req, nil
}
