package get_agenda

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	buildAgenda "github.com/m04kA/SMC-AmenityService/internal/usecase/build_agenda"
)

const (
	msgInvalidMonth    = "некорректный месяц, ожидается YYYY-MM"
	msgInvalidQuery    = "некорректные параметры запроса"
	msgMissingIdentity = "отсутствует личность пользователя"
)

type Handler struct {
	useCase BuildAgendaUseCase
	logger  Logger
}

func NewHandler(useCase BuildAgendaUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/agenda/{month}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	req := &buildAgenda.Request{
		CondoID: actor.CondoID,
		Month:   mux.Vars(r)["month"],
		Actor:   actor,
	}

	q := r.URL.Query()
	if v := q.Get("areaId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidQuery)
			return
		}
		req.AreaID = &id
	}
	if v := q.Get("includeInactive"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidQuery)
			return
		}
		req.IncludeInactive = include
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, buildAgenda.ErrInvalidInput):
			h.logger.Warn("GET /agenda/{month} - Invalid input: month=%s, error=%v", req.Month, err)
			handlers.RespondBadRequest(w, msgInvalidMonth)

		default:
			h.logger.Error("GET /agenda/{month} - Failed: condo_id=%d, month=%s, error=%v",
				actor.CondoID, req.Month, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
