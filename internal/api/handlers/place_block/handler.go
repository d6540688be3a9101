package place_block

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/scheduler"
	placeBlock "github.com/m04kA/SMC-AmenityService/internal/usecase/place_block"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTimeRange   = "некорректный формат времени, ожидается RFC3339"
	msgMissingIdentity    = "отсутствует личность пользователя"
	msgAreaNotFound       = "объект не найден"
	msgBlockOverlap       = "интервал пересекается с другим блоком обслуживания"
	msgSchedulerBusy      = "объект занят другой операцией, повторите запрос"
)

type Handler struct {
	useCase PlaceBlockUseCase
	logger  Logger
}

func NewHandler(useCase PlaceBlockUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/blocks
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	var req PlaceBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actor)
	if err != nil {
		h.logger.Warn("POST /blocks - Failed to parse time range: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTimeRange)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("POST /blocks - Rejected: area_id=%d, error=%v", req.AreaID, err)
			return
		}

		switch {
		case errors.Is(err, placeBlock.ErrInvalidInput):
			h.logger.Warn("POST /blocks - Invalid input: area_id=%d, error=%v", req.AreaID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, placeBlock.ErrAreaNotFound), errors.Is(err, placeBlock.ErrWrongCondo):
			h.logger.Warn("POST /blocks - Area not found: area_id=%d", req.AreaID)
			handlers.RespondNotFound(w, msgAreaNotFound)

		case errors.Is(err, placeBlock.ErrBlockOverlap):
			h.logger.Warn("POST /blocks - Overlaps active block: area_id=%d", req.AreaID)
			handlers.RespondError(w, http.StatusConflict, msgBlockOverlap)

		case errors.Is(err, scheduler.ErrSchedulingTimeout):
			h.logger.Warn("POST /blocks - Scheduling timeout: area_id=%d", req.AreaID)
			handlers.RespondServiceUnavailable(w, msgSchedulerBusy)

		default:
			h.logger.Error("POST /blocks - Failed: area_id=%d, error=%v", req.AreaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /blocks - Block placed: block_id=%d, area_id=%d, cancelled=%d",
		result.ID, req.AreaID, len(result.CancelledItemIDs))
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
