package lift_block

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AmenityService/internal/api/handlers"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/scheduler"
	liftBlock "github.com/m04kA/SMC-AmenityService/internal/usecase/lift_block"
)

const (
	msgInvalidBlockID  = "некорректный ID блока"
	msgMissingIdentity = "отсутствует личность пользователя"
	msgNotFound        = "блок не найден"
	msgForbidden       = "доступ запрещен"
	msgSchedulerBusy   = "объект занят другой операцией, повторите запрос"
)

// LiftBlockResponse HTTP response model
type LiftBlockResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type Handler struct {
	useCase LiftBlockUseCase
	logger  Logger
}

func NewHandler(useCase LiftBlockUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/blocks/{blockId}/lift
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	blockID, err := strconv.ParseInt(mux.Vars(r)["blockId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /blocks/{id}/lift - Invalid block ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBlockID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &liftBlock.Request{
		ItemID: blockID,
		Actor:  actor,
	})
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("POST /blocks/{id}/lift - Rejected: block_id=%d, error=%v", blockID, err)
			return
		}

		switch {
		case errors.Is(err, liftBlock.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, liftBlock.ErrItemNotFound), errors.Is(err, liftBlock.ErrNotBlock):
			h.logger.Warn("POST /blocks/{id}/lift - Not found: block_id=%d", blockID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, liftBlock.ErrAccessDenied):
			h.logger.Warn("POST /blocks/{id}/lift - Access denied: block_id=%d, user_id=%d",
				blockID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, scheduler.ErrSchedulingTimeout):
			handlers.RespondServiceUnavailable(w, msgSchedulerBusy)

		default:
			h.logger.Error("POST /blocks/{id}/lift - Failed: block_id=%d, error=%v", blockID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /blocks/{id}/lift - Block closed: block_id=%d, user_id=%d", result.ID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, &LiftBlockResponse{ID: result.ID, Status: result.Status})
}
