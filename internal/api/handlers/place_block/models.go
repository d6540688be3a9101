package place_block

import (
	"time"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	placeBlock "github.com/m04kA/SMC-AmenityService/internal/usecase/place_block"
)

// PlaceBlockRequest HTTP request model
type PlaceBlockRequest struct {
	AreaID   int64  `json:"areaId"`
	StartsAt string `json:"startsAt"` // RFC3339
	EndsAt   string `json:"endsAt"`   // RFC3339
	Reason   string `json:"reason"`
	Force    bool   `json:"force,omitempty"`
}

// PlaceBlockResponse HTTP response model
type PlaceBlockResponse struct {
	ID               int64   `json:"id"`
	Status           string  `json:"status"`
	CancelledItemIDs []int64 `json:"cancelledItemIds,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *PlaceBlockRequest) ToUseCaseRequest(actor domain.Identity) (*placeBlock.Request, error) {
	startsAt, err := time.Parse(time.RFC3339, r.StartsAt)
	if err != nil {
		return nil, err
	}
	endsAt, err := time.Parse(time.RFC3339, r.EndsAt)
	if err != nil {
		return nil, err
	}

	return &placeBlock.Request{
		AreaID:   r.AreaID,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Reason:   r.Reason,
		Actor:    actor,
		Force:    r.Force,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *placeBlock.Response) *PlaceBlockResponse {
	return &PlaceBlockResponse{
		ID:               resp.ID,
		Status:           resp.Status,
		CancelledItemIDs: resp.CancelledItemIDs,
	}
}
