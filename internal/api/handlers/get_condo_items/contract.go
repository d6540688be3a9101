package get_condo_items

import (
	"context"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	"github.com/m04kA/SMC-AmenityService/internal/service/items/models"
)

type ItemService interface {
	GetCondoItems(ctx context.Context, actor domain.Identity, req *models.GetCondoItemsRequest) (*models.ItemListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
