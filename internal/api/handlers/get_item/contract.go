package get_item

import (
	"context"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	"github.com/m04kA/SMC-AmenityService/internal/service/items/models"
)

type ItemService interface {
	GetByID(ctx context.Context, actor domain.Identity, id int64) (*models.ItemWithHistoryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
