package get_area

import (
	"context"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	"github.com/m04kA/SMC-AmenityService/internal/service/areas/models"
)

type AreaService interface {
	GetByID(ctx context.Context, actor domain.Identity, id int64) (*models.AreaResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
