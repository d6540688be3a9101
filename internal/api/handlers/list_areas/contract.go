package list_areas

import (
	"context"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
	"github.com/m04kA/SMC-AmenityService/internal/service/areas/models"
)

type AreaService interface {
	ListByCondo(ctx context.Context, actor domain.Identity, includeInactive bool) (*models.AreaListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
