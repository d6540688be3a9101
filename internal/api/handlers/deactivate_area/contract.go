package deactivate_area

import (
	"context"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

type AreaService interface {
	Deactivate(ctx context.Context, actor domain.Identity, id int64, force bool) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
