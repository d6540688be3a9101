package place_block

import (
	"context"

	placeBlock "github.com/m04kA/SMC-AmenityService/internal/usecase/place_block"
)

type PlaceBlockUseCase interface {
	Execute(ctx context.Context, req *placeBlock.Request) (*placeBlock.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
