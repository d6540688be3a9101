package lift_block

import (
	"context"

	liftBlock "github.com/m04kA/SMC-AmenityService/internal/usecase/lift_block"
)

type LiftBlockUseCase interface {
	Execute(ctx context.Context, req *liftBlock.Request) (*liftBlock.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
