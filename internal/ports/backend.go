package ports

import (
	"context"

	"github.com/bnema/miniapp-telemetry/internal/domain"
)

type Backend interface {
	RegisterPlayer(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResult, error)
	StartSession(ctx context.Context, req domain.StartRequest) (domain.StartResult, error)
	EndSession(ctx context.Context, req domain.EndRequest) (domain.EndResponse, error)
}
