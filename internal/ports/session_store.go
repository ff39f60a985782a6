package ports

import (
	"context"

	"github.com/bnema/miniapp-telemetry/internal/domain"
)

// SessionStore never fails: write errors are swallowed and unreadable data
// loads as absent.
type SessionStore interface {
	Save(ctx context.Context, record domain.SessionRecord)
	Load(ctx context.Context) (domain.SessionRecord, bool)
	Clear(ctx context.Context)
}
