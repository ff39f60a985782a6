package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/bnema/miniapp-telemetry/internal/ports"
	"github.com/rs/zerolog"
)

const DefaultKey = "game_session"

// recordSchema is the stored JSON shape; it matches what the browser host
// keeps in localStorage.
type recordSchema struct {
	ID        string `json:"id"`
	StartedAt string `json:"started_at"`
}

// Fields is the record in its stored shape, for handing to page scripts.
func Fields(record domain.SessionRecord) map[string]any {
	out := map[string]any{"id": record.ID, "started_at": nil}
	if !record.StartedAt.IsZero() {
		out["started_at"] = domain.FormatTimestamp(record.StartedAt)
	}
	return out
}

// Store persists a single SessionRecord under a fixed key. Every failure is
// logged and swallowed.
type Store struct {
	kv     ports.KeyValueStore
	key    string
	logger zerolog.Logger
}

var _ ports.SessionStore = (*Store)(nil)

func NewStore(kv ports.KeyValueStore, key string, logger zerolog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key, logger: logger.With().Str("component", "session_store").Logger()}
}

func (s *Store) Save(ctx context.Context, record domain.SessionRecord) {
	data, err := json.Marshal(recordSchema{
		ID:        record.ID,
		StartedAt: domain.FormatTimestamp(record.StartedAt),
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("encode session record")
		return
	}

	if err := s.kv.Put(ctx, s.key, string(data)); err != nil {
		s.logger.Debug().Err(err).Msg("save session record")
	}
}

func (s *Store) Load(ctx context.Context) (domain.SessionRecord, bool) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Debug().Err(err).Msg("load session record")
		}
		return domain.SessionRecord{}, false
	}

	var schema recordSchema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		s.logger.Debug().Err(err).Msg("decode session record")
		return domain.SessionRecord{}, false
	}
	if schema.ID == "" {
		return domain.SessionRecord{}, false
	}

	record := domain.SessionRecord{ID: schema.ID}
	if schema.StartedAt != "" {
		startedAt, err := domain.ParseTimestamp(schema.StartedAt)
		if err != nil {
			s.logger.Debug().Err(err).Msg("decode session start time")
		} else {
			record.StartedAt = startedAt
		}
	}

	return record, true
}

func (s *Store) Clear(ctx context.Context) {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.logger.Debug().Err(err).Msg("clear session record")
	}
}
