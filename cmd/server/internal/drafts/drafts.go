package drafts

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/portfoliobuilder/intake/cmd/server/internal/intake"
	"github.com/portfoliobuilder/intake/internal/config"
)

// New picks the draft backend named in cfg. client is only used by the redis
// backend.
//
//nolint:ireturn // callers only need the store contract.
func New(cfg *config.DraftsConfig, client redis.Cmdable) (intake.DraftStore, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemory(cfg.TTL), nil
	case "redis":
		if client == nil {
			return nil, errors.New("redis draft backend requires a redis client")
		}
		return NewRedis(client, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown draft backend %q", cfg.Backend)
	}
}
