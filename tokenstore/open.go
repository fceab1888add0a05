package tokenstore

import (
	"context"

	"github.com/samber/oops"

	"github.com/daticahealth/datisession/config"
)

// Store is the shape shared by every store in this package.
type Store interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string) error
	Remove(ctx context.Context) error
}

// Open builds the store selected by cfg.TokenStore. The returned close
// function releases any connection the store holds and is never nil.
func Open(cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.TokenStore {
	case config.StoreFile:
		f, err := NewFile(cfg.TokenPath)
		if err != nil {
			return nil, noop, err
		}
		return f, noop, nil
	case config.StoreKubeconfig:
		k, err := NewKubeconfig(cfg.Kubeconfig, cfg.KubeUser)
		if err != nil {
			return nil, noop, err
		}
		return k, noop, nil
	case config.StoreRedis:
		r, err := NewRedis(cfg.RedisURL, cfg.RedisKey, cfg.RedisTTL)
		if err != nil {
			return nil, noop, err
		}
		return r, r.Close, nil
	case config.StoreMemory:
		return NewMemory(), noop, nil
	default:
		return nil, noop, oops.Code("TOKENSTORE_KIND").With("token-store", cfg.TokenStore).
			Errorf("unknown token store %q", cfg.TokenStore)
	}
}
