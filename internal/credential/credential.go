// Package credential resolves the Smartlead bearer token from an ordered
// list of sources. Resolution happens before a sync is invoked; the pipeline
// itself only ever sees the final token string.
package credential

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/outboundops/smartlead-sync/internal/repository"
)

// ErrNotFound means no source in the chain held a token.
var ErrNotFound = errors.New("credential: no bearer token configured, set one via the dashboard or SLSYNC_SMARTLEAD_BEARER")

// Source yields a token or "" when it has none.
type Source interface {
	Token(ctx context.Context) (string, error)
}

// Chain consults sources in order; the first non-empty token wins.
type Chain []Source

func (c Chain) Resolve(ctx context.Context) (string, error) {
	for _, src := range c {
		token, err := src.Token(ctx)
		if err != nil {
			return "", err
		}
		if token = strings.TrimSpace(token); token != "" {
			return token, nil
		}
	}
	return "", ErrNotFound
}

// StoreSource reads the token persisted in app_settings.
type StoreSource struct {
	Settings repository.SettingsRepository
}

func (s StoreSource) Token(ctx context.Context) (string, error) {
	return s.Settings.GetBearer(ctx)
}

// EnvSource reads the token from an environment variable.
type EnvSource struct {
	Key string
}

func (s EnvSource) Token(context.Context) (string, error) {
	return os.Getenv(s.Key), nil
}

// StaticSource is a fixed fallback value (typically from config).
type StaticSource string

func (s StaticSource) Token(context.Context) (string, error) {
	return string(s), nil
}

// Default is the production chain: stored value, then environment, then the
// configured fallback.
func Default(settings repository.SettingsRepository, configured string) Chain {
	return Chain{
		StoreSource{Settings: settings},
		EnvSource{Key: "SLSYNC_SMARTLEAD_BEARER"},
		StaticSource(configured),
	}
}
