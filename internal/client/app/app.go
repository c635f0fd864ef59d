// Package app builds the client object graph for one process.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/client/api"
	"github.com/atinyakov/wardrobix/internal/client/auth"
	"github.com/atinyakov/wardrobix/internal/client/config"
	"github.com/atinyakov/wardrobix/internal/client/notify"
	"github.com/atinyakov/wardrobix/internal/client/outfit"
	"github.com/atinyakov/wardrobix/internal/client/session"
	"github.com/atinyakov/wardrobix/internal/client/wardrobe"
)

// App holds the wired client core.
type App struct {
	Config    *config.Config
	API       *api.Client
	Store     *session.Store
	Lifecycle *session.Controller
	Auth      *auth.Gateway
	Wardrobe  *wardrobe.Synchronizer
	Outfit    *outfit.Requester
}

// New validates cfg and wires every component against one backend.
func New(cfg *config.Config, notifier notify.Notifier, log *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Discard
	}

	httpClient, err := api.NewHTTPClient(cfg.CAFile, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if api.Cleartext(cfg.BaseURL) {
		log.Warn("backend is plain http on a non-loopback host, credentials travel unencrypted",
			zap.String("base_url", cfg.BaseURL))
	}

	client := api.New(cfg.BaseURL, httpClient, log)
	store := session.NewStore(notifier, log)
	lifecycle := session.NewController(store, log)
	sync := wardrobe.New(client, store, lifecycle, notifier, log)
	requester := outfit.New(client, store, lifecycle, notifier, log)
	lifecycle.Manage(sync, requester)

	return &App{
		Config:    cfg,
		API:       client,
		Store:     store,
		Lifecycle: lifecycle,
		Auth:      auth.NewGateway(client, store, notifier, log),
		Wardrobe:  sync,
		Outfit:    requester,
	}, nil
}
