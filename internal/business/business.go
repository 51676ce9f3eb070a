// Package business wires the gateway together: storage, backend clients,
// the session manager and the HTTP server.
package business

import (
	"context"
	"fmt"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkpi/kpi-gateway/internal/backend"
	"github.com/openkpi/kpi-gateway/internal/business/server"
	"github.com/openkpi/kpi-gateway/internal/chrome"
	"github.com/openkpi/kpi-gateway/internal/config"
	"github.com/openkpi/kpi-gateway/internal/dashboard"
	"github.com/openkpi/kpi-gateway/internal/flash"
	"github.com/openkpi/kpi-gateway/internal/kvstore"
	kvvalkey "github.com/openkpi/kpi-gateway/internal/kvstore/valkey"
	"github.com/openkpi/kpi-gateway/internal/session"
	sessionkv "github.com/openkpi/kpi-gateway/internal/session/kv"
)

// Main starts the gateway API server.
func Main(ctx context.Context, cfg *config.Config) error {
	deps, closeFn, err := initDeps(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the gateway: %w", err)
	}

	defer closeFn()

	// The guard answers 503 until the startup probe finished; serving
	// starts immediately.
	go deps.Sessions.Initialize(ctx)

	return server.StartHTTPServer(ctx, cfg, deps)
}

func initDeps(ctx context.Context, cfg *config.Config) (_ server.Deps, closeFn func(), _ error) {
	store, closeFn, err := initStore(ctx, cfg)
	if err != nil {
		return server.Deps{}, nil, err
	}

	apiKey, err := commoncfg.LoadValueFromSourceRef(cfg.Backend.APIKey)
	if err != nil {
		closeFn()
		return server.Deps{}, nil, fmt.Errorf("loading backend api key: %w", err)
	}

	csrfSecret, err := commoncfg.LoadValueFromSourceRef(cfg.Gateway.CSRFSecret)
	if err != nil {
		closeFn()
		return server.Deps{}, nil, fmt.Errorf("loading csrf secret: %w", err)
	}

	client := backend.NewClient(
		cfg.Backend.AuthBaseURL,
		cfg.Backend.KPIBaseURL,
		string(apiKey),
		cfg.Backend.RequestTimeout,
	)

	sessionRepo := sessionkv.NewRepository(store)
	sessionManager := session.NewManager(sessionRepo, client, cfg.Gateway.SessionDuration, string(csrfSecret))

	return server.Deps{
		Sessions:  sessionManager,
		Backend:   client,
		Dashboard: dashboard.NewService(client, cfg.Gateway.DashboardCacheTTL),
		Flash:     flash.NewService(store, cfg.Gateway.FlashRetention),
		Crumbs:    chrome.NewBreadcrumbs(store),
	}, closeFn, nil
}

func initStore(ctx context.Context, cfg *config.Config) (kvstore.Store, func(), error) {
	valkeyHost, err := commoncfg.LoadValueFromSourceRef(cfg.ValKey.Host)
	if err != nil {
		return nil, nil, fmt.Errorf("loading valkey host: %w", err)
	}

	valkeyUsername, err := commoncfg.LoadValueFromSourceRef(cfg.ValKey.User)
	if err != nil {
		return nil, nil, fmt.Errorf("loading valkey username: %w", err)
	}

	valkeyPassword, err := commoncfg.LoadValueFromSourceRef(cfg.ValKey.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("loading valkey password: %w", err)
	}

	valkeyClient, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{string(valkeyHost)},
		Username:    string(valkeyUsername),
		Password:    string(valkeyPassword),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating a new valkey client: %w", err)
	}

	slogctx.Info(ctx, "Connected to ValKey", "prefix", cfg.ValKey.Prefix)

	closeFn := func() { valkeyClient.Close() }

	return kvvalkey.NewStore(valkeyClient, cfg.ValKey.Prefix), closeFn, nil
}
