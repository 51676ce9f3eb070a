package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator"
	"github.com/samber/oops"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkpi/kpi-gateway/internal/backend"
	"github.com/openkpi/kpi-gateway/internal/chrome"
	"github.com/openkpi/kpi-gateway/internal/config"
	"github.com/openkpi/kpi-gateway/internal/dashboard"
	"github.com/openkpi/kpi-gateway/internal/flash"
	"github.com/openkpi/kpi-gateway/internal/guard"
	"github.com/openkpi/kpi-gateway/internal/middleware/visitor"
	"github.com/openkpi/kpi-gateway/internal/session"
)

// Deps bundles the services the HTTP API serves.
type Deps struct {
	Sessions  *session.Manager
	Backend   *backend.Client
	Dashboard *dashboard.Service
	Flash     *flash.Service
	Crumbs    *chrome.Breadcrumbs
}

// createHTTPServer builds the router: public auth endpoints, and the
// guarded session, dashboard, KPI, chrome and notification API.
func createHTTPServer(_ context.Context, cfg *config.Config, deps Deps) *http.Server {
	h := &handlers{
		sessions:      deps.Sessions,
		backend:       deps.Backend,
		dashboard:     deps.Dashboard,
		flash:         deps.Flash,
		crumbs:        deps.Crumbs,
		validate:      validator.New(),
		sessionCookie: cfg.Gateway.SessionCookieTemplate,
		loginPath:     cfg.Gateway.LoginPath,
		errorPath:     cfg.Gateway.ErrorPath,
	}

	g := guard.New(deps.Sessions, cfg.Gateway.SessionCookieTemplate.Name, cfg.Gateway.LoginPath)

	r := chi.NewRouter()
	r.Use(newTraceMiddleware(cfg))
	r.Use(visitor.Middleware(cfg.Gateway.VisitorCookieTemplate))

	r.Post("/login", h.login)
	r.Post("/signup", h.signup)
	r.Get("/error", h.errorInfo)

	// The notification slot is keyed by the visitor, not the session, so a
	// logout confirmation is still readable from the login page.
	r.Get("/api/notifications", h.getNotification)
	r.Delete("/api/notifications", h.dismissNotification)

	r.Group(func(r chi.Router) {
		r.Use(g.Protect)

		r.Post("/logout", h.logout)
		r.Get("/session", h.sessionInfo)

		r.Route("/api", func(r chi.Router) {
			r.Get("/dashboard/sectors", h.dashboardSectors)
			r.Get("/dashboard/provinces", h.dashboardProvinces)
			r.Get("/dashboard/recent", h.dashboardRecent)
			r.Post("/dashboard/rawdata", h.dashboardRawData)

			r.Get("/kpis", h.listKPIs)
			r.Post("/kpis", h.createKPI)
			r.Get("/kpis/enums", h.kpiEnums)
			r.Get("/kpis/{id}", h.getKPI)
			r.Post("/kpis/{id}/performances", h.recordPerformance)

			r.Get("/breadcrumbs", h.getBreadcrumbs)
			r.Post("/breadcrumbs", h.pushBreadcrumb)
			r.Get("/navigation", h.navigation)
		})
	})

	return &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: r,
	}
}

// StartHTTPServer starts the gateway API server using the given config.
func StartHTTPServer(ctx context.Context, cfg *config.Config, deps Deps) error {
	if err := initMeters(ctx, cfg); err != nil {
		return err
	}

	server := createHTTPServer(ctx, cfg, deps)

	slogctx.Info(ctx, "Starting a listener", "address", server.Addr)

	// Parse network if the address if provided in the format of network://address.
	// Otherwise use tcp network by default. Some integration tests are easier to implement
	// by binding a listener to a unix socket rather than a TCP port,
	// since we don't need to look up for a free port or scan /proc/net on Linux or call sysctl on macOS
	// to discover which port the process is bound to.
	network := "tcp"
	if idx := strings.IndexRune(server.Addr, ':'); idx != -1 && len(server.Addr) > idx+3 && server.Addr[idx:idx+3] == "://" {
		network = server.Addr[:idx]
		server.Addr = server.Addr[idx+3:]
	}

	listener, err := new(net.ListenConfig).Listen(ctx, network, server.Addr)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed to create a listener")
	}

	slogctx.Info(ctx, "A listener started", "address", listener.Addr().String())

	go func() {
		slogctx.Info(ctx, "Serving an HTTP server", "address", listener.Addr().String())
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogctx.Error(ctx, "Failed to serve an HTTP server", "error", err)
		}

		slogctx.Info(ctx, "Stopped an HTTP server")
	}()

	<-ctx.Done()

	shutdownCtx, shutdownRelease := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer shutdownRelease()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed shutting down HTTP server")
	}

	slogctx.Info(ctx, "Completed graceful shutdown of HTTP server")

	return nil
}
