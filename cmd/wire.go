package cmd

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/bnema/miniapp-telemetry/internal/adapters/backend/httpapi"
	identityadapter "github.com/bnema/miniapp-telemetry/internal/adapters/identity"
	statusadapter "github.com/bnema/miniapp-telemetry/internal/adapters/render/status"
	chainstore "github.com/bnema/miniapp-telemetry/internal/adapters/storage/chain"
	sessionstore "github.com/bnema/miniapp-telemetry/internal/adapters/storage/session"
	"github.com/bnema/miniapp-telemetry/internal/adapters/transport"
	"github.com/bnema/miniapp-telemetry/internal/application"
	"github.com/bnema/miniapp-telemetry/internal/config"
	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/bnema/miniapp-telemetry/internal/logging"
	"github.com/bnema/miniapp-telemetry/internal/ports"
	"github.com/bnema/miniapp-telemetry/internal/version"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type app struct {
	cfg            config.Config
	logger         zerolog.Logger
	sessions       ports.SessionStore
	backend        httpapi.Client
	resolver       *application.IdentityResolver
	clock          ports.Clock
	statusRenderer func(statusadapter.Snapshot, statusadapter.RenderOptions) (string, error)
	page           pageFlags
}

type pageFlags struct {
	url      string
	initData string
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	kv, err := chainstore.NewFileFirstWithMemoryFallback(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("wire session storage chain: %w", err)
	}

	backend := httpapi.Client{
		API: cfg.Backend.API(),
		Fetcher: transport.Fetcher{
			HTTPClient: http.DefaultClient,
			Timeout:    cfg.Backend.Timeout,
			Retries:    cfg.Backend.Retries,
			Logger:     logger,
		},
		Contract:           cfg.Backend.Contract,
		GameCode:           cfg.Backend.GameCode,
		EndStatus:          cfg.Backend.EndStatus,
		ForwardDiagnostics: cfg.Backend.ForwardDiagnostics,
		Logger:             logger,
	}

	return &app{
		cfg:            cfg,
		logger:         logger,
		sessions:       sessionstore.NewStore(kv, cfg.Storage.SessionKey, logger),
		backend:        backend,
		resolver:       application.NewIdentityResolver(identityadapter.DefaultProviders()...),
		clock:          ports.SystemClock{},
		statusRenderer: statusadapter.Render,
	}, nil
}

func (a *app) currentPage() (ports.Page, error) {
	page := ports.Page{}

	if raw := strings.TrimSpace(a.page.url); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil {
			return ports.Page{}, fmt.Errorf("parse page url: %w", err)
		}
		page.URL = parsed
	}
	if raw := strings.TrimSpace(a.page.initData); raw != "" {
		page.Host = identityadapter.NewInitDataHost(raw)
	}

	return page, nil
}

func (a *app) resolve() (domain.Resolution, error) {
	page, err := a.currentPage()
	if err != nil {
		return domain.Resolution{}, err
	}
	return a.resolver.Resolve(page), nil
}

// newLifecycle resolves identity for the current page and binds a backend
// client that forwards that page's diagnostics.
func (a *app) newLifecycle() (*application.Lifecycle, error) {
	if err := a.cfg.RequireBackend(); err != nil {
		return nil, err
	}

	resolution, err := a.resolve()
	if err != nil {
		return nil, err
	}

	backend := a.backend.WithDiagnostics(httpapi.Diagnostics{
		UserAgent: "mt/" + version.Version,
		Language:  os.Getenv("LANG"),
		InitData:  resolution.InitData,
		Signature: resolution.Signature,
	})

	return application.NewLifecycle(backend, a.sessions, a.clock, resolution, a.logger), nil
}
