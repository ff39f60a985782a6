//go:build js && wasm

// Command mtwasm runs the telemetry lifecycle inside the mini-app page. Load
// it after the host SDK script; configure it through window.MT_CONFIG.
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"syscall/js"
	"time"

	"github.com/bnema/miniapp-telemetry/internal/adapters/backend/httpapi"
	identityadapter "github.com/bnema/miniapp-telemetry/internal/adapters/identity"
	chainstore "github.com/bnema/miniapp-telemetry/internal/adapters/storage/chain"
	memorystore "github.com/bnema/miniapp-telemetry/internal/adapters/storage/memory"
	sessionstore "github.com/bnema/miniapp-telemetry/internal/adapters/storage/session"
	"github.com/bnema/miniapp-telemetry/internal/adapters/transport"
	"github.com/bnema/miniapp-telemetry/internal/application"
	"github.com/bnema/miniapp-telemetry/internal/config"
	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/bnema/miniapp-telemetry/internal/logging"
	"github.com/bnema/miniapp-telemetry/internal/ports"
	"github.com/bnema/miniapp-telemetry/internal/version"
	"github.com/rs/zerolog"
)

const exportName = "miniappTelemetry"

type pageConfig struct {
	backend  httpapi.API
	timeout  time.Duration
	retries  int
	contract httpapi.Contract
	gameCode string
	logLevel string
}

func main() {
	if !install(js.Global()) {
		return
	}

	select {}
}

// install wires the lifecycle into the page and reports whether telemetry is
// running. An invalid MT_CONFIG installs nothing.
func install(global js.Value) bool {
	cfg, err := readPageConfig(global.Get("MT_CONFIG"))
	logger, logErr := logging.New(config.LogConfig{Level: cfg.logLevel, Format: "json"}, os.Stdout)
	if logErr != nil {
		logger = zerolog.New(os.Stdout)
	}
	if err != nil {
		logger.Error().Err(err).Msg("invalid MT_CONFIG, telemetry disabled")
		return false
	}

	lifecycle := newLifecycle(cfg, logger)

	exportAPI(global, lifecycle)
	listen(global, lifecycle)

	go lifecycle.Boot(context.Background())
	return true
}

func readPageConfig(raw js.Value) (pageConfig, error) {
	cfg := pageConfig{
		backend: httpapi.API{
			RegisterPath: httpapi.DefaultRegisterPath,
			StartPath:    httpapi.DefaultStartPath,
			EndPath:      httpapi.DefaultEndPath,
		},
		timeout:  transport.DefaultTimeout,
		retries:  transport.DefaultRetries,
		contract: httpapi.ContractTimestamp,
		logLevel: "info",
	}
	if !raw.Truthy() {
		return cfg, fmt.Errorf("MT_CONFIG is not set")
	}

	cfg.backend.BaseURL = stringProp(raw, "baseUrl")
	if cfg.backend.BaseURL == "" {
		return cfg, config.ErrBaseURLMissing
	}
	if path := stringProp(raw, "registerPath"); path != "" {
		cfg.backend.RegisterPath = path
	}
	if path := stringProp(raw, "startPath"); path != "" {
		cfg.backend.StartPath = path
	}
	if path := stringProp(raw, "endPath"); path != "" {
		cfg.backend.EndPath = path
	}
	if ms := raw.Get("timeoutMs"); ms.Type() == js.TypeNumber && ms.Int() > 0 {
		cfg.timeout = time.Duration(ms.Int()) * time.Millisecond
	}
	if retries := raw.Get("retries"); retries.Type() == js.TypeNumber && retries.Int() >= 0 {
		cfg.retries = retries.Int()
	}
	contract, err := httpapi.ParseContract(stringProp(raw, "contract"))
	if err != nil {
		return cfg, err
	}
	cfg.contract = contract
	cfg.gameCode = stringProp(raw, "gameCode")
	if level := stringProp(raw, "logLevel"); level != "" {
		cfg.logLevel = level
	}

	return cfg, nil
}

func newLifecycle(cfg pageConfig, logger zerolog.Logger) *application.Lifecycle {
	global := js.Global()

	page := ports.Page{}
	if parsed, err := url.Parse(global.Get("location").Get("href").String()); err == nil {
		page.URL = parsed
	}
	if host, ok := lookupHost(); ok {
		page.Host = host
	}

	resolution := application.NewIdentityResolver(identityadapter.DefaultProviders()...).Resolve(page)

	navigator := global.Get("navigator")
	screenSize := ""
	if screen := global.Get("screen"); screen.Truthy() {
		screenSize = fmt.Sprintf("%dx%d", screen.Get("width").Int(), screen.Get("height").Int())
	}
	backend := httpapi.Client{
		API: cfg.backend,
		Fetcher: transport.Fetcher{
			HTTPClient: &http.Client{Transport: keepaliveTransport{}},
			Timeout:    cfg.timeout,
			Retries:    cfg.retries,
			Logger:     logger,
		},
		Contract:           cfg.contract,
		GameCode:           cfg.gameCode,
		ForwardDiagnostics: true,
		Diagnostics: httpapi.Diagnostics{
			UserAgent: stringProp(navigator, "userAgent"),
			Language:  stringProp(navigator, "language"),
			Screen:    screenSize,
			InitData:  resolution.InitData,
			Signature: resolution.Signature,
		},
		Logger: logger.With().Str("version", version.Version).Logger(),
	}

	kv := chainstore.NewStore(localStorage{}, memorystore.NewStore())
	sessions := sessionstore.NewStore(kv, sessionstore.DefaultKey, logger)

	return application.NewLifecycle(backend, sessions, ports.SystemClock{}, resolution, logger)
}

// listen wires page events. Gesture listeners fire once; the lifecycle guard
// drops any start after the first anyway.
func listen(global js.Value, lifecycle *application.Lifecycle) {
	window := global.Get("window")
	document := global.Get("document")
	once := js.ValueOf(map[string]any{"once": true, "passive": true})

	for _, trigger := range []domain.StartTrigger{domain.TriggerPointerDown, domain.TriggerKeyDown, domain.TriggerTouchStart} {
		trigger := trigger
		window.Call("addEventListener", string(trigger), js.FuncOf(func(js.Value, []js.Value) any {
			go lifecycle.Trigger(context.Background(), trigger)
			return nil
		}), once)
	}

	document.Call("addEventListener", "visibilitychange", js.FuncOf(func(js.Value, []js.Value) any {
		if document.Get("hidden").Bool() {
			lifecycle.EndDetached(domain.EndVisibilityHidden, "")
		}
		return nil
	}))

	window.Call("addEventListener", "beforeunload", js.FuncOf(func(js.Value, []js.Value) any {
		lifecycle.EndDetached(domain.EndUnload, "")
		return nil
	}))
}

// exportAPI publishes the page-facing calls. Each returns a Promise because
// network calls must not block the JS event loop.
func exportAPI(global js.Value, lifecycle *application.Lifecycle) {
	api := map[string]any{
		"startSession": promiseFunc(func(ctx context.Context, _ []js.Value) (any, error) {
			return sessionValue(lifecycle.RequestStart(ctx)), nil
		}),
		"endSession": promiseFunc(func(ctx context.Context, args []js.Value) (any, error) {
			reason := ""
			if len(args) > 0 && args[0].Type() == js.TypeString {
				reason = args[0].String()
			}
			result := lifecycle.End(ctx, domain.EndExternal, reason)
			return map[string]any{
				"sessionId": result.SessionID,
				"delivered": result.Delivered,
				"status":    result.Status,
				"error":     result.Error,
			}, nil
		}),
		"registerPlayer": promiseFunc(func(ctx context.Context, _ []js.Value) (any, error) {
			result, err := lifecycle.RegisterPlayer(ctx)
			if err != nil {
				return nil, err
			}
			return result.Raw, nil
		}),
		"loadSession": js.FuncOf(func(js.Value, []js.Value) any {
			record, ok := lifecycle.LoadSession(context.Background())
			return sessionValue(record, ok)
		}),
		"version": version.Version,
	}

	global.Set(exportName, js.ValueOf(api))
}

func sessionValue(record domain.SessionRecord, ok bool) any {
	if !ok {
		return nil
	}

	return sessionstore.Fields(record)
}

func promiseFunc(call func(ctx context.Context, args []js.Value) (any, error)) js.Func {
	return js.FuncOf(func(_ js.Value, args []js.Value) any {
		executor := js.FuncOf(func(_ js.Value, handlers []js.Value) any {
			resolve, reject := handlers[0], handlers[1]
			go func() {
				value, err := call(context.Background(), args)
				if err != nil {
					reject.Invoke(js.Global().Get("Error").New(err.Error()))
					return
				}
				resolve.Invoke(js.ValueOf(value))
			}()
			return nil
		})
		defer executor.Release()

		return js.Global().Get("Promise").New(executor)
	})
}
