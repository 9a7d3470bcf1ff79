// Command server runs the feed gateway: it loads the declarative YAML
// configuration, builds every configured endpoint, and serves them
// over HTTP alongside the image proxy, introspection, health, and
// metrics routes.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedgate/internal/config"
	"feedgate/internal/handler/http/middleware"
	"feedgate/internal/handler/http/requestid"
	"feedgate/internal/infra/imageproxy"
	"feedgate/internal/infra/scriptengine"
	"feedgate/internal/observability/logging"
	"feedgate/internal/observability/tracing"
	"feedgate/internal/usecase/endpoint"

	gatewayhttp "feedgate/internal/handler/http"
)

func main() {
	logger := initLogger()
	slog.SetDefault(logger)

	cfgPath := config.LoadEnvString("FEEDGATE_CONFIG", "feedgate.yaml")
	appCfg, err := config.LoadAppConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load configuration", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	shared := buildShared(logger, *appCfg)

	registry := endpoint.NewRegistry()
	if err := endpoint.Reload(registry, *appCfg, shared); err != nil {
		logger.Error("failed to build endpoints", "error", err)
		os.Exit(1)
	}
	logger.Info("endpoints loaded", "count", len(appCfg.Endpoints))

	handler := buildRouter(registry, appCfg, shared, logger)

	addr := ":8080"
	var readTimeout, writeTimeout time.Duration = 30 * time.Second, 30 * time.Second
	if appCfg.HTTP != nil {
		if appCfg.HTTP.Addr != "" {
			addr = appCfg.HTTP.Addr
		}
		if appCfg.HTTP.ReadTimeout > 0 {
			readTimeout = appCfg.HTTP.ReadTimeout
		}
		if appCfg.HTTP.WriteTimeout > 0 {
			writeTimeout = appCfg.HTTP.WriteTimeout
		}
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		logger.Info("gateway listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// initLogger builds the process logger from LOG_FORMAT/LOG_LEVEL.
func initLogger() *slog.Logger {
	if config.LoadEnvString("LOG_FORMAT", "json") == "text" {
		return logging.NewTextLogger()
	}
	return logging.NewLogger()
}

// buildShared assembles the process-wide dependencies every endpoint
// is built with: the script engine (no embedded runtime is wired in
// this module; see internal/infra/scriptengine's doc comment) and the
// image-proxy signer, keyed from FEEDGATE_IMAGE_PROXY_SIGN_KEY.
func buildShared(logger *slog.Logger, appCfg config.AppConfig) endpoint.Shared {
	keyResult := config.LoadEnvWithFallback("FEEDGATE_IMAGE_PROXY_SIGN_KEY", "", nil)
	var key []byte
	if s, ok := keyResult.Value.(string); ok && s != "" {
		key = []byte(s)
	} else {
		logger.Warn("FEEDGATE_IMAGE_PROXY_SIGN_KEY not set; image-proxy signatures will not survive a restart")
	}

	return endpoint.Shared{
		ScriptEngine:     scriptengine.NullEngine{},
		ImageProxySigner: imageproxy.NewSigner(key),
		ImageProxyConfig: config.ImageProxyConfig{Mode: "internal"},
		BaseURL:          appCfg.BaseURL,
	}
}

// buildRouter mounts every registered endpoint plus the image proxy,
// introspection, health, and metrics routes, wrapped in the standard
// middleware chain: request-id -> tracing -> logging -> recover ->
// basic auth -> input validation -> request timeout.
func buildRouter(registry *endpoint.Registry, appCfg *config.AppConfig, shared endpoint.Shared, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	for _, ep := range registry.List() {
		mux.Handle(ep.Path(), &gatewayhttp.EndpointHandler{Endpoint: ep})
	}

	mux.Handle(imageproxy.Route, imageproxy.NewHandler(shared.ImageProxySigner))

	mux.Handle("/_endpoints", &gatewayhttp.EndpointsListHandler{Registry: registry})
	mux.HandleFunc("/healthz", gatewayhttp.HealthHandler)
	mux.Handle("/metrics", gatewayhttp.MetricsHandler())

	requestTimeout := 30 * time.Second
	if appCfg.HTTP != nil && appCfg.HTTP.WriteTimeout > 0 {
		requestTimeout = appCfg.HTTP.WriteTimeout
	}

	var handler http.Handler = mux
	handler = gatewayhttp.Timeout(requestTimeout)(handler)
	handler = gatewayhttp.InputValidation()(handler)
	handler = middleware.BasicAuth(appCfg.Auth)(handler)
	handler = middleware.Recover(handler)
	handler = middleware.Logging(logger)(handler)
	handler = tracing.Middleware(handler)
	handler = requestid.Middleware(handler)
	return handler
}
