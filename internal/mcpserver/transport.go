package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokemcp/internal/config"
	pserver "github.com/cory-johannsen/pokemcp/internal/server"
)

const shutdownTimeout = 5 * time.Second

// NewStdioService serves s over newline-delimited JSON-RPC on in/out. Start
// returns nil when in reaches EOF or ctx is cancelled.
func NewStdioService(s *server.MCPServer, in io.Reader, out io.Writer, logger *zap.Logger) pserver.Service {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(zap.NewStdLog(logger.Named("stdio")))
	return &pserver.FuncService{
		StartFn: func(ctx context.Context) error {
			err := stdio.Listen(ctx, in, out)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

// HealthCheck reports the state of one dependency for /healthz.
type HealthCheck func(ctx context.Context) error

// NewRouter mounts the SSE transport at /sse and /message plus a /healthz
// route that runs every check. Any failing check turns the response into a
// 503 with status "degraded".
func NewRouter(cfg config.ServerConfig, sse *server.SSEServer, checks map[string]HealthCheck) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/sse", sse.SSEHandler()).Methods(http.MethodGet)
	r.Handle("/message", sse.MessageHandler()).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status, code := "ok", http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(req.Context()); err != nil {
				results[name] = err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  status,
			"name":    cfg.Name,
			"version": cfg.Version,
			"checks":  results,
		})
	}).Methods(http.MethodGet)
	return r
}

// NewSSEService serves s over HTTP Server-Sent Events on cfg.Addr(), with
// checks reported on /healthz.
func NewSSEService(cfg config.ServerConfig, s *server.MCPServer, checks map[string]HealthCheck, logger *zap.Logger) pserver.Service {
	sse := server.NewSSEServer(s, server.WithBaseURL(cfg.PublicURL()))
	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(cfg, sse, checks),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}
	return &pserver.FuncService{
		StartFn: func(context.Context) error {
			logger.Info("sse transport listening",
				zap.String("addr", cfg.Addr()),
				zap.String("base_url", cfg.PublicURL()),
			)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		StopFn: func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := sse.Shutdown(ctx); err != nil {
				logger.Warn("closing sse sessions", zap.Error(err))
			}
			if err := httpSrv.Shutdown(ctx); err != nil {
				logger.Warn("shutting down http server", zap.Error(err))
			}
		},
	}
}
