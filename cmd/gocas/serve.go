package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/singleflight"

	"github.com/njchilds90/gocas"
)

const maxBodyBytes = 1 << 20 // 1 MiB

var (
	serveAddr    string
	serveTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve tool calls over HTTP",
	Long: `Serve tool calls over HTTP.

  POST /tool    execute a tool call
  GET  /schema  tool schema for agent registration
  GET  /health  liveness check
  GET  /metrics Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 10*time.Second, "per-call deadline")
}

type ctxKey struct{}

// server runs tool calls against one Solver. Identical concurrent calls
// share a single computation.
type server struct {
	solver  *gocas.Solver
	handle  func(gocas.ToolRequest) gocas.ToolResponse
	log     *slog.Logger
	timeout time.Duration
	flight  singleflight.Group
	metrics *metrics
	reg     *prometheus.Registry
}

func newServer(solver *gocas.Solver, log *slog.Logger, timeout time.Duration) *server {
	reg := prometheus.NewRegistry()
	return &server{
		solver:  solver,
		handle:  solver.HandleToolCall,
		log:     log,
		timeout: timeout,
		metrics: newMetrics(reg, solver.Factorer()),
		reg:     reg,
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tool", s.handleTool)
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, gocas.ToolSpec())
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	return s.withRequestID(mux)
}

// withRequestID tags every request with an X-Request-Id, reusing the
// caller's when present, and recovers handler panics.
func (s *server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		log := s.log.With("request_id", id)
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic in handler", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, log)))
		log.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func requestLogger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return fallback
}

func (s *server) handleTool(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r.Context(), s.log)
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req gocas.ToolRequest
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
		return
	}

	key, err := flightKey(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	start := time.Now()
	ch := s.flight.DoChan(key, func() (interface{}, error) {
		return s.call(log, req), nil
	})

	label := req.Tool
	if !gocas.IsTool(label) {
		label = "unknown"
	}
	select {
	case res := <-ch:
		resp := res.Val.(gocas.ToolResponse)
		status := "ok"
		if resp.Error != "" {
			status = "error"
		}
		if res.Shared {
			s.metrics.coalesced.Inc()
		}
		s.metrics.observe(label, status, time.Since(start))
		log.Debug("tool call", "tool", req.Tool, "status", status, "shared", res.Shared)
		writeJSON(w, http.StatusOK, resp)
	case <-ctx.Done():
		// The computation keeps running; a later identical call may
		// still join it.
		s.metrics.observe(label, "timeout", time.Since(start))
		log.Warn("tool call timed out", "tool", req.Tool, "timeout", s.timeout)
		writeJSON(w, http.StatusGatewayTimeout, gocas.ToolResponse{Error: "deadline exceeded"})
	}
}

// call runs on the singleflight goroutine, outside withRequestID, so it
// recovers panics itself.
func (s *server) call(log *slog.Logger, req gocas.ToolRequest) (resp gocas.ToolResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic in tool call", "tool", req.Tool, "panic", rec, "stack", string(debug.Stack()))
			resp = gocas.ToolResponse{Error: fmt.Sprintf("internal error: %v", rec)}
		}
	}()
	return s.handle(req)
}

// flightKey identifies a call by tool and canonical params; map keys are
// marshaled sorted.
func flightKey(req gocas.ToolRequest) (string, error) {
	b, err := json.Marshal(req.Params)
	if err != nil {
		return "", err
	}
	return req.Tool + "\x00" + string(b), nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func runServe(cmd *cobra.Command, args []string) error {
	s := newServer(gocas.NewSolver(opts), logger, serveTimeout)
	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      serveTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errc := make(chan error, 1)
	go func() {
		logger.Info("gocas server listening", "addr", serveAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
