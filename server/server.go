// Package server exposes the copilot over HTTP: one endpoint to submit a
// run, one to inspect the prompt catalog, and a health probe.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leofalp/opsgraph/copilot"
	"github.com/leofalp/opsgraph/prompts"
)

// maxInputBytes caps the request body size. Copilot inputs are short
// free-text requests, not documents.
const maxInputBytes = 64 << 10

// runTimeout bounds a single run end to end.
const runTimeout = 60 * time.Second

// Runner processes one request and returns the run result. *copilot.Copilot
// satisfies it.
type Runner interface {
	Run(ctx context.Context, input string) (*copilot.Result, error)
}

// PromptLister exposes the prompt catalog. *prompts.Registry satisfies it.
type PromptLister interface {
	List() []prompts.Info
}

// Server is the HTTP front end.
type Server struct {
	runner  Runner
	prompts PromptLister
	logger  *slog.Logger
	mux     *http.ServeMux
}

// runRequest is the POST /v1/runs request body.
type runRequest struct {
	Input string `json:"input"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// New creates the server. A nil logger disables request logging.
func New(runner Runner, promptLister PromptLister, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	server := &Server{
		runner:  runner,
		prompts: promptLister,
		logger:  logger,
		mux:     http.NewServeMux(),
	}

	server.mux.HandleFunc("POST /v1/runs", server.handleRun)
	server.mux.HandleFunc("GET /v1/prompts", server.handlePrompts)
	server.mux.HandleFunc("GET /healthz", server.handleHealth)

	return server
}

// Handler returns the root HTTP handler.
func (server *Server) Handler() http.Handler {
	return server.mux
}

// ListenAndServe blocks serving HTTP on addr until the context is cancelled,
// then shuts down gracefully.
func (server *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- httpServer.ListenAndServe()
	}()

	server.logger.LogAttrs(ctx, slog.LevelInfo, "server listening", slog.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (server *Server) handleRun(writer http.ResponseWriter, request *http.Request) {
	body := http.MaxBytesReader(writer, request.Body, maxInputBytes)

	var payload runRequest
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		writeJSON(writer, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(payload.Input) == "" {
		writeJSON(writer, http.StatusBadRequest, errorResponse{Error: "input must not be empty"})
		return
	}

	ctx, cancel := context.WithTimeout(request.Context(), runTimeout)
	defer cancel()

	started := time.Now()
	result, err := server.runner.Run(ctx, payload.Input)
	if err != nil {
		server.logger.LogAttrs(request.Context(), slog.LevelError, "run failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(started)),
		)
		writeJSON(writer, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	server.logger.LogAttrs(request.Context(), slog.LevelInfo, "run completed",
		slog.Duration("duration", time.Since(started)),
	)
	writeJSON(writer, http.StatusOK, result)
}

func (server *Server) handlePrompts(writer http.ResponseWriter, _ *http.Request) {
	writeJSON(writer, http.StatusOK, server.prompts.List())
}

func (server *Server) handleHealth(writer http.ResponseWriter, _ *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}
