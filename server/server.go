// Package server exposes the downloader state and controls over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handsomefox/ridit/api"
	"github.com/handsomefox/ridit/config"
	"github.com/handsomefox/ridit/pipeline"
	"github.com/rs/zerolog/log"
)

const (
	StatusHealthy     = 0
	StatusDownloading = 1
)

// State is the answer to GET /state.
type State struct {
	Status           int    `json:"status"`
	Message          string `json:"message"`
	NextDownloadTime string `json:"next_download_time"`
}

// ProfileUpsert is the body of PUT /profiles/{name}. Unset fields keep their value.
type ProfileUpsert struct {
	AspectRatio *config.AspectRatioUpdate `json:"aspect_ratio,omitempty"`
	MinimumSize *config.MinimumSizeUpdate `json:"minimum_size,omitempty"`
	Path        *string                   `json:"path,omitempty"`
}

// Profiles is the answer to GET /profiles.
type Profiles struct {
	FocusedProfile string                    `json:"focused_profile"`
	Profiles       map[string]config.Profile `json:"profiles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	client *api.Client

	mu      sync.Mutex // guards cfg
	cfg     *config.Config
	cfgPath string

	runMu   sync.Mutex // one run at a time
	running atomic.Bool

	mux *http.ServeMux
}

// New returns a server working on cfg. Profile changes are saved to cfgPath unless it is empty.
func New(client *api.Client, cfg *config.Config, cfgPath string) *Server {
	s := &Server{
		client:  client,
		cfg:     cfg,
		cfgPath: cfgPath,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /state", s.handleState)
	s.mux.HandleFunc("POST /download", s.handleDownload)
	s.mux.HandleFunc("GET /profiles", s.handleProfiles)
	s.mux.HandleFunc("PUT /profiles/{name}", s.handleUpsertProfile)
	s.mux.HandleFunc("DELETE /profiles/{name}", s.handleRemoveProfile)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("serving")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state := State{
		Status:           StatusHealthy,
		Message:          "healthy",
		NextDownloadTime: time.Now().Add(time.Minute).Truncate(time.Minute).Format(time.RFC3339),
	}
	if s.running.Load() {
		state.Status = StatusDownloading
		state.Message = "downloading"
	}
	writeJSON(w, http.StatusOK, state)
}

// handleDownload runs a pass and streams its progress events as newline delimited JSON.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.running.Store(true)
	defer s.running.Store(false)

	s.mu.Lock()
	cfg := s.cfg.Clone()
	s.mu.Unlock()

	// The run outlives the request, a client that goes away only stops the stream.
	events, wait := pipeline.Stream(context.WithoutCancel(r.Context()), s.client, cfg)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)
	enc := json.NewEncoder(w)

	var writeErr error
	for e := range events {
		if writeErr != nil {
			continue
		}
		if writeErr = enc.Encode(e); writeErr == nil {
			writeErr = rc.Flush()
		}
	}
	if writeErr != nil {
		log.Debug().Err(writeErr).Msg("download stream client went away")
	}

	for _, o := range pipeline.Failures(wait()) {
		log.Error().
			Err(o.Err).
			Str("subreddit", o.Subreddit).
			Strs("profiles", o.Profiles()).
			Msg("download failed")
	}
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cfg := s.cfg.Clone()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, Profiles{
		FocusedProfile: cfg.FocusedProfile,
		Profiles:       cfg.Profiles,
	})
}

func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))

	var upsert ProfileUpsert
	if err := json.NewDecoder(r.Body).Decode(&upsert); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.cfg.Clone()
	if _, err := cfg.Profile(name); err != nil {
		if err := cfg.AddProfile(name); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if upsert.AspectRatio != nil {
		if err := cfg.SetAspectRatio(name, *upsert.AspectRatio); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if upsert.MinimumSize != nil {
		if err := cfg.SetMinimumSize(name, *upsert.MinimumSize); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if upsert.Path != nil {
		p := cfg.Profiles[name]
		p.Path = *upsert.Path
		cfg.Profiles[name] = p
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.commit(cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, cfg.Profiles[name])
}

func (s *Server) handleRemoveProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.cfg.Clone()
	if err := cfg.RemoveProfile(r.PathValue("name")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err := s.commit(cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// commit saves cfg and makes it current. s.mu must be held.
func (s *Server) commit(cfg *config.Config) error {
	if s.cfgPath != "" {
		if err := cfg.Save(s.cfgPath); err != nil {
			return err
		}
	}
	s.cfg = cfg
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}
