package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/horde-relay/internal/docs"
	"github.com/JakeFAU/horde-relay/internal/relay"
)

var supportedModules = []string{"sd"}

// modelRequest leaves Model nil when the field is absent or null.
type modelRequest struct {
	Model *string `json:"model"`
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	host := docs.Hostname(r.Host, r.Header.Get("X-Forwarded-Host"))
	page, err := s.docs.Render(host)
	if err != nil {
		s.logger.Error("render docs failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "documentation unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(page)); err != nil {
		s.logger.Error("write docs failed", zap.Error(err))
	}
}

func (s *Server) listModules(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"modules": supportedModules})
}

func (s *Server) listSamplers(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"samplers": s.catalog.Samplers()})
}

func (s *Server) getModel(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"model": s.prefs.Get(CallerKey(r.Context()))})
}

func (s *Server) setModel(w http.ResponseWriter, r *http.Request) {
	var req modelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	key := CallerKey(r.Context())
	if req.Model == nil {
		// No model means no preference: the caller is back on the default.
		s.prefs.Reset(key)
		s.writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	model := s.prefs.Set(key, *req.Model)
	s.writeJSON(w, http.StatusOK, map[string]string{"model": model})
}

func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.catalog.Models(r.Context())
	if err != nil {
		s.logger.Error("list models failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "failed to fetch models")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"models": models})
}

func (s *Server) generateImage(w http.ResponseWriter, r *http.Request) {
	var req relay.ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	logger := s.logger.With(zap.String("request_id", RequestID(r.Context())))

	if !s.opts.BestEffort {
		image, err := s.generator.GenerateImage(r.Context(), req, CallerKey(r.Context()))
		if err != nil {
			logger.Error("generation failed", zap.Error(err))
			s.writeError(w, generationStatus(err), err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"image": image})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := http.NewResponseController(w).Flush(); err != nil {
		logger.Debug("early flush unsupported", zap.Error(err))
	}
	image, err := s.generator.GenerateImage(r.Context(), req, CallerKey(r.Context()))
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		image = ""
	}
	if err := json.NewEncoder(w).Encode(map[string]string{"image": image}); err != nil {
		logger.Warn("write image failed", zap.Error(err))
	}
}

func generationStatus(err error) int {
	if errors.Is(err, relay.ErrTimeout) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
