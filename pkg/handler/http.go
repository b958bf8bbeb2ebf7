// Package handler exposes the progression service and the spawn validator over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	progerrors "github.com/AccelByte/extend-runner-progression/pkg/errors"
	"github.com/AccelByte/extend-runner-progression/pkg/service"
	"github.com/AccelByte/extend-runner-progression/pkg/spawn"
	"github.com/AccelByte/extend-runner-progression/pkg/websocket"
)

var (
	errInvalidRequest = errors.New("invalid request")
	errInternal       = errors.New("internal error")
)

// Handler provides the HTTP API.
type Handler struct {
	service   *service.ProgressionService
	validator *spawn.Validator
	hub       *websocket.Hub
	logger    *slog.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc *service.ProgressionService, validator *spawn.Validator, hub *websocket.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		service:   svc,
		validator: validator,
		hub:       hub,
		logger:    logger,
	}
}

// APIResponse is the envelope of every response.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Router creates and configures the HTTP router.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	r.Get("/ws", h.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/events", h.ApplyEvent)

		r.Route("/spawn", func(r chi.Router) {
			r.Post("/validate", h.ValidateSpawn)
			r.Get("/analytics", h.SpawnAnalytics)
		})

		r.Route("/players/{playerID}", func(r chi.Router) {
			r.Get("/", h.GetOverview)
			r.Post("/login", h.Login)
			r.Post("/runs", h.RecordRun)
			r.Post("/reset", h.Reset)
			r.Get("/export", h.Export)
			r.Post("/import", h.Import)

			r.Get("/daily", h.GetDaily)
			r.Post("/daily/progress", h.UpdateDaily)

			r.Get("/weekly", h.GetWeekly)
			r.Post("/weekly/progress", h.UpdateWeekly)
			r.Post("/weekly/actions", h.TrackAction)

			r.Get("/login-calendar", h.GetLoginCalendar)

			r.Get("/achievements", h.GetAchievements)
			r.Post("/achievements/progress", h.UpdateAchievement)
			r.Post("/achievements/metrics", h.TrackMetric)

			r.Get("/claims", h.ListClaims)
			r.Post("/claims", h.Claim)
			r.Post("/claims/{source}/all", h.ClaimAll)
		})

		r.Get("/ws/stats", h.GetWebSocketStats)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}

func (h *Handler) writeSuccess(w http.ResponseWriter, data any) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
		Code:    progerrors.CodeOf(err),
	})
}

// statusFor maps progression error codes to HTTP statuses.
func statusFor(err error) int {
	switch progerrors.CodeOf(err) {
	case progerrors.ErrCodeInvalidInput, progerrors.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case progerrors.ErrCodeMissionNotFound, progerrors.ErrCodeAchievementNotFound:
		return http.StatusNotFound
	case progerrors.ErrCodeAlreadyClaimed:
		return http.StatusConflict
	case progerrors.ErrCodeNotCompleted, progerrors.ErrCodeNotEligible:
		return http.StatusUnprocessableEntity
	case progerrors.ErrCodeRewardGrantFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status. Unexpected errors are
// logged and hidden from the caller.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "operation", op, "error", err)
		h.writeError(w, status, errInternal)
		return
	}
	if status == http.StatusBadGateway {
		h.logger.Warn("request failed", "operation", op, "error", err)
	}
	h.writeError(w, status, err)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, errInvalidRequest)
		return false
	}
	return true
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]any{
		"total_connections": h.hub.TotalConnections(),
		"player_sessions":   h.service.Sessions(),
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

// SpawnRequest is the body of ValidateSpawn.
type SpawnRequest struct {
	Candidate *domain.Obstacle  `json:"candidate"`
	Player    *domain.Position  `json:"player"`
	Existing  []domain.Obstacle `json:"existing"`
}

// ValidateSpawn checks and corrects a candidate obstacle placement.
func (h *Handler) ValidateSpawn(w http.ResponseWriter, r *http.Request) {
	var req SpawnRequest
	if !h.decode(w, r, &req) {
		return
	}

	outcome := h.validator.Validate(req.Candidate, req.Player, req.Existing)
	if outcome.Status == spawn.StatusInvalidInput {
		h.writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Data:    outcome,
			Error:   outcome.Reason,
			Code:    progerrors.ErrCodeInvalidInput,
		})
		return
	}
	h.writeSuccess(w, outcome)
}

// SpawnAnalytics returns recent spawn statistics.
func (h *Handler) SpawnAnalytics(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, h.validator.Analytics())
}

// ApplyEvent applies a transport-neutral gameplay event.
func (h *Handler) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	var event service.GameplayEvent
	if !h.decode(w, r, &event) {
		return
	}

	progress, err := h.service.Apply(r.Context(), event)
	if err != nil {
		h.writeServiceError(w, "apply event", err)
		return
	}
	h.writeSuccess(w, progress)
}

// GetOverview returns the whole progression state of a player.
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeServiceError(w, "overview", err)
		return
	}
	h.writeSuccess(w, overview)
}

// Login evaluates today's login streak.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Login(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeServiceError(w, "login", err)
		return
	}
	h.writeSuccess(w, res)
}

// RecordRun folds a finished run into the player's progression.
func (h *Handler) RecordRun(w http.ResponseWriter, r *http.Request) {
	var run domain.RunStats
	if !h.decode(w, r, &run) {
		return
	}

	progress, err := h.service.RecordRun(r.Context(), chi.URLParam(r, "playerID"), run)
	if err != nil {
		h.writeServiceError(w, "record run", err)
		return
	}
	h.writeSuccess(w, progress)
}

// ProgressRequest carries one named value. Name is a stat, key, action,
// category or metric depending on the endpoint.
type ProgressRequest struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request, op string,
	fn func(r *http.Request, playerID string, req ProgressRequest) (service.Progress, error)) {
	var req ProgressRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, errInvalidRequest)
		return
	}

	progress, err := fn(r, chi.URLParam(r, "playerID"), req)
	if err != nil {
		h.writeServiceError(w, op, err)
		return
	}
	h.writeSuccess(w, progress)
}

// UpdateDaily reports a single-run stat value.
func (h *Handler) UpdateDaily(w http.ResponseWriter, r *http.Request) {
	h.progress(w, r, "update daily", func(r *http.Request, playerID string, req ProgressRequest) (service.Progress, error) {
		return h.service.UpdateDaily(r.Context(), playerID, req.Name, req.Value)
	})
}

// UpdateWeekly adds a value to a weekly progress key.
func (h *Handler) UpdateWeekly(w http.ResponseWriter, r *http.Request) {
	h.progress(w, r, "update weekly", func(r *http.Request, playerID string, req ProgressRequest) (service.Progress, error) {
		return h.service.UpdateWeekly(r.Context(), playerID, req.Name, req.Value)
	})
}

// TrackAction counts an in-run action.
func (h *Handler) TrackAction(w http.ResponseWriter, r *http.Request) {
	h.progress(w, r, "track action", func(r *http.Request, playerID string, req ProgressRequest) (service.Progress, error) {
		return h.service.TrackAction(r.Context(), playerID, req.Name, req.Value)
	})
}

// UpdateAchievement reports a value for an achievement category.
func (h *Handler) UpdateAchievement(w http.ResponseWriter, r *http.Request) {
	h.progress(w, r, "update achievement", func(r *http.Request, playerID string, req ProgressRequest) (service.Progress, error) {
		return h.service.UpdateAchievement(r.Context(), playerID, domain.AchievementCategory(req.Name), req.Value)
	})
}

// TrackMetric reports a value for an achievement metric.
func (h *Handler) TrackMetric(w http.ResponseWriter, r *http.Request) {
	h.progress(w, r, "track metric", func(r *http.Request, playerID string, req ProgressRequest) (service.Progress, error) {
		return h.service.TrackMetric(r.Context(), playerID, req.Name, req.Value)
	})
}

// GetDaily returns today's missions.
func (h *Handler) GetDaily(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Daily(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeServiceError(w, "daily", err)
		return
	}
	h.writeSuccess(w, view)
}

// GetWeekly returns this week's missions.
func (h *Handler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Weekly(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeServiceError(w, "weekly", err)
		return
	}
	h.writeSuccess(w, view)
}

// GetLoginCalendar returns the login calendar without counting a login.
func (h *Handler) GetLoginCalendar(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.LoginCalendar(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeServiceError(w, "login calendar", err)
		return
	}
	h.writeSuccess(w, view)
}

// GetAchievements returns the achievements, optionally filtered by ?category=.
func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	category := domain.AchievementCategory(r.URL.Query().Get("category"))
	view, err := h.service.Achievements(r.Context(), chi.URLParam(r, "playerID"), category)
	if err != nil {
		h.writeServiceError(w, "achievements", err)
		return
	}
	h.writeSuccess(w, view)
}

// ClaimRequest is the body of Claim. ItemID is ignored for the login source.
type ClaimRequest struct {
	Source domain.ClaimSource `json:"source"`
	ItemID string             `json:"item_id"`
}

// Claim pays out one item.
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Source.IsValid() || (req.Source != domain.ClaimSourceLogin && req.ItemID == "") {
		h.writeError(w, http.StatusBadRequest, errInvalidRequest)
		return
	}

	receipt, err := h.service.Claim(r.Context(), chi.URLParam(r, "playerID"), req.Source, req.ItemID)
	if err != nil {
		h.writeServiceError(w, "claim", err)
		return
	}
	h.writeSuccess(w, receipt)
}

// ClaimAll pays out every claimable item of a source. On failure the
// receipts paid before it are still returned.
func (h *Handler) ClaimAll(w http.ResponseWriter, r *http.Request) {
	source := domain.ClaimSource(chi.URLParam(r, "source"))
	if !source.IsValid() {
		h.writeError(w, http.StatusBadRequest, errInvalidRequest)
		return
	}

	receipts, err := h.service.ClaimAll(r.Context(), chi.URLParam(r, "playerID"), source)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.writeServiceError(w, "claim all", err)
			return
		}
		h.writeJSON(w, status, APIResponse{
			Success: false,
			Data:    receipts,
			Error:   err.Error(),
			Code:    progerrors.CodeOf(err),
		})
		return
	}
	h.writeSuccess(w, receipts)
}

// ListClaims returns paid claims, most recent first. ?limit= bounds the list.
func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	receipts, err := h.service.Receipts(r.Context(), chi.URLParam(r, "playerID"), limit)
	if err != nil {
		h.writeServiceError(w, "list claims", err)
		return
	}
	h.writeSuccess(w, receipts)
}

// ResetRequest is the body of Reset.
type ResetRequest struct {
	Scope service.ResetScope `json:"scope"`
}

// Reset clears part or all of a player's progression.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.Reset(r.Context(), chi.URLParam(r, "playerID"), req.Scope); err != nil {
		h.writeServiceError(w, "reset", err)
		return
	}
	h.writeSuccess(w, map[string]string{"status": "reset"})
}

// Export returns the player's persisted snapshots.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.Export(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeServiceError(w, "export", err)
		return
	}
	h.writeSuccess(w, docs)
}

// Import replaces the player's snapshots with a previous export.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var docs map[string]json.RawMessage
	if !h.decode(w, r, &docs) {
		return
	}

	if err := h.service.Import(r.Context(), chi.URLParam(r, "playerID"), docs); err != nil {
		h.writeServiceError(w, "import", err)
		return
	}
	h.writeSuccess(w, map[string]any{"status": "imported", "snapshots": len(docs)})
}
