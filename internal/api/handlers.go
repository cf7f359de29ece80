package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"codeberg.org/mutker/poolwatch/internal/annotation"
	"codeberg.org/mutker/poolwatch/internal/collector"
	"codeberg.org/mutker/poolwatch/internal/comfort"
	"codeberg.org/mutker/poolwatch/internal/logger"
	"codeberg.org/mutker/poolwatch/internal/session"
	"codeberg.org/mutker/poolwatch/internal/telemetry"
	"github.com/go-chi/chi/v5"
)

const (
	defaultRangeHours = 24
	defaultRangeLimit = 1440
	maxRangeHours     = 24 * 365
)

// Credentials are the remote-panel login used when a session needs
// transparent (re-)authentication before a collect.
type Credentials struct {
	Username string
	Password string
}

type Handler struct {
	collector   *collector.Collector
	store       *telemetry.Store
	annotations *annotation.Store
	registry    *session.Registry
	creds       Credentials
	sessionKey  string
}

func NewHandler(c *collector.Collector, store *telemetry.Store, annotations *annotation.Store,
	registry *session.Registry, creds Credentials, sessionKey string,
) *Handler {
	return &Handler{
		collector:   c,
		store:       store,
		annotations: annotations,
		registry:    registry,
		creds:       creds,
		sessionKey:  sessionKey,
	}
}

func (*Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Collect triggers one poll cycle (manual refresh). The session is logged in
// transparently when it has not authenticated yet or was swept.
func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.registry.Get(h.sessionKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	if !sess.IsAuthenticated() {
		result, err := sess.Authenticate(ctx, h.creds.Username, h.creds.Password)
		if err != nil {
			logger.Error().Err(err).Msg("Authentication transport failure")
			writeError(w, http.StatusBadGateway, "controller unreachable")
			return
		}
		if !result.Success {
			writeError(w, http.StatusUnauthorized, result.Message)
			return
		}
	}

	snapshot, err := h.collector.Collect(ctx, sess, h.sessionKey)
	if err != nil {
		logger.Error().Err(err).Msg("Poll cycle failed")
		writeError(w, http.StatusBadGateway, "collection failed")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) Latest(w http.ResponseWriter, _ *http.Request) {
	point, ok := h.store.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no telemetry collected yet")
		return
	}

	writeJSON(w, http.StatusOK, point)
}

func (h *Handler) Telemetry(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", defaultRangeHours, maxRangeHours)
	limit := queryInt(r, "limit", defaultRangeLimit, defaultRangeLimit)

	points, err := h.store.QueryRange(r.Context(), hours, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"hours":  hours,
		"count":  len(points),
		"points": points,
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	hours := queryInt(r, "hours", defaultRangeHours, maxRangeHours)

	stats, err := h.store.Stats(r.Context(), field, hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown field: "+field)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"field": field,
		"hours": hours,
		"stats": stats,
	})
}

// Comfort classifies the ambient readings over the window and aggregates
// them into an overall verdict plus a recommendation.
func (h *Handler) Comfort(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", defaultRangeHours, maxRangeHours)

	points, err := h.store.QueryRange(r.Context(), hours, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	categories := make([]comfort.Category, 0, len(points))
	for i := range points {
		categories = append(categories,
			comfort.Classify(points[i].AmbientTemperature, points[i].AmbientHumidity))
	}

	writeJSON(w, http.StatusOK, comfort.Aggregate(categories))
}

func (h *Handler) ListAnnotations(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", defaultRangeHours, maxRangeHours)
	to := time.Now().UTC()
	from := to.Add(-time.Duration(hours) * time.Hour)

	list, err := h.annotations.QueryRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":       len(list),
		"annotations": list,
	})
}

// AddAnnotation ingests an externally-sourced event (e.g. a weather alert
// with a start/end range). Events carrying a known external id are
// deduplicated silently.
func (h *Handler) AddAnnotation(w http.ResponseWriter, r *http.Request) {
	var a annotation.Annotation
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid annotation payload")
		return
	}
	if a.Category == "" {
		a.Category = annotation.CategoryWeatherAlert
	}

	if err := h.annotations.Add(r.Context(), a); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "stored"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Debug().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, name string, fallback, ceiling int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	if v > ceiling {
		return ceiling
	}

	return v
}
