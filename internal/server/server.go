package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"

	"dance-admin/internal/backend"
	"dance-admin/internal/config"
	"dance-admin/internal/models"
	"dance-admin/internal/organizer"
	"dance-admin/internal/schedule"
	"dance-admin/internal/util"
)

// PublicSource serves the schedule visible to everyone.
type PublicSource interface {
	PublicSchedule(ctx context.Context, competitionID int) (*models.PublicSchedule, error)
}

// Previewer generates the current schedule for a competition.
type Previewer interface {
	Preview(ctx context.Context, competitionID int) (schedule.Schedule, error)
}

type handler struct {
	cfg    config.Config
	public PublicSource
	plan   Previewer
	cache  *cache.Cache
	log    *slog.Logger
}

func New(cfg config.Config, public PublicSource, plan Previewer, log *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewHandler(cfg, public, plan, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewHandler(cfg config.Config, public PublicSource, plan Previewer, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &handler{
		cfg:    cfg,
		public: public,
		plan:   plan,
		cache:  cache.New(cfg.PublicCacheTTL, 2*cfg.PublicCacheTTL),
		log:    log.With("module", "server"),
	}

	r := mux.NewRouter()
	r.Use(h.logging)
	r.HandleFunc("/health", h.health).Methods("GET")
	r.HandleFunc("/public-schedule/{competitionID:[0-9]+}", h.publicSchedule).Methods("GET")
	r.HandleFunc("/export/schedule.csv", h.exportCSV).Methods("GET")
	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "dance-admin",
		"timestamp": util.NowISO(),
	})
}

func (h *handler) publicSchedule(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["competitionID"])
	key := strconv.Itoa(id)

	if v, ok := h.cache.Get(key); ok {
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, v)
		return
	}

	ps, err := h.public.PublicSchedule(r.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			status = http.StatusNotFound
		}
		h.log.Warn("public schedule", "competition_id", id, "error", err)
		writeJSON(w, status, map[string]string{"error": "schedule unavailable"})
		return
	}
	h.cache.SetDefault(key, ps)
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, ps)
}

// CSV export (admin link with token = HMAC of the competition id)
func (h *handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	rawID := r.URL.Query().Get("competition_id")
	token := r.URL.Query().Get("token")
	id, err := strconv.Atoi(rawID)
	if err != nil || token == "" {
		http.Error(w, "competition_id and token required", http.StatusBadRequest)
		return
	}
	if !util.ValidExportToken(h.cfg.ExportSecret, id, token) {
		http.Error(w, "invalid token", http.StatusForbidden)
		return
	}

	s, err := h.plan.Preview(r.Context(), id)
	if err != nil {
		h.log.Error("export preview", "competition_id", id, "error", err)
		http.Error(w, "could not build schedule", http.StatusBadGateway)
		return
	}
	body, err := organizer.CSV(s)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule_`+rawID+`.csv"`)
	_, _ = w.Write([]byte(body))
}

// ExportURL builds the signed CSV link handed to admins.
func ExportURL(cfg config.Config, competitionID int) string {
	id := strconv.Itoa(competitionID)
	return cfg.PublicURL() + "/export/schedule.csv?competition_id=" + id + "&token=" + util.ExportToken(cfg.ExportSecret, competitionID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (h *handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.log.Info("http", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}
