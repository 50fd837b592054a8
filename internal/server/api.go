package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/progress"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/tasks"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// Service is the part of [tasks.Tracker] the API exposes.
type Service interface {
	List(ctx context.Context, filter tasks.Filter) ([]models.Task, error)
	Add(ctx context.Context, text string, due *time.Time) (*models.Task, error)
	Complete(ctx context.Context, id string) (*tasks.CompletionResult, error)
	Profile(ctx context.Context) (*progress.Profile, error)
	Analytics(ctx context.Context) (models.TaskAnalytics, error)
}

// API serves the dashboard JSON endpoints.
type API struct {
	service Service
	logger  *log.Logger
	mux     *http.ServeMux
}

var _ Handler = (*API)(nil)

// NewAPI creates an [API] backed by service.
func NewAPI(service Service, logger *log.Logger) *API {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	a := &API{service: service, logger: logger, mux: http.NewServeMux()}
	a.mux.HandleFunc("GET /api/health", a.health)
	a.mux.HandleFunc("GET /api/tasks", a.listTasks)
	a.mux.HandleFunc("POST /api/tasks", a.createTask)
	a.mux.HandleFunc("POST /api/tasks/{id}/complete", a.completeTask)
	a.mux.HandleFunc("GET /api/stats", a.stats)
	a.mux.HandleFunc("GET /api/achievements", a.achievements)
	a.mux.HandleFunc("GET /api/analytics", a.analytics)
	return a
}

// Routes returns the method and path patterns served by the API.
func (a *API) Routes() []string {
	return []string{
		"GET /api/health",
		"GET /api/tasks",
		"POST /api/tasks",
		"POST /api/tasks/{id}/complete",
		"GET /api/stats",
		"GET /api/achievements",
		"GET /api/analytics",
	}
}

// ServeHTTP dispatches to the endpoint handlers.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Text    string     `json:"text"`
	DueDate *time.Time `json:"dueDate,omitempty"`
}

// StatsResponse is the progress card: raw stats plus the derived level values.
type StatsResponse struct {
	Stats             models.UserStats `json:"stats"`
	LevelProgress     int              `json:"levelProgress"`
	PointsToNextLevel int              `json:"pointsToNextLevel"`
	Achievements      progress.Summary `json:"achievements"`
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	status, err := tasks.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := a.service.List(r.Context(), tasks.Filter{Status: status, Search: r.URL.Query().Get("search")})
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	task, err := a.service.Add(r.Context(), req.Text, req.DueDate)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (a *API) completeTask(w http.ResponseWriter, r *http.Request) {
	res, err := a.service.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	p, err := a.service.Profile(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		Stats:             p.Stats,
		LevelProgress:     p.Stats.LevelProgress(),
		PointsToNextLevel: p.Stats.PointsToNextLevel(),
		Achievements:      progress.Summarize(p.Achievements),
	})
}

func (a *API) achievements(w http.ResponseWriter, r *http.Request) {
	p, err := a.service.Profile(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Achievements)
}

func (a *API) analytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.service.Analytics(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// fail maps sentinel errors to status codes and logs server-side failures.
func (a *API) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		a.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
