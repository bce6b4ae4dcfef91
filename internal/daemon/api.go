package daemon

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// Handler is the HTTP handler for the /api/v1/* endpoints.
// It reads job state from the result store and returns JSON responses.
type Handler struct {
	store *Store
	hub   *Hub
	mux   *http.ServeMux
}

// NewHandler creates a Handler wired to the given store and hub and
// registers all routes. hub may be nil.
func NewHandler(st *Store, hub *Hub) http.Handler {
	h := &Handler{store: st, hub: hub, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/jobs", h.listJobs)
	h.mux.HandleFunc("/api/v1/jobs/", h.getJob) // subtree, extracts {name}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// HealthResponse is the GET /api/v1/health body.
type HealthResponse struct {
	JobsTracked int `json:"jobs_tracked"`
	JobsFailed  int `json:"jobs_failed"`
	WSClients   int `json:"ws_clients"`
}

// JobsResponse is the GET /api/v1/jobs body.
type JobsResponse struct {
	Jobs  []Result `json:"jobs"`
	Count int      `json:"count"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{}
	for _, e := range h.store.List() {
		resp.JobsTracked++
		if e.Result.Status == StatusFailed {
			resp.JobsFailed++
		}
	}
	if h.hub != nil {
		resp.WSClients = h.hub.Count()
	}
	jsonResp(w, http.StatusOK, resp)
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	jobs := make([]Result, 0, len(entries))
	for _, e := range entries {
		jobs = append(jobs, e.Result)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	jsonResp(w, http.StatusOK, JobsResponse{Jobs: jobs, Count: len(jobs)})
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	if name == "" {
		jsonErr(w, http.StatusBadRequest, "job name missing")
		return
	}
	e, ok := h.store.Get(name)
	if !ok {
		jsonErr(w, http.StatusNotFound, "no such job")
		return
	}
	jsonResp(w, http.StatusOK, e.Result)
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, map[string]string{"error": msg})
}
