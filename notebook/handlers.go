package notebook

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"notelab/contents"
	"notelab/sessions"
	"notelab/version"
)

// routes builds the API mux.
func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", a.handleStatus)

	mux.HandleFunc("GET /api/contents", a.handleGetContents)
	mux.HandleFunc("GET /api/contents/{path...}", a.handleGetContents)
	mux.HandleFunc("PUT /api/contents/{path...}", a.handlePutContents)
	mux.HandleFunc("DELETE /api/contents/{path...}", a.handleDeleteContents)

	mux.HandleFunc("GET /api/sessions", a.handleListSessions)
	mux.HandleFunc("POST /api/sessions", a.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", a.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", a.handleDeleteSession)

	mux.HandleFunc("POST /api/shutdown", a.handleShutdown)

	return mux
}

func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	started := a.started
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"version": version.Version,
		"started": started.UTC().Format(time.RFC3339),
		"uptime":  time.Since(started).Seconds(),
	})
}

func (a *App) handleGetContents(w http.ResponseWriter, r *http.Request) {
	path := r.PathValue("path")
	includeContent := r.URL.Query().Get("content") != "0"

	model, err := a.contents.Get(path, includeContent)
	if err != nil {
		a.writeContentsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (a *App) handlePutContents(w http.ResponseWriter, r *http.Request) {
	path := r.PathValue("path")

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	model, err := a.contents.Save(path, body.Content)
	if err != nil {
		a.writeContentsError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, model)
}

func (a *App) handleDeleteContents(w http.ResponseWriter, r *http.Request) {
	if err := a.contents.Delete(r.PathValue("path")); err != nil {
		a.writeContentsError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleListSessions(w http.ResponseWriter, r *http.Request) {
	all, err := a.store.List(r.Context())
	if err != nil {
		a.log.Error("Failed to list sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (a *App) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path       string `json:"path"`
		Name       string `json:"name"`
		KernelName string `json:"kernel_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if body.KernelName == "" {
		body.KernelName = a.cfg.DefaultKernel
	}

	session, err := a.store.Create(r.Context(), body.Path, body.Name, body.KernelName)
	if err != nil {
		a.log.Error("Failed to create session", "error", err, "path", body.Path)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (a *App) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (a *App) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleShutdown requests the run loop to exit. The response is written
// before the server begins draining connections.
func (a *App) handleShutdown(w http.ResponseWriter, r *http.Request) {
	a.log.Info("Shutdown requested over HTTP", "remote_addr", r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "shutting down"})
	go a.Stop()
}

func (a *App) writeContentsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contents.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, contents.ErrOutsideRoot):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		a.log.Error("Contents operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// corsMiddleware emits cross-origin headers for the configured origin and
// answers preflight requests before they reach authentication.
func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
