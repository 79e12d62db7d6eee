// Package web provides a simple web UI for the ctagent task board.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/sagearbor/clinicalTrials-s2f/internal/tracker"
)

// Server provides the task board handlers and state.
type Server struct {
	checklistPath string
}

// NewServer creates a new web server over the given checklist file.
func NewServer(checklistPath string) (*Server, error) {
	return &Server{checklistPath: checklistPath}, nil
}

//go:embed templates/*.html
var templatesFS embed.FS

// Routes returns the router for the web UI.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("POST /tasks/{id}/done", s.handleMarkDone)
	return mux
}

type boardView struct {
	Tasks           []tracker.Task
	OverallProgress float64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	tasks, err := tracker.LoadChecklist(s.checklistPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	view := boardView{Tasks: tasks, OverallProgress: tracker.OverallProgress(tasks)}
	if err := tmpl.Execute(w, view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleMarkDone(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := tracker.SetStatus(s.checklistPath, id, 100); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
