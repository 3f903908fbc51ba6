package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sprintdesk/internal/api"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.withRequestLogging)
	r.Use(middleware.Recoverer)

	// Health check.
	r.Get("/health", s.handleHealth)

	r.Route("/v1/projects", func(r chi.Router) {
		r.Use(s.withActor)

		r.Post("/", s.handleCreateProject)
		r.Get("/", s.handleListProjects)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", s.handleGetProject)
			r.Get("/overview", s.handleProjectOverview)

			// Sprints.
			r.Post("/sprints", s.handleCreateSprint)
			r.Get("/sprints/{sprintID}", s.handleGetSprint)
			r.Patch("/sprints/{sprintID}", s.handleUpdateSprint)

			// Tasks and time.
			r.Post("/tasks", s.handleCreateTask)
			r.Get("/tasks/{taskID}", s.handleGetTask)
			r.Patch("/tasks/{taskID}", s.handleUpdateTask)
			r.Post("/tasks/{taskID}/time", s.handleLogTime)

			// Risks.
			r.Get("/risks", s.handleListRisks)
			r.Post("/risks", s.handleCreateRisk)
			r.Get("/risks/{riskID}", s.handleGetRisk)
			r.Patch("/risks/{riskID}", s.handleUpdateRisk)

			// Change requests.
			r.Get("/change-requests", s.handleListChangeRequests)
			r.Post("/change-requests", s.handleCreateChangeRequest)
			r.Get("/change-requests/{changeRequestID}", s.handleGetChangeRequest)
			r.Post("/change-requests/{changeRequestID}/approve", s.handleApproveChangeRequest)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(nil, ErrCodeRouteNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeErrorReq(w, r, http.StatusMethodNotAllowed, makeAPIError(http.StatusMethodNotAllowed, string(api.KindMethodNotAllowed), ErrCodeMethodNotAllowed, nil))
	})

	return r
}
