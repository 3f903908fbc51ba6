package server

import (
	"net/http"

	"sprintdesk/internal/api"
)

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req api.ProjectCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.CreateProject(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.ListProjects(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID")
	if !ok {
		return
	}

	resp, err := s.service.GetProject(r.Context(), ids[0])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProjectOverview(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID")
	if !ok {
		return
	}

	resp, err := s.service.GetProjectOverview(r.Context(), ids[0])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
