package server

import (
	"net/http"

	"sprintdesk/internal/api"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID")
	if !ok {
		return
	}
	var req api.TaskCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.CreateSprintTask(r.Context(), ids[0], req, actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID", "taskID")
	if !ok {
		return
	}

	resp, err := s.service.GetSprintTask(r.Context(), ids[0], ids[1])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID", "taskID")
	if !ok {
		return
	}
	var req api.TaskUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.UpdateSprintTask(r.Context(), ids[0], ids[1], req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogTime(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID", "taskID")
	if !ok {
		return
	}
	var req api.TimeLogRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.LogTaskTime(r.Context(), ids[0], ids[1], req, actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}
