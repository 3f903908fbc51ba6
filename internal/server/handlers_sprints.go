package server

import (
	"net/http"

	"sprintdesk/internal/api"
)

func (s *Server) handleCreateSprint(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID")
	if !ok {
		return
	}
	var req api.SprintCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.CreateSprint(r.Context(), ids[0], req, actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSprint(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID", "sprintID")
	if !ok {
		return
	}

	resp, err := s.service.GetSprintSnapshot(r.Context(), ids[0], ids[1])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateSprint(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID", "sprintID")
	if !ok {
		return
	}
	var req api.SprintUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.UpdateSprint(r.Context(), ids[0], ids[1], req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
