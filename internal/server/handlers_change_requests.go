package server

import (
	"net/http"

	"sprintdesk/internal/api"
)

func (s *Server) handleListChangeRequests(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID")
	if !ok {
		return
	}
	sprintID, err := querySprintID(r)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	resp, err := s.service.ListChangeRequests(r.Context(), ids[0], sprintID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateChangeRequest(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID")
	if !ok {
		return
	}
	var req api.ChangeRequestCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.CreateChangeRequest(r.Context(), ids[0], req, actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetChangeRequest(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID", "changeRequestID")
	if !ok {
		return
	}

	resp, err := s.service.GetChangeRequest(r.Context(), ids[0], ids[1])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproveChangeRequest(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID", "changeRequestID")
	if !ok {
		return
	}
	var req api.ChangeRequestApproveRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.ApproveChangeRequest(r.Context(), ids[0], ids[1], req, actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
