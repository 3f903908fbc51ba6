package server

import (
	"net/http"

	"sprintdesk/internal/api"
)

func (s *Server) handleListRisks(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID")
	if !ok {
		return
	}
	sprintID, err := querySprintID(r)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	resp, err := s.service.ListRisks(r.Context(), ids[0], sprintID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateRisk(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID")
	if !ok {
		return
	}
	var req api.RiskCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.CreateRisk(r.Context(), ids[0], req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetRisk(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID", "riskID")
	if !ok {
		return
	}

	resp, err := s.service.GetRisk(r.Context(), ids[0], ids[1])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateRisk(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "projectID", "riskID")
	if !ok {
		return
	}
	var req api.RiskUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.UpdateRisk(r.Context(), ids[0], ids[1], req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
