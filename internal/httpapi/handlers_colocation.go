package httpapi

import (
	"net/http"

	"github.com/colocash/backend/internal/middleware"
	"github.com/colocash/backend/internal/models"
)

type createColocationRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency,omitempty"`
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleCreateColocation(w http.ResponseWriter, r *http.Request) {
	var req createColocationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	c, err := s.colocations.Create(r.Context(), req.Name, req.Currency, middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetColocation(w http.ResponseWriter, r *http.Request) {
	c, err := s.colocations.Get(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.colocations.ListMembers(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	respondJSON(w, http.StatusOK, members)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	err := s.colocations.AddMember(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()), req.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.colocations.ListCategories(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}
