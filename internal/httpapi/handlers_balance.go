package httpapi

import (
	"fmt"
	"net/http"

	"github.com/colocash/backend/internal/middleware"
	"github.com/colocash/backend/internal/models"
	"github.com/colocash/backend/internal/service"
)

type balancesResponse struct {
	Balances []models.MemberBalance `json:"balances"`
}

type debtsResponse struct {
	Debts []models.SimplifiedDebt `json:"debts"`
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.balances.Balances(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	if balances == nil {
		balances = []models.MemberBalance{}
	}
	respondJSON(w, http.StatusOK, balancesResponse{Balances: balances})
}

func (s *Server) handleSimplified(w http.ResponseWriter, r *http.Request) {
	debts, err := s.balances.Simplified(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	if debts == nil {
		debts = []models.SimplifiedDebt{}
	}
	respondJSON(w, http.StatusOK, debtsResponse{Debts: debts})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, fmt.Errorf("%w: user_id query parameter required", service.ErrValidation))
		return
	}

	events, err := s.balances.History(r.Context(), r.PathValue("id"), userID, middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	if events == nil {
		events = []models.BalanceEvent{}
	}
	respondJSON(w, http.StatusOK, events)
}
