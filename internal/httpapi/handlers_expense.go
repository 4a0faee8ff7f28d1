package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/colocash/backend/internal/middleware"
	"github.com/colocash/backend/internal/models"
	"github.com/colocash/backend/internal/service"
)

type expenseRequest struct {
	PaidBy      string  `json:"paid_by"`
	CategoryID  string  `json:"category_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`

	// Amount is a decimal string ("12.34"); AmountCents carries the same
	// value in minor units. Exactly one of the two must be set.
	Amount      string           `json:"amount,omitempty"`
	AmountCents int64            `json:"amount_cents,omitempty"`
	SplitType   models.SplitType `json:"split_type"`

	Participants []string         `json:"participants"`
	Weights      map[string]int64 `json:"weights,omitempty"`
	Amounts      map[string]int64 `json:"amounts,omitempty"`

	// ExpenseDate is YYYY-MM-DD; empty means today.
	ExpenseDate string `json:"expense_date,omitempty"`
}

func (req expenseRequest) toInput() (service.ExpenseInput, error) {
	cents := req.AmountCents
	if req.Amount != "" {
		if cents != 0 {
			return service.ExpenseInput{}, fmt.Errorf("%w: set either amount or amount_cents, not both", service.ErrValidation)
		}
		parsed, err := models.ParseDecimalToCents(req.Amount)
		if err != nil {
			return service.ExpenseInput{}, fmt.Errorf("%w: amount must be a positive decimal: %v", service.ErrValidation, err)
		}
		cents = parsed
	}

	input := service.ExpenseInput{
		PaidBy:       req.PaidBy,
		CategoryID:   req.CategoryID,
		Title:        req.Title,
		Description:  req.Description,
		AmountCents:  cents,
		SplitType:    req.SplitType,
		Participants: req.Participants,
		Weights:      req.Weights,
		Amounts:      req.Amounts,
	}
	if req.ExpenseDate != "" {
		date, err := time.Parse("2006-01-02", req.ExpenseDate)
		if err != nil {
			return service.ExpenseInput{}, errBadDate(err)
		}
		input.ExpenseDate = date
	}
	return input, nil
}

func errBadDate(err error) error {
	return fmt.Errorf("%w: expense_date must be YYYY-MM-DD: %v", service.ErrValidation, err)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(w, err)
		return
	}

	expense, err := s.expenses.Create(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(w, err)
		return
	}

	expense, err := s.expenses.Update(r.Context(), r.PathValue("id"), r.PathValue("expenseID"), middleware.GetUserID(r.Context()), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	err := s.expenses.Delete(r.Context(), r.PathValue("id"), r.PathValue("expenseID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.expenses.Get(r.Context(), r.PathValue("id"), r.PathValue("expenseID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.List(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	respondJSON(w, http.StatusOK, expenses)
}
