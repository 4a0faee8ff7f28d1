package httpapi

import (
	"fmt"
	"net/http"

	"github.com/colocash/backend/internal/middleware"
	"github.com/colocash/backend/internal/models"
	"github.com/colocash/backend/internal/service"
)

type createPaymentRequest struct {
	ToUserID    string  `json:"to_user_id"`
	AmountCents int64   `json:"amount_cents"`
	Note        *string `json:"note,omitempty"`
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	payment, err := s.payments.Create(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()), req.ToUserID, req.AmountCents, req.Note)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, payment)
}

func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.payments.Confirm(r.Context(), r.PathValue("id"), r.PathValue("paymentID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payment)
}

func (s *Server) handleRejectPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.payments.Reject(r.Context(), r.PathValue("id"), r.PathValue("paymentID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payment)
}

// handleCancelPayment implements DELETE on a payment as a cancel transition;
// nothing is ever physically removed from the ledger.
func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.payments.Cancel(r.Context(), r.PathValue("id"), r.PathValue("paymentID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payment)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.payments.Get(r.Context(), r.PathValue("id"), r.PathValue("paymentID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payment)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	var status *models.PaymentStatus
	if v := r.URL.Query().Get("status"); v != "" {
		st := models.PaymentStatus(v)
		switch st {
		case models.PaymentStatusPending, models.PaymentStatusConfirmed,
			models.PaymentStatusRejected, models.PaymentStatusCancelled:
			status = &st
		default:
			respondError(w, fmt.Errorf("%w: unknown payment status %q", service.ErrValidation, v))
			return
		}
	}

	payments, err := s.payments.List(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()), status)
	if err != nil {
		respondError(w, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	respondJSON(w, http.StatusOK, payments)
}
