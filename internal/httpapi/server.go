// Package httpapi exposes the ledger over a JSON REST surface.
package httpapi

import (
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/colocash/backend/internal/auth"
	"github.com/colocash/backend/internal/metrics"
	"github.com/colocash/backend/internal/middleware"
	"github.com/colocash/backend/internal/service"
)

// Server holds the HTTP server and the services the handlers call into.
type Server struct {
	http.Server

	auths       *service.AuthService
	colocations *service.ColocationService
	expenses    *service.ExpenseService
	payments    *service.PaymentService
	balances    *service.BalanceService
}

// NewServer wires routes, auth middleware and metrics around the services.
// Everything under /colocations requires a Bearer token.
func NewServer(
	addr string,
	jwtManager *auth.JWTManager,
	auths *service.AuthService,
	colocations *service.ColocationService,
	expenses *service.ExpenseService,
	payments *service.PaymentService,
	balances *service.BalanceService,
) *Server {
	s := &Server{
		auths:       auths,
		colocations: colocations,
		expenses:    expenses,
		payments:    payments,
		balances:    balances,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	protected := http.NewServeMux()
	protected.HandleFunc("POST /colocations", s.handleCreateColocation)
	protected.HandleFunc("GET /colocations/{id}", s.handleGetColocation)
	protected.HandleFunc("GET /colocations/{id}/members", s.handleListMembers)
	protected.HandleFunc("POST /colocations/{id}/members", s.handleAddMember)
	protected.HandleFunc("GET /colocations/{id}/categories", s.handleListCategories)

	protected.HandleFunc("GET /colocations/{id}/balances", s.handleBalances)
	protected.HandleFunc("GET /colocations/{id}/balances/simplified", s.handleSimplified)
	protected.HandleFunc("GET /colocations/{id}/balances/history", s.handleHistory)

	protected.HandleFunc("GET /colocations/{id}/expenses", s.handleListExpenses)
	protected.HandleFunc("POST /colocations/{id}/expenses", s.handleCreateExpense)
	protected.HandleFunc("GET /colocations/{id}/expenses/{expenseID}", s.handleGetExpense)
	protected.HandleFunc("PUT /colocations/{id}/expenses/{expenseID}", s.handleUpdateExpense)
	protected.HandleFunc("DELETE /colocations/{id}/expenses/{expenseID}", s.handleDeleteExpense)

	protected.HandleFunc("GET /colocations/{id}/payments", s.handleListPayments)
	protected.HandleFunc("POST /colocations/{id}/payments", s.handleCreatePayment)
	protected.HandleFunc("GET /colocations/{id}/payments/{paymentID}", s.handleGetPayment)
	protected.HandleFunc("POST /colocations/{id}/payments/{paymentID}/confirm", s.handleConfirmPayment)
	protected.HandleFunc("POST /colocations/{id}/payments/{paymentID}/reject", s.handleRejectPayment)
	protected.HandleFunc("DELETE /colocations/{id}/payments/{paymentID}", s.handleCancelPayment)

	mux.Handle("/colocations/", middleware.RequireAuth(jwtManager, protected))
	mux.Handle("POST /colocations", middleware.RequireAuth(jwtManager, protected))

	handler := middleware.Logging(withMetrics(mux))

	s.Server = http.Server{
		Addr: addr,
		// h2c allows HTTP/2 without TLS behind a terminating proxy.
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the full middleware stack for tests.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.ObserveRequest(r.Method, routeLabel(r), rec.status, time.Since(start))
	})
}

// routeLabel keeps metric cardinality bounded by using the matched pattern,
// not the raw path.
func routeLabel(r *http.Request) string {
	if p := r.Pattern; p != "" {
		return p
	}
	return "unmatched"
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
