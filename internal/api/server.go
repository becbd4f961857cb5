// Package api exposes the game over HTTP for the browser frontend: read
// accessors for every piece of state and POST endpoints for player actions.
// Declined actions are 200s carrying the result payload; HTTP errors are
// reserved for malformed requests.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dlozano/patrimonio/internal/bank"
	"github.com/dlozano/patrimonio/internal/engine"
	"github.com/dlozano/patrimonio/internal/persistence"
)

// Server serves the session over HTTP. A single mutex serializes every
// state-touching request: the game core assumes strict exclusivity between
// player actions and turn advances.
type Server struct {
	Eng      *engine.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for admin endpoints. Empty = disabled.

	mu sync.Mutex
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/market", s.handleMarket)
		r.Get("/listings", s.handleListings)
		r.Get("/loans", s.handleLoans)
		r.Get("/career", s.handleCareer)
		r.Get("/history", s.handleHistory)
		r.Get("/events", s.handleEvents)
		r.Get("/stats", s.handleStats)
		r.Get("/bank/quote", s.handleQuote)

		r.Post("/turn", s.handleTurn)
		r.Post("/market/buy", s.handleBuy)
		r.Post("/market/sell", s.handleSell)
		r.Post("/bank/loans", s.handleTakeLoan)
		r.Post("/bank/loans/{id}/payoff", s.handlePayOff)
		r.Post("/listings/{id}/buy", s.handleBuyProperty)
		r.Post("/career/promote", s.handlePromote)

		r.Post("/snapshot", s.adminOnly(s.handleSnapshot))
	})

	return r
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, s.Router()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware allows the browser frontend to call the API from another
// origin. The game is single-player and read endpoints are harmless, so the
// policy is permissive.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.State)
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.Market.Stocks)
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.Estate.Listings)
}

func (s *Server) handleLoans(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.State.Loans)
}

func (s *Server) handleCareer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := map[string]any{
		"path":          s.Eng.Career.Path,
		"months_in_job": s.Eng.Career.MonthsInJob,
		"job_title":     s.Eng.State.JobTitle,
		"ranks":         s.Eng.Career.Ranks(),
	}
	if next := s.Eng.Career.AvailablePromotion(s.Eng.State); next != nil {
		resp["available_promotion"] = next
	}
	writeJSON(w, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.State.History)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.Eng.Events
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	writeJSON(w, events)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.State.Stats)
}

// handleQuote previews a personal loan: the level monthly payment for the
// requested amount and term, alongside the current borrowing cap.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount, _ := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	years, _ := strconv.Atoi(r.URL.Query().Get("years"))
	if years <= 0 {
		years = 1
	}

	resp := map[string]any{
		"max_loan_amount": bank.MaxLoanAmount(s.Eng.State),
		"annual_rate":     bank.PersonalRate,
	}
	if amount > 0 {
		resp["monthly_payment"] = bank.MonthlyPayment(amount, years*12, bank.PersonalRate)
	}
	writeJSON(w, resp)
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Eng.NextTurn()
	writeJSON(w, map[string]any{
		"month":     s.Eng.State.Month,
		"year":      s.Eng.State.Year,
		"net_worth": s.Eng.State.NetWorth,
	})
}

type tradeRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int    `json:"quantity"`
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.Buy(req.Symbol, req.Quantity))
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.Sell(req.Symbol, req.Quantity))
}

func (s *Server) handleTakeLoan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
		Years  int     `json:"years"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Years <= 0 {
		http.Error(w, "years must be positive", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.TakeLoan(req.Amount, req.Years))
}

func (s *Server) handlePayOff(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid loan id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.PayOffLoan(id))
}

func (s *Server) handleBuyProperty(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid listing id", http.StatusBadRequest)
		return
	}

	// Mortgage by default; {"mortgage": false} buys outright.
	useMortgage := true
	if r.Body != nil && r.ContentLength != 0 {
		var req struct {
			Mortgage *bool `json:"mortgage"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Mortgage != nil {
			useMortgage = *req.Mortgage
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.BuyProperty(id, useMortgage))
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.Promote())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.DB.Save(s.Eng); err != nil {
		slog.Error("snapshot failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "saved"})
}
