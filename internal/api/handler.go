// Package api exposes the extraction and reconciliation engine over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/labstack/gommon/log"

	"github.com/credditor/credditor/internal/extract"
	"github.com/credditor/credditor/internal/models"
	"github.com/credditor/credditor/internal/recon"
)

const version = "1.0.0"

// ExtractRequest is the JSON body for the /api/extract endpoint.
type ExtractRequest struct {
	Title string `json:"title"`
	// PostDate anchors year disambiguation of partial dates. Accepts
	// RFC 3339 or plain 2006-01-02; defaults to the current day.
	PostDate string `json:"postDate,omitempty"`
}

// ExtractResponse is the JSON response from the /api/extract endpoint.
type ExtractResponse struct {
	Success      bool                 `json:"success"`
	Error        string               `json:"error,omitempty"`
	Strategy     string               `json:"strategy,omitempty"`
	BorrowAmount *string              `json:"borrowAmount"`
	RepayAmount  *string              `json:"repayAmount"`
	RepayDate    *string              `json:"repayDate"`
	Installments []models.Installment `json:"installments,omitempty"`
	PaymentTypes []string             `json:"paymentTypes,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// ReconcileResponse is the JSON response from the /api/reconcile endpoint.
type ReconcileResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Flags   recon.Flags `json:"flags"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Extractor extract.Extractor
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/extract", h.handleExtract).Methods(http.MethodPost)
	r.HandleFunc("/api/reconcile", h.handleReconcile).Methods(http.MethodPost)
	r.HandleFunc("/api/health", h.handleHealth).Methods(http.MethodGet)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":   "ok",
		"strategy": h.Extractor.Name(),
		"version":  version,
	})
}

func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	// Recover from any panics to prevent server crash
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("[API] extract panic: %v", rec)
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Internal server error (recovered from crash): %v", rec))
		}
	}()

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse request body: %v", err))
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Field 'title' is required.")
		return
	}

	postDate := time.Now().UTC()
	if req.PostDate != "" {
		parsed, err := parsePostDate(req.PostDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Unrecognized postDate %q: use RFC 3339 or 2006-01-02.", req.PostDate))
			return
		}
		postDate = parsed
	}

	result, warnings := h.Extractor.Extract(r.Context(), req.Title, postDate)

	resp := ExtractResponse{
		Success:      true,
		Strategy:     h.Extractor.Name(),
		Installments: result.Installments,
		PaymentTypes: result.PaymentTypes,
		Warnings:     warnings,
	}
	if result.BorrowAmount != nil {
		s := result.BorrowAmount.String()
		resp.BorrowAmount = &s
	}
	if result.RepayAmount != nil {
		s := result.RepayAmount.String()
		resp.RepayAmount = &s
	}
	if result.RepayDate != nil {
		s := result.RepayDate.Format("2006-01-02")
		resp.RepayDate = &s
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("[API] reconcile panic: %v", rec)
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Internal server error (recovered from crash): %v", rec))
		}
	}()

	var loan models.UserLoan
	if err := json.NewDecoder(r.Body).Decode(&loan); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse loan: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ReconcileResponse{
		Success: true,
		Flags:   recon.Check(loan),
	})
}

func parsePostDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ExtractResponse{
		Success: false,
		Error:   msg,
	})
}
