package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Veraticus/spice-dashboard/internal/analysis"
	"github.com/Veraticus/spice-dashboard/internal/normalize"
)

// 400 messages for malformed request bodies.
const (
	UploadArrayRequired = "transactions array required"
	UserDataRequired    = "User data is required"
	FormDataRequired    = "Form data is required"
)

const manualAddedMessage = "Transaction added successfully"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleImport handles POST /api/transactions/import
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	result, err := s.services.Importer.ImportForUser(r.Context(), UserID(r.Context()))
	if err != nil {
		s.logger.Error("Import failed", "error", err)
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handleUpload handles POST /api/transactions/upload
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transactions json.RawMessage `json:"transactions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, UploadArrayRequired)
		return
	}

	var rows []normalize.Row
	if len(req.Transactions) == 0 || json.Unmarshal(req.Transactions, &rows) != nil || rows == nil {
		WriteError(w, http.StatusBadRequest, UploadArrayRequired)
		return
	}

	uploaded, err := s.services.Importer.Upload(r.Context(), UserID(r.Context()), rows)
	if err != nil {
		s.logger.Error("Upload failed", "error", err)
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"uploaded": uploaded})
}

// handleManual handles POST /api/transactions/manual
func (s *Server) handleManual(w http.ResponseWriter, r *http.Request) {
	var entry normalize.ManualEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		WriteError(w, http.StatusBadRequest, normalize.MissingManualFields)
		return
	}

	txn, err := s.services.Importer.AddManual(r.Context(), UserID(r.Context()), entry)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"transaction": txn,
		"message":     manualAddedMessage,
	})
}

// handleList handles GET /api/transactions
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	txns, err := s.services.Importer.List(r.Context(), UserID(r.Context()))
	if err != nil {
		s.logger.Error("Failed to list transactions", "error", err)
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"transactions": txns})
}

// handleSpendingAnalysis handles POST /api/transactions/spending-analysis
func (s *Server) handleSpendingAnalysis(w http.ResponseWriter, r *http.Request) {
	txns, err := s.services.Importer.List(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	narrative := s.services.Analyst.SpendingAnalysis(r.Context(), txns)
	if narrative == nil {
		WriteJSON(w, http.StatusOK, map[string]any{
			"analysis": nil,
			"message":  analysis.NoTransactionsMessage,
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"analysis": narrative})
}

// handleChart handles POST /api/transactions/chart
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	txns, err := s.services.Importer.List(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s.services.Charts.Recommend(r.Context(), txns))
}

// handleReview handles POST /api/transactions/review
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	txns, err := s.services.Importer.List(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"reviews": s.services.Reviewer.ReviewBatch(r.Context(), txns),
	})
}

// handleInvestmentAdvice handles POST /api/investment-advice
func (s *Server) handleInvestmentAdvice(w http.ResponseWriter, r *http.Request) {
	profile, ok := decodeObject(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, UserDataRequired)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"advice": s.services.Analyst.InvestmentAdvice(r.Context(), profile),
	})
}

// handleGoalAnalysis handles POST /api/goal-analysis
func (s *Server) handleGoalAnalysis(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeObject(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, FormDataRequired)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"analysis": s.services.Analyst.GoalAnalysis(r.Context(), form),
	})
}

// decodeObject reads a non-empty JSON object body.
func decodeObject(r *http.Request) (map[string]any, bool) {
	var obj map[string]any
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
		return nil, false
	}
	return obj, len(obj) > 0
}
