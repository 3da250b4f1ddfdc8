package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"costbook/internal/core"
	"costbook/internal/rates"
)

// costRequest is the JSON body accepted by the cost endpoints. Date is
// only honored by the backfill endpoint.
type costRequest struct {
	Sum         float64 `json:"sum"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date,omitempty"`
}

// handleCreateCost inserts a new cost record stamped with the current
// time. Any date in the request body is ignored by contract.
func (s *Server) handleCreateCost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rec, ok := s.decodeCost(w, r)
	if !ok {
		return
	}

	stored, err := s.costs.AddCost(r.Context(), rec)
	if err != nil {
		slog.ErrorContext(r.Context(), "Cost insert failed", "error", err, "category", rec.Category)
		writeError(w, http.StatusInternalServerError, "failed to save cost")
		return
	}

	writeJSON(w, http.StatusCreated, stored)
}

// handleBackfillCost inserts a cost record preserving the supplied
// date, falling back to now when absent. Used for seeding and tests.
func (s *Server) handleBackfillCost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rec, ok := s.decodeCost(w, r)
	if !ok {
		return
	}

	stored, err := s.costs.AddCostWithDate(r.Context(), rec)
	if err != nil {
		slog.ErrorContext(r.Context(), "Cost backfill failed", "error", err, "category", rec.Category)
		writeError(w, http.StatusInternalServerError, "failed to save cost")
		return
	}

	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) decodeCost(w http.ResponseWriter, r *http.Request) (core.CostRecord, bool) {
	var req costRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return core.CostRecord{}, false
	}

	rec := core.CostRecord{
		Sum:         req.Sum,
		Currency:    strings.TrimSpace(req.Currency),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
	}
	if req.Date != "" {
		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date: must be RFC 3339")
			return core.CostRecord{}, false
		}
		rec.Date = date
	}

	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return core.CostRecord{}, false
	}

	return rec, true
}

// handleReport generates the monthly report for year, month and
// target currency query parameters.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	year, err := strconv.Atoi(strings.TrimSpace(q.Get("year")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	month, err := strconv.Atoi(strings.TrimSpace(q.Get("month")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be an integer")
		return
	}
	currency := strings.TrimSpace(q.Get("currency"))
	if currency == "" {
		currency = core.USD
	}

	rep, err := s.reports.Generate(r.Context(), year, month, currency)
	if err != nil {
		if errors.Is(err, core.ErrInvalidMonth) || errors.Is(err, core.ErrInvalidYear) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// An empty month is a valid report; reaching here means the
		// store read itself failed.
		slog.ErrorContext(r.Context(), "Report generation failed",
			"error", err, "year", year, "month", month, "currency", currency)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// handleRatesURL reads (GET) or replaces (PUT) the rate endpoint URL.
func (s *Server) handleRatesURL(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		saved, err := s.settings.RatesURL(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Settings read failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read settings")
			return
		}
		if saved == "" {
			saved = rates.DefaultURL
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": saved})

	case http.MethodPut:
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		parsed, err := url.Parse(strings.TrimSpace(req.URL))
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			writeError(w, http.StatusUnprocessableEntity, "url must be absolute http(s)")
			return
		}
		if err := s.settings.SaveRatesURL(r.Context(), parsed.String()); err != nil {
			slog.ErrorContext(r.Context(), "Settings write failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": parsed.String()})

	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
