package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/JonMunkholm/bankrecon/internal/ingest"
	"github.com/JonMunkholm/bankrecon/internal/metrics"
	"github.com/JonMunkholm/bankrecon/internal/service"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// RunResponse is the detail view of a run, without its transactions.
// Errors is the validation histogram with user messages attached.
type RunResponse struct {
	service.RunSummary
	Errors       []core.ErrorSummary `json:"errors"`
	DuplicateIDs []string            `json:"duplicateIds"`
	Dataset      core.DatasetSummary `json:"dataset"`
}

// TransactionPage is one page of a run's cleaned transactions.
type TransactionPage struct {
	Filter       metrics.Filter            `json:"filter"`
	Page         int                       `json:"page"`
	PageSize     int                       `json:"pageSize"`
	Total        int                       `json:"total"`
	Transactions []core.CleanedTransaction `json:"transactions"`
}

// StatusResponse reports server load.
type StatusResponse struct {
	Batches service.LimiterStatus `json:"batches"`
	Runs    int                   `json:"runs"`
}

// LTVResponse is one customer's lifetime value.
type LTVResponse struct {
	CustomerID int64   `json:"customerId"`
	LTV        float64 `json:"ltv"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Batches: s.service.LimiterStatus(),
		Runs:    len(s.service.List()),
	})
}

// handleCreateRun processes an uploaded CSV batch synchronously.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, fmt.Errorf("%w: %v", ingest.ErrTooLarge, err), http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	run, err := s.service.Process(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusCreated, runResponse(run))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.List())
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.Get(chi.URLParam(r, "runID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, runResponse(run))
}

// handleTransactions returns a filtered, paginated slice of cleaned transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r)
	txs, err := s.service.Transactions(chi.URLParam(r, "runID"), f)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	page := parseIntParam(r, "page", 1)
	pageSize := min(parseIntParam(r, "pageSize", defaultPageSize), maxPageSize)

	// Compare in pages first so a huge page number cannot overflow.
	start := len(txs)
	if page-1 <= len(txs)/pageSize {
		start = min((page-1)*pageSize, len(txs))
	}
	end := min(start+pageSize, len(txs))

	writeJSON(w, http.StatusOK, TransactionPage{
		Filter:       f,
		Page:         page,
		PageSize:     pageSize,
		Total:        len(txs),
		Transactions: txs[start:end],
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Metrics(r.Context(), chi.URLParam(r, "runID"), filterFromQuery(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	anomalies, err := s.service.Anomalies(chi.URLParam(r, "runID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, anomalies)
}

func (s *Server) handleCustomerLTV(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		respondError(w, r, errInvalidCustomerID, http.StatusBadRequest)
		return
	}

	ltv, err := s.service.CustomerLTV(chi.URLParam(r, "runID"), customerID)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, LTVResponse{CustomerID: customerID, LTV: ltv})
}

func runResponse(run *service.Run) RunResponse {
	dupes := run.Result.DuplicateIDs
	if dupes == nil {
		dupes = []string{}
	}
	return RunResponse{
		RunSummary:   run.Summary(),
		Errors:       core.SummarizeValidationErrors(run.Result.Stats.ValidationErrors),
		DuplicateIDs: dupes,
		Dataset:      run.Result.Dataset,
	}
}

// filterFromQuery reads the dashboard filter from query parameters.
func filterFromQuery(r *http.Request) metrics.Filter {
	q := r.URL.Query()
	return metrics.Filter{
		Branch:          q.Get("branch"),
		AccountType:     q.Get("accountType"),
		TransactionType: q.Get("transactionType"),
		Month:           q.Get("month"),
	}
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
