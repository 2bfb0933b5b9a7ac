package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/bankrecon/internal/config"
	"github.com/JonMunkholm/bankrecon/internal/service"
)

const ledger = "Customer ID,Age,Gender,City,Account Type,Account Balance,Date Of Account Opening," +
	"TransactionID,Transaction Date,Transaction Type,Transaction Amount,Account Balance After Transaction,Branch ID\n" +
	"1001,36,M,Oslo,Savings,1000,2020-01-15,T-1,2023-04-01,Deposit,100,1100,BR-1\n" +
	"1001,36,M,Oslo,Savings,1000,2020-01-15,T-2,2023-04-02,Deposit,100,1200,BR-1\n" +
	"1001,36,M,Oslo,Savings,1000,2020-01-15,T-3,2023-04-03,Withdrawal,50,1150,BR-1\n" +
	"1001,36,M,Oslo,Savings,1000,2020-01-15,T-1,2023-04-01,Deposit,100,1100,BR-1\n" +
	",36,F,Bergen,Savings,1000,2020-01-15,T-9,2023-04-01,Deposit,10,1010,BR-2\n"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: time.Minute},
		Upload: config.UploadConfig{MaxFileSize: 1 << 20},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	srv := NewServer(service.New(service.Options{}), cfg)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func upload(t *testing.T, h http.Handler, name, body string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(body))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/runs", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func createRun(t *testing.T, h http.Handler) RunResponse {
	t.Helper()
	rec := upload(t, h, "april.csv", ledger)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/runs = %d, body %s", rec.Code, rec.Body)
	}
	var run RunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	return run
}

func TestHealth(t *testing.T) {
	rec := get(newTestServer(t, testConfig()).Router(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestCreateRun(t *testing.T) {
	h := newTestServer(t, testConfig()).Router()
	run := createRun(t, h)

	if run.ID == "" || run.FileName != "april.csv" {
		t.Errorf("run = %q/%q", run.ID, run.FileName)
	}
	s := run.Stats
	if s.TotalRecords != 5 || s.ValidRecords != 3 || s.InvalidRecords != 1 || s.DuplicateRecords != 1 {
		t.Errorf("stats = %+v, want total 5, valid 3, invalid 1, duplicates 1", s)
	}
	if len(run.Errors) != 1 || run.Errors[0].Code != "VAL001" || run.Errors[0].Count != 1 {
		t.Errorf("Errors = %+v, want one VAL001", run.Errors)
	}
	if len(run.DuplicateIDs) != 1 || run.DuplicateIDs[0] != "T-1" {
		t.Errorf("DuplicateIDs = %v, want [T-1]", run.DuplicateIDs)
	}

	rec := get(h, "/api/runs")
	var list []service.RunSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 || list[0].ID != run.ID {
		t.Errorf("GET /api/runs = %s (%v)", rec.Body, err)
	}

	if rec := get(h, "/api/runs/"+run.ID); rec.Code != http.StatusOK {
		t.Errorf("GET run = %d, want 200", rec.Code)
	}
}

func TestCreateRun_Errors(t *testing.T) {
	h := newTestServer(t, testConfig()).Router()

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"header only", strings.SplitAfter(ledger, "\n")[0], http.StatusUnprocessableEntity, "FILE005"},
		{"missing columns", "Name,Amount\nbob,1\n", http.StatusUnprocessableEntity, "FILE006"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, h, "bad.csv", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantErr)
			}
		})
	}

	t.Run("no file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader("")))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestUnknownRun(t *testing.T) {
	h := newTestServer(t, testConfig()).Router()
	for _, path := range []string{"/api/runs/nope", "/api/runs/nope/metrics", "/api/runs/nope/anomalies"} {
		rec := get(h, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, rec.Code)
			continue
		}
		var resp ErrorResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Code != "RUN001" {
			t.Errorf("GET %s code = %q, want RUN001", path, resp.Code)
		}
	}
}

func TestTransactions(t *testing.T) {
	h := newTestServer(t, testConfig()).Router()
	run := createRun(t, h)

	tests := []struct {
		query     string
		wantTotal int
		wantLen   int
	}{
		{"", 3, 3},
		{"?pageSize=2&page=2", 3, 1},
		{"?page=5", 3, 0},
		{"?page=9223372036854775807&pageSize=1000", 3, 0},
		{"?transactionType=withdrawal", 1, 1},
		{"?branch=BR-2", 0, 0},
		{"?month=2023-04", 3, 3},
	}
	for _, tt := range tests {
		rec := get(h, "/api/runs/"+run.ID+"/transactions"+tt.query)
		if rec.Code != http.StatusOK {
			t.Fatalf("%q: status = %d", tt.query, rec.Code)
		}
		var page TransactionPage
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatalf("%s: %v", tt.query, err)
		}
		if page.Total != tt.wantTotal || len(page.Transactions) != tt.wantLen {
			t.Errorf("%q: total %d len %d, want %d and %d", tt.query, page.Total, len(page.Transactions), tt.wantTotal, tt.wantLen)
		}
	}
}

func TestMetricsAndLTV(t *testing.T) {
	h := newTestServer(t, testConfig()).Router()
	run := createRun(t, h)

	rec := get(h, "/api/runs/"+run.ID+"/metrics")
	var report struct {
		Transactions int `json:"transactions"`
		Summary      struct {
			TotalDeposits float64 `json:"totalDeposits"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Transactions != 3 || report.Summary.TotalDeposits != 200 {
		t.Errorf("metrics = %+v, want 3 transactions and 200 deposits", report)
	}

	rec = get(h, "/api/runs/"+run.ID+"/customers/1001/ltv")
	var ltv LTVResponse
	json.Unmarshal(rec.Body.Bytes(), &ltv)
	if ltv.CustomerID != 1001 || ltv.LTV != 150 {
		t.Errorf("ltv = %+v, want 1001 / 150", ltv)
	}

	if rec := get(h, "/api/runs/"+run.ID+"/customers/abc/ltv"); rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric customer = %d, want 400", rec.Code)
	}
}

func TestRunReport(t *testing.T) {
	h := newTestServer(t, testConfig()).Router()
	rec := upload(t, h, "april&may.csv", ledger)
	var run RunResponse
	json.Unmarshal(rec.Body.Bytes(), &run)

	rec = get(h, "/runs/"+run.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET report = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"april&amp;may.csv", "Volume by branch", "BR-1", "VAL001"} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}}
	h := newTestServer(t, cfg).Router()

	tests := []struct {
		key  string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"wrong", http.StatusForbidden},
		{"secret", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		if tt.key != "" {
			req.Header.Set("X-API-Key", tt.key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("key %q: status = %d, want %d", tt.key, rec.Code, tt.want)
		}
	}

	if rec := get(h, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("/healthz without key = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	h := newTestServer(t, cfg).Router()

	for i := 0; i < 3; i++ {
		rec := get(h, "/healthz")
		want := http.StatusOK
		if i == 2 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, want)
		}
	}
}

func TestRateLimiter_Stop(t *testing.T) {
	rl := newRateLimiter(1, time.Millisecond)
	rl.stop()
	rl.stop()

	select {
	case <-rl.done:
	default:
		t.Error("done channel still open after stop")
	}
}

func TestShutdownStopsRateLimiters(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 10, UploadLimit: 5}
	srv := NewServer(service.New(service.Options{}), cfg)

	limiters := srv.limiters
	if len(limiters) != 2 {
		t.Fatalf("len(limiters) = %d, want 2", len(limiters))
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown error = %v", err)
	}
	for i, rl := range limiters {
		select {
		case <-rl.done:
		default:
			t.Errorf("limiter %d not stopped", i)
		}
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := &rateLimiter{visitors: map[string]*visitor{}, rate: 1, window: time.Minute, now: func() time.Time { return now }}

	if !rl.allow("1.2.3.4") {
		t.Fatal("first request denied")
	}
	if rl.allow("1.2.3.4") {
		t.Error("second request allowed within window")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other client denied")
	}
	now = now.Add(2 * time.Minute)
	if !rl.allow("1.2.3.4") {
		t.Error("request denied after window reset")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrRunNotFound, http.StatusNotFound},
		{service.ErrTooManyBatches, http.StatusServiceUnavailable},
		{fmt.Errorf("invalid csv: %w", fmt.Errorf("bare quote")), http.StatusBadRequest},
		{errNoFile, http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
