package prism

import (
	"context"
	stderr "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nutanix-exporter/nutanix-exporter/internal/config"
	"github.com/nutanix-exporter/nutanix-exporter/pkg/errors"
)

func testClient(t *testing.T, server *httptest.Server, retries int) *Client {
	t.Helper()
	return NewClient(config.PrismConfig{
		Username:   "admin",
		Secret:     "secret",
		Timeout:    5 * time.Second,
		Retries:    retries,
		RetryDelay: time.Millisecond,
	}, server.URL, slog.Default())
}

func TestClientGet(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, secret, ok := r.BasicAuth()
		if !ok || user != "admin" || secret != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":42}`)
	}))
	defer server.Close()

	client := testClient(t, server, 1)

	var out struct {
		Value int `json:"value"`
	}
	if err := client.Get(context.Background(), "/api/test", nil, &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out.Value != 42 {
		t.Errorf("Expected value 42, got %d", out.Value)
	}
}

func TestClientFatalStatusNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"backend exploded"}`)
	}))
	defer server.Close()

	client := testClient(t, server, 5)

	var out map[string]interface{}
	err := client.Get(context.Background(), "/api/test", nil, &out)
	if err == nil {
		t.Fatal("Expected error for HTTP 500")
	}

	// A status response is a decision, not a transport fault.
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected exactly 1 request for a fatal status, got %d", got)
	}

	var exporterErr *errors.ExporterError
	if !stderr.As(err, &exporterErr) {
		t.Fatalf("Expected ExporterError, got %T", err)
	}
	if exporterErr.Code != errors.ErrCodeServerError {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeServerError, exporterErr.Code)
	}
	if exporterErr.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("Expected HTTP status 500, got %d", exporterErr.HTTPStatus)
	}
}

func TestClientUnauthorizedDetail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := testClient(t, server, 3)

	var out map[string]interface{}
	err := client.Get(context.Background(), "/api/test", nil, &out)

	var exporterErr *errors.ExporterError
	if !stderr.As(err, &exporterErr) {
		t.Fatalf("Expected ExporterError, got %v", err)
	}
	if exporterErr.Code != errors.ErrCodeUnauthorized {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeUnauthorized, exporterErr.Code)
	}
}

func TestClientRetryBound(t *testing.T) {
	t.Parallel()

	// A closed server produces connection-refused transport errors.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := testClient(t, server, 3)

	start := time.Now()
	var out map[string]interface{}
	err := client.Get(context.Background(), "/api/test", nil, &out)
	if err == nil {
		t.Fatal("Expected error against a closed server")
	}

	// Two sleeps of the configured delay for three attempts.
	if elapsed := time.Since(start); elapsed < 2*time.Millisecond {
		t.Errorf("Expected at least two retry delays, elapsed %v", elapsed)
	}

	if !errors.IsRetryable(stderr.Unwrap(err)) && !errors.IsRetryable(err) {
		// The exhausted-retry wrapper must still unwrap to the
		// retryable transport classification.
		t.Errorf("Expected underlying error to classify as retryable: %v", err)
	}
}

func TestFetchAllPagination(t *testing.T) {
	t.Parallel()

	const total = 150
	var pageRequests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("$page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("$limit"))
		if limit > 1 {
			pageRequests.Add(1)
		}

		start := page * limit
		end := start + limit
		if end > total {
			end = total
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[`)
		for i := start; i < end; i++ {
			if i > start {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"extId":"entity-%d","name":"e%d"}`, i, i)
		}
		fmt.Fprintf(w, `],"metadata":{"totalAvailableResults":%d}}`, total)
	}))
	defer server.Close()

	client := testClient(t, server, 1)

	entities, err := FetchAll[NamedEntity](context.Background(), client, "/api/test", nil, 100, nil)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	if len(entities) != total {
		t.Fatalf("Expected %d entities, got %d", total, len(entities))
	}
	if got := pageRequests.Load(); got != 2 {
		t.Errorf("Expected ceil(150/100)=2 page fetches, got %d", got)
	}

	// Page order must survive concurrent fetching.
	if entities[0].ExtID != "entity-0" || entities[149].ExtID != "entity-149" {
		t.Errorf("Entities out of order: first=%s last=%s", entities[0].ExtID, entities[149].ExtID)
	}
}

func TestFetchAllEmpty(t *testing.T) {
	t.Parallel()

	var pageRequests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limit, _ := strconv.Atoi(r.URL.Query().Get("$limit")); limit > 1 {
			pageRequests.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[],"metadata":{"totalAvailableResults":0}}`)
	}))
	defer server.Close()

	client := testClient(t, server, 1)

	entities, err := FetchAll[NamedEntity](context.Background(), client, "/api/test", nil, 100, nil)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("Expected no entities, got %d", len(entities))
	}
	if got := pageRequests.Load(); got != 0 {
		t.Errorf("Expected zero page fetches for an empty kind, got %d", got)
	}
}

func TestFetchAllPageFailureIsolation(t *testing.T) {
	t.Parallel()

	const total = 300
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("$page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("$limit"))

		if limit > 1 && page == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		start := page * limit
		end := start + limit
		if end > total {
			end = total
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[`)
		for i := start; i < end; i++ {
			if i > start {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"extId":"entity-%d"}`, i)
		}
		fmt.Fprintf(w, `],"metadata":{"totalAvailableResults":%d}}`, total)
	}))
	defer server.Close()

	client := testClient(t, server, 1)

	var failedPages []int
	entities, err := FetchAll[NamedEntity](context.Background(), client, "/api/test", nil, 100,
		func(page int, err error) { failedPages = append(failedPages, page) })
	if err != nil {
		t.Fatalf("A single failed page must not fail the listing: %v", err)
	}

	if len(entities) != 200 {
		t.Errorf("Expected 200 entities from the surviving pages, got %d", len(entities))
	}
	if len(failedPages) != 1 || failedPages[0] != 1 {
		t.Errorf("Expected page 1 reported as failed, got %v", failedPages)
	}
}

func TestCountV3(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/nutanix/v3/apps/list" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"metadata":{"total_matches":17}}`)
	}))
	defer server.Close()

	client := testClient(t, server, 1)

	total, err := client.CountV3(context.Background(), "app", "_state==running")
	if err != nil {
		t.Fatalf("CountV3 failed: %v", err)
	}
	if total != 17 {
		t.Errorf("Expected 17 matches, got %d", total)
	}
}

func TestGetStatsQueryShape(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		for _, param := range []string{"$startTime", "$endTime", "$samplingInterval", "$statType"} {
			if q.Get(param) == "" {
				t.Errorf("Missing query parameter %s", param)
			}
		}
		if q.Get("$statType") != StatTypeLast {
			t.Errorf("Expected statType LAST, got %s", q.Get("$statType"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"hypervisorCpuUsagePpm":[{"value":123}]}}`)
	}))
	defer server.Close()

	client := testClient(t, server, 1)

	window := NewStatsWindow(150*time.Second, 30, StatTypeLast)
	data, err := client.GetStats(context.Background(), "/api/stats", window)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected raw stats payload")
	}
}
