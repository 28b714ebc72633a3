package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"figimapper/internal/checkpoint"
	"figimapper/internal/config"
	"figimapper/internal/dispatcher"
	"figimapper/internal/export"
	"figimapper/internal/figi"
	"figimapper/internal/metrics"
	"figimapper/internal/openfigi"
	"figimapper/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// newMappingServer mimics the mapping endpoint: identifiers starting with NOMATCH get a
// warning, a request containing FAIL gets a 500, everything else matches.
func newMappingServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}

		var jobs []figi.Job
		if err := json.NewDecoder(r.Body).Decode(&jobs); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		results := make([]figi.JobResult, len(jobs))
		for i, job := range jobs {
			if strings.HasPrefix(job.IDValue, "FAIL") {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("<html>Internal Server Error</html>"))
				return
			}
			if strings.HasPrefix(job.IDValue, "NOMATCH") {
				results[i] = figi.JobResult{Warning: "No identifier found."}
				continue
			}
			results[i] = figi.JobResult{Data: []figi.Record{testutil.RecordFor(job.IDValue)}}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(results)
	}))
}

// TestIntegration_EndToEnd maps identifiers through the HTTP client, checkpoints to a file and writes the workbook
func TestIntegration_EndToEnd(t *testing.T) {
	server := newMappingServer(t, 0)
	defer server.Close()

	dir := t.TempDir()
	store := checkpoint.NewFileStore(filepath.Join(dir, "OpenFIGI.checkpoint"))

	client := openfigi.NewClient(openfigi.Options{APIKey: "test_key", URL: server.URL, Timeout: 2 * time.Second})
	d := dispatcher.New(client, dispatcher.Config{APILimit: 10, Workers: 3, CheckpointEvery: 2},
		dispatcher.WithCheckpoint(store.Save),
	)

	values := testutil.Identifiers(45)
	values[7] = "NOMATCH1"

	rs, err := d.Submit(context.Background(), figi.IDTypeISIN, values)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	if rs.Len() != 45 {
		t.Errorf("Len() = %d, want 45", rs.Len())
	}
	if rs.Matched() != 44 {
		t.Errorf("Matched() = %d, want 44", rs.Matched())
	}

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("checkpoint Load() failed: %v", err)
	}
	if len(snap) == 0 || len(snap) > 5 {
		t.Errorf("checkpoint has %d chunks, want between 1 and 5", len(snap))
	}

	out := filepath.Join(dir, "results.xlsx")
	if err := export.WriteXLSX(rs.Table(), out); err != nil {
		t.Fatalf("WriteXLSX() failed: %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("GetRows() failed: %v", err)
	}
	if len(rows) != 46 {
		t.Fatalf("workbook has %d rows, want 46", len(rows))
	}
	if len(rows[8]) != 1 || rows[8][0] != "NOMATCH1" {
		t.Errorf("row for unmatched identifier = %v, want only its idValue", rows[8])
	}
}

// TestIntegration_ConcurrentChunks tests that chunks are mapped concurrently
func TestIntegration_ConcurrentChunks(t *testing.T) {
	server := newMappingServer(t, 100*time.Millisecond)
	defer server.Close()

	client := openfigi.NewClient(openfigi.Options{URL: server.URL, Timeout: 2 * time.Second})
	d := dispatcher.New(client, dispatcher.Config{APILimit: 10, Workers: 5})

	start := time.Now()
	rs, err := d.Submit(context.Background(), figi.IDTypeISIN, testutil.Identifiers(50))
	duration := time.Since(start)

	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if rs.Matched() != 50 {
		t.Errorf("Matched() = %d, want 50", rs.Matched())
	}

	// Sequential mapping would take 500ms (5 * 100ms)
	if duration > 300*time.Millisecond {
		t.Errorf("Chunks likely ran sequentially. Duration: %v (expected < 300ms)", duration)
	}
}

// TestIntegration_PartialFailures tests that a failing chunk leaves the others intact
func TestIntegration_PartialFailures(t *testing.T) {
	server := newMappingServer(t, 0)
	defer server.Close()

	values := testutil.Identifiers(250)
	values[150] = "FAIL1"

	client := openfigi.NewClient(openfigi.Options{URL: server.URL, Timeout: 2 * time.Second})
	d := dispatcher.New(client, dispatcher.Config{APILimit: 100, Workers: 3})

	rs, err := d.Submit(context.Background(), figi.IDTypeISIN, values)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	if rs.Len() != 250 {
		t.Errorf("Len() = %d, want 250", rs.Len())
	}
	if rs.Matched() != 150 {
		t.Errorf("Matched() = %d, want 150", rs.Matched())
	}

	e, _ := rs.Get(values[100])
	if e.OK() || !strings.Contains(e.Err, "status 500") {
		t.Errorf("entry for failed chunk = %+v, want status 500 error", e)
	}
}

// TestIntegration_RequestTimeout tests that a hung call is bounded by the request timeout
func TestIntegration_RequestTimeout(t *testing.T) {
	hangingServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer hangingServer.Close()

	client := openfigi.NewClient(openfigi.Options{URL: hangingServer.URL, Timeout: 50 * time.Millisecond})
	d := dispatcher.New(client, dispatcher.Config{APILimit: 5, Workers: 2})

	start := time.Now()
	rs, err := d.Submit(context.Background(), figi.IDTypeISIN, testutil.Identifiers(10))
	duration := time.Since(start)

	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if rs.Len() != 10 || rs.Matched() != 0 {
		t.Errorf("got %v, want 10 unmatched identifiers", rs)
	}
	for id, msg := range rs.Errors() {
		if !strings.HasPrefix(msg, "timeout error") {
			t.Errorf("%s error = %q, want timeout error", id, msg)
		}
	}
	if duration > time.Second {
		t.Errorf("Request timeout not respected. Duration: %v", duration)
	}
}

// TestIntegration_UndecodableBody tests that a 2xx body that is not a result array becomes a decode error
func TestIntegration_UndecodableBody(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": "maintenance"}`))
	}))
	defer server.Close()

	client := openfigi.NewClient(openfigi.Options{URL: server.URL, Timeout: time.Second})
	d := dispatcher.New(client, dispatcher.Config{APILimit: 3, Workers: 2})

	rs, err := d.Submit(context.Background(), figi.IDTypeISIN, testutil.Identifiers(7))
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	if got := requests.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
	for id, msg := range rs.Errors() {
		if !strings.HasPrefix(msg, "decode error") {
			t.Errorf("%s error = %q, want decode error", id, msg)
		}
	}
	if len(rs.Errors()) != 7 {
		t.Errorf("got %d errors, want 7", len(rs.Errors()))
	}
}

// TestIntegration_Run drives the command's run function against a fake service
func TestIntegration_Run(t *testing.T) {
	server := newMappingServer(t, 0)
	defer server.Close()

	dir := t.TempDir()
	input := filepath.Join(dir, "isins.txt")
	writeFile(t, input, "# portfolio\nUS4592001014\n\nUS0378331005\nNOMATCH2\n")

	cfg := &config.Config{
		URL:               server.URL,
		APILimit:          2,
		NumThreads:        2,
		RequestTimeout:    time.Second,
		IDType:            "ID_ISIN",
		InputFile:         input,
		OutputFile:        filepath.Join(dir, "results.xlsx"),
		CheckpointBackend: config.CheckpointFile,
		CheckpointPath:    filepath.Join(dir, "OpenFIGI.checkpoint"),
		CheckpointEvery:   1,
	}

	collector := metrics.NewCollector(prometheus.NewRegistry())
	if err := run(context.Background(), cfg, "run-test", zerolog.Nop(), collector); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	f, err := excelize.OpenFile(cfg.OutputFile)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("GetRows() failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("workbook has %d rows, want 4", len(rows))
	}
	if rows[1][0] != "US4592001014" || rows[3][0] != "NOMATCH2" {
		t.Errorf("rows out of submission order: %v", rows)
	}

	snap, err := checkpoint.NewFileStore(cfg.CheckpointPath).Load(context.Background())
	if err != nil {
		t.Fatalf("checkpoint Load() failed: %v", err)
	}
	if len(snap) != 2 {
		t.Errorf("checkpoint has %d chunks, want 2", len(snap))
	}
}
